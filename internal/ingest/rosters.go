package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/patrikb/ligafeed/internal/scrape/adatbank"
)

// TeamSource provides the team index, team pages and player pages.
type TeamSource interface {
	Teams(ctx context.Context) ([]adatbank.TeamSummary, error)
	TeamDetail(ctx context.Context, ref string) (*adatbank.TeamDetail, error)
	PlayerPage(ctx context.Context, ref string) (*adatbank.PlayerDetail, error)
}

// RosterReport summarizes one roster run.
type RosterReport struct {
	TeamsCreated    int
	TeamsExisting   int
	PlayersCreated  int
	PlayersExisting int
	Skipped         int
}

// RosterStage ingests every team and its roster. Re-runs are
// additive: existing teams and players are recognized and left alone.
type RosterStage struct {
	src TeamSource
	gw  Gateway
	log *zap.SugaredLogger
}

// NewRosterStage creates the stage.
func NewRosterStage(src TeamSource, gw Gateway, log *zap.SugaredLogger) *RosterStage {
	return &RosterStage{src: src, gw: gw, log: log}
}

// Run ingests all teams. A failed team page skips that team only;
// only a failed index fetch aborts the run.
func (s *RosterStage) Run(ctx context.Context) (RosterReport, error) {
	var report RosterReport

	teams, err := s.src.Teams(ctx)
	if err != nil {
		return report, fmt.Errorf("listing teams: %w", err)
	}
	s.log.Infow("team index loaded", "teams", len(teams))

	for _, summary := range teams {
		if err := s.ingestTeam(ctx, summary, &report); err != nil {
			s.log.Errorw("skipping team", "team", summary.Name, "error", err)
			report.Skipped++
		}
	}

	return report, nil
}

func (s *RosterStage) ingestTeam(ctx context.Context, summary adatbank.TeamSummary, report *RosterReport) error {
	detail, err := s.src.TeamDetail(ctx, summary.Ref)
	if err != nil {
		return err
	}

	name := detail.Name
	if name == "" {
		name = summary.Name
	}

	teamID, created, err := s.gw.CreateOrGetTeam(ctx, name, detail.Address, detail.Website)
	if err != nil {
		return fmt.Errorf("storing team %s: %w", name, err)
	}
	if created {
		report.TeamsCreated++
		s.log.Infow("team created", "team", name, "team_id", teamID)
	} else {
		report.TeamsExisting++
		s.log.Debugw("team already known", "team", name, "team_id", teamID)
	}

	for _, entry := range detail.Players {
		if err := s.ingestPlayer(ctx, entry, teamID, name, report); err != nil {
			s.log.Errorw("skipping player", "player", entry.Name, "team", name, "error", err)
			report.Skipped++
		}
	}

	return nil
}

func (s *RosterStage) ingestPlayer(ctx context.Context, entry adatbank.RosterEntry, teamID int64, teamName string, report *RosterReport) error {
	_, exists, err := s.gw.PlayerIDByNameAndTeam(ctx, entry.Name, teamName)
	if err != nil {
		return fmt.Errorf("looking up player: %w", err)
	}
	if exists {
		report.PlayersExisting++
		return nil
	}

	// The birth date lives on the player's own page. A failed player
	// page is not worth losing the roster entry over.
	player := adatbank.PlayerDetail{}
	if entry.Ref != "" {
		if detail, err := s.src.PlayerPage(ctx, entry.Ref); err != nil {
			s.log.Warnw("player page failed, storing without birth date",
				"player", entry.Name, "error", err)
		} else {
			player = *detail
		}
	}

	playerID, err := s.gw.CreatePlayer(ctx, entry.Name, player.BirthDate)
	if err != nil {
		return fmt.Errorf("storing player: %w", err)
	}
	if _, err := s.gw.LinkPlayerToTeam(ctx, playerID, teamID); err != nil {
		return fmt.Errorf("linking player to team: %w", err)
	}

	report.PlayersCreated++
	return nil
}
