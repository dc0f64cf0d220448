package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/patrikb/ligafeed/internal/extract"
	"github.com/patrikb/ligafeed/internal/identity"
	"github.com/patrikb/ligafeed/internal/scrape/adatbank"
	"github.com/patrikb/ligafeed/internal/store"
)

// MatchSource provides round schedule pages and match detail pages.
type MatchSource interface {
	Round(ctx context.Context, round int) ([]adatbank.MatchSummary, error)
	Match(ctx context.Context, ref string) (*adatbank.MatchDetail, error)
}

// MatchReport summarizes one match run.
type MatchReport struct {
	MatchesCreated  int
	MatchesExisting int
	EventsCreated   int
	StatsApplied    int
	Skipped         int
}

// MatchStage ingests played matches round by round: the match row,
// its events and the per-player statistics derived from the lineups.
//
// Events are append-only with no natural key, and statistics are an
// accumulator. A match that already exists is therefore skipped
// entirely, before any of its events or statistics are written; that
// is the only thing keeping re-runs from double counting.
type MatchStage struct {
	src      MatchSource
	gw       Gateway
	resolver *identity.Resolver
	season   string
	rounds   int
	log      *zap.SugaredLogger
}

// NewMatchStage creates the stage. rounds is the number of rounds in
// the season.
func NewMatchStage(src MatchSource, gw Gateway, season string, rounds int, log *zap.SugaredLogger) *MatchStage {
	return &MatchStage{
		src:      src,
		gw:       gw,
		resolver: identity.NewResolver(gw, log),
		season:   season,
		rounds:   rounds,
		log:      log,
	}
}

// Run walks every round. A failed round page skips that round only.
func (s *MatchStage) Run(ctx context.Context) (MatchReport, error) {
	var report MatchReport

	for round := 1; round <= s.rounds; round++ {
		matches, err := s.src.Round(ctx, round)
		if err != nil {
			s.log.Errorw("skipping round", "round", round, "error", err)
			report.Skipped++
			continue
		}
		if len(matches) == 0 {
			s.log.Infow("round not played yet", "round", round)
			continue
		}

		for _, m := range matches {
			if err := s.ingestMatch(ctx, m, round, &report); err != nil {
				s.log.Errorw("skipping match",
					"round", round, "home", m.HomeTeam, "away", m.AwayTeam, "error", err)
				report.Skipped++
			}
		}
	}

	return report, nil
}

func (s *MatchStage) ingestMatch(ctx context.Context, m adatbank.MatchSummary, round int, report *MatchReport) error {
	homeID, ok, err := s.resolver.ResolveTeam(ctx, m.HomeTeam)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unknown home team %q", m.HomeTeam)
	}
	awayID, ok, err := s.resolver.ResolveTeam(ctx, m.AwayTeam)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("unknown away team %q", m.AwayTeam)
	}

	exists, err := s.gw.MatchExists(ctx, homeID, awayID, m.Date, round)
	if err != nil {
		return fmt.Errorf("checking match: %w", err)
	}
	if exists {
		s.log.Debugw("match already known", "home", m.HomeTeam, "away", m.AwayTeam, "round", round)
		report.MatchesExisting++
		return nil
	}

	detail, err := s.src.Match(ctx, m.Ref)
	if err != nil {
		return err
	}

	match := store.Match{
		Season:     s.season,
		Round:      round,
		Date:       m.Date,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		HomeScore:  sql.NullInt32{Int32: int32(m.HomeScore), Valid: true},
		AwayScore:  sql.NullInt32{Int32: int32(m.AwayScore), Valid: true},
	}
	if m.Arena != "" {
		match.Stadium = sql.NullString{String: m.Arena, Valid: true}
	}
	if detail.Referee != "" {
		match.Referee = sql.NullString{String: detail.Referee, Valid: true}
	}

	matchID, err := s.gw.CreateMatch(ctx, match)
	if err != nil {
		return fmt.Errorf("storing match: %w", err)
	}
	report.MatchesCreated++
	s.log.Infow("match stored",
		"match_id", matchID, "round", round, "home", m.HomeTeam, "away", m.AwayTeam)

	s.ingestLineup(ctx, matchID, detail.Home, homeID, m.HomeTeam, report)
	s.ingestLineup(ctx, matchID, detail.Away, awayID, m.AwayTeam, report)

	return nil
}

// ingestLineup derives and stores one side's events and statistics.
// An unresolvable player drops that player's rows but never the
// match; lineups routinely contain players missing from the roster
// pages.
func (s *MatchStage) ingestLineup(ctx context.Context, matchID int64, rows []extract.PlayerRow, teamID int64, teamName string, report *MatchReport) {
	lines, events := extract.Process(rows)

	resolved := make(map[string]int64, len(lines))
	for name := range lines {
		playerID, ok, err := s.resolver.ResolvePlayer(ctx, name, teamName)
		if err != nil || !ok {
			s.log.Warnw("player not resolvable, dropping lineup rows",
				"player", name, "team", teamName, "error", err)
			report.Skipped++
			continue
		}
		resolved[name] = playerID
	}

	for _, ev := range events {
		playerID, ok := resolved[ev.Player]
		if !ok {
			continue
		}
		err := s.gw.CreateMatchEvent(ctx, store.MatchEvent{
			MatchID:  matchID,
			Type:     ev.Kind,
			Minute:   ev.Minute,
			PlayerID: sql.NullInt64{Int64: playerID, Valid: true},
			TeamID:   sql.NullInt64{Int64: teamID, Valid: true},
		})
		if err != nil {
			s.log.Errorw("storing match event", "player", ev.Player, "error", err)
			continue
		}
		report.EventsCreated++
	}

	for name, line := range lines {
		playerID, ok := resolved[name]
		if !ok {
			continue
		}
		err := s.gw.AddPlayerStats(ctx, store.PlayerStats{
			PlayerID:      playerID,
			TeamID:        teamID,
			MatchesPlayed: 1,
			Goals:         line.Goals,
			OwnGoals:      line.OwnGoals,
			YellowCards:   line.YellowCards,
			RedCards:      line.RedCards,
			MinutesPlayed: line.MinutesPlayed,
		})
		if err != nil {
			s.log.Errorw("storing player stats", "player", name, "error", err)
			continue
		}
		report.StatsApplied++
	}
}
