package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/patrikb/ligafeed/internal/identity"
	"github.com/patrikb/ligafeed/internal/scrape/adatbank"
	"github.com/patrikb/ligafeed/internal/store"
)

// StandingSource provides one round's league table. The bool reports
// whether the round has been played.
type StandingSource interface {
	Standings(ctx context.Context, round int) ([]adatbank.StandingRow, bool, error)
}

// StandingReport summarizes one standings run.
type StandingReport struct {
	RoundsStored int
	RowsStored   int
	Skipped      int
}

// StandingStage ingests the league table round by round and stops at
// the first unplayed round; the table on later pages only repeats the
// last played state.
type StandingStage struct {
	src      StandingSource
	gw       Gateway
	resolver *identity.Resolver
	season   string
	rounds   int
	log      *zap.SugaredLogger
}

// NewStandingStage creates the stage.
func NewStandingStage(src StandingSource, gw Gateway, season string, rounds int, log *zap.SugaredLogger) *StandingStage {
	return &StandingStage{
		src:      src,
		gw:       gw,
		resolver: identity.NewResolver(gw, log),
		season:   season,
		rounds:   rounds,
		log:      log,
	}
}

// Run ingests tables until the first unplayed round.
func (s *StandingStage) Run(ctx context.Context) (StandingReport, error) {
	var report StandingReport

	for round := 1; round <= s.rounds; round++ {
		rows, played, err := s.src.Standings(ctx, round)
		if err != nil {
			s.log.Errorw("skipping round table", "round", round, "error", err)
			report.Skipped++
			continue
		}
		if !played {
			s.log.Infow("round not played, stopping", "round", round)
			break
		}

		stored := 0
		for _, row := range rows {
			teamID, ok, err := s.resolver.ResolveTeam(ctx, row.TeamName)
			if err != nil || !ok {
				s.log.Warnw("team not resolvable, dropping table row",
					"team", row.TeamName, "round", round, "error", err)
				report.Skipped++
				continue
			}

			err = s.gw.UpsertStanding(ctx, store.Standing{
				Season:         s.season,
				Round:          round,
				TeamID:         teamID,
				Position:       row.Position,
				MatchesPlayed:  row.MatchesPlayed,
				Wins:           row.Wins,
				Draws:          row.Draws,
				Losses:         row.Losses,
				GoalsFor:       row.GoalsFor,
				GoalsAgainst:   row.GoalsAgainst,
				GoalDifference: row.GoalDiff,
				Points:         row.Points,
			})
			if err != nil {
				s.log.Errorw("storing table row", "team", row.TeamName, "round", round, "error", err)
				report.Skipped++
				continue
			}
			stored++
		}

		report.RowsStored += stored
		if stored > 0 {
			report.RoundsStored++
		}
		s.log.Infow("round table stored", "round", round, "rows", stored)
	}

	return report, nil
}
