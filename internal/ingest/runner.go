package ingest

import (
	"context"

	"go.uber.org/zap"
)

// Runner executes the full pipeline in dependency order: rosters
// first, since every later stage resolves names against them.
type Runner struct {
	Rosters   *RosterStage
	Matches   *MatchStage
	Standings *StandingStage
	Articles  *ArticleStage

	log *zap.SugaredLogger
}

// NewRunner bundles the stages.
func NewRunner(rosters *RosterStage, matches *MatchStage, standings *StandingStage, articles *ArticleStage, log *zap.SugaredLogger) *Runner {
	return &Runner{
		Rosters:   rosters,
		Matches:   matches,
		Standings: standings,
		Articles:  articles,
		log:       log,
	}
}

// Run executes every stage. A stage-level failure aborts the run;
// per-resource failures were already absorbed inside the stages.
func (r *Runner) Run(ctx context.Context) error {
	rosterReport, err := r.Rosters.Run(ctx)
	if err != nil {
		return err
	}
	r.log.Infow("roster stage done",
		"teams_created", rosterReport.TeamsCreated,
		"teams_existing", rosterReport.TeamsExisting,
		"players_created", rosterReport.PlayersCreated,
		"players_existing", rosterReport.PlayersExisting,
		"skipped", rosterReport.Skipped)

	matchReport, err := r.Matches.Run(ctx)
	if err != nil {
		return err
	}
	r.log.Infow("match stage done",
		"matches_created", matchReport.MatchesCreated,
		"matches_existing", matchReport.MatchesExisting,
		"events_created", matchReport.EventsCreated,
		"stats_applied", matchReport.StatsApplied,
		"skipped", matchReport.Skipped)

	standingReport, err := r.Standings.Run(ctx)
	if err != nil {
		return err
	}
	r.log.Infow("standings stage done",
		"rounds_stored", standingReport.RoundsStored,
		"rows_stored", standingReport.RowsStored,
		"skipped", standingReport.Skipped)

	articleReport, err := r.Articles.Run(ctx)
	if err != nil {
		return err
	}
	r.log.Infow("article stage done",
		"classified", articleReport.Classified,
		"injuries", articleReport.Injuries,
		"duplicates", articleReport.Duplicates,
		"manual_checks", articleReport.ManualChecks,
		"skipped", articleReport.Skipped)

	return nil
}
