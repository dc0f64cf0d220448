// Command ligafeed ingests Hungarian NB I league data (rosters,
// matches, standings, injury news) into PostgreSQL and serves it over
// a JSON API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/patrikb/ligafeed/internal/api/rest"
	"github.com/patrikb/ligafeed/internal/cache"
	"github.com/patrikb/ligafeed/internal/config"
	"github.com/patrikb/ligafeed/internal/fetch"
	"github.com/patrikb/ligafeed/internal/ingest"
	"github.com/patrikb/ligafeed/internal/injury"
	"github.com/patrikb/ligafeed/internal/scrape/adatbank"
	"github.com/patrikb/ligafeed/internal/scrape/nso"
	"github.com/patrikb/ligafeed/internal/store"
	"github.com/patrikb/ligafeed/internal/store/repository"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg.LogFormat)
	defer log.Sync()

	root := &cobra.Command{
		Use:           "ligafeed",
		Short:         "NB I league data pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newInitDBCmd(cfg, log),
		newResetDBCmd(cfg, log),
		newTeamsCmd(cfg, log),
		newMatchesCmd(cfg, log),
		newStandingsCmd(cfg, log),
		newArticlesCmd(cfg, log),
		newAllCmd(cfg, log),
		newSetupCmd(cfg, log),
		newServeCmd(cfg, log),
	)

	if err := root.Execute(); err != nil {
		log.Errorw("command failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(format string) *zap.SugaredLogger {
	var logger *zap.Logger
	var err error
	if format == "json" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	return logger.Sugar()
}

// signalContext cancels on SIGINT/SIGTERM so a long scrape run can be
// stopped cleanly mid-round.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func openDatabase(cfg config.Config, log *zap.SugaredLogger) (*store.Database, error) {
	return store.NewDatabase(cfg.DatabaseDSN, log)
}

// newFetcher builds the polite fetcher for a source, optionally
// backed by the redis page cache.
func newFetcher(cfg config.Config, baseURL string, log *zap.SugaredLogger) (*fetch.Fetcher, func()) {
	var pageCache fetch.PageCache
	cleanup := func() {}

	if cfg.CacheEnabled {
		c, err := cache.NewPageCache(cfg.RedisURL, cfg.PageCacheTTL, log)
		if err != nil {
			log.Warnw("page cache unavailable, fetching uncached", "error", err)
		} else {
			pageCache = c
			cleanup = func() { c.Close() }
		}
	}

	f := fetch.New(fetch.Options{
		BaseURL:     baseURL,
		Delay:       cfg.PolitenessDelay,
		MaxAttempts: cfg.MaxAttempts,
		Cache:       pageCache,
	}, log)
	return f, cleanup
}

func newDataBankClient(cfg config.Config, log *zap.SugaredLogger) (*adatbank.Client, func()) {
	fetcher, cleanup := newFetcher(cfg, cfg.DataBankBaseURL, log)
	return adatbank.NewClient(fetcher, cfg.SeasonRef, cfg.LeagueRef, cfg.TeamIndexPath, log), cleanup
}

func newNewsClient(cfg config.Config, log *zap.SugaredLogger) (*nso.Client, func()) {
	fetcher, fetchCleanup := newFetcher(cfg, cfg.NewsBaseURL, log)
	renderer := nso.NewChromeRenderer()
	cleanup := func() {
		renderer.Close()
		fetchCleanup()
	}
	return nso.NewClient(fetcher, renderer, cfg.NewsBaseURL, cfg.NewsSection, log), cleanup
}

// withStore opens the database, builds the repository gateway and
// runs fn against it.
func withStore(cfg config.Config, log *zap.SugaredLogger, fn func(ctx context.Context, repos *repository.Store) error) error {
	ctx, cancel := signalContext()
	defer cancel()

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, repository.NewStore(db))
}

func newInitDBCmd(cfg config.Config, log *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Apply pending schema migrations",
		RunE: func(*cobra.Command, []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			return db.Migrate(ctx)
		},
	}
}

func newResetDBCmd(cfg config.Config, log *zap.SugaredLogger) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "resetdb",
		Short: "Drop all tables and re-apply the schema",
		RunE: func(*cobra.Command, []string) error {
			if !yes {
				return fmt.Errorf("resetdb drops all data; re-run with --yes")
			}

			ctx, cancel := signalContext()
			defer cancel()

			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			return db.Reset(ctx)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm dropping all data")
	return cmd
}

func newTeamsCmd(cfg config.Config, log *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "Ingest teams and rosters from the data bank",
		RunE: func(*cobra.Command, []string) error {
			return withStore(cfg, log, func(ctx context.Context, repos *repository.Store) error {
				src, cleanup := newDataBankClient(cfg, log)
				defer cleanup()

				_, err := ingest.NewRosterStage(src, repos, log).Run(ctx)
				return err
			})
		},
	}
}

func newMatchesCmd(cfg config.Config, log *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "matches",
		Short: "Ingest played matches, events and player statistics",
		RunE: func(*cobra.Command, []string) error {
			return withStore(cfg, log, func(ctx context.Context, repos *repository.Store) error {
				src, cleanup := newDataBankClient(cfg, log)
				defer cleanup()

				_, err := ingest.NewMatchStage(src, repos, cfg.Season, cfg.Rounds, log).Run(ctx)
				return err
			})
		},
	}
}

func newStandingsCmd(cfg config.Config, log *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Ingest the league table round by round",
		RunE: func(*cobra.Command, []string) error {
			return withStore(cfg, log, func(ctx context.Context, repos *repository.Store) error {
				src, cleanup := newDataBankClient(cfg, log)
				defer cleanup()

				_, err := ingest.NewStandingStage(src, repos, cfg.Season, cfg.Rounds, log).Run(ctx)
				return err
			})
		},
	}
}

func newArticlesCmd(cfg config.Config, log *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "articles",
		Short: "Classify news articles and store injury records",
		RunE: func(*cobra.Command, []string) error {
			return withStore(cfg, log, func(ctx context.Context, repos *repository.Store) error {
				src, cleanup := newNewsClient(cfg, log)
				defer cleanup()

				classifier := injury.NewClient(cfg.GenerateURL, cfg.ModelName, log)
				_, err := ingest.NewArticleStage(src, classifier, repos, log).Run(ctx)
				return err
			})
		},
	}
}

func runAllStages(cfg config.Config, log *zap.SugaredLogger) error {
	return withStore(cfg, log, func(ctx context.Context, repos *repository.Store) error {
		bank, bankCleanup := newDataBankClient(cfg, log)
		defer bankCleanup()
		news, newsCleanup := newNewsClient(cfg, log)
		defer newsCleanup()

		classifier := injury.NewClient(cfg.GenerateURL, cfg.ModelName, log)

		runner := ingest.NewRunner(
			ingest.NewRosterStage(bank, repos, log),
			ingest.NewMatchStage(bank, repos, cfg.Season, cfg.Rounds, log),
			ingest.NewStandingStage(bank, repos, cfg.Season, cfg.Rounds, log),
			ingest.NewArticleStage(news, classifier, repos, log),
			log,
		)
		return runner.Run(ctx)
	})
}

func newAllCmd(cfg config.Config, log *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run every ingest stage in order",
		RunE: func(*cobra.Command, []string) error {
			return runAllStages(cfg, log)
		},
	}
}

func newSetupCmd(cfg config.Config, log *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Migrate the schema, then run every ingest stage",
		RunE: func(*cobra.Command, []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return err
			}
			db.Close()

			return runAllStages(cfg, log)
		},
	}
}

func newServeCmd(cfg config.Config, log *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored data over the JSON API",
		RunE: func(*cobra.Command, []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			server := rest.NewServer(cfg.APIPort, db, repository.NewStore(db), cfg.Season, log)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Info("shutting down")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}
}
