package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/patrikb/ligafeed/internal/identity"
	"github.com/patrikb/ligafeed/internal/injury"
	"github.com/patrikb/ligafeed/internal/scrape/nso"
	"github.com/patrikb/ligafeed/internal/store"
)

// ArticleSource provides the section's article URLs and the articles
// themselves.
type ArticleSource interface {
	ArticleLinks(ctx context.Context) ([]string, error)
	Article(ctx context.Context, url string) (*nso.Article, error)
}

// Classifier produces a raw completion for a prompt. An empty
// completion signals the model is unavailable.
type Classifier interface {
	Generate(ctx context.Context, prompt string) string
}

// ArticleReport summarizes one article run.
type ArticleReport struct {
	Classified   int
	Injuries     int
	Duplicates   int
	ManualChecks int
	Skipped      int
}

// ArticleStage classifies news articles and stores injury records.
// Articles whose URL is already stored are skipped, so re-running the
// stage only pays the model for new articles.
type ArticleStage struct {
	src        ArticleSource
	classifier Classifier
	gw         Gateway
	resolver   *identity.Resolver
	log        *zap.SugaredLogger
}

// NewArticleStage creates the stage.
func NewArticleStage(src ArticleSource, classifier Classifier, gw Gateway, log *zap.SugaredLogger) *ArticleStage {
	return &ArticleStage{
		src:        src,
		classifier: classifier,
		gw:         gw,
		resolver:   identity.NewResolver(gw, log),
		log:        log,
	}
}

// Run classifies every article on the section index. A failed article
// fetch or an unavailable model skips that article only.
func (s *ArticleStage) Run(ctx context.Context) (ArticleReport, error) {
	var report ArticleReport

	urls, err := s.src.ArticleLinks(ctx)
	if err != nil {
		return report, fmt.Errorf("listing articles: %w", err)
	}

	teams, err := s.gw.TeamNames(ctx)
	if err != nil {
		return report, fmt.Errorf("listing teams for prompt: %w", err)
	}

	for _, url := range urls {
		if err := s.ingestArticle(ctx, url, teams, &report); err != nil {
			s.log.Errorw("skipping article", "url", url, "error", err)
			report.Skipped++
		}
	}

	return report, nil
}

func (s *ArticleStage) ingestArticle(ctx context.Context, url string, teams []string, report *ArticleReport) error {
	article, err := s.src.Article(ctx, url)
	if err != nil {
		return err
	}

	completion := s.classifier.Generate(ctx, injury.BuildPrompt(article.FullText(), teams))
	if completion == "" {
		return fmt.Errorf("no model completion")
	}

	verdict, parsed := injury.ParseVerdict(completion)
	report.Classified++

	if !verdict.Injured {
		s.log.Debugw("no injury in article", "url", url)
		return nil
	}

	rec := store.InjuryRecord{
		URL: url,
		// A record goes out for review unless both the verdict parsed
		// cleanly and the player resolved.
		NeedsManualCheck: true,
	}
	if article.Title != "" {
		rec.Title = sql.NullString{String: article.Title, Valid: true}
	}
	if article.PublishedAt != nil {
		rec.PublishedDate = sql.NullTime{Time: *article.PublishedAt, Valid: true}
		rec.InjuryStart = sql.NullTime{Time: *article.PublishedAt, Valid: true}
	}
	if verdict.InjuryDescription != "" {
		rec.InjuryType = sql.NullString{String: verdict.InjuryDescription, Valid: true}
	}
	if verdict.RecoveryTime != "" {
		rec.Duration = sql.NullString{String: verdict.RecoveryTime, Valid: true}
	}

	var playerID int64
	if parsed && verdict.PlayerName != "" && verdict.Team != "" {
		id, ok, err := s.resolver.ResolvePlayer(ctx, verdict.PlayerName, verdict.Team)
		if err != nil {
			return fmt.Errorf("resolving player: %w", err)
		}
		if ok {
			playerID = id
			rec.PlayerID = sql.NullInt64{Int64: id, Valid: true}
			rec.NeedsManualCheck = false
		}
	}

	id, created, err := s.gw.CreateInjuryRecord(ctx, rec)
	if err != nil {
		return fmt.Errorf("storing injury record: %w", err)
	}
	if !created {
		s.log.Debugw("article already recorded", "url", url)
		report.Duplicates++
		return nil
	}

	report.Injuries++
	if rec.NeedsManualCheck {
		report.ManualChecks++
	}
	s.log.Infow("injury recorded",
		"record_id", id, "url", url,
		"player", verdict.PlayerName, "team", verdict.Team,
		"manual_check", rec.NeedsManualCheck)

	if playerID != 0 {
		if err := s.gw.SetPlayerInjured(ctx, playerID, true); err != nil {
			s.log.Errorw("flagging player injured", "player_id", playerID, "error", err)
		}
	}

	return nil
}
