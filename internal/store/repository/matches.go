package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/patrikb/ligafeed/internal/store"
)

// MatchRepository handles match and match-event data access.
type MatchRepository struct {
	db *store.Database
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db *store.Database) *MatchRepository {
	return &MatchRepository{db: db}
}

// MatchExists reports whether a match with the natural key
// (home, away, date, round) is already stored. Callers must check this
// before CreateMatch; a hit makes the whole ingest of that match a
// silent no-op.
func (r *MatchRepository) MatchExists(ctx context.Context, homeTeamID, awayTeamID int64, date time.Time, round int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM matches
			WHERE home_team_id = $1 AND away_team_id = $2 AND date = $3 AND round = $4
		)
	`

	var exists bool
	err := r.db.DB().QueryRowContext(ctx, query, homeTeamID, awayTeamID, date, round).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking match existence: %w", err)
	}
	return exists, nil
}

// CreateMatch inserts a match and returns its id.
func (r *MatchRepository) CreateMatch(ctx context.Context, m store.Match) (int64, error) {
	query := `
		INSERT INTO matches (season, round, date, home_team_id, away_team_id,
			home_score, away_score, stadium, referee)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING match_id
	`

	var id int64
	err := r.db.DB().QueryRowContext(ctx, query,
		m.Season, m.Round, m.Date, m.HomeTeamID, m.AwayTeamID,
		m.HomeScore, m.AwayScore, m.Stadium, m.Referee).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting match: %w", err)
	}
	return id, nil
}

// CreateMatchEvent appends a match event. Events carry no natural
// deduplication key.
func (r *MatchRepository) CreateMatchEvent(ctx context.Context, ev store.MatchEvent) error {
	query := `
		INSERT INTO match_events (match_id, event_type, minute, player_id, team_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		ev.MatchID, ev.Type, ev.Minute, ev.PlayerID, ev.TeamID)
	if err != nil {
		return fmt.Errorf("inserting match event: %w", err)
	}
	return nil
}
