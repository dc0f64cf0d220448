package repository

import (
	"context"
	"fmt"

	"github.com/patrikb/ligafeed/internal/store"
)

// StandingRepository handles league-table data access.
type StandingRepository struct {
	db *store.Database
}

// NewStandingRepository creates a new standing repository.
func NewStandingRepository(db *store.Database) *StandingRepository {
	return &StandingRepository{db: db}
}

// UpsertStanding inserts or fully overwrites the row keyed by
// (season, round, team). True upsert; re-ingestion is idempotent.
func (r *StandingRepository) UpsertStanding(ctx context.Context, s store.Standing) error {
	query := `
		INSERT INTO standings (season, round, team_id, position, matches_played,
			wins, draws, losses, goals_for, goals_against, goal_difference, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (season, round, team_id) DO UPDATE SET
			position = EXCLUDED.position,
			matches_played = EXCLUDED.matches_played,
			wins = EXCLUDED.wins,
			draws = EXCLUDED.draws,
			losses = EXCLUDED.losses,
			goals_for = EXCLUDED.goals_for,
			goals_against = EXCLUDED.goals_against,
			goal_difference = EXCLUDED.goal_difference,
			points = EXCLUDED.points
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		s.Season, s.Round, s.TeamID, s.Position, s.MatchesPlayed,
		s.Wins, s.Draws, s.Losses, s.GoalsFor, s.GoalsAgainst,
		s.GoalDifference, s.Points)
	if err != nil {
		return fmt.Errorf("upserting standing (%s r%d team %d): %w", s.Season, s.Round, s.TeamID, err)
	}
	return nil
}

// Standings returns the table for a round, ordered by position.
func (r *StandingRepository) Standings(ctx context.Context, season string, round int) ([]*store.Standing, error) {
	query := `
		SELECT season, round, team_id, position, matches_played, wins, draws,
			losses, goals_for, goals_against, goal_difference, points
		FROM standings
		WHERE season = $1 AND round = $2
		ORDER BY position
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season, round)
	if err != nil {
		return nil, fmt.Errorf("querying standings: %w", err)
	}
	defer rows.Close()

	var standings []*store.Standing
	for rows.Next() {
		s := &store.Standing{}
		err := rows.Scan(&s.Season, &s.Round, &s.TeamID, &s.Position, &s.MatchesPlayed,
			&s.Wins, &s.Draws, &s.Losses, &s.GoalsFor, &s.GoalsAgainst,
			&s.GoalDifference, &s.Points)
		if err != nil {
			return nil, fmt.Errorf("scanning standing: %w", err)
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
