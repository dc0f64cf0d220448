package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/patrikb/ligafeed/internal/store"
)

// StatsRepository handles aggregate per-player statistics.
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// AddPlayerStats merges a per-match delta into the accumulator keyed by
// (player, team), creating the row if absent. NOT idempotent: every
// call adds to the stored counters, so callers must apply it at most
// once per (player, team, match).
func (r *StatsRepository) AddPlayerStats(ctx context.Context, s store.PlayerStats) error {
	query := `
		INSERT INTO player_stats (player_id, team_id, matches_played, goals,
			own_goals, yellow_cards, red_cards, minutes_played)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (player_id, team_id) DO UPDATE SET
			matches_played = player_stats.matches_played + EXCLUDED.matches_played,
			goals = player_stats.goals + EXCLUDED.goals,
			own_goals = player_stats.own_goals + EXCLUDED.own_goals,
			yellow_cards = player_stats.yellow_cards + EXCLUDED.yellow_cards,
			red_cards = player_stats.red_cards + EXCLUDED.red_cards,
			minutes_played = player_stats.minutes_played + EXCLUDED.minutes_played
	`

	_, err := r.db.DB().ExecContext(ctx, query,
		s.PlayerID, s.TeamID, s.MatchesPlayed, s.Goals,
		s.OwnGoals, s.YellowCards, s.RedCards, s.MinutesPlayed)
	if err != nil {
		return fmt.Errorf("merging player stats (player %d team %d): %w", s.PlayerID, s.TeamID, err)
	}
	return nil
}

// PlayerStats returns the accumulated row for (player, team).
func (r *StatsRepository) PlayerStats(ctx context.Context, playerID, teamID int64) (*store.PlayerStats, bool, error) {
	query := `
		SELECT player_id, team_id, matches_played, goals, own_goals,
			yellow_cards, red_cards, minutes_played
		FROM player_stats
		WHERE player_id = $1 AND team_id = $2
	`

	s := &store.PlayerStats{}
	err := r.db.DB().QueryRowContext(ctx, query, playerID, teamID).Scan(
		&s.PlayerID, &s.TeamID, &s.MatchesPlayed, &s.Goals, &s.OwnGoals,
		&s.YellowCards, &s.RedCards, &s.MinutesPlayed)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying player stats: %w", err)
	}
	return s, true, nil
}
