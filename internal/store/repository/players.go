package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/patrikb/ligafeed/internal/store"
)

// PlayerRepository handles player and membership data access.
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// CreatePlayer inserts a player. Deduplication is the caller's
// responsibility via PlayerIDByNameAndTeam before calling.
func (r *PlayerRepository) CreatePlayer(ctx context.Context, name string, birthDate *time.Time) (int64, error) {
	var bd sql.NullTime
	if birthDate != nil {
		bd = sql.NullTime{Time: *birthDate, Valid: true}
	}

	var id int64
	err := r.db.DB().QueryRowContext(ctx,
		`INSERT INTO players (name, birth_date) VALUES ($1, $2) RETURNING player_id`,
		name, bd).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting player %q: %w", name, err)
	}
	return id, nil
}

// PlayerIDByNameAndTeam finds a player by normalized name among the
// members of the named team. Player lookup is never global: names are
// not unique across the league.
func (r *PlayerRepository) PlayerIDByNameAndTeam(ctx context.Context, playerName, teamName string) (int64, bool, error) {
	query := `
		SELECT p.player_id
		FROM players p
		JOIN team_players tp ON tp.player_id = p.player_id
		JOIN teams t ON t.team_id = tp.team_id
		WHERE UPPER(TRIM(p.name)) = UPPER(TRIM($1))
		  AND UPPER(TRIM(t.name)) = UPPER(TRIM($2))
	`

	var id int64
	err := r.db.DB().QueryRowContext(ctx, query, playerName, teamName).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying player %q (%s): %w", playerName, teamName, err)
	}
	return id, true, nil
}

// LinkPlayerToTeam records a membership; a no-op if the pair exists.
func (r *PlayerRepository) LinkPlayerToTeam(ctx context.Context, playerID, teamID int64) (bool, error) {
	res, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO team_players (team_id, player_id)
		VALUES ($1, $2)
		ON CONFLICT (team_id, player_id) DO NOTHING
	`, teamID, playerID)
	if err != nil {
		return false, fmt.Errorf("linking player %d to team %d: %w", playerID, teamID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetPlayerInjured sets the injury flag; last write wins.
func (r *PlayerRepository) SetPlayerInjured(ctx context.Context, playerID int64, injured bool) error {
	_, err := r.db.DB().ExecContext(ctx,
		`UPDATE players SET is_injured = $2 WHERE player_id = $1`, playerID, injured)
	if err != nil {
		return fmt.Errorf("updating injury flag for player %d: %w", playerID, err)
	}
	return nil
}

// InjuredPlayers returns every player currently flagged injured.
func (r *PlayerRepository) InjuredPlayers(ctx context.Context) ([]*store.Player, error) {
	query := `
		SELECT player_id, name, birth_date, is_injured, created_at
		FROM players
		WHERE is_injured = TRUE
		ORDER BY name
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying injured players: %w", err)
	}
	defer rows.Close()

	var players []*store.Player
	for rows.Next() {
		p := &store.Player{}
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.BirthDate, &p.IsInjured, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
