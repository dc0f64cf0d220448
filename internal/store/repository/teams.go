// Package repository implements the persistence gateway on PostgreSQL,
// one repository per aggregate. Expected outcomes ("already exists",
// "no match") are tagged return values, never errors.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/patrikb/ligafeed/internal/store"
)

// TeamRepository handles team data access.
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository.
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// CreateOrGetTeam inserts a team unless one with the same normalized
// name exists; it returns the id either way plus whether a row was
// created. Idempotent.
func (r *TeamRepository) CreateOrGetTeam(ctx context.Context, name, address, website string) (int64, bool, error) {
	if id, ok, err := r.TeamIDByName(ctx, name); err != nil {
		return 0, false, err
	} else if ok {
		return id, false, nil
	}

	query := `
		INSERT INTO teams (name, address, website)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		RETURNING team_id
	`

	var id int64
	if err := r.db.DB().QueryRowContext(ctx, query, name, address, website).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("inserting team %q: %w", name, err)
	}
	return id, true, nil
}

// TeamIDByName finds a team by name under case- and
// whitespace-insensitive comparison. Absence is not an error.
func (r *TeamRepository) TeamIDByName(ctx context.Context, name string) (int64, bool, error) {
	query := `
		SELECT team_id FROM teams
		WHERE UPPER(TRIM(name)) = UPPER(TRIM($1))
	`

	var id int64
	err := r.db.DB().QueryRowContext(ctx, query, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying team %q: %w", name, err)
	}
	return id, true, nil
}

// TeamNames returns every stored team name, ordered.
func (r *TeamRepository) TeamNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT name FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying team names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning team name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Teams returns all teams.
func (r *TeamRepository) Teams(ctx context.Context) ([]*store.Team, error) {
	query := `
		SELECT team_id, name, address, website, created_at
		FROM teams
		ORDER BY name
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []*store.Team
	for rows.Next() {
		team := &store.Team{}
		if err := rows.Scan(&team.TeamID, &team.Name, &team.Address, &team.Website, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}
