package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/patrikb/ligafeed/internal/store"
)

// InjuryRepository handles injury-record data access.
type InjuryRepository struct {
	db *store.Database
}

// NewInjuryRepository creates a new injury repository.
func NewInjuryRepository(db *store.Database) *InjuryRepository {
	return &InjuryRepository{db: db}
}

// CreateInjuryRecord inserts a record unless its URL is already stored.
// A duplicate URL returns (0, false, nil) without side effects.
func (r *InjuryRepository) CreateInjuryRecord(ctx context.Context, rec store.InjuryRecord) (int64, bool, error) {
	var exists bool
	err := r.db.DB().QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM injury_records WHERE url = $1)`, rec.URL).Scan(&exists)
	if err != nil {
		return 0, false, fmt.Errorf("checking injury record url: %w", err)
	}
	if exists {
		return 0, false, nil
	}

	query := `
		INSERT INTO injury_records (player_id, url, title, published_date,
			injury_type, injury_start, duration, needs_manual_check)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err = r.db.DB().QueryRowContext(ctx, query,
		rec.PlayerID, rec.URL, rec.Title, rec.PublishedDate,
		rec.InjuryType, rec.InjuryStart, rec.Duration, rec.NeedsManualCheck).Scan(&id)
	if err != nil {
		// Lost a race with a concurrent insert of the same URL; treat
		// like the pre-check hit.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("inserting injury record: %w", err)
	}
	return id, true, nil
}

// RecordByURL returns the stored record for a URL, if any.
func (r *InjuryRepository) RecordByURL(ctx context.Context, url string) (*store.InjuryRecord, bool, error) {
	query := `
		SELECT id, player_id, url, title, published_date, scraped_at,
			injury_type, injury_start, duration, needs_manual_check
		FROM injury_records
		WHERE url = $1
	`

	rec := &store.InjuryRecord{}
	err := r.db.DB().QueryRowContext(ctx, query, url).Scan(
		&rec.ID, &rec.PlayerID, &rec.URL, &rec.Title, &rec.PublishedDate,
		&rec.ScrapedAt, &rec.InjuryType, &rec.InjuryStart, &rec.Duration,
		&rec.NeedsManualCheck)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying injury record: %w", err)
	}
	return rec, true, nil
}

// InjuryRecordUpdate carries the optional fields UpdateInjuryRecord may
// set; nil slots are left untouched.
type InjuryRecordUpdate struct {
	PlayerID         *int64
	Title            *string
	InjuryType       *string
	Duration         *string
	NeedsManualCheck *bool
}

// UpdateInjuryRecord applies a partial update; reports whether the
// record existed.
func (r *InjuryRepository) UpdateInjuryRecord(ctx context.Context, id int64, upd InjuryRecordUpdate) (bool, error) {
	query := `
		UPDATE injury_records SET
			player_id = COALESCE($2, player_id),
			title = COALESCE($3, title),
			injury_type = COALESCE($4, injury_type),
			duration = COALESCE($5, duration),
			needs_manual_check = COALESCE($6, needs_manual_check)
		WHERE id = $1
	`

	res, err := r.db.DB().ExecContext(ctx, query,
		id, upd.PlayerID, upd.Title, upd.InjuryType, upd.Duration, upd.NeedsManualCheck)
	if err != nil {
		return false, fmt.Errorf("updating injury record %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Records returns every injury record, newest first.
func (r *InjuryRepository) Records(ctx context.Context) ([]*store.InjuryRecord, error) {
	query := `
		SELECT id, player_id, url, title, published_date, scraped_at,
			injury_type, injury_start, duration, needs_manual_check
		FROM injury_records
		ORDER BY scraped_at DESC
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying injury records: %w", err)
	}
	defer rows.Close()

	var records []*store.InjuryRecord
	for rows.Next() {
		rec := &store.InjuryRecord{}
		err := rows.Scan(&rec.ID, &rec.PlayerID, &rec.URL, &rec.Title, &rec.PublishedDate,
			&rec.ScrapedAt, &rec.InjuryType, &rec.InjuryStart, &rec.Duration,
			&rec.NeedsManualCheck)
		if err != nil {
			return nil, fmt.Errorf("scanning injury record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
