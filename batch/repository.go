// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"database/sql"
	"fmt"

	"github.com/misekit/placefinder/resolver"
	"github.com/misekit/placefinder/spatial"
)

// ResolutionRepository persists batch results.
type ResolutionRepository interface {
	// CreateSchema creates the resolutions table
	CreateSchema() error

	// SaveAll inserts or replaces records in a single transaction
	SaveAll(records []*Record) error

	// Get returns the record for an input id, or sql.ErrNoRows
	Get(id string) (*Record, error)

	// List returns records ordered by id, optionally filtered by source
	List(source *resolver.Source, limit, offset int) ([]*Record, error)

	// CountBySource groups stored records by the cascade step that produced them
	CountBySource() (map[resolver.Source]int, error)
}

type sqlResolutionRepository struct {
	db *sql.DB
}

// NewResolutionRepository creates a repository over an open DuckDB handle.
func NewResolutionRepository(db *sql.DB) ResolutionRepository {
	return &sqlResolutionRepository{db: db}
}

func (r *sqlResolutionRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS resolutions (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			address VARCHAR NOT NULL,
			place_id VARCHAR,
			lat DOUBLE,
			lng DOUBLE,
			formatted_address VARCHAR,
			source VARCHAR NOT NULL,
			steps INTEGER NOT NULL,
			resolved_at TIMESTAMP NOT NULL,
			h3_res7 BIGINT,
			h3_res8 BIGINT,
			h3_res9 BIGINT
		);
	`)

	return err
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func (r *sqlResolutionRepository) SaveAll(records []*Record) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO resolutions(
			id,
			name,
			address,
			place_id,
			lat,
			lng,
			formatted_address,
			source,
			steps,
			resolved_at,
			h3_res7,
			h3_res8,
			h3_res9
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		var lat, lng sql.NullFloat64
		if rec.Point != nil {
			lat = sql.NullFloat64{Float64: rec.Point.Lat, Valid: true}
			lng = sql.NullFloat64{Float64: rec.Point.Lng, Valid: true}
		}

		_, err = stmt.Exec(
			rec.ID,
			rec.Name,
			rec.Address,
			rec.PlaceID,
			lat,
			lng,
			rec.FormattedAddress,
			string(rec.Source),
			rec.Steps,
			rec.ResolvedAt,
			nullInt(rec.H3Res7),
			nullInt(rec.H3Res8),
			nullInt(rec.H3Res9),
		)
		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return fmt.Errorf("saving %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

const selectRecord = `
	SELECT id, name, address, place_id, lat, lng, formatted_address,
	       source, steps, resolved_at, h3_res7, h3_res8, h3_res9
	FROM resolutions`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	rec := &Record{}

	var (
		placeID, formatted     sql.NullString
		lat, lng               sql.NullFloat64
		source                 string
		h3Res7, h3Res8, h3Res9 sql.NullInt64
	)

	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Address,
		&placeID,
		&lat,
		&lng,
		&formatted,
		&source,
		&rec.Steps,
		&rec.ResolvedAt,
		&h3Res7,
		&h3Res8,
		&h3Res9,
	)
	if err != nil {
		return nil, err
	}

	rec.Source = resolver.Source(source)

	if placeID.Valid {
		rec.PlaceID = &placeID.String
	}

	if formatted.Valid {
		rec.FormattedAddress = &formatted.String
	}

	if lat.Valid && lng.Valid {
		rec.Point = &spatial.Point{Lat: lat.Float64, Lng: lng.Float64}
	}

	rec.H3Res7 = h3Res7.Int64
	rec.H3Res8 = h3Res8.Int64
	rec.H3Res9 = h3Res9.Int64

	return rec, nil
}

func (r *sqlResolutionRepository) Get(id string) (*Record, error) {
	return scanRecord(r.db.QueryRow(selectRecord+` WHERE id = ?`, id))
}

func (r *sqlResolutionRepository) List(source *resolver.Source, limit, offset int) ([]*Record, error) {
	query := selectRecord
	args := []any{}

	if source != nil {
		query += ` WHERE source = ?`

		args = append(args, string(*source))
	}

	query += ` ORDER BY id`

	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`

		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*Record

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *sqlResolutionRepository) CountBySource() (map[resolver.Source]int, error) {
	rows, err := r.db.Query(`SELECT source, COUNT(*) FROM resolutions GROUP BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[resolver.Source]int)

	for rows.Next() {
		var (
			source string
			n      int
		)

		if err := rows.Scan(&source, &n); err != nil {
			return nil, err
		}

		counts[resolver.Source(source)] = n
	}

	return counts, rows.Err()
}
