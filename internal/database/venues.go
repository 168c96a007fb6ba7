// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/beatovk/entertainment-planner/internal/logging"
	"github.com/beatovk/entertainment-planner/internal/models"
)

// ErrVenueNotFound is returned when a venue ID does not exist.
var ErrVenueNotFound = errors.New("venue not found")

const venueColumns = `id, name, summary, lat, lng, district, city, rating,
	tags_json, vibe_json, quality_score`

// VenueByID fetches a single venue.
func (db *DB) VenueByID(ctx context.Context, id int64) (*models.Venue, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+venueColumns+` FROM places WHERE id = ?`, id)

	venue, err := scanVenue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch venue %d: %w", id, err)
	}
	return venue, nil
}

// VenuesByIDs fetches the venues for an ID set in one batch read. The
// returned order is unspecified; missing IDs are silently absent from the
// result. An empty ID set yields an empty slice.
func (db *DB) VenuesByIDs(ctx context.Context, ids []int64) ([]models.Venue, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+venueColumns+` FROM places WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("batch fetch venues: %w", err)
	}
	defer closeWithLog(rows, "venue rows")

	venues := make([]models.Venue, 0, len(ids))
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue row: %w", err)
		}
		venues = append(venues, *venue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venue rows: %w", err)
	}
	return venues, nil
}

// AllVenues returns every venue, ordered by ID. Used for index bootstrap.
func (db *DB) AllVenues(ctx context.Context) ([]models.Venue, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+venueColumns+` FROM places ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("fetch all venues: %w", err)
	}
	defer closeWithLog(rows, "venue rows")

	var venues []models.Venue
	for rows.Next() {
		venue, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue row: %w", err)
		}
		venues = append(venues, *venue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venue rows: %w", err)
	}
	return venues, nil
}

// CountVenues returns the number of venues in the store.
func (db *DB) CountVenues(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM places`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count venues: %w", err)
	}
	return count, nil
}

// InsertVenue inserts a venue and returns its assigned ID. Absent optional
// fields default to empty/neutral values.
func (db *DB) InsertVenue(ctx context.Context, v *models.Venue) (int64, error) {
	tagsJSON, err := json.Marshal(v.Tags)
	if err != nil {
		return 0, fmt.Errorf("encode tags: %w", err)
	}
	vibeJSON, err := json.Marshal(v.Vibe)
	if err != nil {
		return 0, fmt.Errorf("encode vibe: %w", err)
	}

	var id int64
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO places (name, summary, lat, lng, district, city, rating,
			tags_json, vibe_json, quality_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		v.Name, v.Summary, v.Lat, v.Lng, v.District, v.City, v.Rating,
		string(tagsJSON), string(vibeJSON), v.QualityScore).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert venue: %w", err)
	}
	return id, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanVenue reads one venue row, decoding the JSON tag and vibe columns.
// Undecodable JSON degrades to empty values rather than failing the read.
func scanVenue(row rowScanner) (*models.Venue, error) {
	var v models.Venue
	var summary, district, city, tagsJSON, vibeJSON sql.NullString
	var lat, lng, rating, quality sql.NullFloat64

	err := row.Scan(&v.ID, &v.Name, &summary, &lat, &lng, &district, &city,
		&rating, &tagsJSON, &vibeJSON, &quality)
	if err != nil {
		return nil, err
	}

	v.Summary = summary.String
	v.District = district.String
	v.City = city.String
	v.Lat = lat.Float64
	v.Lng = lng.Float64
	v.Rating = rating.Float64
	v.QualityScore = quality.Float64

	v.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &v.Tags); err != nil {
			logging.Warn().Int64("venue_id", v.ID).Err(err).Msg("undecodable tags_json")
			v.Tags = []string{}
		}
	}
	v.Vibe = map[string]string{}
	if vibeJSON.Valid && vibeJSON.String != "" {
		if err := json.Unmarshal([]byte(vibeJSON.String), &v.Vibe); err != nil {
			logging.Warn().Int64("venue_id", v.ID).Err(err).Msg("undecodable vibe_json")
			v.Vibe = map[string]string{}
		}
	}

	return &v, nil
}
