// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package database

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/beatovk/entertainment-planner/internal/models"
)

// InsertFeedback persists a route verdict and returns the assigned row ID.
func (db *DB) InsertFeedback(ctx context.Context, fb *models.Feedback) (int64, error) {
	routeJSON, err := json.Marshal(fb.Route)
	if err != nil {
		return 0, fmt.Errorf("encode feedback route: %w", err)
	}

	var id int64
	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO feedback (route_json, useful, note) VALUES (?, ?, ?) RETURNING id`,
		string(routeJSON), fb.Useful, fb.Note).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert feedback: %w", err)
	}
	return id, nil
}
