// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

// Package database provides the DuckDB-backed venue store: the places
// table, the embedding vector table used by kNN retrieval, and the feedback
// table. The recommendation core only reads venues; writes come from the
// ingestion pipeline and the seeding helper.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/beatovk/entertainment-planner/internal/config"
	"github.com/beatovk/entertainment-planner/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens the venue store and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	// Ensure the parent directory exists for the database file.
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	conn, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}

	ctx := context.Background()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.initSchema(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates the places, embeddings, and feedback tables.
func (db *DB) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_place_id START 1`,
		`CREATE TABLE IF NOT EXISTS places (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_place_id'),
			name TEXT NOT NULL,
			summary TEXT,
			lat DOUBLE,
			lng DOUBLE,
			district TEXT,
			city TEXT,
			rating DOUBLE,
			tags_json TEXT,
			vibe_json TEXT,
			quality_score DOUBLE,
			updated_at TIMESTAMP DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			doc_id BIGINT PRIMARY KEY,
			vector BLOB,
			dim INTEGER
		)`,
		`CREATE SEQUENCE IF NOT EXISTS seq_feedback_id START 1`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_feedback_id'),
			created_at TIMESTAMP DEFAULT current_timestamp,
			route_json TEXT NOT NULL,
			useful BOOLEAN NOT NULL,
			note TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Ping verifies the database connection.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// closeQuietly closes a resource and explicitly ignores any error. Used on
// error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// closeWithLog closes a resource and logs any error. Used for cleanup where
// errors should be acknowledged but not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}
