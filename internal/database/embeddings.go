// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package database

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

// SaveEmbedding upserts the stored vector for a document. Vectors are
// encoded as little-endian float32s; the dim column records the width so
// readers can validate blobs.
func (db *DB) SaveEmbedding(id int64, vec []float32) error {
	blob := encodeVector(vec)
	_, err := db.conn.ExecContext(context.Background(),
		`INSERT OR REPLACE INTO embeddings (doc_id, vector, dim) VALUES (?, ?, ?)`,
		id, blob, len(vec))
	if err != nil {
		return fmt.Errorf("save embedding %d: %w", id, err)
	}
	return nil
}

// AllEmbeddings returns every stored vector. Blobs whose length disagrees
// with their recorded dimension are skipped.
func (db *DB) AllEmbeddings() ([]int64, [][]float32, error) {
	rows, err := db.conn.QueryContext(context.Background(),
		`SELECT doc_id, vector, dim FROM embeddings ORDER BY doc_id`)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch embeddings: %w", err)
	}
	defer closeWithLog(rows, "embedding rows")

	var ids []int64
	var vecs [][]float32
	for rows.Next() {
		var id int64
		var blob []byte
		var dim int
		if err := rows.Scan(&id, &blob, &dim); err != nil {
			return nil, nil, fmt.Errorf("scan embedding row: %w", err)
		}
		if len(blob) != dim*4 {
			continue
		}
		ids = append(ids, id)
		vecs = append(vecs, decodeVector(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate embedding rows: %w", err)
	}
	return ids, vecs, nil
}

// CountEmbeddings returns the number of stored vectors.
func (db *DB) CountEmbeddings(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return count, nil
}

func encodeVector(vec []float32) []byte {
	blob := make([]byte, 4*len(vec))
	for i, x := range vec {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(x))
	}
	return blob
}

func decodeVector(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}
