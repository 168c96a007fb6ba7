// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

// Package search provides the two retrieval engines behind candidate
// recommendation: a ranked lexical index (bleve) and a deterministic
// embedding index with cosine-similarity kNN. Both engines implement the
// same Provider interface so test doubles and future engines slot in
// without touching callers.
//
// Lexical and embedding scores are NOT on a comparable scale. Callers use
// them for candidate membership and per-engine ranking only; they must
// never be summed or blended across engines.
package search

// Result is a single scored hit from an index query.
type Result struct {
	// ID is the indexed document (venue) identifier.
	ID int64

	// Score is a positive, descending similarity-like scalar. Its meaning
	// is engine-specific: cosine similarity for the embedding index, a
	// positional 1/(1+rank) transform for the lexical index.
	Score float64
}

// Provider is the common contract for retrieval engines.
type Provider interface {
	// Index adds or replaces a document in the index.
	Index(id int64, text string) error

	// Query returns up to k hits ordered by Score descending.
	// An empty index yields an empty slice, never an error.
	Query(query string, k int) ([]Result, error)
}
