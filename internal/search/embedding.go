// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package search

import (
	"crypto/md5" //nolint:gosec // stable hash for trigram bucketing, not security
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultEmbeddingDim is the fixed embedding vector width.
const DefaultEmbeddingDim = 64

// VectorStore persists embedding vectors keyed by document ID. Implemented
// by the database package; tests supply an in-memory double.
type VectorStore interface {
	// SaveEmbedding stores (or replaces) the vector for a document.
	SaveEmbedding(id int64, vec []float32) error

	// AllEmbeddings returns every stored vector. Order is unspecified.
	AllEmbeddings() (ids []int64, vecs [][]float32, err error)
}

// EmbeddingIndex derives deterministic, reproducible vectors from text and
// answers cosine-similarity kNN queries over stored vectors.
//
// The encoding is a character-trigram hashing trick: trigrams of the
// lower-cased input are hashed into a fixed-width term-frequency
// accumulator, which is then L2-normalized. Identical text always produces
// an identical vector, so repeated queries always produce identical
// rankings. That determinism is a contract, not an implementation accident.
type EmbeddingIndex struct {
	store VectorStore
	dim   int
}

// NewEmbeddingIndex creates an embedding index over the given vector store.
// A non-positive dim falls back to DefaultEmbeddingDim.
func NewEmbeddingIndex(store VectorStore, dim int) *EmbeddingIndex {
	if dim <= 0 {
		dim = DefaultEmbeddingDim
	}
	return &EmbeddingIndex{store: store, dim: dim}
}

// Dim returns the vector dimension.
func (e *EmbeddingIndex) Dim() int {
	return e.dim
}

// Embed computes the L2-normalized trigram-hash vector for text.
// Empty or too-short text yields the zero vector; similarity against the
// zero vector is 0 by definition.
func (e *EmbeddingIndex) Embed(text string) []float32 {
	vec := make([]float32, e.dim)

	lower := strings.ToLower(text)
	runes := []rune(lower)
	for i := 0; i+3 <= len(runes); i++ {
		trigram := string(runes[i : i+3])
		sum := md5.Sum([]byte(trigram)) //nolint:gosec // bucketing hash
		idx := binary.BigEndian.Uint64(sum[:8]) % uint64(e.dim)
		vec[idx]++
	}

	var norm float64
	for _, x := range vec {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		inv := float32(1.0 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec
}

// Index computes and stores the vector for a document.
func (e *EmbeddingIndex) Index(id int64, text string) error {
	if err := e.store.SaveEmbedding(id, e.Embed(text)); err != nil {
		return fmt.Errorf("save embedding %d: %w", id, err)
	}
	return nil
}

// Query returns up to k documents ordered by cosine similarity to the query
// text, descending. Ties are broken by ID ascending so identical queries
// against identical index state yield identical orderings. An empty index
// returns an empty slice.
func (e *EmbeddingIndex) Query(query string, k int) ([]Result, error) {
	qvec := e.Embed(query)

	ids, vecs, err := e.store.AllEmbeddings()
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}

	results := make([]Result, 0, len(ids))
	for i, id := range ids {
		results = append(results, Result{ID: id, Score: dot(qvec, vecs[i])})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if k >= 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// dot computes the dot product of two vectors. Both sides are already
// L2-normalized, so this equals cosine similarity. Mismatched lengths
// contribute only the overlapping prefix.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Compile-time interface check.
var _ Provider = (*EmbeddingIndex)(nil)
