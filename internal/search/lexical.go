// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package search

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
)

// LexicalIndex is a ranked full-text index over concatenated venue name,
// summary, and tag text, backed by an in-memory bleve index. The index is
// rebuilt from the venue store at startup.
type LexicalIndex struct {
	idx bleve.Index
}

// lexicalDoc is the document shape handed to bleve.
type lexicalDoc struct {
	Text string `json:"text"`
}

// NewLexicalIndex creates an empty in-memory lexical index.
func NewLexicalIndex() (*LexicalIndex, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("create lexical index: %w", err)
	}
	return &LexicalIndex{idx: idx}, nil
}

// Index adds or replaces a document.
func (l *LexicalIndex) Index(id int64, text string) error {
	if err := l.idx.Index(strconv.FormatInt(id, 10), lexicalDoc{Text: text}); err != nil {
		return fmt.Errorf("index document %d: %w", id, err)
	}
	return nil
}

// Query returns up to k documents by relevance descending. The bleve BM25
// relevance rank is transformed into a positional 1/(1+rank) score so the
// result shape matches the embedding engine. The two score spaces are still
// not comparable; see the package comment.
func (l *LexicalIndex) Query(query string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, nil
	}

	q := bleve.NewMatchQuery(query)
	q.SetField("text")
	req := bleve.NewSearchRequestOptions(q, k, 0, false)

	res, err := l.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	results := make([]Result, 0, len(res.Hits))
	for rank, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			// Foreign document in the index; skip rather than fail the query.
			continue
		}
		results = append(results, Result{ID: id, Score: 1.0 / float64(1+rank)})
	}
	return results, nil
}

// DocCount returns the number of indexed documents. Used as a liveness
// probe by the health endpoint.
func (l *LexicalIndex) DocCount() (uint64, error) {
	return l.idx.DocCount()
}

// Close releases index resources.
func (l *LexicalIndex) Close() error {
	return l.idx.Close()
}

// Compile-time interface check.
var _ Provider = (*LexicalIndex)(nil)
