// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

// Package recommend composes retrieval, route construction, scoring, and
// the two-tier cache into the recommendation flow:
//
//	cache key -> cache get -> (on miss) retrieve -> build route -> score
//	-> rank alternatives -> cache set -> result
//
// The package depends on narrow interfaces rather than the database package
// directly, so test doubles slot in without a real store.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/beatovk/entertainment-planner/internal/cache"
	"github.com/beatovk/entertainment-planner/internal/metrics"
	"github.com/beatovk/entertainment-planner/internal/models"
	"github.com/beatovk/entertainment-planner/internal/route"
	"github.com/beatovk/entertainment-planner/internal/score"
	"github.com/beatovk/entertainment-planner/internal/search"
)

// ErrNoViableRoute is returned when fewer than three candidates are
// available or the builder cannot produce three distinct stops. Surfaced to
// callers as "not found", never retried.
var ErrNoViableRoute = errors.New("no viable route")

// VenueProvider supplies full venue records for a candidate ID set.
// Implemented by the database layer.
type VenueProvider interface {
	VenuesByIDs(ctx context.Context, ids []int64) ([]models.Venue, error)
}

// Config holds the engine's tuning knobs.
type Config struct {
	// TopK is how many results each index contributes to the candidate pool.
	TopK int

	// MinDistanceM and MaxDistanceM bound the preferred inter-stop
	// distance band.
	MinDistanceM float64
	MaxDistanceM float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TopK:         20,
		MinDistanceM: route.DefaultMinDistanceM,
		MaxDistanceM: route.DefaultMaxDistanceM,
	}
}

// Request describes one recommendation query.
type Request struct {
	City    string
	Day     string
	Vibe    string
	Intents []string
	Lat     float64
	Lng     float64
}

// Response is a recommendation plus its cache provenance.
type Response struct {
	Result      *models.RecommendationResult
	CacheStatus cache.Status
	CacheTier   cache.Tier
}

// Engine is the recommendation orchestrator. It is safe for concurrent use:
// per-request state stays on the stack, and the shared cache and indices
// handle their own synchronization.
type Engine struct {
	cfg     Config
	lexical search.Provider
	vector  search.Provider
	venues  VenueProvider
	cache   *cache.Manager
	logger  zerolog.Logger
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, lexical, vector search.Provider, venues VenueProvider,
	cacheMgr *cache.Manager, logger zerolog.Logger) (*Engine, error) {
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", cfg.TopK)
	}
	if cfg.MaxDistanceM <= cfg.MinDistanceM {
		return nil, fmt.Errorf("max distance (%v) must exceed min distance (%v)",
			cfg.MaxDistanceM, cfg.MinDistanceM)
	}
	return &Engine{
		cfg:     cfg,
		lexical: lexical,
		vector:  vector,
		venues:  venues,
		cache:   cacheMgr,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend serves one recommendation request through the cache. A cached
// result is returned unchanged; on a miss the full compute path runs and
// the result is stored in both cache tiers before returning.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	key := e.cache.Key(req.City, req.Day, req.Vibe, req.Intents, req.Lat, req.Lng)

	if result, status, tier := e.cache.Get(key); status == cache.StatusHit {
		metrics.RecordCacheLookup(string(status), string(tier))
		metrics.RecommendationsTotal.WithLabelValues("cached").Inc()
		return &Response{Result: result, CacheStatus: status, CacheTier: tier}, nil
	}
	metrics.RecordCacheLookup(string(cache.StatusMiss), string(cache.TierNone))

	result, err := e.compute(ctx, req)
	if err != nil {
		if errors.Is(err, ErrNoViableRoute) {
			metrics.RecommendationsTotal.WithLabelValues("no_route").Inc()
		} else {
			metrics.RecommendationsTotal.WithLabelValues("error").Inc()
		}
		// No cache write on the failure path; the cache never holds
		// partial results.
		return nil, err
	}

	e.cache.Set(key, result)
	metrics.RecommendationsTotal.WithLabelValues("computed").Inc()

	return &Response{Result: result, CacheStatus: cache.StatusMiss, CacheTier: cache.TierNone}, nil
}

// compute runs the miss path: retrieval, route construction, scoring, and
// alternative ranking.
func (e *Engine) compute(ctx context.Context, req Request) (*models.RecommendationResult, error) {
	candidates, err := e.retrieve(ctx, req.Vibe, req.Intents)
	if err != nil {
		return nil, err
	}
	metrics.CandidatePoolSize.Observe(float64(len(candidates)))

	rt := route.Build(toCandidates(candidates), req.Lat, req.Lng,
		e.cfg.MinDistanceM, e.cfg.MaxDistanceM)
	if rt == nil {
		e.logger.Debug().Int("candidates", len(candidates)).
			Str("vibe", req.Vibe).Msg("route construction failed")
		return nil, ErrNoViableRoute
	}

	rt.FitScore = score.Fit(rt, candidates, req.Vibe, req.Intents)

	alternatives := map[string][]models.Alternative{}
	if len(candidates) > 3 {
		if alts := score.Alternatives(rt, candidates); len(alts) > 0 {
			alternatives["step2"] = alts
		}
	}

	return &models.RecommendationResult{
		Routes:       []models.Route{*rt},
		Alternatives: alternatives,
	}, nil
}

// retrieve fuses the lexical and embedding top-k result sets into a
// deduplicated candidate pool, then loads the full venue records in one
// batch read. Candidate IDs are sorted before the fetch so the pool order
// is deterministic; callers must not read meaning into it.
func (e *Engine) retrieve(ctx context.Context, vibe string, intents []string) ([]models.Venue, error) {
	terms := append([]string{vibe}, intents...)
	query := strings.Join(terms, " ")

	lexHits, err := e.lexical.Query(query, e.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("lexical retrieval: %w", err)
	}
	vecHits, err := e.vector.Query(query, e.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector retrieval: %w", err)
	}

	seen := make(map[int64]bool, len(lexHits)+len(vecHits))
	ids := make([]int64, 0, len(lexHits)+len(vecHits))
	for _, hit := range lexHits {
		if !seen[hit.ID] {
			seen[hit.ID] = true
			ids = append(ids, hit.ID)
		}
	}
	for _, hit := range vecHits {
		if !seen[hit.ID] {
			seen[hit.ID] = true
			ids = append(ids, hit.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if len(ids) == 0 {
		return nil, nil
	}

	venues, err := e.venues.VenuesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("candidate batch fetch: %w", err)
	}
	return venues, nil
}

// toCandidates wraps venues for the route builder. Distances are filled in
// by the builder itself.
func toCandidates(venues []models.Venue) []models.Candidate {
	candidates := make([]models.Candidate, len(venues))
	for i, v := range venues {
		candidates[i] = models.Candidate{Venue: v}
	}
	return candidates
}
