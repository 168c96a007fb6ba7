// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/beatovk/entertainment-planner/internal/cache"
	"github.com/beatovk/entertainment-planner/internal/config"
	"github.com/beatovk/entertainment-planner/internal/database"
	"github.com/beatovk/entertainment-planner/internal/logging"
	"github.com/beatovk/entertainment-planner/internal/models"
	"github.com/beatovk/entertainment-planner/internal/recommend"
)

// Store is the slice of the database layer the handlers need. Narrowed to
// an interface so handler tests run against an in-memory fake.
type Store interface {
	Ping(ctx context.Context) error
	CountVenues(ctx context.Context) (int, error)
	VenueByID(ctx context.Context, id int64) (*models.Venue, error)
	InsertFeedback(ctx context.Context, fb *models.Feedback) (int64, error)
}

// SearchStatus reports lexical-index health for the health endpoint.
type SearchStatus interface {
	DocCount() (uint64, error)
}

// Handler bundles the recommendation engine, storage, search status, and
// cache behind the HTTP endpoints.
type Handler struct {
	engine   *recommend.Engine
	store    Store
	search   SearchStatus
	cache    *cache.Manager
	cfg      *config.Config
	validate *validator.Validate
}

// NewHandler creates the API handler set.
func NewHandler(engine *recommend.Engine, store Store, search SearchStatus, cacheMgr *cache.Manager, cfg *config.Config) *Handler {
	return &Handler{
		engine:   engine,
		store:    store,
		search:   search,
		cache:    cacheMgr,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// recommendParams is the validated query-parameter set for the
// recommendation endpoint.
type recommendParams struct {
	Vibe string  `validate:"required"`
	Day  string  `validate:"required"`
	Lat  float64 `validate:"latitude"`
	Lng  float64 `validate:"longitude"`
}

// Health handles GET /api/health. Probes the database and the lexical
// index separately and always answers 200; component failures show up as
// "error" status fields and an overall "degraded" status, so monitors see
// which dependency is down rather than a bare 5xx.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	overall := "ok"
	dbStatus := "ok"
	venues := 0
	if err := h.store.Ping(ctx); err != nil {
		logging.Error().Err(err).Msg("health: database unreachable")
		dbStatus = "error"
		overall = "degraded"
	} else if count, err := h.store.CountVenues(ctx); err != nil {
		logging.Error().Err(err).Msg("health: venue count failed")
		dbStatus = "error"
		overall = "degraded"
	} else {
		venues = count
	}

	ftsStatus := "ok"
	var ftsDocs uint64
	if docs, err := h.search.DocCount(); err != nil {
		logging.Error().Err(err).Msg("health: lexical index probe failed")
		ftsStatus = "error"
		overall = "degraded"
	} else {
		ftsDocs = docs
	}

	w.Header().Set("X-Search", "FTS+VEC")
	w.Header().Set("X-Debug", fmt.Sprintf("time_ms=%d", time.Since(start).Milliseconds()))

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":   overall,
			"db":       dbStatus,
			"fts":      ftsStatus,
			"fts_docs": ftsDocs,
			"venues":   venues,
			"cache":    h.cache.MemoryStats(),
		},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Recommend handles GET /api/places/recommend. Query parameters:
//
//	vibe    required, e.g. "classy"
//	intents optional comma-separated list, e.g. "rooftop,jazz"
//	day     optional, defaults to today's date (YYYY-MM-DD)
//	lat,lng optional origin, defaults to the configured city center
//
// The response carries diagnostic headers: X-Search names the retrieval
// engines, X-Cache-Status is HIT or MISS, X-Cache-Store is the serving
// tier ("compute" on a miss), and X-Debug reports wall time.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	params := recommendParams{
		Vibe: strings.TrimSpace(q.Get("vibe")),
		Day:  strings.ToLower(strings.TrimSpace(q.Get("day"))),
		Lat:  h.cfg.App.DefaultLat,
		Lng:  h.cfg.App.DefaultLng,
	}
	if params.Day == "" {
		params.Day = time.Now().Format("2006-01-02")
	}
	if raw := q.Get("lat"); raw != "" {
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid lat parameter", err)
			return
		}
		params.Lat = lat
	}
	if raw := q.Get("lng"); raw != "" {
		lng, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid lng parameter", err)
			return
		}
		params.Lng = lng
	}
	if err := h.validate.Struct(&params); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidationFailed, "Invalid query parameters", err)
		return
	}

	req := recommend.Request{
		City:    h.cfg.App.City,
		Day:     params.Day,
		Vibe:    params.Vibe,
		Intents: splitIntents(q.Get("intents")),
		Lat:     params.Lat,
		Lng:     params.Lng,
	}

	resp, err := h.engine.Recommend(r.Context(), req)
	if err != nil {
		if errors.Is(err, recommend.ErrNoViableRoute) {
			respondError(w, http.StatusNotFound, ErrCodeNoRoute,
				"Not enough venues to build a route for this query", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError,
			"Failed to generate recommendation", err)
		return
	}

	elapsed := time.Since(start)
	w.Header().Set("X-Search", "FTS+VEC")
	w.Header().Set("X-Cache-Status", string(resp.CacheStatus))
	w.Header().Set("X-Cache-Store", cacheStore(resp))
	w.Header().Set("X-Debug", fmt.Sprintf("time_ms=%d", elapsed.Milliseconds()))

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   resp.Result,
		Metadata: Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: elapsed.Milliseconds(),
		},
	})
}

// VenueByID handles GET /api/places/{id}.
func (h *Handler) VenueByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid venue ID", err)
		return
	}

	venue, err := h.store.VenueByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrVenueNotFound) {
			respondError(w, http.StatusNotFound, ErrCodeNotFound, "Venue not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to load venue", err)
		return
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     venue,
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// WarmCache handles GET /api/cache/warm. The combos query parameter uses
// the "vibe:intent1,intent2|vibe2:intent3" format; city, day, and lat/lng
// default to the configured city, today's date, and the city center.
func (h *Handler) WarmCache(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	combos := recommend.ParseCombos(q.Get("combos"))
	if len(combos) == 0 {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest,
			"combos parameter is required, format: vibe:intent1,intent2|vibe2:intent3", nil)
		return
	}

	city := strings.ToLower(strings.TrimSpace(q.Get("city")))
	if city == "" {
		city = h.cfg.App.City
	}
	day := strings.ToLower(strings.TrimSpace(q.Get("day")))
	if day == "" {
		day = time.Now().Format("2006-01-02")
	}
	lat, lng := h.cfg.App.DefaultLat, h.cfg.App.DefaultLng
	if raw := q.Get("lat"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			lat = parsed
		}
	}
	if raw := q.Get("lng"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			lng = parsed
		}
	}

	report := h.engine.Warm(r.Context(), city, day, combos, lat, lng)

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     report,
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Feedback handles POST /api/feedback with a JSON body of the route's
// venue IDs and a usefulness verdict.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var fb models.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", err)
		return
	}
	if err := h.validate.Struct(&fb); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidationFailed,
			"Feedback requires a non-empty route", err)
		return
	}

	id, err := h.store.InsertFeedback(r.Context(), &fb)
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeDatabaseError, "Failed to store feedback", err)
		return
	}

	respondJSON(w, http.StatusCreated, &APIResponse{
		Status:   "success",
		Data:     map[string]int64{"id": id},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// splitIntents parses the comma-separated intents query parameter,
// dropping empty segments.
func splitIntents(raw string) []string {
	if raw == "" {
		return nil
	}
	var intents []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			intents = append(intents, part)
		}
	}
	return intents
}

// cacheStore maps a response's cache tier to the X-Cache-Store header
// value. Misses were computed, not served from a store.
func cacheStore(resp *recommend.Response) string {
	if resp.CacheStatus == cache.StatusHit {
		return string(resp.CacheTier)
	}
	return "compute"
}
