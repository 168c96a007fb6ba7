// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Per-IP rate limit for the recommendation endpoint. Cache hits are cheap,
// but every miss runs retrieval and scoring.
const (
	recommendRateLimit  = 120
	recommendRateWindow = time.Minute
)

// NewRouter builds the chi router with the full middleware chain and all
// API routes.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Search", "X-Cache-Status", "X-Cache-Store", "X-Debug", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(RequestLogger)
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Route("/places", func(r chi.Router) {
			r.With(httprate.LimitByIP(recommendRateLimit, recommendRateWindow)).
				Get("/recommend", h.Recommend)
			r.Get("/{id}", h.VenueByID)
		})
		r.Get("/cache/warm", h.WarmCache)
		r.Post("/feedback", h.Feedback)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
