// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/beatovk/entertainment-planner/internal/logging"
	"github.com/beatovk/entertainment-planner/internal/metrics"
)

type contextKey string

// RequestIDKey holds the per-request UUID in the request context.
const RequestIDKey contextKey = "request_id"

// RequestID assigns each request a UUID, honoring an X-Request-ID header
// set by an upstream proxy, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestLogger logs one structured line per request and feeds the
// Prometheus request counters. It runs after routing so the chi route
// pattern (not the raw path) labels the metrics.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		if endpoint == "" {
			endpoint = r.URL.Path
		}
		duration := time.Since(start)

		metrics.RecordAPIRequest(r.Method, endpoint, ww.Status(), duration)

		logging.Info().
			Str("request_id", GetRequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}
