// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

// Command server runs the recommendation HTTP API: it opens the venue
// store, builds the lexical and embedding indices, wires the two-tier
// cache, and serves until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/beatovk/entertainment-planner/internal/api"
	"github.com/beatovk/entertainment-planner/internal/cache"
	"github.com/beatovk/entertainment-planner/internal/config"
	"github.com/beatovk/entertainment-planner/internal/database"
	"github.com/beatovk/entertainment-planner/internal/logging"
	"github.com/beatovk/entertainment-planner/internal/metrics"
	"github.com/beatovk/entertainment-planner/internal/recommend"
	"github.com/beatovk/entertainment-planner/internal/search"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Timestamp: true,
	})
	logger := logging.Logger()
	logger.Info().Str("city", cfg.App.City).Msg("Starting entertainment planner")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open venue store: %w", err)
	}
	defer closeQuietly(db, "database")

	if cfg.Database.SeedMockData {
		if err := db.SeedMockData(ctx); err != nil {
			return fmt.Errorf("seed mock data: %w", err)
		}
	}

	lexical, vector, err := buildIndices(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("build search indices: %w", err)
	}
	defer closeQuietly(lexical, "lexical index")

	cacheMgr, err := cache.NewManager(cfg.Cache.Path, cfg.Cache.TTLDays, cfg.Cache.CoordPrecision, logger)
	if err != nil {
		return fmt.Errorf("open result cache: %w", err)
	}
	defer closeQuietly(cacheMgr, "cache")

	engine, err := recommend.NewEngine(recommend.Config{
		TopK:         cfg.Search.TopK,
		MinDistanceM: cfg.Route.MinDistanceM,
		MaxDistanceM: cfg.Route.MaxDistanceM,
	}, lexical, vector, db, cacheMgr, logger)
	if err != nil {
		return fmt.Errorf("create recommendation engine: %w", err)
	}

	go runCacheSweeper(ctx, cacheMgr, logger)

	handler := api.NewHandler(engine, db, lexical, cacheMgr, cfg)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	return nil
}

// buildIndices loads every venue and indexes it into both search engines.
// The bleve index is in-memory and rebuilt on every boot; embeddings are
// persisted in the venue store and recomputed only when absent.
func buildIndices(ctx context.Context, db *database.DB, cfg *config.Config) (*search.LexicalIndex, *search.EmbeddingIndex, error) {
	venues, err := db.AllVenues(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load venues: %w", err)
	}

	lexical, err := search.NewLexicalIndex()
	if err != nil {
		return nil, nil, fmt.Errorf("create lexical index: %w", err)
	}
	for i := range venues {
		if err := lexical.Index(venues[i].ID, venues[i].SearchText()); err != nil {
			closeQuietly(lexical, "lexical index")
			return nil, nil, fmt.Errorf("index venue %d: %w", venues[i].ID, err)
		}
	}

	vector := search.NewEmbeddingIndex(db, cfg.Search.EmbeddingDim)
	embedded, err := db.CountEmbeddings(ctx)
	if err != nil {
		closeQuietly(lexical, "lexical index")
		return nil, nil, fmt.Errorf("count embeddings: %w", err)
	}
	if embedded < len(venues) {
		for i := range venues {
			if err := vector.Index(venues[i].ID, venues[i].SearchText()); err != nil {
				closeQuietly(lexical, "lexical index")
				return nil, nil, fmt.Errorf("embed venue %d: %w", venues[i].ID, err)
			}
		}
	}

	logging.Info().Int("venues", len(venues)).Msg("Search indices ready")
	return lexical, vector, nil
}

// runCacheSweeper periodically removes expired cache entries from both
// tiers until ctx is canceled.
func runCacheSweeper(ctx context.Context, cacheMgr *cache.Manager, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := cacheMgr.CleanupExpired()
			if removed > 0 {
				metrics.CacheEntriesCleaned.Add(float64(removed))
				logger.Debug().Int("removed", removed).Msg("Swept expired cache entries")
			}
		}
	}
}

type closer interface {
	Close() error
}

func closeQuietly(c closer, resource string) {
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Str("resource", resource).Msg("Close failed")
	}
}
