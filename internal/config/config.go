// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

// Package config loads application configuration with a layered koanf setup:
// struct defaults, then an optional YAML file, then environment variables.
// The resulting Config value is passed explicitly into each component's
// constructor; there is no ambient global settings object.
package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Search   SearchConfig   `koanf:"search"`
	Route    RouteConfig    `koanf:"route"`
	App      AppConfig      `koanf:"app"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds venue store settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file path.
	Path string `koanf:"path"`

	// SeedMockData inserts a small Bangkok venue set when the places table
	// is empty. Intended for local development.
	SeedMockData bool `koanf:"seed_mock_data"`
}

// CacheConfig holds two-tier result cache settings.
type CacheConfig struct {
	// Path is the directory for the persistent (Badger) cache tier.
	Path string `koanf:"path"`

	// TTLDays is the default time-to-live for cache entries, in days.
	TTLDays int `koanf:"ttl_days"`

	// CoordPrecision is the number of decimal places coordinates are
	// bucketed to when building cache keys. 2 decimals (~1.1 km) keeps
	// nearby origins on the same key.
	CoordPrecision int `koanf:"coord_precision"`
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	// TopK is how many results each index contributes to the candidate pool.
	TopK int `koanf:"top_k"`

	// EmbeddingDim is the fixed embedding vector dimension.
	EmbeddingDim int `koanf:"embedding_dim"`
}

// RouteConfig holds route construction settings.
type RouteConfig struct {
	// MinDistanceM and MaxDistanceM bound the preferred inter-stop distance
	// band in meters.
	MinDistanceM float64 `koanf:"min_distance_m"`
	MaxDistanceM float64 `koanf:"max_distance_m"`
}

// AppConfig holds product-level defaults.
type AppConfig struct {
	// City is the city served by this deployment.
	City string `koanf:"city"`

	// DefaultLat and DefaultLng are the fallback origin coordinates
	// (city center) used by cache warming.
	DefaultLat float64 `koanf:"default_lat"`
	DefaultLng float64 `koanf:"default_lng"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8000,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:         "./data/planner.duckdb",
			SeedMockData: true,
		},
		Cache: CacheConfig{
			Path:           "./data/cache",
			TTLDays:        7,
			CoordPrecision: 2,
		},
		Search: SearchConfig{
			TopK:         20,
			EmbeddingDim: 64,
		},
		Route: RouteConfig{
			MinDistanceM: 300,
			MaxDistanceM: 1200,
		},
		App: AppConfig{
			City:       "bangkok",
			DefaultLat: 13.7563,
			DefaultLng: 100.5018,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Cache.Path == "" {
		return fmt.Errorf("cache.path must not be empty")
	}
	if c.Cache.TTLDays <= 0 {
		return fmt.Errorf("cache.ttl_days must be positive, got %d", c.Cache.TTLDays)
	}
	if c.Cache.CoordPrecision < 0 || c.Cache.CoordPrecision > 6 {
		return fmt.Errorf("cache.coord_precision must be in 0-6, got %d", c.Cache.CoordPrecision)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search.top_k must be positive, got %d", c.Search.TopK)
	}
	if c.Search.EmbeddingDim <= 0 {
		return fmt.Errorf("search.embedding_dim must be positive, got %d", c.Search.EmbeddingDim)
	}
	if c.Route.MinDistanceM < 0 {
		return fmt.Errorf("route.min_distance_m must not be negative")
	}
	if c.Route.MaxDistanceM <= c.Route.MinDistanceM {
		return fmt.Errorf("route.max_distance_m (%v) must exceed route.min_distance_m (%v)",
			c.Route.MaxDistanceM, c.Route.MinDistanceM)
	}
	return nil
}
