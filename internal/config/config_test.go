// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Cache.TTLDays != 7 {
		t.Errorf("Cache.TTLDays = %d, want 7", cfg.Cache.TTLDays)
	}
	if cfg.Cache.CoordPrecision != 2 {
		t.Errorf("Cache.CoordPrecision = %d, want 2", cfg.Cache.CoordPrecision)
	}
	if cfg.Search.TopK != 20 {
		t.Errorf("Search.TopK = %d, want 20", cfg.Search.TopK)
	}
	if cfg.Search.EmbeddingDim != 64 {
		t.Errorf("Search.EmbeddingDim = %d, want 64", cfg.Search.EmbeddingDim)
	}
	if cfg.Route.MinDistanceM != 300 || cfg.Route.MaxDistanceM != 1200 {
		t.Errorf("Route band = [%v, %v], want [300, 1200]", cfg.Route.MinDistanceM, cfg.Route.MaxDistanceM)
	}
	if cfg.App.City != "bangkok" {
		t.Errorf("App.City = %q, want bangkok", cfg.App.City)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PLANNER_SERVER_PORT", "9090")
	t.Setenv("PLANNER_CACHE_TTL_DAYS", "14")
	t.Setenv("PLANNER_APP_CITY", "chiangmai")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Cache.TTLDays != 14 {
		t.Errorf("Cache.TTLDays = %d, want 14", cfg.Cache.TTLDays)
	}
	if cfg.App.City != "chiangmai" {
		t.Errorf("App.City = %q, want chiangmai", cfg.App.City)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 8123\nroute:\n  max_distance_m: 1500\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %d, want 8123", cfg.Server.Port)
	}
	if cfg.Route.MaxDistanceM != 1500 {
		t.Errorf("Route.MaxDistanceM = %v, want 1500", cfg.Route.MaxDistanceM)
	}
	// Untouched keys keep their defaults.
	if cfg.Cache.TTLDays != 7 {
		t.Errorf("Cache.TTLDays = %d, want default 7", cfg.Cache.TTLDays)
	}
}

func TestEnvTransform(t *testing.T) {
	cases := map[string]string{
		"PLANNER_SERVER_PORT":          "server.port",
		"PLANNER_CACHE_TTL_DAYS":       "cache.ttl_days",
		"PLANNER_CACHE_COORD_PRECISION": "cache.coord_precision",
		"PLANNER_APP_CITY":             "app.city",
	}
	for in, want := range cases {
		if got := envTransform(in); got != want {
			t.Errorf("envTransform(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	mutations := map[string]func(*Config){
		"zero port":          func(c *Config) { c.Server.Port = 0 },
		"empty db path":      func(c *Config) { c.Database.Path = "" },
		"empty cache path":   func(c *Config) { c.Cache.Path = "" },
		"zero ttl":           func(c *Config) { c.Cache.TTLDays = 0 },
		"precision too fine": func(c *Config) { c.Cache.CoordPrecision = 7 },
		"zero top-k":         func(c *Config) { c.Search.TopK = 0 },
		"zero dim":           func(c *Config) { c.Search.EmbeddingDim = 0 },
		"inverted band":      func(c *Config) { c.Route.MinDistanceM = 1500 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted invalid configuration")
			}
		})
	}

	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("Validate rejected defaults: %v", err)
	}
}
