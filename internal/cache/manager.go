// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

// Package cache implements the two-tier recommendation result cache: a
// fast in-process tier in front of a persistent BadgerDB tier. Reads check
// memory first and promote persistent hits into memory; writes go to both
// tiers, with persistent failures logged and swallowed. The tiers share no
// transactional guarantee; the memory tier is a best-effort subset-in-time
// of the persistent tier, and identical keys recomputed concurrently
// resolve last-write-wins.
package cache

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/beatovk/entertainment-planner/internal/models"
)

// Status reports whether a lookup was served from cache.
type Status string

// Lookup statuses.
const (
	StatusHit  Status = "HIT"
	StatusMiss Status = "MISS"
)

// Tier identifies which store served a lookup.
type Tier string

// Cache tiers.
const (
	TierMemory     Tier = "memory"
	TierPersistent Tier = "persistent"
	TierNone       Tier = "none"
)

// Manager coordinates the two cache tiers.
type Manager struct {
	memory     *Memory
	persistent *BadgerStore
	ttlDays    int
	precision  int
	logger     zerolog.Logger
}

// NewManager creates a two-tier cache manager. dir is the persistent tier
// directory, ttlDays the default entry lifetime, coordPrecision the
// coordinate bucketing for key construction.
func NewManager(dir string, ttlDays, coordPrecision int, logger zerolog.Logger) (*Manager, error) {
	persistent, err := NewBadgerStore(dir)
	if err != nil {
		return nil, err
	}
	return &Manager{
		memory:     NewMemory(time.Duration(ttlDays) * 24 * time.Hour),
		persistent: persistent,
		ttlDays:    ttlDays,
		precision:  coordPrecision,
		logger:     logger.With().Str("component", "cache").Logger(),
	}, nil
}

// Key builds the normalized cache key for a query. See BuildKey.
func (m *Manager) Key(city, day, vibe string, intents []string, lat, lng float64) string {
	return BuildKey(city, day, vibe, intents, lat, lng, m.precision)
}

// Get looks up a cached result. The memory tier is consulted first; on a
// persistent-tier hit the entry is promoted into memory so the next
// identical lookup is fast. Corrupt persisted values count as misses.
func (m *Manager) Get(key string) (*models.RecommendationResult, Status, Tier) {
	if val, ok := m.memory.Get(key); ok {
		if result, ok := val.(*models.RecommendationResult); ok {
			return result, StatusHit, TierMemory
		}
		// Foreign value type under our key; drop it and fall through.
		m.memory.Delete(key)
	}

	raw, ok, err := m.persistent.Get(key)
	if err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("persistent cache read failed")
		return nil, StatusMiss, TierNone
	}
	if !ok {
		return nil, StatusMiss, TierNone
	}

	var result models.RecommendationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("cached value undecodable, recomputing")
		if derr := m.persistent.Delete(key); derr != nil {
			m.logger.Warn().Err(derr).Str("key", key).Msg("failed to drop corrupt cache entry")
		}
		return nil, StatusMiss, TierNone
	}

	m.memory.Set(key, &result)
	return &result, StatusHit, TierPersistent
}

// Set stores a result in both tiers with the default TTL. A persistent
// write failure does not fail the set; the memory copy still stands and the
// failure is logged.
func (m *Manager) Set(key string, result *models.RecommendationResult) {
	m.SetWithTTL(key, result, m.ttlDays)
}

// SetWithTTL stores a result in both tiers with a custom TTL in days.
func (m *Manager) SetWithTTL(key string, result *models.RecommendationResult, ttlDays int) {
	m.memory.SetWithTTL(key, result, time.Duration(ttlDays)*24*time.Hour)

	raw, err := json.Marshal(result)
	if err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("failed to encode result for persistent cache")
		return
	}
	expireTS := time.Now().Unix() + int64(ttlDays)*86400
	if err := m.persistent.Set(key, raw, expireTS); err != nil {
		m.logger.Warn().Err(err).Str("key", key).Msg("persistent cache write failed, memory copy stands")
	}
}

// CleanupExpired sweeps expired entries from both tiers and returns the
// number removed from the persistent tier. May run concurrently with live
// traffic; only entries whose expiry has strictly passed are removed.
func (m *Manager) CleanupExpired() int {
	m.memory.Cleanup()
	removed, err := m.persistent.Cleanup()
	if err != nil {
		m.logger.Warn().Err(err).Msg("persistent cache cleanup failed")
		return 0
	}
	return removed
}

// MemoryStats returns in-process tier counters.
func (m *Manager) MemoryStats() Stats {
	return m.memory.GetStats()
}

// Close releases the persistent tier.
func (m *Manager) Close() error {
	return m.persistent.Close()
}
