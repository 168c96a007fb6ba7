// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package cache

import (
	"sync"
	"time"
)

// Entry represents a cached item with expiration.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Memory is the in-process cache tier: a thread-safe map with per-entry
// absolute expiry. Expired entries are functionally absent; removal is lazy
// on read, or via Cleanup.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	stats   Stats
}

// Stats tracks cache performance counters.
type Stats struct {
	mu        sync.Mutex
	Hits      int64
	Misses    int64
	Evictions int64
	TotalKeys int64
}

// NewMemory creates an in-process cache tier with the given default TTL.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]Entry),
		ttl:     ttl,
	}
}

// Get retrieves a value by key. An entry whose expiry has passed counts as
// a miss and is removed.
func (m *Memory) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	entry, exists := m.entries[key]
	m.mu.RUnlock()

	if !exists {
		m.recordMiss()
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		m.recordMiss()
		m.recordEviction()
		return nil, false
	}

	m.recordHit()
	return entry.Data, true
}

// Set stores a value with the default TTL.
func (m *Memory) Set(key string, value interface{}) {
	m.SetWithTTL(key, value, m.ttl)
}

// SetWithTTL stores a value with a custom TTL. An existing entry under the
// same key is overwritten (last write wins).
func (m *Memory) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = Entry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}

	m.stats.mu.Lock()
	m.stats.TotalKeys = int64(len(m.entries))
	m.stats.mu.Unlock()
}

// Delete removes an entry by key. No-op for absent keys.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()

	m.recordEviction()
}

// Clear removes all entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	evictions := int64(len(m.entries))
	m.entries = make(map[string]Entry)
	m.mu.Unlock()

	m.stats.mu.Lock()
	m.stats.Evictions += evictions
	m.stats.TotalKeys = 0
	m.stats.mu.Unlock()
}

// Cleanup removes all entries whose expiry has strictly passed and returns
// the number removed. Safe to run concurrently with live traffic.
func (m *Memory) Cleanup() int {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.entries {
		if now.After(entry.ExpiresAt) {
			delete(m.entries, key)
			removed++
		}
	}

	m.stats.mu.Lock()
	m.stats.Evictions += int64(removed)
	m.stats.TotalKeys = int64(len(m.entries))
	m.stats.mu.Unlock()

	return removed
}

// GetStats returns a snapshot of the cache counters.
func (m *Memory) GetStats() Stats {
	m.stats.mu.Lock()
	defer m.stats.mu.Unlock()

	return Stats{
		Hits:      m.stats.Hits,
		Misses:    m.stats.Misses,
		Evictions: m.stats.Evictions,
		TotalKeys: m.stats.TotalKeys,
	}
}

func (m *Memory) recordHit() {
	m.stats.mu.Lock()
	m.stats.Hits++
	m.stats.mu.Unlock()
}

func (m *Memory) recordMiss() {
	m.stats.mu.Lock()
	m.stats.Misses++
	m.stats.mu.Unlock()
}

func (m *Memory) recordEviction() {
	m.stats.mu.Lock()
	m.stats.Evictions++
	m.stats.mu.Unlock()
}
