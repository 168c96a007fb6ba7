// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package recommend

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/beatovk/entertainment-planner/internal/cache"
)

// Combo is one (vibe, intents) combination to pre-compute.
type Combo struct {
	Vibe    string
	Intents []string
}

// WarmReport summarizes a cache-warming run.
type WarmReport struct {
	Warmed          int      `json:"warmed"`
	Keys            []string `json:"keys"`
	City            string   `json:"city"`
	Day             string   `json:"day"`
	CombosProcessed int      `json:"combos_processed"`
}

// ParseCombos parses the "vibe:i1,i2|vibe2:i3" warm-query format.
// Malformed segments are skipped.
func ParseCombos(raw string) []Combo {
	var combos []Combo
	for _, segment := range strings.Split(raw, "|") {
		vibePart, intentsPart, ok := strings.Cut(segment, ":")
		if !ok {
			continue
		}
		vibe := strings.TrimSpace(vibePart)
		if vibe == "" {
			continue
		}
		var intents []string
		for _, intent := range strings.Split(intentsPart, ",") {
			if intent = strings.TrimSpace(intent); intent != "" {
				intents = append(intents, intent)
			}
		}
		combos = append(combos, Combo{Vibe: vibe, Intents: intents})
	}
	return combos
}

// Warm pre-populates the cache by running the miss path for each combo
// from the given origin. Combos that are already cached are skipped, and
// combos that fail (no viable route, storage errors) are logged and
// skipped so one bad combination never aborts the batch.
func (e *Engine) Warm(ctx context.Context, city, day string, combos []Combo, lat, lng float64) *WarmReport {
	report := &WarmReport{
		Keys:            []string{},
		City:            city,
		Day:             day,
		CombosProcessed: len(combos),
	}

	for _, combo := range combos {
		key := e.cache.Key(city, day, combo.Vibe, combo.Intents, lat, lng)
		if _, status, _ := e.cache.Get(key); status == cache.StatusHit {
			continue
		}

		req := Request{
			City: city, Day: day,
			Vibe: combo.Vibe, Intents: combo.Intents,
			Lat: lat, Lng: lng,
		}
		result, err := e.compute(ctx, req)
		if err != nil {
			level := zerolog.WarnLevel
			if errors.Is(err, ErrNoViableRoute) {
				level = zerolog.DebugLevel
			}
			e.logger.WithLevel(level).Err(err).Str("vibe", combo.Vibe).
				Strs("intents", combo.Intents).Msg("skipping combo during cache warm")
			continue
		}

		e.cache.Set(key, result)
		report.Warmed++
		report.Keys = append(report.Keys, key)
	}

	return report
}
