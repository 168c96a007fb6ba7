// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

// Package score computes the composite fit score of a built route and ranks
// alternative mid-route stops by tag similarity.
package score

import (
	"math"
	"sort"
	"strings"

	"github.com/beatovk/entertainment-planner/internal/models"
)

// Composite score weights. They sum to 1.0 so the result stays in [0,1].
const (
	weightMatch     = 0.50
	weightGeo       = 0.25
	weightRating    = 0.15
	weightDiversity = 0.10
)

// vibeBonus is the flat match bonus when a venue's atmosphere equals the
// requested vibe.
const vibeBonus = 0.5

// similarityThreshold is the minimum tag-overlap ratio for an alternative
// suggestion (exclusive).
const similarityThreshold = 0.3

// maxAlternatives caps the ranked alternatives list per route position.
const maxAlternatives = 5

// Fit computes the composite [0,1] quality score for a route:
//
//	0.5*match + 0.25*geo + 0.15*rating + 0.10*diversity
//
// match rewards intent/tag and vibe/atmosphere agreement, geo rewards
// compact routes, rating averages venue ratings, diversity counts distinct
// districts. A route with fewer than three resolvable venues scores 0.0
// (defensive; the route builder's precondition should prevent it).
func Fit(rt *models.Route, candidates []models.Venue, vibe string, intents []string) float64 {
	if rt == nil || len(candidates) == 0 {
		return 0.0
	}

	venues := resolveSteps(rt, candidates)
	if len(venues) < 3 {
		return 0.0
	}

	var matchSum float64
	for _, v := range venues {
		m := intentFraction(v.Tags, intents)
		if vibe != "" && v.Atmosphere() == vibe {
			m += vibeBonus
		}
		// Per-venue cap before averaging.
		matchSum += math.Min(1.0, m)
	}
	match := math.Min(1.0, matchSum/float64(len(venues)))

	geo := 1.0 / (1.0 + float64(rt.TotalDistanceM)/1000.0)

	var ratingSum float64
	districts := make(map[string]struct{})
	for _, v := range venues {
		ratingSum += v.Rating
		districts[v.District] = struct{}{}
	}
	rating := ratingSum / (float64(len(venues)) * 5.0)
	diversity := float64(len(districts)) / float64(len(venues))

	fit := weightMatch*match + weightGeo*geo + weightRating*rating + weightDiversity*diversity
	return round3(fit)
}

// Alternatives ranks unused candidates as swap options for the middle stop.
// A candidate qualifies when its tag overlap with the current middle stop
// exceeds the similarity threshold, where overlap is
// |intersection| / max(|candidate tags|, 1). Results are sorted by
// similarity descending (ties by ID ascending for determinism) and
// truncated to the top five. An empty slice means no viable alternatives.
func Alternatives(rt *models.Route, candidates []models.Venue) []models.Alternative {
	if rt == nil || len(rt.Steps) < 3 {
		return nil
	}

	midID := rt.Steps[1]
	var midTags []string
	for i := range candidates {
		if candidates[i].ID == midID {
			midTags = candidates[i].Tags
			break
		}
	}

	onRoute := make(map[int64]bool, len(rt.Steps))
	for _, id := range rt.Steps {
		onRoute[id] = true
	}

	midSet := tagSet(midTags)
	var alts []models.Alternative
	for i := range candidates {
		c := &candidates[i]
		if onRoute[c.ID] {
			continue
		}
		similarity := overlapRatio(c.Tags, midSet)
		if similarity > similarityThreshold {
			alts = append(alts, models.Alternative{
				ID:         c.ID,
				Name:       c.Name,
				Similarity: round2(similarity),
			})
		}
	}

	sort.Slice(alts, func(i, j int) bool {
		if alts[i].Similarity != alts[j].Similarity {
			return alts[i].Similarity > alts[j].Similarity
		}
		return alts[i].ID < alts[j].ID
	})

	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}
	return alts
}

// resolveSteps maps route step IDs back to venue records, preserving step
// order and dropping unresolvable IDs.
func resolveSteps(rt *models.Route, candidates []models.Venue) []models.Venue {
	byID := make(map[int64]models.Venue, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	venues := make([]models.Venue, 0, len(rt.Steps))
	for _, id := range rt.Steps {
		if v, ok := byID[id]; ok {
			venues = append(venues, v)
		}
	}
	return venues
}

// intentFraction returns the fraction of requested intents present in the
// venue's tags, case-insensitively. No intents means no match signal.
func intentFraction(tags, intents []string) float64 {
	if len(intents) == 0 {
		return 0.0
	}
	set := tagSet(tags)
	matched := 0
	for _, intent := range intents {
		if _, ok := set[strings.ToLower(intent)]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(intents))
}

// overlapRatio returns |tags ∩ other| / max(|tags|, 1).
func overlapRatio(tags []string, other map[string]struct{}) float64 {
	denom := len(tags)
	if denom == 0 {
		denom = 1
	}
	hits := 0
	for _, t := range tags {
		if _, ok := other[strings.ToLower(t)]; ok {
			hits++
		}
	}
	return float64(hits) / float64(denom)
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
