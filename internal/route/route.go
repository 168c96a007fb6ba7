// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

// Package route builds short walkable venue routes with a bounded greedy
// heuristic. A full TSP-style optimum is unnecessary for three stops; the
// distance band keeps stops walkable apart without being redundantly close.
package route

import (
	"math"
	"sort"

	"github.com/beatovk/entertainment-planner/internal/models"
)

// Default inter-stop distance band in meters.
const (
	DefaultMinDistanceM = 300
	DefaultMaxDistanceM = 1200
)

// earthRadiusM is the Earth radius used by the haversine formula.
const earthRadiusM = 6371000.0

// Haversine returns the great-circle distance between two WGS84 points
// in meters.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lng1Rad := lng1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lng2Rad := lng2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLng := lng2Rad - lng1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// Build selects three distinct stops from candidates forming a walkable
// route starting near the origin. Returns nil when fewer than three
// candidates are available.
//
// Selection is greedy and deterministic: candidates are sorted ascending by
// origin distance, the closest seeds the route, and each following stop is
// the nearest unused candidate whose distance from the current stop lies in
// [minDist, maxDist]. When no candidate satisfies the band, the first
// unused candidate in origin-distance order is taken instead, so a route is
// always produced from three or more candidates even when the band is
// infeasible.
func Build(candidates []models.Candidate, originLat, originLng, minDist, maxDist float64) *models.Route {
	if len(candidates) < 3 {
		return nil
	}

	// Work on a copy; callers rely on their slice order.
	pool := make([]models.Candidate, len(candidates))
	copy(pool, candidates)
	for i := range pool {
		pool[i].DistanceFromOrigin = Haversine(originLat, originLng, pool[i].Lat, pool[i].Lng)
	}
	sortByOriginDistance(pool)

	used := map[int64]bool{pool[0].ID: true}
	stops := []models.Candidate{pool[0]}
	curLat, curLng := pool[0].Lat, pool[0].Lng

	for len(stops) < 3 {
		bestIdx := -1
		bestDist := math.Inf(1)
		for i := range pool {
			if used[pool[i].ID] {
				continue
			}
			d := Haversine(curLat, curLng, pool[i].Lat, pool[i].Lng)
			if d >= minDist && d <= maxDist && d < bestDist {
				bestIdx = i
				bestDist = d
			}
		}
		if bestIdx < 0 {
			// Band infeasible: fall back to the closest-to-origin unused
			// candidate to guarantee progress.
			for i := range pool {
				if !used[pool[i].ID] {
					bestIdx = i
					break
				}
			}
		}
		used[pool[bestIdx].ID] = true
		stops = append(stops, pool[bestIdx])
		curLat, curLng = pool[bestIdx].Lat, pool[bestIdx].Lng
	}

	var total float64
	steps := make([]int64, len(stops))
	steps[0] = stops[0].ID
	for i := 1; i < len(stops); i++ {
		steps[i] = stops[i].ID
		total += Haversine(stops[i-1].Lat, stops[i-1].Lng, stops[i].Lat, stops[i].Lng)
	}

	return &models.Route{
		Steps:          steps,
		TotalDistanceM: int(math.Round(total)),
		FitScore:       0.0,
	}
}

// sortByOriginDistance sorts ascending by DistanceFromOrigin, ties by ID so
// the ordering is deterministic for equidistant candidates.
func sortByOriginDistance(pool []models.Candidate) {
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].DistanceFromOrigin != pool[j].DistanceFromOrigin {
			return pool[i].DistanceFromOrigin < pool[j].DistanceFromOrigin
		}
		return pool[i].ID < pool[j].ID
	})
}
