// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package cache

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// BuildKey constructs the normalized cache key for a recommendation query:
//
//	rec:<city>:<day>:<vibe>:<sorted intents>:<bucketed lat>:<bucketed lng>
//
// The key is a pure function of its inputs. Intents are lower-cased,
// trimmed, and sorted so permutations of the same list collapse to one key;
// vibe and city are lower-cased; coordinates are bucketed to coordPrecision
// decimal places so nearby origins share an entry. Two decimals (~1.1 km)
// is the canonical precision; finer bucketing defeats the point of
// bucketing by exploding the key space.
func BuildKey(city, day, vibe string, intents []string, lat, lng float64, coordPrecision int) string {
	normalized := make([]string, 0, len(intents))
	for _, intent := range intents {
		intent = strings.ToLower(strings.TrimSpace(intent))
		if intent != "" {
			normalized = append(normalized, intent)
		}
	}
	sort.Strings(normalized)

	var b strings.Builder
	b.WriteString("rec:")
	b.WriteString(strings.ToLower(strings.TrimSpace(city)))
	b.WriteByte(':')
	b.WriteString(day)
	b.WriteByte(':')
	b.WriteString(strings.ToLower(strings.TrimSpace(vibe)))
	b.WriteByte(':')
	b.WriteString(strings.Join(normalized, ","))
	b.WriteByte(':')
	b.WriteString(bucketCoord(lat, coordPrecision))
	b.WriteByte(':')
	b.WriteString(bucketCoord(lng, coordPrecision))
	return b.String()
}

// bucketCoord rounds a coordinate to precision decimal places and renders
// it with a fixed number of digits so equal buckets compare equal as text.
func bucketCoord(v float64, precision int) string {
	scale := math.Pow10(precision)
	return strconv.FormatFloat(math.Round(v*scale)/scale, 'f', precision, 64)
}
