// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package database

import (
	"context"
	"fmt"

	"github.com/beatovk/entertainment-planner/internal/logging"
	"github.com/beatovk/entertainment-planner/internal/models"
)

// SeedMockData inserts a small Bangkok venue set when the places table is
// empty. Intended for local development and first-run demos; the ingestion
// pipeline owns real data.
func (db *DB) SeedMockData(ctx context.Context) error {
	count, err := db.CountVenues(ctx)
	if err != nil {
		return fmt.Errorf("check venue count before seeding: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range mockVenues {
		if _, err := db.InsertVenue(ctx, &mockVenues[i]); err != nil {
			return fmt.Errorf("seed venue %q: %w", mockVenues[i].Name, err)
		}
	}

	logging.Info().Int("venues", len(mockVenues)).Msg("Seeded mock venue data")
	return nil
}

// mockVenues is a walkable cluster around the Bangkok old town, spaced so
// the default [300m, 1200m] route band is satisfiable.
var mockVenues = []models.Venue{
	{
		Name: "Sky Garden Rooftop", Summary: "Open-air rooftop bar with skyline views and signature cocktails",
		Lat: 13.7563, Lng: 100.5018, District: "Phra Nakhon", City: "bangkok", Rating: 4.6,
		Tags: []string{"rooftop", "cocktails", "views"}, Vibe: map[string]string{"atmosphere": "classy"},
		QualityScore: 0.92,
	},
	{
		Name: "Baan Tom Yum", Summary: "Family-run kitchen famous for fiery tom-yum and river prawns",
		Lat: 13.7598, Lng: 100.5051, District: "Phra Nakhon", City: "bangkok", Rating: 4.4,
		Tags: []string{"tom-yum", "thai", "seafood"}, Vibe: map[string]string{"atmosphere": "lazy"},
		QualityScore: 0.88,
	},
	{
		Name: "Riverside Jazz Cellar", Summary: "Dim basement club with nightly live jazz and natural wine",
		Lat: 13.7531, Lng: 100.4972, District: "Phra Borom", City: "bangkok", Rating: 4.7,
		Tags: []string{"jazz", "live-music", "wine"}, Vibe: map[string]string{"atmosphere": "classy"},
		QualityScore: 0.95,
	},
	{
		Name: "Talat Noi Street Eats", Summary: "Lane of hawker stalls, grilled skewers and old-town murals",
		Lat: 13.7625, Lng: 100.5089, District: "Samphanthawong", City: "bangkok", Rating: 4.2,
		Tags: []string{"street-food", "thai", "murals"}, Vibe: map[string]string{"atmosphere": "energetic"},
		QualityScore: 0.81,
	},
	{
		Name: "Lumpini Art House", Summary: "Independent gallery with rotating Thai contemporary shows",
		Lat: 13.7489, Lng: 100.5041, District: "Pathum Wan", City: "bangkok", Rating: 4.3,
		Tags: []string{"gallery", "art", "quiet"}, Vibe: map[string]string{"atmosphere": "lazy"},
		QualityScore: 0.86,
	},
	{
		Name: "Chao Phraya Spa", Summary: "Traditional Thai massage house overlooking the river",
		Lat: 13.7549, Lng: 100.4938, District: "Phra Borom", City: "bangkok", Rating: 4.8,
		Tags: []string{"spa", "massage", "riverside"}, Vibe: map[string]string{"atmosphere": "lazy"},
		QualityScore: 0.93,
	},
	{
		Name: "Neon Night Market", Summary: "Late-night market of vintage stalls, craft beer and food trucks",
		Lat: 13.7642, Lng: 100.5002, District: "Dusit", City: "bangkok", Rating: 4.1,
		Tags: []string{"market", "craft-beer", "street-food"}, Vibe: map[string]string{"atmosphere": "energetic"},
		QualityScore: 0.78,
	},
	{
		Name: "The Reading Room", Summary: "Specialty coffee bar with a quiet mezzanine library",
		Lat: 13.7516, Lng: 100.5065, District: "Pathum Wan", City: "bangkok", Rating: 4.5,
		Tags: []string{"coffee", "books", "quiet"}, Vibe: map[string]string{"atmosphere": "lazy"},
		QualityScore: 0.9,
	},
	{
		Name: "Wang Lang Cooking Studio", Summary: "Hands-on Thai cooking classes ending with a shared dinner",
		Lat: 13.7577, Lng: 100.4895, District: "Bangkok Noi", City: "bangkok", Rating: 4.6,
		Tags: []string{"cooking-class", "thai", "dinner"}, Vibe: map[string]string{"atmosphere": "energetic"},
		QualityScore: 0.89,
	},
	{
		Name: "Moonlit Terrace", Summary: "Candlelit terrace restaurant with modern Isan tasting menus",
		Lat: 13.7604, Lng: 100.4969, District: "Dusit", City: "bangkok", Rating: 4.7,
		Tags: []string{"fine-dining", "terrace", "cocktails"}, Vibe: map[string]string{"atmosphere": "classy"},
		QualityScore: 0.94,
	},
}
