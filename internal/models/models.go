// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

// Package models defines the shared data types exchanged between the venue
// store, the recommendation engine, the cache layers, and the HTTP API.
package models

import (
	"strings"
	"time"
)

// Venue is a single place record from the venue store. The recommendation
// core treats venues as read-only; the ingestion pipeline owns writes.
type Venue struct {
	// ID is the stable unique venue identifier.
	ID int64 `json:"id"`

	// Name is the display name of the venue.
	Name string `json:"name"`

	// Summary is a short (~160 char) description used for search indexing.
	Summary string `json:"summary"`

	// Lat and Lng are WGS84 coordinates in degrees.
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	// District is the neighbourhood the venue belongs to.
	District string `json:"district"`

	// City is the city the venue belongs to.
	City string `json:"city"`

	// Rating is the aggregate user rating (0-5).
	Rating float64 `json:"rating"`

	// Tags is the structured tag set ("rooftop", "cocktails", ...).
	Tags []string `json:"tags"`

	// Vibe holds structured vibe attributes, e.g. {"atmosphere": "classy"}.
	Vibe map[string]string `json:"vibe"`

	// QualityScore is a data-quality metric (0-1) from the enrichment step.
	QualityScore float64 `json:"quality_score"`
}

// Atmosphere returns the venue's vibe atmosphere attribute, or "" if unset.
func (v *Venue) Atmosphere() string {
	if v.Vibe == nil {
		return ""
	}
	return v.Vibe["atmosphere"]
}

// SearchText returns the text both search indices are built from: name,
// summary, tags, and the atmosphere attribute joined with spaces.
func (v *Venue) SearchText() string {
	parts := make([]string, 0, len(v.Tags)+3)
	parts = append(parts, v.Name, v.Summary)
	parts = append(parts, v.Tags...)
	if atmosphere := v.Atmosphere(); atmosphere != "" {
		parts = append(parts, atmosphere)
	}
	return strings.Join(parts, " ")
}

// Candidate is a venue augmented with its distance from the request origin.
// Candidates exist only for the duration of one retrieval/route-build cycle
// and are never persisted.
type Candidate struct {
	Venue

	// DistanceFromOrigin is the haversine distance in meters from the
	// request's starting coordinates.
	DistanceFromOrigin float64 `json:"-"`
}

// Route is an ordered sequence of exactly three distinct venue stops.
type Route struct {
	// Steps holds the venue IDs in visiting order.
	Steps []int64 `json:"steps"`

	// TotalDistanceM is the sum of consecutive haversine distances between
	// the stops, rounded to the nearest meter.
	TotalDistanceM int `json:"total_distance_m"`

	// FitScore is the composite route quality score in [0,1].
	FitScore float64 `json:"fit_score"`
}

// Alternative is a swap suggestion for a route position, ranked by tag
// overlap with the stop it would replace.
type Alternative struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// RecommendationResult is the unit stored in and served from the cache.
type RecommendationResult struct {
	Routes []Route `json:"routes"`

	// Alternatives maps a route position ("step2") to ranked swap options.
	// An empty object, not null, when no viable alternatives exist.
	Alternatives map[string][]Alternative `json:"alternatives"`
}

// Feedback is a user's verdict on a served route.
type Feedback struct {
	Route  []int64 `json:"route" validate:"required,min=1"`
	Useful bool    `json:"useful"`
	Note   string  `json:"note,omitempty"`
}

// StoredFeedback is a persisted feedback row.
type StoredFeedback struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Route     []int64   `json:"route"`
	Useful    bool      `json:"useful"`
	Note      string    `json:"note,omitempty"`
}
