// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package catalog holds the per-region venue records the recommender
// searches over, and loads them from CSV at startup.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/cicerone/internal/geo"
)

// RecommendType records which selection strategy produced a venue.
type RecommendType int

const (
	// ContentBased picks the most relevant venue for the user's stated preferences.
	ContentBased RecommendType = iota
	// ContextAware additionally weighs company, rest, mood and activity.
	ContextAware
)

// String returns the label shown to users.
func (t RecommendType) String() string {
	switch t {
	case ContentBased:
		return "content-based"
	case ContextAware:
		return "context-aware"
	default:
		return "unknown"
	}
}

// Venue is a point of interest. Everything except Score and RecommendType
// is fixed once the catalog is loaded.
type Venue struct {
	Website       string  `json:"website"`
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	Phone         string  `json:"phone"`
	Tags          string  `json:"tags"`
	Category      string  `json:"category,omitempty"`
	RatingAverage float64 `json:"rating_average"`
	RatingCount   int     `json:"rating_count"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`

	// Score is the relevance assigned by the last search.
	Score float64 `json:"score"`
	// RecommendType is set when the venue is selected for a user.
	RecommendType RecommendType `json:"recommend_type"`
}

// Point returns the venue position.
func (v Venue) Point() geo.Point {
	return geo.Point{Latitude: v.Latitude, Longitude: v.Longitude}
}

// Key identifies a venue by its loaded fields; transient fields are ignored.
func (v Venue) Key() string {
	return fmt.Sprintf("%s\x1f%s\x1f%s\x1f%s\x1f%s\x1f%s\x1f%g\x1f%d\x1f%g\x1f%g",
		v.Website, v.Name, v.Address, v.Phone, v.Tags, v.Category,
		v.RatingAverage, v.RatingCount, v.Latitude, v.Longitude)
}

// Less is the total order used for ranking: higher score first, then
// name, website, address and phone ascending.
func Less(a, b Venue) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Website != b.Website {
		return a.Website < b.Website
	}
	if a.Address != b.Address {
		return a.Address < b.Address
	}
	return a.Phone < b.Phone
}

// Sort orders venues in place by Less.
func Sort(venues []Venue) {
	sort.SliceStable(venues, func(i, j int) bool { return Less(venues[i], venues[j]) })
}

// Dedupe collapses venues with identical Key, keeping the first occurrence.
func Dedupe(venues []Venue) []Venue {
	seen := make(map[string]struct{}, len(venues))
	out := venues[:0:0]
	for _, v := range venues {
		k := v.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

// String renders the recommendation card sent to the user.
func (v Venue) String() string {
	var b strings.Builder
	b.WriteString(v.Name)
	b.WriteString("\n")
	if v.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", v.Address)
	}
	if v.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", v.Phone)
	}
	if v.Website != "" {
		fmt.Fprintf(&b, "Website: %s\n", v.Website)
	}
	if v.RatingCount > 0 {
		fmt.Fprintf(&b, "Rating: %.1f/5 (%d reviews)\n", v.RatingAverage, v.RatingCount)
	}
	fmt.Fprintf(&b, "Recommendation: %s", v.RecommendType)
	return b.String()
}
