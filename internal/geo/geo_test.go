// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package geo

import (
	"errors"
	"math"
	"testing"
)

var (
	bari   = Region{Name: "Bari", Center: Point{Latitude: 41.1115511, Longitude: 16.7419939}}
	torino = Region{Name: "Torino", Center: Point{Latitude: 45.0702388, Longitude: 7.6000489}}
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		lat1      float64
		lat2      float64
		lon1      float64
		lon2      float64
		el1, el2  float64
		expected  float64
		tolerance float64
	}{
		{"same point", 41.1, 41.1, 16.7, 16.7, 0, 0, 0, 1e-9},
		{"one degree of latitude", 0, 1, 0, 0, 0, 0, 111.19, 0.01},
		{"bari to torino", 41.1115511, 45.0702388, 16.7419939, 7.6000489, 0, 0, 862.27, 0.5},
		{"altitude only", 10, 10, 10, 10, 0, 3000, 3, 1e-9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Distance(tt.lat1, tt.lat2, tt.lon1, tt.lon2, tt.el1, tt.el2)
			if math.Abs(got-tt.expected) > tt.tolerance {
				t.Errorf("Distance() = %.4f, want %.4f ± %.4f", got, tt.expected, tt.tolerance)
			}
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	t.Parallel()

	ab := Distance(41.1, 45.0, 16.7, 7.6, 0, 0)
	ba := Distance(45.0, 41.1, 7.6, 16.7, 0, 0)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("expected symmetric distance, got %f and %f", ab, ba)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	r, err := NewResolver([]Region{bari, torino}, 0)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	tests := []struct {
		name     string
		point    Point
		expected string
	}{
		{"bari old town", Point{41.1283, 16.8719}, "Bari"},
		{"lecce", Point{40.3515, 18.1750}, "Bari"},
		{"turin center", Point{45.0703, 7.6869}, "Torino"},
		{"milan", Point{45.4642, 9.1900}, "Torino"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			first := r.Resolve(tt.point)
			second := r.Resolve(tt.point)
			if first.Name != tt.expected {
				t.Errorf("Resolve() = %s, want %s", first.Name, tt.expected)
			}
			if first != second {
				t.Errorf("Resolve() not deterministic: %v then %v", first, second)
			}
		})
	}
}

func TestResolveTieGoesToFirstRegion(t *testing.T) {
	t.Parallel()

	east := Region{Name: "East", Center: Point{Latitude: 0, Longitude: 1}}
	west := Region{Name: "West", Center: Point{Latitude: 0, Longitude: -1}}

	r, err := NewResolver([]Region{east, west}, 0)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	if got := r.Resolve(Point{}); got.Name != "East" {
		t.Errorf("expected tie to resolve to East, got %s", got.Name)
	}

	r, err = NewResolver([]Region{west, east}, 0)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	if got := r.Resolve(Point{}); got.Name != "West" {
		t.Errorf("expected tie to resolve to West, got %s", got.Name)
	}
}

func TestIsNearby(t *testing.T) {
	t.Parallel()

	r, err := NewResolver([]Region{bari}, 3)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	origin := Point{Latitude: 41.1115511, Longitude: 16.7419939}
	// ~2.2 km north
	if !r.IsNearby(origin, Point{Latitude: 41.1315, Longitude: 16.7419939}) {
		t.Error("expected point 2.2km away to be nearby")
	}
	// ~4.4 km north
	if r.IsNearby(origin, Point{Latitude: 41.1515, Longitude: 16.7419939}) {
		t.Error("expected point 4.4km away to be outside threshold")
	}
	if r.ThresholdKm() != 3 {
		t.Errorf("ThresholdKm() = %f, want 3", r.ThresholdKm())
	}
}

func TestNewResolverValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		regions []Region
		wantErr bool
	}{
		{"empty", nil, true},
		{"unnamed", []Region{{Center: Point{1, 1}}}, true},
		{"duplicate", []Region{bari, bari}, true},
		{"out of range", []Region{{Name: "X", Center: Point{Latitude: 95}}}, true},
		{"valid", []Region{bari, torino}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewResolver(tt.regions, 0)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewResolver() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := NewResolver(nil, 0); !errors.Is(err, ErrNoRegions) {
		t.Errorf("expected ErrNoRegions, got %v", err)
	}
}
