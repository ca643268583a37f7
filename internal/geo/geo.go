// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package geo resolves a user position to one of the configured catalog
// regions and filters venues by proximity.
//
// All distances are in kilometres.
package geo

import (
	"errors"
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// DefaultNearbyThresholdKm is used when no threshold is configured.
const DefaultNearbyThresholdKm = 3.0

// ErrNoRegions is returned when a Resolver is created without regions.
var ErrNoRegions = errors.New("geo: at least one region is required")

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within WGS84 bounds.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180 &&
		!math.IsNaN(p.Latitude) && !math.IsNaN(p.Longitude)
}

func (p Point) String() string {
	return fmt.Sprintf("%.7f,%.7f", p.Latitude, p.Longitude)
}

// Distance returns the great-circle distance in kilometres between
// (lat1, lon1) and (lat2, lon2). el1 and el2 are elevations in metres;
// their difference is folded in by Pythagoras. Callers without altitude
// data pass 0 for both.
func Distance(lat1, lat2, lon1, lon2, el1, el2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	surface := earthRadiusKm * c

	height := (el1 - el2) / 1000
	return math.Sqrt(surface*surface + height*height)
}

// Between is Distance for two points at the same elevation.
func Between(a, b Point) float64 {
	return Distance(a.Latitude, b.Latitude, a.Longitude, b.Longitude, 0, 0)
}

// Region is a named anchor that partitions the venue catalog.
type Region struct {
	Name   string `json:"name"`
	Center Point  `json:"center"`
}

// Resolver maps positions to regions. It is immutable and safe for
// concurrent use.
type Resolver struct {
	regions     []Region
	thresholdKm float64
}

// NewResolver creates a resolver over regions in priority order. A
// non-positive threshold selects DefaultNearbyThresholdKm.
func NewResolver(regions []Region, thresholdKm float64) (*Resolver, error) {
	if len(regions) == 0 {
		return nil, ErrNoRegions
	}
	seen := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		if r.Name == "" {
			return nil, errors.New("geo: region name must not be empty")
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("geo: duplicate region %q", r.Name)
		}
		if !r.Center.Valid() {
			return nil, fmt.Errorf("geo: region %q has invalid center %s", r.Name, r.Center)
		}
		seen[r.Name] = struct{}{}
	}
	if thresholdKm <= 0 {
		thresholdKm = DefaultNearbyThresholdKm
	}
	return &Resolver{
		regions:     append([]Region(nil), regions...),
		thresholdKm: thresholdKm,
	}, nil
}

// Resolve returns the region nearest to p. A region only displaces the
// current best when it is strictly closer, so ties go to the region listed
// first.
func (r *Resolver) Resolve(p Point) Region {
	best := r.regions[0]
	bestDist := Between(p, best.Center)
	for _, candidate := range r.regions[1:] {
		if d := Between(p, candidate.Center); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// IsNearby reports whether a and b are closer than the nearby threshold.
func (r *Resolver) IsNearby(a, b Point) bool {
	return Between(a, b) < r.thresholdKm
}

// ThresholdKm returns the nearby threshold in kilometres.
func (r *Resolver) ThresholdKm() float64 {
	return r.thresholdKm
}

// Regions returns a copy of the configured regions in priority order.
func (r *Resolver) Regions() []Region {
	return append([]Region(nil), r.regions...)
}
