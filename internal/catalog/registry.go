// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package catalog

import (
	"context"
	"fmt"
	"sort"
)

// Source is a region name with the CSV file that holds its venues.
type Source struct {
	Region string
	Path   string
}

// Reader loads venue records from one file.
type Reader interface {
	Load(ctx context.Context, path string) ([]Venue, error)
}

// Registry is the read-only set of per-region catalogs. It is populated
// once at startup and never mutated afterwards.
type Registry struct {
	regions map[string][]Venue
}

// NewRegistry builds a registry from already-loaded venues.
func NewRegistry(regions map[string][]Venue) *Registry {
	r := &Registry{regions: make(map[string][]Venue, len(regions))}
	for name, venues := range regions {
		r.regions[name] = append([]Venue(nil), venues...)
	}
	return r
}

// LoadRegistry reads every source. Any failure aborts the whole load.
func LoadRegistry(ctx context.Context, reader Reader, sources []Source) (*Registry, error) {
	regions := make(map[string][]Venue, len(sources))
	for _, src := range sources {
		if _, dup := regions[src.Region]; dup {
			return nil, fmt.Errorf("catalog: region %q listed twice", src.Region)
		}
		venues, err := reader.Load(ctx, src.Path)
		if err != nil {
			return nil, fmt.Errorf("load region %s: %w", src.Region, err)
		}
		regions[src.Region] = venues
	}
	return &Registry{regions: regions}, nil
}

// Venues returns a copy of the region's venues in load order.
func (r *Registry) Venues(region string) ([]Venue, bool) {
	v, ok := r.regions[region]
	if !ok {
		return nil, false
	}
	return append([]Venue(nil), v...), true
}

// Regions returns the loaded region names, sorted.
func (r *Registry) Regions() []string {
	names := make([]string, 0, len(r.regions))
	for name := range r.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of venues loaded for region.
func (r *Registry) Size(region string) int {
	return len(r.regions[region])
}
