// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package recommend

import (
	"context"
	"errors"

	"github.com/tomtom215/cicerone/internal/catalog"
	"github.com/tomtom215/cicerone/internal/search"
	"github.com/tomtom215/cicerone/internal/usercontext"
)

// ErrUnknownRegion is returned when a region has no catalog.
var ErrUnknownRegion = errors.New("recommend: region has no catalog")

// Status is the kind of outcome of a recommendation request.
type Status int

const (
	// StatusOK carries a venue.
	StatusOK Status = iota

	// StatusIncomplete means survey, contexts or location are missing.
	StatusIncomplete

	// StatusMissingContext means a situational fact is unknown; see
	// Outcome.Missing.
	StatusMissingContext

	// StatusNoResult means no venue matched nearby.
	StatusNoResult

	// StatusUnavailable means the index could not be built or searched.
	StatusUnavailable
)

// String returns the metric label for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusIncomplete:
		return "incomplete"
	case StatusMissingContext:
		return "missing_context"
	case StatusNoResult:
		return "no_result"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Outcome is the result of Selector.Recommend.
type Outcome struct {
	Status Status

	// Venue is set for StatusOK.
	Venue *catalog.Venue

	// Missing names the first unknown fact for StatusMissingContext.
	Missing usercontext.Field

	// Region is the resolved region, when resolution happened.
	Region string

	// Type is the selection type used for this outcome.
	Type catalog.RecommendType

	// Cached reports that Venue came from the session without searching.
	Cached bool

	// Query is the query text that was searched, if any.
	Query string

	// Err is the underlying failure for StatusUnavailable.
	Err error
}

// TextIndex answers ranked text queries over one region's venues.
type TextIndex interface {
	Search(query string, limit int) ([]catalog.Venue, error)
}

// IndexBuilder constructs a TextIndex.
type IndexBuilder func(ctx context.Context, venues []catalog.Venue) (TextIndex, error)

// SearchIndexBuilder builds the in-memory bleve index over venue tags.
func SearchIndexBuilder(_ context.Context, venues []catalog.Venue) (TextIndex, error) {
	ix, err := search.Build(venues)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// CatalogSource supplies the venues of a region.
type CatalogSource interface {
	Venues(region string) ([]catalog.Venue, bool)
}
