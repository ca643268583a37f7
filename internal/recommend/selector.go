// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cicerone/internal/catalog"
	"github.com/tomtom215/cicerone/internal/geo"
	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/metrics"
	"github.com/tomtom215/cicerone/internal/session"
	"github.com/tomtom215/cicerone/internal/usercontext"
)

// Deps are the collaborators of a Selector. Build and Policy are optional.
type Deps struct {
	Resolver *geo.Resolver
	Catalog  CatalogSource
	Build    IndexBuilder
	Ontology usercontext.Ontology
	Policy   TypePolicy
}

// Selector picks one venue per user. It is safe for concurrent use as long
// as each user's Preferences are only passed in from that user's turn.
type Selector struct {
	cfg      *Config
	resolver *geo.Resolver
	ontology usercontext.Ontology
	policy   TypePolicy
	indexes  *indexCache
}

// NewSelector creates a selector. A nil cfg uses DefaultConfig.
func NewSelector(cfg *Config, deps Deps) (*Selector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	switch {
	case deps.Resolver == nil:
		return nil, errors.New("recommend: resolver is required")
	case deps.Catalog == nil:
		return nil, errors.New("recommend: catalog is required")
	case deps.Ontology == nil:
		return nil, errors.New("recommend: ontology is required")
	}
	if deps.Build == nil {
		deps.Build = SearchIndexBuilder
	}
	if deps.Policy == nil {
		deps.Policy = NewConfiguredPolicy(cfg.Seed)
	}

	return &Selector{
		cfg:      cfg,
		resolver: deps.Resolver,
		ontology: deps.Ontology,
		policy:   deps.Policy,
		indexes:  newIndexCache(deps.Catalog, deps.Build),
	}, nil
}

// Recommend runs the selection pipeline for one user and records the
// outcome. A computed pick is cached on p.
func (s *Selector) Recommend(ctx context.Context, userID int64, p *session.Preferences) Outcome {
	out := s.recommend(ctx, userID, p)

	typeLabel := "none"
	if out.Status == StatusOK || out.Status == StatusNoResult {
		typeLabel = out.Type.String()
	}
	metrics.RecordRecommendation(out.Status.String(), typeLabel)

	event := logging.Ctx(ctx).Debug()
	if out.Status == StatusUnavailable {
		event = logging.Ctx(ctx).Error().Err(out.Err)
	}
	event.
		Str("component", "recommend").
		Str("status", out.Status.String()).
		Str("region", out.Region).
		Str("query", out.Query).
		Bool("cached", out.Cached).
		Msg("Recommendation request handled")
	return out
}

func (s *Selector) recommend(ctx context.Context, userID int64, p *session.Preferences) Outcome {
	if !p.IsComplete() {
		return Outcome{Status: StatusIncomplete}
	}

	uc := p.EnsureUserContext(s.ontology, userID)
	if missing := usercontext.Check(uc); missing != usercontext.FieldNone {
		return Outcome{Status: StatusMissingContext, Missing: missing}
	}

	location := *p.Location
	region := s.resolver.Resolve(location)
	out := Outcome{Region: region.Name}

	ix, err := s.indexes.get(ctx, region.Name)
	if err != nil {
		out.Status = StatusUnavailable
		out.Err = err
		return out
	}

	if cached := p.Recommendation; cached != nil {
		v := *cached
		out.Status = StatusOK
		out.Venue = &v
		out.Type = v.RecommendType
		out.Cached = true
		return out
	}

	out.Type = s.policy.Choose(p.Configuration())
	terms := append(p.Survey.Terms(), p.Contexts.SelectedActivities()...)
	out.Query = BuildQuery(out.Type, terms, uc, s.cfg.ContextBoost)
	if out.Query == "" {
		out.Status = StatusNoResult
		return out
	}

	start := time.Now()
	hits, err := ix.Search(out.Query, s.cfg.MaxResults)
	metrics.RecordSearch(time.Since(start))
	if err != nil {
		out.Status = StatusUnavailable
		out.Err = fmt.Errorf("search %s: %w", region.Name, err)
		return out
	}

	venue, ok := s.pick(out.Type, hits, location, uc)
	if !ok {
		out.Status = StatusNoResult
		return out
	}
	venue.RecommendType = out.Type
	cached := venue
	p.Recommendation = &cached

	out.Status = StatusOK
	out.Venue = &venue
	return out
}

// pick keeps the hits near location and returns the best one.
func (s *Selector) pick(t catalog.RecommendType, hits []catalog.Venue, location geo.Point, uc *usercontext.UserContext) (catalog.Venue, bool) {
	nearby := make([]catalog.Venue, 0, len(hits))
	for _, v := range hits {
		if s.resolver.IsNearby(location, v.Point()) {
			nearby = append(nearby, v)
		}
	}
	nearby = catalog.Dedupe(nearby)
	if len(nearby) == 0 {
		return catalog.Venue{}, false
	}

	if t == catalog.ContextAware {
		w := s.cfg.ratingWeight(uc)
		for i := range nearby {
			nearby[i].Score *= 1 + w*nearby[i].RatingAverage/5
		}
	}
	catalog.Sort(nearby)
	return nearby[0], true
}

// BuiltRegions returns the regions whose index has been built.
func (s *Selector) BuiltRegions() []string {
	return s.indexes.regions()
}

// Close releases the built region indexes. A later Recommend rebuilds them.
func (s *Selector) Close() error {
	return s.indexes.close()
}
