// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package session

import (
	"sync/atomic"

	"github.com/tomtom215/cicerone/internal/catalog"
	"github.com/tomtom215/cicerone/internal/geo"
	"github.com/tomtom215/cicerone/internal/survey"
	"github.com/tomtom215/cicerone/internal/usercontext"
)

// Preferences is everything the recommender knows about one user.
//
// Only the user's own mailbox worker touches the fields. The configuration
// value is the exception: administrators broadcast it from other users'
// turns, so it is stored atomically.
type Preferences struct {
	Survey   *survey.Survey
	Contexts *survey.ContextEngine

	// Location is nil until the user shares a position.
	Location *geo.Point

	// UserContext is nil until the first recommendation request or the
	// first explicit context answer.
	UserContext *usercontext.UserContext

	// Recommendation caches the last pick until a reset.
	Recommendation *catalog.Venue

	configuration atomic.Int64
}

// NewPreferences creates empty preferences for the given questionnaires.
func NewPreferences(def survey.Definition, configuration int) *Preferences {
	p := &Preferences{
		Survey:   survey.New(def.Questions),
		Contexts: survey.NewContextEngine(def.Categories),
	}
	p.configuration.Store(int64(configuration))
	return p
}

// IsComplete reports whether a recommendation can be computed: survey done,
// contexts walked and location known.
func (p *Preferences) IsComplete() bool {
	return p.Survey.IsComplete() && p.Contexts.IsComplete() && p.Location != nil
}

// SetLocation stores a new position and drops the cached recommendation,
// which may now be out of range.
func (p *Preferences) SetLocation(pt geo.Point) {
	p.Location = &pt
	p.Recommendation = nil
}

// ResetRecommendation drops the cached recommendation.
func (p *Preferences) ResetRecommendation() {
	p.Recommendation = nil
}

// EnsureUserContext returns the user context, creating it from the
// ontology on first use.
func (p *Preferences) EnsureUserContext(o usercontext.Ontology, userID int64) *usercontext.UserContext {
	if p.UserContext == nil {
		p.UserContext = usercontext.New(o, userID)
	}
	return p.UserContext
}

// Configuration returns the administrative configuration value.
func (p *Preferences) Configuration() int {
	return int(p.configuration.Load())
}

// SetConfiguration updates the administrative configuration value.
func (p *Preferences) SetConfiguration(v int) {
	p.configuration.Store(int64(v))
}
