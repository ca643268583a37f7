// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package recommend

import (
	"fmt"

	"github.com/tomtom215/cicerone/internal/search"
)

// Config contains the selector's tunables.
type Config struct {
	// MaxResults caps the hits considered per search.
	MaxResults int `json:"max_results"`

	// RatingWeight scales the rating bonus of context-aware selection.
	RatingWeight float64 `json:"rating_weight"`

	// BadMoodRatingWeight replaces RatingWeight when the user is in a bad
	// mood, favouring well-rated places.
	BadMoodRatingWeight float64 `json:"bad_mood_rating_weight"`

	// ContextBoost is the boost applied to situational terms.
	ContextBoost float64 `json:"context_boost"`

	// Seed is the random seed for the type policy.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxResults:          search.DefaultMaxResults,
		RatingWeight:        0.2,
		BadMoodRatingWeight: 0.5,
		ContextBoost:        2,
		Seed:                42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.RatingWeight < 0 {
		return fmt.Errorf("rating_weight must be non-negative, got %f", c.RatingWeight)
	}
	if c.BadMoodRatingWeight < 0 {
		return fmt.Errorf("bad_mood_rating_weight must be non-negative, got %f", c.BadMoodRatingWeight)
	}
	if c.ContextBoost <= 0 {
		return fmt.Errorf("context_boost must be positive, got %f", c.ContextBoost)
	}
	return nil
}
