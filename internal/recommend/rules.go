// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package recommend

import "github.com/tomtom215/cicerone/internal/usercontext"

// Situational rules for context-aware selection. Boosted terms raise
// venues whose tags mention them; prohibited terms remove venues.

var companyTerms = map[usercontext.Company][]string{
	usercontext.Alone:   {"cafe", "bookshop", "museum"},
	usercontext.Partner: {"restaurant", "wine", "romantic"},
	usercontext.Friends: {"pub", "bar", "pizzeria"},
	usercontext.Family:  {"park", "family", "gelato"},
}

var moodTerms = map[bool][]string{
	true:  {"lively", "music", "cocktails"},
	false: {"quiet", "relax", "gelato"},
}

var activityTerms = map[bool][]string{
	true:  {"tour", "walk", "sport"},
	false: {"relax", "view"},
}

// tiredProhibited are removed when the user is not rested.
var tiredProhibited = []string{"hiking", "trekking", "gym", "sport"}

// situationalTerms returns the boosted and prohibited terms for uc.
// Prohibited terms are never boosted.
func situationalTerms(uc *usercontext.UserContext) (boosted, prohibited []string) {
	if uc == nil {
		return nil, nil
	}
	if uc.Rested != nil && !*uc.Rested {
		prohibited = append(prohibited, tiredProhibited...)
	}
	if uc.Company != nil {
		boosted = append(boosted, companyTerms[*uc.Company]...)
	}
	if uc.Mood != nil {
		boosted = append(boosted, moodTerms[*uc.Mood]...)
	}
	if uc.Activity != nil {
		boosted = append(boosted, activityTerms[*uc.Activity]...)
	}
	return without(dedupe(boosted), prohibited), prohibited
}

// ratingWeight is the rating bonus weight for uc.
func (c *Config) ratingWeight(uc *usercontext.UserContext) float64 {
	if uc != nil && uc.Mood != nil && !*uc.Mood {
		return c.BadMoodRatingWeight
	}
	return c.RatingWeight
}
