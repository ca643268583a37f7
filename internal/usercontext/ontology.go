// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package usercontext

import (
	"fmt"
	"strings"
	"sync"
)

// Ontology supplies default facts for a user. Implementations must be
// safe for concurrent use and must not retain the returned value.
type Ontology interface {
	Defaults(userID int64) UserContext
}

// StaticOntology returns the same defaults for every user.
type StaticOntology struct {
	facts UserContext
}

// NewStaticOntology builds defaults from configuration strings. Empty
// values leave the fact unknown; others must be valid answers.
func NewStaticOntology(company, rested, mood, activity string) (*StaticOntology, error) {
	var uc UserContext
	steps := []struct {
		value string
		set   func(string) error
		name  string
	}{
		{company, uc.SetCompany, "company"},
		{rested, uc.SetRested, "rested"},
		{mood, uc.SetMood, "mood"},
		{activity, uc.SetActivity, "activity"},
	}
	for _, s := range steps {
		if strings.TrimSpace(s.value) == "" {
			continue
		}
		if err := s.set(s.value); err != nil {
			return nil, fmt.Errorf("default %s: %w", s.name, err)
		}
	}
	return &StaticOntology{facts: uc}, nil
}

// Defaults implements Ontology.
func (o *StaticOntology) Defaults(int64) UserContext {
	return *o.facts.Clone()
}

// Store layers per-user facts learned at runtime (for example from the
// profile service) over a base ontology.
type Store struct {
	base Ontology

	mu    sync.RWMutex
	users map[int64]UserContext
}

// NewStore creates a store over base. A nil base yields no defaults.
func NewStore(base Ontology) *Store {
	return &Store{base: base, users: make(map[int64]UserContext)}
}

// Set records facts for a user; unknown fields keep falling back to base.
func (s *Store) Set(userID int64, facts UserContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = *facts.Clone()
}

// Defaults implements Ontology.
func (s *Store) Defaults(userID int64) UserContext {
	s.mu.RLock()
	learned, ok := s.users[userID]
	s.mu.RUnlock()

	out := learned.Clone()
	if !ok {
		out = &UserContext{}
	}
	if s.base != nil {
		out.Merge(s.base.Defaults(userID))
	}
	return *out
}
