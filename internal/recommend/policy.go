// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package recommend

import (
	"math/rand"
	"sync"

	"github.com/tomtom215/cicerone/internal/catalog"
)

// Administrative configuration values understood by ConfiguredPolicy.
const (
	ConfigurationRandom       = 0
	ConfigurationContentBased = 1
	ConfigurationContextAware = 2
)

// ValidConfiguration reports whether v is a known configuration value.
func ValidConfiguration(v int) bool {
	return v >= ConfigurationRandom && v <= ConfigurationContextAware
}

// TypePolicy decides which selection type serves a request, given the
// user's administrative configuration value.
type TypePolicy interface {
	Choose(configuration int) catalog.RecommendType
}

// TypePolicyFunc adapts a function to TypePolicy.
type TypePolicyFunc func(configuration int) catalog.RecommendType

// Choose implements TypePolicy.
func (f TypePolicyFunc) Choose(configuration int) catalog.RecommendType { return f(configuration) }

// ConfiguredPolicy follows the configuration value: content-based,
// context-aware, or a seeded coin flip for ConfigurationRandom and any
// unknown value.
type ConfiguredPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewConfiguredPolicy creates a policy. A zero seed uses a fixed default.
func NewConfiguredPolicy(seed int64) *ConfiguredPolicy {
	if seed == 0 {
		seed = 42
	}
	return &ConfiguredPolicy{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for A/B assignment
	}
}

// Choose implements TypePolicy.
func (p *ConfiguredPolicy) Choose(configuration int) catalog.RecommendType {
	switch configuration {
	case ConfigurationContentBased:
		return catalog.ContentBased
	case ConfigurationContextAware:
		return catalog.ContextAware
	}
	p.mu.Lock()
	n := p.rng.Intn(2)
	p.mu.Unlock()
	if n == 0 {
		return catalog.ContentBased
	}
	return catalog.ContextAware
}
