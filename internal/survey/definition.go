// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package survey sequences the two questionnaires a user walks through
// before a recommendation: free-text preference questions (Survey) and
// situational activity categories (ContextEngine).
//
// Neither type is safe for concurrent use; callers serialize access per
// user.
package survey

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultDefinition []byte

// Question is one preference question with the answers offered on the
// reply keyboard. Users may still type any answer.
type Question struct {
	Text    string   `yaml:"text"`
	Options []string `yaml:"options"`
}

// CategoryDefinition lists the activities selectable in one category.
type CategoryDefinition struct {
	Label      string   `yaml:"label"`
	Activities []string `yaml:"activities"`
}

// Definition is the content of both questionnaires.
type Definition struct {
	Questions  []Question           `yaml:"questions"`
	Categories []CategoryDefinition `yaml:"categories"`
}

// DefaultDefinition returns the built-in questionnaires.
func DefaultDefinition() Definition {
	def, err := ParseDefinition(defaultDefinition)
	if err != nil {
		panic(fmt.Sprintf("survey: embedded definition is invalid: %v", err))
	}
	return def
}

// LoadDefinition reads a questionnaire file. An empty path returns the
// built-in definition.
func LoadDefinition(path string) (Definition, error) {
	if path == "" {
		return DefaultDefinition(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return Definition{}, fmt.Errorf("read survey definition: %w", err)
	}
	return ParseDefinition(data)
}

// ParseDefinition decodes and validates a YAML questionnaire.
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse survey definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Validate checks that both questionnaires are non-empty and that activity
// labels can be submitted as space separated tokens.
func (d Definition) Validate() error {
	if len(d.Questions) == 0 {
		return fmt.Errorf("survey definition: no questions")
	}
	for i, q := range d.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("survey definition: question %d has no text", i+1)
		}
	}
	if len(d.Categories) == 0 {
		return fmt.Errorf("survey definition: no context categories")
	}
	for _, c := range d.Categories {
		if c.Label == "" || len(c.Activities) == 0 {
			return fmt.Errorf("survey definition: category %q needs a label and activities", c.Label)
		}
		seen := make(map[string]struct{}, len(c.Activities))
		for _, a := range c.Activities {
			key := strings.ToLower(a)
			if a == "" || strings.ContainsAny(a, " \t") || key == NoneToken {
				return fmt.Errorf("survey definition: category %q has invalid activity %q", c.Label, a)
			}
			if _, dup := seen[key]; dup {
				return fmt.Errorf("survey definition: category %q repeats activity %q", c.Label, a)
			}
			seen[key] = struct{}{}
		}
	}
	return nil
}
