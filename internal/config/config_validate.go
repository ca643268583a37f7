// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/cicerone/internal/validation"
)

// Validate checks field constraints, then the rules that span fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	validators := []func() error{
		c.validateTransports,
		c.validateTelegram,
		c.validateCatalog,
		c.validateProfile,
		c.validateJournal,
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateTransports requires at least one way to reach the agent.
func (c *Config) validateTransports() error {
	if !c.Server.Enabled && !c.Telegram.Enabled {
		return fmt.Errorf("at least one transport must be enabled (HTTP_ENABLED or TELEGRAM_ENABLED)")
	}
	return nil
}

func (c *Config) validateTelegram() error {
	if !c.Telegram.Enabled {
		return nil
	}
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required when TELEGRAM_ENABLED=true")
	}
	if !strings.Contains(c.Telegram.Token, ":") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN appears invalid (expected <bot id>:<secret>)")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	seen := make(map[string]struct{}, len(c.Catalog.Regions))
	for _, r := range c.Catalog.Regions {
		key := strings.ToLower(r.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("catalog region %q is listed twice", r.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (c *Config) validateProfile() error {
	if !c.Profile.Enabled {
		return nil
	}
	if c.Profile.URL == "" {
		return fmt.Errorf("PROFILE_URL is required when PROFILE_ENABLED=true")
	}
	if err := validateHTTPURL(c.Profile.URL, "PROFILE_URL"); err != nil {
		return err
	}
	if c.Profile.Token == "" && c.Profile.SigningKey == "" {
		return fmt.Errorf("PROFILE_TOKEN or PROFILE_SIGNING_KEY is required when PROFILE_ENABLED=true")
	}
	if c.Profile.SigningKey != "" && len(c.Profile.SigningKey) < 32 {
		return fmt.Errorf("PROFILE_SIGNING_KEY must be at least 32 characters")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if c.Journal.Enabled && !c.Journal.InMemory && c.Journal.Path == "" {
		return fmt.Errorf("JOURNAL_PATH is required unless JOURNAL_IN_MEMORY=true")
	}
	return nil
}

// validateHTTPURL accepts an http(s) base URL without query parameters.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}
