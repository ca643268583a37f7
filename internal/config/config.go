// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package config loads Cicerone's configuration.
//
// Sources are layered with koanf, later layers overriding earlier ones:
//
//  1. Defaults: defaultConfig
//  2. Config file: YAML from CONFIG_PATH or DefaultConfigPaths (optional)
//  3. Environment: the variables listed in envMappings, after an optional
//     .env file has been loaded with godotenv
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Invalid configuration")
//	}
//	resolver, err := geo.NewResolver(cfg.Catalog.GeoRegions(), cfg.Recommend.NearbyThresholdKm)
//
// Config is immutable after Load and safe for concurrent reads.
package config

import (
	"path/filepath"
	"time"

	"github.com/tomtom215/cicerone/internal/catalog"
	"github.com/tomtom215/cicerone/internal/geo"
	"github.com/tomtom215/cicerone/internal/recommend"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Telegram  TelegramConfig  `koanf:"telegram"`
	Logging   LoggingConfig   `koanf:"logging"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Survey    SurveyConfig    `koanf:"survey"`
	Context   ContextConfig   `koanf:"context"`
	Recommend RecommendConfig `koanf:"recommend"`
	Sessions  SessionsConfig  `koanf:"sessions"`
	Profile   ProfileConfig   `koanf:"profile"`
	Journal   JournalConfig   `koanf:"journal"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// TelegramConfig configures the Telegram long-polling transport.
type TelegramConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`

	// PollTimeout is the long-polling timeout in seconds.
	PollTimeout int  `koanf:"poll_timeout" validate:"min=0,max=600"`
	Debug       bool `koanf:"debug"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// RegionConfig is one catalog region.
type RegionConfig struct {
	Name      string  `koanf:"name" validate:"required"`
	Latitude  float64 `koanf:"latitude" validate:"latitude"`
	Longitude float64 `koanf:"longitude" validate:"longitude"`

	// File is the CSV file, relative to CatalogConfig.DataDir.
	File string `koanf:"file" validate:"required"`
}

// CatalogConfig locates the venue catalogs.
type CatalogConfig struct {
	DataDir     string         `koanf:"data_dir" validate:"required"`
	Delimiter   string         `koanf:"delimiter" validate:"delimiter"`
	Header      bool           `koanf:"header"`
	LoadTimeout time.Duration  `koanf:"load_timeout" validate:"gt=0"`
	Regions     []RegionConfig `koanf:"regions" validate:"min=1,dive"`
}

// GeoRegions returns the regions in configuration order.
func (c CatalogConfig) GeoRegions() []geo.Region {
	out := make([]geo.Region, len(c.Regions))
	for i, r := range c.Regions {
		out[i] = geo.Region{Name: r.Name, Center: geo.Point{Latitude: r.Latitude, Longitude: r.Longitude}}
	}
	return out
}

// Sources returns the catalog file of every region.
func (c CatalogConfig) Sources() []catalog.Source {
	out := make([]catalog.Source, len(c.Regions))
	for i, r := range c.Regions {
		path := r.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.DataDir, path)
		}
		out[i] = catalog.Source{Region: r.Name, Path: path}
	}
	return out
}

// LoaderConfig returns the CSV reader settings.
func (c CatalogConfig) LoaderConfig() catalog.LoaderConfig {
	return catalog.LoaderConfig{Delimiter: c.Delimiter, Header: c.Header, Timeout: c.LoadTimeout}
}

// SurveyConfig locates the survey definition. An empty path uses the
// built-in questions and categories.
type SurveyConfig struct {
	DefinitionPath string `koanf:"definition_path"`
}

// ContextConfig holds the default situational facts of every user. Empty
// values leave the fact unknown until the user answers.
type ContextConfig struct {
	Company  string `koanf:"company" validate:"omitempty,oneof=Alone Partner Friends Family"`
	Rested   string `koanf:"rested" validate:"omitempty,oneof=Yes No"`
	Mood     string `koanf:"mood" validate:"omitempty,oneof='Good mood' 'Bad mood'"`
	Activity string `koanf:"activity" validate:"omitempty,oneof=Yes No"`
}

// RecommendConfig configures venue selection.
type RecommendConfig struct {
	NearbyThresholdKm float64 `koanf:"nearby_threshold_km" validate:"gt=0"`

	// Configuration is the initial administrative value: 0 random,
	// 1 content-based, 2 context-aware.
	Configuration       int     `koanf:"configuration" validate:"min=0,max=2"`
	MaxResults          int     `koanf:"max_results" validate:"min=1,max=1000"`
	Seed                int64   `koanf:"seed"`
	RatingWeight        float64 `koanf:"rating_weight" validate:"gte=0"`
	BadMoodRatingWeight float64 `koanf:"bad_mood_rating_weight" validate:"gte=0"`
	ContextBoost        float64 `koanf:"context_boost" validate:"gt=0"`
}

// SelectorConfig converts the section to the selector's configuration.
func (c RecommendConfig) SelectorConfig() *recommend.Config {
	return &recommend.Config{
		MaxResults:          c.MaxResults,
		RatingWeight:        c.RatingWeight,
		BadMoodRatingWeight: c.BadMoodRatingWeight,
		ContextBoost:        c.ContextBoost,
		Seed:                c.Seed,
	}
}

// SessionsConfig configures per-user dispatching.
type SessionsConfig struct {
	MailboxSize int `koanf:"mailbox_size" validate:"min=1,max=1024"`

	// UserRate is the sustained messages per second per user; 0 disables
	// limiting.
	UserRate  float64 `koanf:"user_rate" validate:"gte=0"`
	UserBurst int     `koanf:"user_burst" validate:"min=1"`
}

// BreakerConfig configures a gobreaker circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests" validate:"min=1"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout" validate:"gt=0"`
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"min=1"`
}

// ProfileConfig configures the profile service client used by login.
type ProfileConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`

	// Token is sent as x-access-token. When SigningKey is set a short-lived
	// HS256 token is minted per request instead.
	Token      string        `koanf:"token"`
	SigningKey string        `koanf:"signing_key"`
	TokenTTL   time.Duration `koanf:"token_ttl" validate:"gt=0"`

	Timeout       time.Duration `koanf:"timeout" validate:"gt=0"`
	Limit         int           `koanf:"limit" validate:"min=1,max=100"`
	Facet         string        `koanf:"facet" validate:"required"`
	RestedMinutes int           `koanf:"rested_minutes" validate:"min=0"`
	Breaker       BreakerConfig `koanf:"breaker"`
}

// JournalConfig configures the conversation journal.
type JournalConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
	Topic    string `koanf:"topic" validate:"required"`
}

// SecurityConfig holds authorization and HTTP protection settings.
type SecurityConfig struct {
	// AdminIDs are the chat user IDs granted the admin role.
	AdminIDs []int64 `koanf:"admin_ids" validate:"unique"`

	// CasbinModelPath and CasbinPolicyPath override the embedded
	// authorization model and policy.
	CasbinModelPath  string `koanf:"casbin_model_path"`
	CasbinPolicyPath string `koanf:"casbin_policy_path"`

	// APIKey, when set, is required in the X-API-Key header of the HTTP
	// message endpoint.
	APIKey string `koanf:"api_key"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}
