// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config files searched, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cicerone/config.yaml",
	"/etc/cicerone/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file path.
const DotEnvPathEnvVar = "DOTENV_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Enabled:         true,
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Telegram: TelegramConfig{
			Enabled:     false,
			PollTimeout: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Catalog: CatalogConfig{
			DataDir:     "/data/catalog",
			Delimiter:   ",",
			Header:      true,
			LoadTimeout: 2 * time.Minute,
			Regions: []RegionConfig{
				{Name: "Bari", Latitude: 41.1115511, Longitude: 16.7419939, File: "bari.csv"},
				{Name: "Torino", Latitude: 45.0702388, Longitude: 7.6000489, File: "torino.csv"},
			},
		},
		Context: ContextConfig{
			Company:  "Alone",
			Activity: "No",
		},
		Recommend: RecommendConfig{
			NearbyThresholdKm:   3,
			Configuration:       0,
			MaxResults:          50,
			Seed:                42,
			RatingWeight:        0.2,
			BadMoodRatingWeight: 0.5,
			ContextBoost:        2,
		},
		Sessions: SessionsConfig{
			MailboxSize: 16,
			UserRate:    1,
			UserBurst:   5,
		},
		Profile: ProfileConfig{
			Enabled:       false,
			TokenTTL:      5 * time.Minute,
			Timeout:       10 * time.Second,
			Limit:         10,
			Facet:         "Affects",
			RestedMinutes: 420,
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "/data/journal",
			Topic:   "conversation.turns",
		},
		Security: SecurityConfig{
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
	}
}

// Load reads the configuration from defaults, the optional config file and
// the environment, then validates it.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	return LoadWithKoanf()
}

// loadDotEnv loads DOTENV_PATH, or .env when present. Variables already set
// in the environment win.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && os.Getenv(DotEnvPathEnvVar) == "" {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadWithKoanf loads configuration without touching .env files.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// TELEGRAM_BOT_TOKEN -> telegram.token
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they come from
// the environment.
var sliceConfigPaths = []string{
	"security.admin_ids",
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variables (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_enabled":          "server.enabled",
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Telegram
	"telegram_enabled":      "telegram.enabled",
	"telegram_bot_token":    "telegram.token",
	"telegram_poll_timeout": "telegram.poll_timeout",
	"telegram_debug":        "telegram.debug",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Catalog
	"catalog_data_dir":     "catalog.data_dir",
	"catalog_delimiter":    "catalog.delimiter",
	"catalog_header":       "catalog.header",
	"catalog_load_timeout": "catalog.load_timeout",

	// Survey and context defaults
	"survey_definition_path": "survey.definition_path",
	"default_company":        "context.company",
	"default_rested":         "context.rested",
	"default_mood":           "context.mood",
	"default_activity":       "context.activity",

	// Recommendation
	"nearby_threshold_km":              "recommend.nearby_threshold_km",
	"recommend_configuration":          "recommend.configuration",
	"recommend_max_results":            "recommend.max_results",
	"recommend_seed":                   "recommend.seed",
	"recommend_rating_weight":          "recommend.rating_weight",
	"recommend_bad_mood_rating_weight": "recommend.bad_mood_rating_weight",
	"recommend_context_boost":          "recommend.context_boost",

	// Sessions
	"session_mailbox_size": "sessions.mailbox_size",
	"user_rate_limit":      "sessions.user_rate",
	"user_rate_burst":      "sessions.user_burst",

	// Profile service
	"profile_enabled":           "profile.enabled",
	"profile_url":               "profile.url",
	"profile_token":             "profile.token",
	"profile_signing_key":       "profile.signing_key",
	"profile_token_ttl":         "profile.token_ttl",
	"profile_timeout":           "profile.timeout",
	"profile_limit":             "profile.limit",
	"profile_facet":             "profile.facet",
	"profile_rested_minutes":    "profile.rested_minutes",
	"profile_breaker_timeout":   "profile.breaker.timeout",
	"profile_breaker_failures":  "profile.breaker.failure_threshold",
	"profile_breaker_half_open": "profile.breaker.max_requests",

	// Journal
	"journal_enabled":   "journal.enabled",
	"journal_path":      "journal.path",
	"journal_in_memory": "journal.in_memory",
	"journal_topic":     "journal.topic",

	// Security
	"admin_ids":          "security.admin_ids",
	"casbin_model_path":  "security.casbin_model_path",
	"casbin_policy_path": "security.casbin_policy_path",
	"api_key":            "security.api_key",
	"rate_limit_reqs":    "security.rate_limit_reqs",
	"rate_limit_window":  "security.rate_limit_window",
	"disable_rate_limit": "security.rate_limit_disabled",
	"cors_origins":       "security.cors_origins",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
