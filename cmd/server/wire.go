// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/cicerone/internal/api"
	"github.com/tomtom215/cicerone/internal/authz"
	"github.com/tomtom215/cicerone/internal/catalog"
	"github.com/tomtom215/cicerone/internal/config"
	"github.com/tomtom215/cicerone/internal/conversation"
	"github.com/tomtom215/cicerone/internal/geo"
	"github.com/tomtom215/cicerone/internal/journal"
	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/profile"
	"github.com/tomtom215/cicerone/internal/recommend"
	"github.com/tomtom215/cicerone/internal/session"
	"github.com/tomtom215/cicerone/internal/supervisor"
	"github.com/tomtom215/cicerone/internal/supervisor/services"
	"github.com/tomtom215/cicerone/internal/survey"
	"github.com/tomtom215/cicerone/internal/transport/telegram"
	"github.com/tomtom215/cicerone/internal/usercontext"
)

// application holds the components that outlive the supervisor tree.
type application struct {
	registry   *catalog.Registry
	selector   *recommend.Selector
	dispatcher *session.Dispatcher
	journal    *journal.Journal
	service    *conversation.Service
	shutdown   time.Duration
	closed     bool
}

func build(ctx context.Context, cfg *config.Config) (*application, error) {
	def := survey.DefaultDefinition()
	if path := cfg.Survey.DefinitionPath; path != "" {
		loaded, err := survey.LoadDefinition(path)
		if err != nil {
			return nil, fmt.Errorf("survey definition: %w", err)
		}
		def = loaded
	}

	registry, err := loadCatalogs(ctx, cfg.Catalog)
	if err != nil {
		return nil, err
	}

	resolver, err := geo.NewResolver(cfg.Catalog.GeoRegions(), cfg.Recommend.NearbyThresholdKm)
	if err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}

	base, err := usercontext.NewStaticOntology(cfg.Context.Company, cfg.Context.Rested, cfg.Context.Mood, cfg.Context.Activity)
	if err != nil {
		return nil, fmt.Errorf("context defaults: %w", err)
	}
	facts := usercontext.NewStore(base)

	selector, err := recommend.NewSelector(cfg.Recommend.SelectorConfig(), recommend.Deps{
		Resolver: resolver,
		Catalog:  registry,
		Ontology: facts,
	})
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{
		ModelPath:  cfg.Security.CasbinModelPath,
		PolicyPath: cfg.Security.CasbinPolicyPath,
		AdminIDs:   cfg.Security.AdminIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("authorization: %w", err)
	}

	deps := conversation.Deps{
		Sessions:    session.NewManager(def, cfg.Recommend.Configuration),
		Recommender: selector,
		Ontology:    facts,
		Authorizer:  enforcer,
	}

	if cfg.Profile.Enabled {
		client, err := profile.NewClient(profileConfig(cfg.Profile), facts)
		if err != nil {
			return nil, fmt.Errorf("profile client: %w", err)
		}
		deps.Profile = client
		logging.Info().Str("url", cfg.Profile.URL).Msg("Profile service enabled")
	}

	app := &application{
		registry:   registry,
		selector:   selector,
		dispatcher: session.NewDispatcher(cfg.Sessions.MailboxSize),
		shutdown:   cfg.Server.ShutdownTimeout,
	}

	if cfg.Journal.Enabled {
		j, err := journal.Open(journal.Config{
			Path:     cfg.Journal.Path,
			InMemory: cfg.Journal.InMemory,
			Topic:    cfg.Journal.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
		app.journal = j
		deps.Recorder = j
		deps.Reports = j
		logging.Info().Str("path", cfg.Journal.Path).Bool("in_memory", cfg.Journal.InMemory).Msg("Journal opened")
	}

	handler, err := conversation.NewHandler(deps)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("conversation: %w", err)
	}
	app.service = conversation.NewService(handler, app.dispatcher,
		session.NewLimiter(cfg.Sessions.UserRate, cfg.Sessions.UserBurst))
	return app, nil
}

func loadCatalogs(ctx context.Context, cfg config.CatalogConfig) (*catalog.Registry, error) {
	loader, err := catalog.NewLoader(cfg.LoaderConfig())
	if err != nil {
		return nil, fmt.Errorf("catalog loader: %w", err)
	}
	defer func() {
		if err := loader.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close catalog loader")
		}
	}()

	start := time.Now()
	registry, err := catalog.LoadRegistry(ctx, loader, cfg.Sources())
	if err != nil {
		return nil, fmt.Errorf("catalogs: %w", err)
	}
	for _, region := range registry.Regions() {
		logging.Info().Str("region", region).Int("venues", registry.Size(region)).Msg("Catalog loaded")
	}
	logging.Info().Dur("elapsed", time.Since(start)).Msg("All catalogs loaded")
	return registry, nil
}

func profileConfig(c config.ProfileConfig) profile.Config {
	return profile.Config{
		BaseURL:       c.URL,
		Token:         c.Token,
		SigningKey:    c.SigningKey,
		TokenTTL:      c.TokenTTL,
		Timeout:       c.Timeout,
		Limit:         c.Limit,
		Facet:         c.Facet,
		RestedMinutes: c.RestedMinutes,
		Breaker: profile.BreakerSettings{
			MaxRequests:      c.Breaker.MaxRequests,
			Interval:         c.Breaker.Interval,
			Timeout:          c.Breaker.Timeout,
			FailureThreshold: c.Breaker.FailureThreshold,
		},
	}
}

// register adds the journal subscriber and the enabled transports to the
// tree.
func (a *application) register(cfg *config.Config, tree *supervisor.SupervisorTree) error {
	if a.journal != nil {
		tree.AddDataService(a.journal)
	}

	if cfg.Telegram.Enabled {
		bot, err := telegram.Connect(cfg.Telegram.Token, cfg.Telegram.Debug)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		tree.AddMessagingService(telegram.NewPoller(telegram.Config{PollTimeout: cfg.Telegram.PollTimeout}, bot, a.service))
		logging.Info().Str("bot", bot.Self.UserName).Msg("Telegram transport enabled")
	}

	if cfg.Server.Enabled {
		middleware := api.DefaultChiMiddlewareConfig()
		middleware.CORSAllowedOrigins = cfg.Security.CORSOrigins
		middleware.RateLimitRequests = cfg.Security.RateLimitReqs
		middleware.RateLimitWindow = cfg.Security.RateLimitWindow
		middleware.RateLimitDisabled = cfg.Security.RateLimitDisabled

		router := api.NewRouter(api.Config{APIKey: cfg.Security.APIKey, Middleware: middleware}, a.service, a.ready)
		server := &http.Server{
			Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:      router.Handler(),
			ReadTimeout:  cfg.Server.Timeout,
			WriteTimeout: cfg.Server.Timeout,
			IdleTimeout:  60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
		logging.Info().Str("addr", server.Addr).Msg("HTTP transport enabled")
	}
	return nil
}

// ready fails when a catalog came up empty.
func (a *application) ready(context.Context) error {
	for _, region := range a.registry.Regions() {
		if a.registry.Size(region) == 0 {
			return fmt.Errorf("catalog %s is empty", region)
		}
	}
	return nil
}

// close drains queued turns, then releases the indexes and the journal.
func (a *application) close() {
	if a.closed {
		return
	}
	a.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdown)
	defer cancel()
	if err := a.dispatcher.Close(ctx); err != nil {
		logging.Warn().Err(err).Msg("Dispatcher did not drain")
	}
	if err := a.selector.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close search indexes")
	}
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close journal")
		}
	}
}
