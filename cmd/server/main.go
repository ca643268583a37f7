// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package main is the entry point for the Cicerone server.
//
// Cicerone is a conversational agent that recommends a nearby place to visit
// (a restaurant, a museum, a bar, a park) from per-region venue catalogs,
// using the user's survey answers, activities, location and situational
// context.
//
// # Startup
//
//  1. Configuration: koanf layers (defaults, config.yaml, environment), optional .env
//  2. Logging: zerolog at the configured level and format
//  3. Catalogs: every region's CSV file read through DuckDB
//  4. Conversation: sessions, dispatcher, selector, Casbin authorization,
//     profile client and journal
//  5. Supervisor tree: journal subscriber, Telegram poller, HTTP server
//
// # Transports
//
// At least one transport must be enabled:
//
//	TELEGRAM_ENABLED=true TELEGRAM_BOT_TOKEN=123:abc ./cicerone
//	HTTP_ENABLED=true HTTP_PORT=8080 ./cicerone
//
// # Signal Handling
//
// SIGINT and SIGTERM stop the supervisor tree. The HTTP server drains
// in-flight requests, queued turns finish or are skipped, and the journal
// is closed last.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cicerone/internal/config"
	"github.com/tomtom215/cicerone/internal/logging"
	"github.com/tomtom215/cicerone/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Bool("http", cfg.Server.Enabled).
		Bool("telegram", cfg.Telegram.Enabled).
		Int("regions", len(cfg.Catalog.Regions)).
		Int("configuration", cfg.Recommend.Configuration).
		Msg("Starting Cicerone")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := build(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer app.close()

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err := app.register(cfg, tree); err != nil {
		app.close()
		logging.Fatal().Err(err).Msg("Failed to register services")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Cicerone stopped")
}
