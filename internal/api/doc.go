// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

/*
Package api provides the HTTP transport for Cicerone.

The HTTP transport is the same conversation the Telegram bot offers, exposed
as JSON so that web clients and integration tests can drive it:

	POST /api/v1/messages    one inbound message, answered with one reply
	GET  /api/v1/health      liveness and catalog readiness
	GET  /metrics            Prometheus exposition

Request bodies are validated with go-playground/validator through the
internal/validation package. Every response uses the envelope

	{"status": "success|error", "data": ..., "metadata": {...}, "error": {...}}

Middleware (applied in order): request ID and correlation ID for logging,
real IP, panic recovery, CORS, then per route group rate limiting
(go-chi/httprate), security headers, request metrics and, when an API key
is configured, X-API-Key authentication.

Usage:

	router := api.NewRouter(api.Config{APIKey: cfg.Security.APIKey}, service, readiness)
	srv := &http.Server{Addr: ":8080", Handler: router.Handler()}
*/
package api
