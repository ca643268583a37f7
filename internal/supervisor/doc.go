// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

// Package supervisor runs Cicerone's long-lived services under a suture v4
// supervisor tree.
//
// The tree has three layers so that a failure in one does not stop the
// others:
//
//	cicerone
//	├── data-layer        journal subscriber
//	├── messaging-layer   Telegram poller
//	└── api-layer         HTTP server
//
// A crashing service is restarted with suture's backoff; supervisor events
// are logged through zerolog via sutureslog and logging.NewSlogLogger.
package supervisor
