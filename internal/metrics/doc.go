// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

/*
Package metrics provides Prometheus metrics for the recommender.

Metrics are registered on the default registry with promauto and exposed at
/metrics by the HTTP transport:

	curl http://localhost:8086/metrics

# Available Metrics

Conversation:
  - cicerone_messages_total: inbound messages (counter)
    Labels: command ("text" for free text, "location" for positions)
  - cicerone_replies_total: outbound replies (counter)
    Labels: kind (text, document)
  - cicerone_rate_limited_total: messages dropped by the per-user limiter (counter)
  - cicerone_sessions_active: sessions held in memory (gauge)
  - cicerone_mailboxes_active: users with a running mailbox (gauge)

Recommendation:
  - cicerone_recommendations_total: selector outcomes (counter)
    Labels: status, type
  - cicerone_index_builds_total: region index builds (counter)
    Labels: region, result
  - cicerone_index_build_duration_seconds: index build latency (histogram)
    Labels: region
  - cicerone_search_duration_seconds: query latency (histogram)

Collaborators:
  - cicerone_profile_requests_total: profile service calls (counter)
    Labels: result (success, failure, rejected)
  - circuit_breaker_state, circuit_breaker_state_transitions_total
  - cicerone_authorizations_total: privileged command decisions (counter)
    Labels: command, decision (allow, deny)
  - cicerone_journal_entries_total: journal writes (counter)
    Labels: result
  - cicerone_transport_errors_total: failed deliveries (counter)
    Labels: transport
  - http_requests_total, http_request_duration_seconds
*/
package metrics
