// Cicerone - Conversational Point-of-Interest Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cicerone

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversation Metrics
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cicerone_messages_total",
			Help: "Total number of inbound chat messages by command",
		},
		[]string{"command"},
	)

	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cicerone_replies_total",
			Help: "Total number of replies produced by kind",
		},
		[]string{"kind"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cicerone_rate_limited_total",
			Help: "Total number of messages rejected by the per-user rate limiter",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cicerone_sessions_active",
			Help: "Number of user sessions held in memory",
		},
	)

	MailboxesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cicerone_mailboxes_active",
			Help: "Number of users with a running mailbox worker",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cicerone_recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"status", "type"},
	)

	IndexBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cicerone_index_builds_total",
			Help: "Total number of region index builds",
		},
		[]string{"region", "result"},
	)

	IndexBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cicerone_index_build_duration_seconds",
			Help:    "Duration of region index builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"region"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cicerone_search_duration_seconds",
			Help:    "Duration of relevance searches in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// Profile Service Metrics
	ProfileRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cicerone_profile_requests_total",
			Help: "Total number of profile service requests",
		},
		[]string{"result"}, // result: "success", "failure", "rejected"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	AuthorizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cicerone_authorizations_total",
			Help: "Total number of privileged command authorization decisions",
		},
		[]string{"command", "decision"},
	)

	// Journal Metrics
	JournalEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cicerone_journal_entries_total",
			Help: "Total number of conversation journal writes",
		},
		[]string{"result"},
	)

	TransportErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cicerone_transport_errors_total",
			Help: "Total number of replies that could not be delivered",
		},
		[]string{"transport"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordMessage counts an inbound message.
func RecordMessage(command string) {
	MessagesTotal.WithLabelValues(command).Inc()
}

// RecordReply counts an outbound reply.
func RecordReply(kind string) {
	RepliesTotal.WithLabelValues(kind).Inc()
}

// RecordRecommendation counts a selector outcome.
func RecordRecommendation(status, recommendType string) {
	RecommendationsTotal.WithLabelValues(status, recommendType).Inc()
}

// RecordIndexBuild records a region index build
func RecordIndexBuild(region string, duration time.Duration, err error) {
	IndexBuildDuration.WithLabelValues(region).Observe(duration.Seconds())
	result := "success"
	if err != nil {
		result = "failure"
	}
	IndexBuildsTotal.WithLabelValues(region, result).Inc()
}

// RecordSearch records the latency of one relevance search.
func RecordSearch(duration time.Duration) {
	SearchDuration.Observe(duration.Seconds())
}

// RecordProfileRequest counts a profile service call.
func RecordProfileRequest(result string) {
	ProfileRequestsTotal.WithLabelValues(result).Inc()
}

// RecordAuthorization counts a privileged command decision.
func RecordAuthorization(command string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	AuthorizationsTotal.WithLabelValues(command, decision).Inc()
}

// RecordJournalEntry counts a journal write.
func RecordJournalEntry(err error) {
	if err != nil {
		JournalEntriesTotal.WithLabelValues("failure").Inc()
		return
	}
	JournalEntriesTotal.WithLabelValues("success").Inc()
}

// RecordTransportError counts a reply that could not be delivered.
func RecordTransportError(transport string) {
	TransportErrorsTotal.WithLabelValues(transport).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
