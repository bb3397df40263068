// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelfeed_db_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_db_query_errors_total",
			Help: "Total number of failed store queries",
		},
		[]string{"operation"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelfeed_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelfeed_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"limiter"}, // "ip", "user"
	)

	// Feed Metrics
	FeedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_feed_requests_total",
			Help: "Total number of feed pages served",
		},
		[]string{"feed_type", "cached"},
	)

	FeedTierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelfeed_feed_tier_duration_seconds",
			Help:    "Candidate retrieval time per tier in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"tier"},
	)

	FeedTierErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_feed_tier_errors_total",
			Help: "Total number of tier retrievals that failed and were skipped",
		},
		[]string{"tier"},
	)

	Interactions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_interactions_total",
			Help: "Total number of recorded interactions by outcome",
		},
		[]string{"kind", "outcome"}, // outcome: "ok", "conflict", "rejected", "error"
	)

	// Page Cache Metrics
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_cache_operations_total",
			Help: "Total number of page cache operations by result",
		},
		[]string{"op", "result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelfeed_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "to_state"},
	)

	// Invalidation Metrics
	InvalidationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_invalidations_published_total",
			Help: "Total number of invalidations published",
		},
		[]string{"scope_kind"},
	)

	InvalidationsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_invalidations_applied_total",
			Help: "Total number of invalidations applied by local handlers",
		},
		[]string{"handler", "result"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelfeed_websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reelfeed_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelfeed_websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelfeed_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelfeed_app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a store query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request.
func RecordRateLimitHit(limiter string) {
	APIRateLimitHits.WithLabelValues(limiter).Inc()
}

// RecordFeedRequest counts a served feed page.
func RecordFeedRequest(feedType string, cached bool) {
	FeedRequests.WithLabelValues(feedType, strconv.FormatBool(cached)).Inc()
}

// RecordInvalidationPublished counts a published invalidation.
func RecordInvalidationPublished(scopeKind string) {
	InvalidationsPublished.WithLabelValues(scopeKind).Inc()
}

// RecordInvalidationApplied counts a handled invalidation.
func RecordInvalidationApplied(handler string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	InvalidationsApplied.WithLabelValues(handler, result).Inc()
}

// SetAppInfo publishes build information and starts the uptime clock.
func SetAppInfo(version string, started time.Time) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	AppUptime.Set(time.Since(started).Seconds())
}

// breakerStateValue maps a breaker state name to the gauge encoding.
func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// Observer forwards feed engine and page cache outcomes to Prometheus.
// The zero value is ready to use.
type Observer struct{}

// ObserveTier records a tier retrieval.
func (Observer) ObserveTier(tier string, elapsed time.Duration, err error) {
	FeedTierDuration.WithLabelValues(tier).Observe(elapsed.Seconds())
	if err != nil {
		FeedTierErrors.WithLabelValues(tier).Inc()
	}
}

// ObserveInteraction records an interaction outcome.
func (Observer) ObserveInteraction(kind, outcome string) {
	Interactions.WithLabelValues(kind, outcome).Inc()
}

// ObserveCache records a page cache operation.
func (Observer) ObserveCache(op, result string) {
	CacheOperations.WithLabelValues(op, result).Inc()
}

// ObserveBreakerState records a breaker transition.
func (Observer) ObserveBreakerState(name, state string) {
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(state))
	CircuitBreakerTransitions.WithLabelValues(name, state).Inc()
}
