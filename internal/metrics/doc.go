// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package metrics provides Prometheus metrics for the feed service.

Collectors are registered on the default registry with promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - reelfeed_api_requests_total: requests by method, route pattern and status
  - reelfeed_api_request_duration_seconds: latency by method and route pattern
  - reelfeed_api_active_requests: in-flight requests
  - reelfeed_api_rate_limit_hits_total: rejections by limiter (ip, user)

Feed Metrics:
  - reelfeed_feed_requests_total: pages served by feed type and cache hit
  - reelfeed_feed_tier_duration_seconds: candidate retrieval time per tier
  - reelfeed_feed_tier_errors_total: tier failures that were skipped
  - reelfeed_interactions_total: interactions by kind and outcome

Cache Metrics:
  - reelfeed_cache_operations_total: page cache get/set/delete by result
  - reelfeed_circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - reelfeed_circuit_breaker_state_transitions_total: transitions by target state

Invalidation Metrics:
  - reelfeed_invalidations_published_total: by scope kind
  - reelfeed_invalidations_applied_total: by local handler and result

WebSocket and system metrics cover connection counts, sent messages,
build information and uptime.

# Observer

Observer implements both feed.Observer and feedcache.Observer so the
engine, the recorder and the page cache report without importing
Prometheus:

	engine, _ := feed.NewEngine(store, cfg, logger, feed.WithObserver(metrics.Observer{}))
	cache := feedcache.New(backend, feedcache.DefaultOptions(), logger, metrics.Observer{})

# Label Cardinality

Endpoint labels use chi route patterns (/api/v1/feeds/{type}), never raw
paths. User and item IDs are never used as labels.
*/
package metrics
