// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package middleware provides infrastructure HTTP middleware shared by the
API router.

  - RequestID: request IDs for log correlation (X-Request-ID)
  - PrometheusMetrics: request count, latency and in-flight gauges

Both are chi-compatible func(http.Handler) http.Handler values. Router
order in internal/api:

	RequestID -> RealIP -> Recoverer -> CORS -> PrometheusMetrics -> auth -> handlers
*/
package middleware
