// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package feedcache stores composed feed pages under per-type TTLs.

Cache implements feed.PageCache on top of a pluggable Backend:

  - MemoryBackend: process-local TTL map with background expiry sweeps
  - BadgerBackend: persistent local cache using BadgerDB entry TTLs
  - RedisBackend: shared cache for multi-instance deployments

Pages are JSON-encoded with goccy/go-json. Every backend call runs behind a
gobreaker circuit breaker and a per-operation timeout; a failing, slow or
tripped backend never fails a request, the page is simply recomputed.
Concurrent misses for the same key are collapsed with singleflight.

Invalidation deletes by key prefix (see feed.Scope.Prefixes). Deleting
also bumps a generation counter so a computation that started before the
delete does not write its now-stale page back.

Usage:

	backend := feedcache.NewMemoryBackend(time.Minute)
	cache := feedcache.New(backend, feedcache.DefaultOptions(), logger, metricsObserver)
	defer cache.Close()

	page, hit, err := cache.GetOrCompute(ctx, feed.CacheKey(req), ttl, compute)
*/
package feedcache
