// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/feedcache"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/metrics"
	"github.com/tomtom215/reelfeed/internal/supervisor"
	"github.com/tomtom215/reelfeed/internal/supervisor/services"
)

// memoryCleanupInterval is how often the memory backend sweeps expired pages.
const memoryCleanupInterval = time.Minute

// initCache builds the page cache. It returns a nil cache for
// backend "none"; the service then computes every page live. A redis
// server that cannot be reached at startup degrades to the memory backend
// rather than failing the process, because the cache is never required
// for correctness. feedDeadline is the engine's tier deadline; a shared
// page computation gets twice that before its result is discarded.
func initCache(ctx context.Context, cfg *config.CacheConfig, feedDeadline time.Duration, tree *supervisor.SupervisorTree) (*feedcache.Cache, string, error) {
	logger := logging.Logger()

	var (
		backend feedcache.Backend
		name    = cfg.Backend
	)
	switch cfg.Backend {
	case "none":
		logging.Warn().Msg("Feed page cache disabled (CACHE_BACKEND=none)")
		return nil, name, nil

	case "memory":
		backend = feedcache.NewMemoryBackend(memoryCleanupInterval)

	case "badger":
		b, err := feedcache.OpenBadger(cfg.BadgerPath, logger)
		if err != nil {
			return nil, name, fmt.Errorf("open badger cache: %w", err)
		}
		tree.AddDataService(services.NewBadgerGCService(b, cfg.BadgerGCInterval))
		backend = b

	case "redis":
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		client, err := feedcache.NewRedisClient(pingCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			logging.Warn().Err(err).Msg("Redis cache unavailable at startup; falling back to in-process memory cache")
			backend = feedcache.NewMemoryBackend(memoryCleanupInterval)
			name = "memory"
			break
		}
		backend = feedcache.NewRedisBackend(client)

	default:
		return nil, name, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}

	opts := feedcache.Options{
		Name:            "feedcache-" + name,
		OpTimeout:       cfg.OpTimeout,
		ComputeTimeout:  2 * feedDeadline,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	}
	cache := feedcache.New(backend, opts, logger, metrics.Observer{})

	logging.Info().
		Str("backend", name).
		Dur("personalized_ttl", cfg.PersonalizedTTL).
		Dur("trending_ttl", cfg.TrendingTTL).
		Dur("following_ttl", cfg.FollowingTTL).
		Msg("Feed page cache ready")
	return cache, name, nil
}
