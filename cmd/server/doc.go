// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package main is the entry point for the Reelfeed server.

Reelfeed ranks merchant short videos ("reels") into personalized, trending
and following feeds. It records likes, views, shares and follows, keeps a
decayed per-category preference for every user, and serves diversified
pages through a best-effort page cache.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("reelfeed")
	├── DataSupervisor ("data-layer")
	│   ├── Badger value-log GC (cache.backend=badger)
	│   └── Interaction limiter sweeper
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Embedded NATS server (events.transport=embedded)
	│   ├── Invalidation bus (Watermill router)
	│   └── WebSocket hub
	└── APISupervisor ("api-layer")
	    └── HTTP server (Chi)

Component initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog with JSON or console output
 3. Store: in-memory or DuckDB
 4. Page cache: none, memory, badger or redis, behind a circuit breaker
 5. Invalidation bus: gochannel, external NATS or embedded NATS
 6. Feed engine, recorder and service
 7. Authentication (JWT, API keys, trusted header) and Casbin authorization
 8. HTTP server and supervisor tree

# Cache Invalidation

Every mutating interaction publishes a scope on the invalidation bus. Each
instance consumes the bus and drops matching keys from its page cache, then
tells the affected user's websocket clients to refetch. When the bus or
cache is unavailable, pages expire by TTL instead.

# Configuration

Common environment variables:

	HTTP_PORT=8080
	STORE_DRIVER=duckdb          # memory | duckdb
	DUCKDB_PATH=/data/reelfeed.duckdb
	CACHE_BACKEND=redis          # none | memory | badger | redis
	REDIS_URL=redis://redis:6379/0
	EVENTS_TRANSPORT=nats        # gochannel | nats | embedded
	NATS_URL=nats://nats:4222
	JWT_SECRET=...               # HS256 secret shared with the auth service
	API_KEYS=ingest:$2a$10$...   # service keys for /api/v1/admin

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests, the bus router stops, and the store is checkpointed and closed.
*/
package main
