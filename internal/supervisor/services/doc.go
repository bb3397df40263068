// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package services adapts long-running feed server components to suture's
Serve(ctx) error contract.

	HTTPServerService       *http.Server with graceful drain     (api layer)
	WebSocketHubService     websocket.Hub notification fan-out    (messaging layer)
	InvalidationBusService  events.Bus watermill router           (messaging layer)
	NATSServerService       events.EmbeddedServer lifetime        (messaging layer)
	BadgerGCService         feedcache badger value-log GC         (data layer)

Each wrapper accepts a small interface instead of the concrete type so the
package does not import the components it supervises, and so tests can
substitute fakes.

Services return ctx.Err() on shutdown and a wrapped error on failure;
suture restarts failed services with backoff per the tree's TreeConfig.
*/
package services
