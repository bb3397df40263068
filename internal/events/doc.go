// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package events fans feed cache invalidations out to every instance.

A Bus publishes feed.Scope values on a single topic and runs a Watermill
router whose consumer handlers apply each scope locally: one handler drops
cached pages, another notifies websocket clients. Each handler holds its own
subscription, so every handler on every instance sees every invalidation.

Transports:

  - gochannel: in-process only, for single-instance deployments and tests
  - nats: core NATS (no JetStream) against an external server
  - embedded: core NATS against an in-process EmbeddedServer

Invalidations are idempotent and best-effort. Handler failures are retried
with exponential backoff and then dropped with an error log; a lost
invalidation only means a page lives until its TTL.

Usage:

	transport, err := events.NewGoChannelTransport(logger)
	bus, err := events.NewBus(transport, events.DefaultConfig(), logger)
	bus.Subscribe("cache", func(ctx context.Context, s feed.Scope) error {
	    return feed.CacheInvalidator{Cache: cache}.Invalidate(ctx, s)
	})
	go bus.Run(ctx)
	recorder := feed.NewRecorder(store, bus, cfg, logger)
*/
package events
