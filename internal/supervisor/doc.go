// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package supervisor runs the feed server's long-lived components under a
suture v4 supervisor tree.

	reelfeed
	├── data-layer
	│   ├── badger-gc            (cache.backend=badger)
	│   └── interaction-limiter  (idle entry sweep)
	├── messaging-layer
	│   ├── nats-server          (events.transport=embedded)
	│   ├── invalidation-bus
	│   └── websocket-hub
	└── api-layer
	    └── http-server

A failing invalidation consumer is restarted inside the messaging layer
without touching the HTTP server; until it recovers, cached pages on this
instance age out by TTL.

Supervisor events are logged through sutureslog, bridged to zerolog by
logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewInvalidationBusService(bus))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)
*/
package supervisor
