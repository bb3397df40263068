// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/events"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/metrics"
	"github.com/tomtom215/reelfeed/internal/supervisor"
	"github.com/tomtom215/reelfeed/internal/supervisor/services"
)

// initEvents creates the invalidation bus on the configured transport.
// With the embedded transport the NATS server is started here and handed
// to the messaging layer for supervision.
func initEvents(cfg *config.Config, tree *supervisor.SupervisorTree) (*events.Bus, error) {
	logger := logging.Logger()
	wmLogger := logging.NewWatermillAdapter(logger)

	var (
		transport *events.Transport
		err       error
	)
	switch cfg.Events.Transport {
	case "gochannel":
		transport = events.NewGoChannelTransport(wmLogger)

	case "nats":
		natsCfg := events.DefaultNATSConfig(cfg.Events.NATSURL)
		natsCfg.QueueGroup = cfg.Events.QueueGroup
		transport, err = events.NewNATSTransport(natsCfg, wmLogger)
		if err != nil {
			return nil, err
		}

	case "embedded":
		srv, err := events.NewEmbeddedServer(events.ServerConfig{
			Host: cfg.Events.EmbeddedHost,
			Port: cfg.Events.EmbeddedPort,
		})
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		tree.AddMessagingService(services.NewNATSServerService(srv, cfg.Server.ShutdownTimeout))
		logging.Info().Str("url", srv.ClientURL()).Msg("Embedded NATS server started")

		natsCfg := events.DefaultNATSConfig(srv.ClientURL())
		natsCfg.QueueGroup = cfg.Events.QueueGroup
		transport, err = events.NewNATSTransport(natsCfg, wmLogger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown events transport %q", cfg.Events.Transport)
	}

	busCfg := events.DefaultConfig()
	busCfg.Topic = cfg.Events.Topic
	bus, err := events.NewBus(transport, busCfg, logger)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	logging.Info().Str("transport", transport.Name).Str("topic", busCfg.Topic).Msg("Invalidation bus ready")
	return bus, nil
}

// meteredHandler counts applied invalidations per handler.
func meteredHandler(name string, h events.Handler) events.Handler {
	return func(ctx context.Context, scope feed.Scope) error {
		err := h(ctx, scope)
		metrics.RecordInvalidationApplied(name, err)
		return err
	}
}

// busInvalidator publishes scopes on the bus. When publishing fails the
// scope is still applied to this instance's cache so the caller's own
// next read is fresh; other instances fall back to TTL expiry.
type busInvalidator struct {
	bus   feed.Invalidator
	local feed.Invalidator
}

// Invalidate implements feed.Invalidator.
func (b busInvalidator) Invalidate(ctx context.Context, scope feed.Scope) error {
	err := b.bus.Invalidate(ctx, scope)
	if err == nil {
		metrics.RecordInvalidationPublished(string(scope.Kind))
		return nil
	}
	if localErr := b.local.Invalidate(ctx, scope); localErr != nil {
		return fmt.Errorf("%w (local fallback: %v)", err, localErr)
	}
	return err
}
