// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
)

// Handler applies one invalidation locally.
type Handler func(ctx context.Context, scope feed.Scope) error

// Config tunes the bus router.
type Config struct {
	// Topic carries all invalidations.
	Topic string

	// InstanceID tags published messages for logs.
	InstanceID string

	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Topic:                "feed.invalidations",
		InstanceID:           watermill.NewShortUUID(),
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 50 * time.Millisecond,
		RetryMaxInterval:     time.Second,
	}
}

// Bus publishes invalidations and dispatches received ones to handlers.
type Bus struct {
	transport *Transport
	router    *message.Router
	config    Config
	logger    zerolog.Logger

	mu       sync.Mutex
	handlers []string
	started  bool
}

var _ feed.Invalidator = (*Bus)(nil)

// NewBus creates a bus over transport. Handlers must be subscribed before Run.
func NewBus(transport *Transport, cfg Config, logger zerolog.Logger) (*Bus, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("events topic is required")
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = watermill.NewShortUUID()
	}
	logger = logger.With().Str("component", "events").Str("transport", transport.Name).Logger()
	wmLogger := logging.NewWatermillAdapter(logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	b := &Bus{transport: transport, router: router, config: cfg, logger: logger}

	// Outer to inner: drop after retries, recover panics, retry with backoff.
	router.AddMiddleware(b.dropExhausted)
	router.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      2.0,
		Logger:          wmLogger,
	}
	router.AddMiddleware(retry.Middleware)

	return b, nil
}

// Subscribe registers a named handler. Each handler gets its own
// subscription so one failing handler never blocks another.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		b.logger.Error().Str("handler", name).Msg("Handler subscribed after the bus started; ignored")
		return
	}
	b.handlers = append(b.handlers, name)
	b.router.AddConsumerHandler(name, b.config.Topic, b.transport.Subscriber, func(msg *message.Message) error {
		inv, err := DecodeInvalidation(msg.Payload)
		if err != nil {
			b.logger.Warn().Err(err).Str("handler", name).Str("message_uuid", msg.UUID).
				Msg("Dropping malformed invalidation")
			return nil
		}
		return h(msg.Context(), inv.Scope)
	})
}

// Invalidate publishes scope to every instance, including this one.
func (b *Bus) Invalidate(ctx context.Context, scope feed.Scope) error {
	payload, err := Invalidation{Scope: scope, Origin: b.config.InstanceID, At: time.Now().UTC()}.Encode()
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetaOrigin, b.config.InstanceID)
	msg.Metadata.Set(MetaScope, scope.String())
	msg.SetContext(ctx)

	if err := b.transport.Publisher.Publish(b.config.Topic, msg); err != nil {
		return fmt.Errorf("publish invalidation %s: %w", scope, err)
	}
	return nil
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (b *Bus) Run(ctx context.Context) error {
	b.mu.Lock()
	b.started = true
	b.mu.Unlock()
	return b.router.Run(ctx)
}

// Running closes once every handler is subscribed.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// Handlers returns the subscribed handler names.
func (b *Bus) Handlers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.handlers...)
}

// Close stops the router and the transport.
func (b *Bus) Close() error {
	if err := b.router.Close(); err != nil {
		return err
	}
	return b.transport.Close()
}

// String implements fmt.Stringer for supervisor logs.
func (b *Bus) String() string {
	return "events-bus"
}

// dropExhausted acks messages whose handler still fails after retries.
func (b *Bus) dropExhausted(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		out, err := h(msg)
		if err != nil {
			b.logger.Error().Err(err).Str("handler", message.HandlerNameFromCtx(msg.Context())).
				Str("scope", msg.Metadata.Get(MetaScope)).Msg("Invalidation handler failed; dropping message")
			return nil, nil
		}
		return out, nil
	}
}
