// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
)

// scopeSink collects scopes delivered to a handler.
type scopeSink struct {
	mu     sync.Mutex
	scopes []feed.Scope
	got    chan struct{}
}

func newScopeSink() *scopeSink {
	return &scopeSink{got: make(chan struct{}, 64)}
}

func (s *scopeSink) handle(_ context.Context, scope feed.Scope) error {
	s.mu.Lock()
	s.scopes = append(s.scopes, scope)
	s.mu.Unlock()
	select {
	case s.got <- struct{}{}:
	default:
	}
	return nil
}

func (s *scopeSink) wait(t *testing.T, n int) []feed.Scope {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-s.got:
		case <-deadline:
			t.Fatalf("received %d of %d invalidations", i, n)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]feed.Scope(nil), s.scopes...)
}

func startBus(t *testing.T, transport *Transport, cfg Config, subscribe func(b *Bus)) *Bus {
	t.Helper()
	bus, err := NewBus(transport, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	subscribe(bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bus.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
		<-done
	})

	select {
	case <-bus.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("bus did not start")
	}
	return bus
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryInitialInterval = time.Millisecond
	cfg.RetryMaxInterval = 5 * time.Millisecond
	cfg.CloseTimeout = time.Second
	return cfg
}

func TestBus_FanOutToEveryHandler(t *testing.T) {
	transport := NewGoChannelTransport(logging.NewWatermillAdapter(zerolog.Nop()))
	cache, sockets := newScopeSink(), newScopeSink()

	bus := startBus(t, transport, testConfig(), func(b *Bus) {
		b.Subscribe("cache", cache.handle)
		b.Subscribe("websocket", sockets.handle)
	})

	want := []feed.Scope{feed.UserScope("u1"), feed.TrendingScope(), feed.ItemScope("v9")}
	for _, s := range want {
		if err := bus.Invalidate(context.Background(), s); err != nil {
			t.Fatalf("Invalidate(%s) error = %v", s, err)
		}
	}

	for name, sink := range map[string]*scopeSink{"cache": cache, "websocket": sockets} {
		if diff := cmp.Diff(want, sink.wait(t, len(want))); diff != "" {
			t.Errorf("%s handler scopes mismatch (-want +got):\n%s", name, diff)
		}
	}
	if diff := cmp.Diff([]string{"cache", "websocket"}, bus.Handlers()); diff != "" {
		t.Errorf("Handlers() mismatch (-want +got):\n%s", diff)
	}
}

func TestBus_RetriesThenDrops(t *testing.T) {
	transport := NewGoChannelTransport(logging.NewWatermillAdapter(zerolog.Nop()))
	cfg := testConfig()
	cfg.RetryMaxRetries = 2

	var mu sync.Mutex
	attempts := map[string]int{}
	flaky := func(_ context.Context, s feed.Scope) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[s.String()]++
		if s.Kind == feed.ScopeGlobal {
			return errors.New("always fails")
		}
		if attempts[s.String()] < 2 {
			return errors.New("transient")
		}
		return nil
	}
	after := newScopeSink()

	bus := startBus(t, transport, cfg, func(b *Bus) {
		b.Subscribe("flaky", flaky)
		b.Subscribe("after", after.handle)
	})

	_ = bus.Invalidate(context.Background(), feed.GlobalScope())
	_ = bus.Invalidate(context.Background(), feed.UserScope("u1"))
	after.wait(t, 2)

	// The flaky handler finishes both messages; the global one is dropped
	// after 1 + MaxRetries attempts instead of redelivering forever.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		g, u := attempts["global"], attempts["user:u1"]
		mu.Unlock()
		if g == 3 && u == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if attempts["global"] != 3 || attempts["user:u1"] != 2 {
		t.Errorf("attempts = %v, want global:3 user:u1:2", attempts)
	}
}

func TestBus_RecoversPanics(t *testing.T) {
	transport := NewGoChannelTransport(logging.NewWatermillAdapter(zerolog.Nop()))
	cfg := testConfig()
	cfg.RetryMaxRetries = 0
	sink := newScopeSink()

	var once sync.Once
	bus := startBus(t, transport, cfg, func(b *Bus) {
		b.Subscribe("panicky", func(ctx context.Context, s feed.Scope) error {
			once.Do(func() { panic("boom") })
			return sink.handle(ctx, s)
		})
	})

	_ = bus.Invalidate(context.Background(), feed.UserScope("u1"))
	_ = bus.Invalidate(context.Background(), feed.UserScope("u2"))
	got := sink.wait(t, 1)
	if got[0] != feed.UserScope("u2") {
		t.Errorf("scope after panic = %v, want user:u2", got[0])
	}
}

func TestBus_MalformedPayloadDropped(t *testing.T) {
	transport := NewGoChannelTransport(logging.NewWatermillAdapter(zerolog.Nop()))
	sink := newScopeSink()
	bus := startBus(t, transport, testConfig(), func(b *Bus) {
		b.Subscribe("sink", sink.handle)
	})

	for _, payload := range []string{`not json`, `{"scope":{"kind":"tenant","id":"t1"}}`, `{"scope":{"kind":"user"}}`} {
		if err := transport.Publisher.Publish(bus.config.Topic, newRawMessage(payload)); err != nil {
			t.Fatal(err)
		}
	}
	_ = bus.Invalidate(context.Background(), feed.TrendingScope())

	if diff := cmp.Diff([]feed.Scope{feed.TrendingScope()}, sink.wait(t, 1)); diff != "" {
		t.Errorf("scopes mismatch (-want +got):\n%s", diff)
	}
}

func TestBus_ImplementsInvalidatorForCache(t *testing.T) {
	transport := NewGoChannelTransport(logging.NewWatermillAdapter(zerolog.Nop()))
	cache := &prefixCache{}
	done := newScopeSink()

	bus := startBus(t, transport, testConfig(), func(b *Bus) {
		b.Subscribe("cache", func(ctx context.Context, s feed.Scope) error {
			if err := (feed.CacheInvalidator{Cache: cache}).Invalidate(ctx, s); err != nil {
				return err
			}
			return done.handle(ctx, s)
		})
	})

	var inv feed.Invalidator = bus
	if err := inv.Invalidate(context.Background(), feed.UserScope("u7")); err != nil {
		t.Fatal(err)
	}
	done.wait(t, 1)

	want := [][]string{{"feed:personalized:u7:", "feed:following:u7:"}}
	if diff := cmp.Diff(want, cache.deleted()); diff != "" {
		t.Errorf("deleted prefixes mismatch (-want +got):\n%s", diff)
	}
}

func TestNewBus_RequiresTopic(t *testing.T) {
	transport := NewGoChannelTransport(logging.NewWatermillAdapter(zerolog.Nop()))
	defer transport.Close()
	cfg := DefaultConfig()
	cfg.Topic = ""
	if _, err := NewBus(transport, cfg, zerolog.Nop()); err == nil {
		t.Error("NewBus() without topic succeeded")
	}
}

func TestInvalidation_RoundTrip(t *testing.T) {
	in := Invalidation{Scope: feed.ItemScope("v1"), Origin: "node-a", At: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	data, err := in.Encode()
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeInvalidation(data)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
