// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

// blockingRunner returns err immediately, or blocks until ctx ends.
type blockingRunner struct {
	err error
}

func (b blockingRunner) RunWithContext(ctx context.Context) error {
	return b.Run(ctx)
}

func (b blockingRunner) Run(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	<-ctx.Done()
	return nil
}

func (b blockingRunner) RunGCWithContext(ctx context.Context, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

func serveUntilCanceled(t *testing.T, serve func(context.Context) error) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
		return nil
	}
}

func TestWebSocketHubService(t *testing.T) {
	svc := NewWebSocketHubService(blockingRunner{})
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q", svc.String())
	}
	if err := serveUntilCanceled(t, svc.Serve); err != nil {
		t.Errorf("Serve() error = %v", err)
	}

	hubErr := errors.New("hub crashed")
	if err := NewWebSocketHubService(blockingRunner{err: hubErr}).Serve(context.Background()); !errors.Is(err, hubErr) {
		t.Errorf("Serve() error = %v, want %v", err, hubErr)
	}
}

func TestInvalidationBusService(t *testing.T) {
	svc := NewInvalidationBusService(blockingRunner{})
	if err := serveUntilCanceled(t, svc.Serve); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() after cancel = %v, want context.Canceled", err)
	}

	lost := errors.New("nats: connection closed")
	if err := NewInvalidationBusService(blockingRunner{err: lost}).Serve(context.Background()); !errors.Is(err, lost) {
		t.Errorf("Serve() error = %v, want wrapping %v", err, lost)
	}
}

func TestBadgerGCService(t *testing.T) {
	svc := NewBadgerGCService(blockingRunner{}, 0)
	if svc.interval != 5*time.Minute {
		t.Errorf("default interval = %v", svc.interval)
	}
	if err := serveUntilCanceled(t, svc.Serve); !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v", err)
	}
}
