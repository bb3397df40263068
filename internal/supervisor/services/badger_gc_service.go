// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package services

import (
	"context"
	"time"
)

// GCRunner is satisfied by *feedcache.BadgerBackend.
type GCRunner interface {
	RunGCWithContext(ctx context.Context, interval time.Duration) error
}

// BadgerGCService reclaims value-log space held by expired feed pages.
type BadgerGCService struct {
	backend  GCRunner
	interval time.Duration
}

// NewBadgerGCService runs value-log GC every interval (default 5m).
func NewBadgerGCService(backend GCRunner, interval time.Duration) *BadgerGCService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &BadgerGCService{backend: backend, interval: interval}
}

// Serve implements suture.Service.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	return s.backend.RunGCWithContext(ctx, s.interval)
}

// String implements fmt.Stringer for suture logs.
func (s *BadgerGCService) String() string {
	return "badger-gc"
}
