// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package services

import (
	"context"
	"fmt"
)

// InvalidationRunner is satisfied by *events.Bus.
type InvalidationRunner interface {
	Run(ctx context.Context) error
}

// InvalidationBusService consumes cross-instance cache invalidations.
//
// The bus router stops when ctx is canceled. Any other return means the
// subscriber lost its connection; suture restarts the router, and pages
// served in the meantime fall back to TTL expiry.
type InvalidationBusService struct {
	bus InvalidationRunner
}

// NewInvalidationBusService wraps bus.
func NewInvalidationBusService(bus InvalidationRunner) *InvalidationBusService {
	return &InvalidationBusService{bus: bus}
}

// Serve implements suture.Service.
func (s *InvalidationBusService) Serve(ctx context.Context) error {
	err := s.bus.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("invalidation bus stopped: %w", err)
	}
	return fmt.Errorf("invalidation bus stopped unexpectedly")
}

// String implements fmt.Stringer for suture logs.
func (s *InvalidationBusService) String() string {
	return "invalidation-bus"
}
