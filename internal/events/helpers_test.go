// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package events

import (
	"context"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/reelfeed/internal/feed"
)

func newRawMessage(payload string) *message.Message {
	return message.NewMessage(watermill.NewUUID(), []byte(payload))
}

// prefixCache records DeletePrefixes calls.
type prefixCache struct {
	mu      sync.Mutex
	deletes [][]string
}

func (c *prefixCache) GetOrCompute(ctx context.Context, _ string, _ time.Duration, compute func(context.Context) (feed.Page, error)) (feed.Page, bool, error) {
	p, err := compute(ctx)
	return p, false, err
}

func (c *prefixCache) DeletePrefixes(_ context.Context, prefixes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, prefixes)
	return nil
}

func (c *prefixCache) deleted() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.deletes...)
}
