// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelfeed/internal/feed"
)

// Metadata keys set on every invalidation message.
const (
	MetaOrigin = "origin"
	MetaScope  = "scope"
)

// Invalidation is the wire payload of one invalidation.
type Invalidation struct {
	Scope  feed.Scope `json:"scope"`
	Origin string     `json:"origin"`
	At     time.Time  `json:"at"`
}

// Encode serializes the invalidation.
func (i Invalidation) Encode() ([]byte, error) {
	return json.Marshal(i)
}

// DecodeInvalidation parses and validates a payload.
func DecodeInvalidation(data []byte) (Invalidation, error) {
	var inv Invalidation
	if err := json.Unmarshal(data, &inv); err != nil {
		return Invalidation{}, fmt.Errorf("decode invalidation: %w", err)
	}
	scope, err := feed.ParseScope(string(inv.Scope.Kind), inv.Scope.ID)
	if err != nil {
		return Invalidation{}, err
	}
	inv.Scope = scope
	return inv, nil
}
