// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import "errors"

// Conflict errors. The interaction is rejected and counters are unchanged;
// the accompanying Effect still carries the current state.
var (
	ErrAlreadyLiked     = errors.New("item already liked")
	ErrNotLiked         = errors.New("item not liked")
	ErrAlreadyFollowing = errors.New("already following user")
	ErrNotFollowing     = errors.New("not following user")
)

// ErrNotEligible is returned when the target of a direct interaction fails
// the visibility predicate or does not exist. Feed retrieval never surfaces
// it; ineligible candidates are dropped silently.
var ErrNotEligible = errors.New("item not eligible")

// ErrInvalidInput wraps caller mistakes (unknown kind, self-follow, bad page).
var ErrInvalidInput = errors.New("invalid input")

// ErrItemNotFound is returned by Store implementations for unknown item IDs.
var ErrItemNotFound = errors.New("item not found")

// IsConflict reports whether err is one of the conflict errors.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyLiked) ||
		errors.Is(err, ErrNotLiked) ||
		errors.Is(err, ErrAlreadyFollowing) ||
		errors.Is(err, ErrNotFollowing)
}
