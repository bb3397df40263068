// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import "context"

// IsColdStart reports whether a user has too little history to personalize.
func IsColdStart(a UserActivity, threshold int) bool {
	return a.Total() < threshold
}

// ColdStartDetector classifies users from their raw interaction counts.
type ColdStartDetector struct {
	store     ActivityReader
	threshold int
}

// NewColdStartDetector creates a detector using the given threshold.
func NewColdStartDetector(store ActivityReader, threshold int) *ColdStartDetector {
	return &ColdStartDetector{store: store, threshold: threshold}
}

// IsNew reports whether userID is in cold start.
func (d *ColdStartDetector) IsNew(ctx context.Context, userID string) (bool, error) {
	a, err := d.store.UserActivity(ctx, userID)
	if err != nil {
		return false, err
	}
	return IsColdStart(a, d.threshold), nil
}
