// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"sort"
	"time"
)

// Preference deltas applied to the interacted item's category.
const (
	LikeDelta   = 0.30
	UnlikeDelta = -0.15

	// View deltas by watch percentage.
	ViewFullDelta    = 0.20 // >= 80%
	ViewPartialDelta = 0.10 // 50-80%
	ViewBriefDelta   = 0.02 // < 50%
	ViewDefaultDelta = 0.05 // duration or watch time unknown
)

// WatchDelta returns the preference delta for a view. watchSeconds may be
// nil; durationSeconds <= 0 means the duration is unknown.
func WatchDelta(watchSeconds *float64, durationSeconds float64) float64 {
	if watchSeconds == nil || durationSeconds <= 0 {
		return ViewDefaultDelta
	}
	pct := *watchSeconds / durationSeconds
	switch {
	case pct >= 0.8:
		return ViewFullDelta
	case pct >= 0.5:
		return ViewPartialDelta
	default:
		return ViewBriefDelta
	}
}

// ClampScore bounds a preference score to [0, 1].
func ClampScore(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}

// Decay returns the read-time decay factor for a preference last touched
// at last: full strength for a week, linear to 0.5 at 30 days, then down
// to a 0.1 floor.
func Decay(now, last time.Time) float64 {
	days := now.Sub(last).Hours() / 24
	switch {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 1.0 - (days-7)/46.0
	default:
		d := 0.5 - (days-30)/120.0
		if d < 0.1 {
			return 0.1
		}
		return d
	}
}

// EffectiveScore is the stored score decayed to now.
func EffectiveScore(p *CategoryPreference, now time.Time) float64 {
	return p.Score * Decay(now, p.LastInteractionAt)
}

// RankedCategory is a category with its effective preference score.
type RankedCategory struct {
	CategoryID string
	Score      float64
}

// TopCategories ranks prefs by effective score and returns at most n
// categories with a positive score. Ties break by category ID.
func TopCategories(prefs []CategoryPreference, n int, now time.Time) []RankedCategory {
	ranked := make([]RankedCategory, 0, len(prefs))
	for i := range prefs {
		if s := EffectiveScore(&prefs[i], now); s > 0 {
			ranked = append(ranked, RankedCategory{CategoryID: prefs[i].CategoryID, Score: s})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].CategoryID < ranked[j].CategoryID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
