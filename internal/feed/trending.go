// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"fmt"
	"sort"
	"time"
)

// Engagement weights: a share is the strongest intent signal.
const (
	likeWeight  = 2.0
	shareWeight = 3.0
	viewWeight  = 0.1

	freshBoost = 1.5 // applied after decay to items younger than 6h
)

// Window restricts trending candidates by creation time.
type Window string

const (
	Window24h Window = "24h"
	Window7d  Window = "7d"
	Window30d Window = "30d"
)

// ParseWindow validates a trending window.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case Window24h, Window7d, Window30d:
		return w, nil
	default:
		return "", fmt.Errorf("%w: time_window must be 24h, 7d or 30d, got %q", ErrInvalidInput, s)
	}
}

// Duration returns the window length.
func (w Window) Duration() time.Duration {
	switch w {
	case Window24h:
		return 24 * time.Hour
	case Window30d:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// timeDecay steps down with age in hours.
func timeDecay(h float64) float64 {
	switch {
	case h < 6:
		return 1.0
	case h < 24:
		return 0.8
	case h < 168:
		return 0.5
	default:
		return 0.2
	}
}

// TrendingScore computes the time-decayed popularity of an item at now.
//
//	engagement = likes*2 + shares*3 + views*0.1
//	score      = engagement * decay(h) / (h + 1), *1.5 when h < 6
func TrendingScore(it *Item, now time.Time) float64 {
	h := it.AgeHours(now)
	engagement := float64(it.Likes)*likeWeight + float64(it.Shares)*shareWeight + float64(it.Views)*viewWeight
	score := engagement * timeDecay(h) / (h + 1)
	if h < 6 {
		score *= freshBoost
	}
	return score
}

// RankTrending scores items and orders them by score, newest first on
// ties, then by ID for a stable order.
func RankTrending(items []Item, now time.Time) []Candidate {
	out := make([]Candidate, len(items))
	for i := range items {
		out[i] = Candidate{Item: items[i], Tier: TierTrending, Score: TrendingScore(&items[i], now)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessTrending(&out[i], &out[j])
	})
	return out
}

func lessTrending(a, b *Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.Item.CreatedAt.Equal(b.Item.CreatedAt) {
		return a.Item.CreatedAt.After(b.Item.CreatedAt)
	}
	return a.Item.ID < b.Item.ID
}
