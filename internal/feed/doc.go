// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package feed ranks and composes short-video feeds.
//
// # Overview
//
// The package turns recorded interactions into ordered pages of item IDs:
//
//   - Recorder: like, unlike, view, share, follow and unfollow with
//     at-most-one-active-record semantics and atomic counters
//   - Preferences: per-(user, category) affinity, clamped to [0,1] on write
//     and decayed by age at read time
//   - Trending: time-decayed engagement score per item
//   - Tiers: followed, category, trending and similar-user retrievers run
//     concurrently, then a most-recent general tier fills the shortfall
//   - Composer: tier-priority ordering and a greedy per-owner and
//     per-category diversity filter
//   - Service: personalized, trending and following feeds behind a
//     best-effort page cache
//
// # Cold Start
//
// Users with fewer than three raw interactions (likes + views + follows)
// get a 70/30 trending/category blend instead of the four-tier blend.
//
// # Storage
//
// The package defines the Store interface it reads and writes through and
// has no dependency on a particular database. See internal/database for the
// in-memory and DuckDB implementations.
//
// # Thread Safety
//
// Recorder and Service are safe for concurrent use. Per-request state
// (tier results, diversity counters) is never shared between requests.
package feed
