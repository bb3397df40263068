// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package database

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/reelfeed/internal/feed"
)

// memoryShards is the number of independently locked relation shards.
const memoryShards = 32

// Memory is an in-process feed.Store for development and tests. Relations
// are sharded by key with one lock per shard; item counters are atomics.
type Memory struct {
	itemsMu sync.RWMutex
	items   map[string]*memItem

	shards [memoryShards]memShard
}

var _ feed.Store = (*Memory)(nil)

type memItem struct {
	meta     feed.Item // immutable fields only; counters live below
	views    atomic.Int64
	likes    atomic.Int64
	shares   atomic.Int64
	eligible atomic.Bool
}

func (m *memItem) snapshot() feed.Item {
	it := m.meta
	it.Views = m.views.Load()
	it.Likes = m.likes.Load()
	it.Shares = m.shares.Load()
	it.Eligible = m.eligible.Load()
	return it
}

// memShard holds relation rows keyed by their first component.
type memShard struct {
	mu        sync.RWMutex
	likes     map[string]map[string]time.Time            // user -> item
	likers    map[string]map[string]struct{}             // item -> user
	views     map[string]map[string]feed.ViewRecord      // user -> item
	shares    map[string]map[string]int                  // user -> item -> count
	follows   map[string]map[string]time.Time            // follower -> followee
	followers map[string]map[string]struct{}             // followee -> follower
	prefs     map[string]map[string]feed.CategoryPreference // user -> category
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	m := &Memory{items: make(map[string]*memItem)}
	for i := range m.shards {
		s := &m.shards[i]
		s.likes = make(map[string]map[string]time.Time)
		s.likers = make(map[string]map[string]struct{})
		s.views = make(map[string]map[string]feed.ViewRecord)
		s.shares = make(map[string]map[string]int)
		s.follows = make(map[string]map[string]time.Time)
		s.followers = make(map[string]map[string]struct{})
		s.prefs = make(map[string]map[string]feed.CategoryPreference)
	}
	return m
}

func (m *Memory) shardIndex(key string) int {
	return int(xxhash.Sum64String(key) % memoryShards)
}

func (m *Memory) shard(key string) *memShard {
	return &m.shards[m.shardIndex(key)]
}

// lockPair write-locks the shards of a and b in index order and returns
// the unlock function.
func (m *Memory) lockPair(a, b string) (sa, sb *memShard, unlock func()) {
	ia, ib := m.shardIndex(a), m.shardIndex(b)
	sa, sb = &m.shards[ia], &m.shards[ib]
	switch {
	case ia == ib:
		sa.mu.Lock()
		return sa, sb, sa.mu.Unlock
	case ia < ib:
		sa.mu.Lock()
		sb.mu.Lock()
	default:
		sb.mu.Lock()
		sa.mu.Lock()
	}
	return sa, sb, func() {
		sa.mu.Unlock()
		sb.mu.Unlock()
	}
}

func (m *Memory) item(id string) (*memItem, bool) {
	m.itemsMu.RLock()
	defer m.itemsMu.RUnlock()
	it, ok := m.items[id]
	return it, ok
}

// GetItem implements feed.Catalog.
func (m *Memory) GetItem(_ context.Context, itemID string) (feed.Item, error) {
	it, ok := m.item(itemID)
	if !ok {
		return feed.Item{}, feed.ErrItemNotFound
	}
	return it.snapshot(), nil
}

// UpsertItem implements feed.Catalog. New items take their counters from
// item; existing items keep theirs.
//
//nolint:gocritic // hugeParam: item passed by value to match feed.Catalog
func (m *Memory) UpsertItem(_ context.Context, item feed.Item) error {
	m.itemsMu.Lock()
	defer m.itemsMu.Unlock()

	meta := item
	meta.Views, meta.Likes, meta.Shares, meta.Eligible = 0, 0, 0, false
	if existing, ok := m.items[item.ID]; ok {
		replaced := &memItem{meta: meta}
		replaced.views.Store(existing.views.Load())
		replaced.likes.Store(existing.likes.Load())
		replaced.shares.Store(existing.shares.Load())
		replaced.eligible.Store(item.Eligible)
		m.items[item.ID] = replaced
		return nil
	}
	created := &memItem{meta: meta}
	created.views.Store(item.Views)
	created.likes.Store(item.Likes)
	created.shares.Store(item.Shares)
	created.eligible.Store(item.Eligible)
	m.items[item.ID] = created
	return nil
}

// SetEligible implements feed.Catalog.
func (m *Memory) SetEligible(_ context.Context, itemID string, eligible bool) error {
	it, ok := m.item(itemID)
	if !ok {
		return feed.ErrItemNotFound
	}
	it.eligible.Store(eligible)
	return nil
}

// selectItems snapshots eligible items matching keep, ordered by less.
func (m *Memory) selectItems(keep func(*feed.Item) bool, less func(a, b *feed.Item) bool) []feed.Item {
	m.itemsMu.RLock()
	out := make([]feed.Item, 0, len(m.items))
	for _, it := range m.items {
		snap := it.snapshot()
		if snap.Eligible && keep(&snap) {
			out = append(out, snap)
		}
	}
	m.itemsMu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func newestFirst(a, b *feed.Item) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func limitItems(items []feed.Item, limit int) []feed.Item {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func stringSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// ItemsByOwners implements feed.Catalog.
func (m *Memory) ItemsByOwners(_ context.Context, ownerIDs []string, limit int) ([]feed.Item, error) {
	owners := stringSet(ownerIDs)
	items := m.selectItems(func(it *feed.Item) bool {
		_, ok := owners[it.OwnerID]
		return ok
	}, newestFirst)
	return limitItems(items, limit), nil
}

// ItemsByCategories implements feed.Catalog.
func (m *Memory) ItemsByCategories(_ context.Context, categoryIDs []string, limit int) ([]feed.Item, error) {
	cats := stringSet(categoryIDs)
	items := m.selectItems(func(it *feed.Item) bool {
		_, ok := cats[it.CategoryID]
		return ok && it.CategoryID != ""
	}, newestFirst)
	return limitItems(items, limit), nil
}

// TrendingCandidates implements feed.Catalog.
func (m *Memory) TrendingCandidates(_ context.Context, since time.Time) ([]feed.Item, error) {
	return m.selectItems(func(it *feed.Item) bool {
		return !it.CreatedAt.Before(since)
	}, newestFirst), nil
}

// RecentItems implements feed.Catalog.
func (m *Memory) RecentItems(_ context.Context, offset, limit int) ([]feed.Item, error) {
	items := m.selectItems(func(*feed.Item) bool { return true }, newestFirst)
	if offset >= len(items) {
		return nil, nil
	}
	return limitItems(items[offset:], limit), nil
}

// PopularCategories implements feed.Catalog.
func (m *Memory) PopularCategories(_ context.Context, limit int) ([]string, error) {
	likes := make(map[string]int64)
	counts := make(map[string]int)
	for _, it := range m.selectItems(func(it *feed.Item) bool { return it.CategoryID != "" }, newestFirst) {
		likes[it.CategoryID] += it.Likes
		counts[it.CategoryID]++
	}
	cats := make([]string, 0, len(likes))
	for c := range likes {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		a, b := cats[i], cats[j]
		if likes[a] != likes[b] {
			return likes[a] > likes[b]
		}
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return a < b
	})
	if len(cats) > limit {
		cats = cats[:limit]
	}
	return cats, nil
}

// InsertLike implements feed.InteractionStore.
func (m *Memory) InsertLike(_ context.Context, userID, itemID string, at time.Time) (bool, error) {
	us, is, unlock := m.lockPair(userID, itemID)
	defer unlock()

	if _, ok := us.likes[userID][itemID]; ok {
		return false, nil
	}
	if us.likes[userID] == nil {
		us.likes[userID] = make(map[string]time.Time)
	}
	us.likes[userID][itemID] = at
	if is.likers[itemID] == nil {
		is.likers[itemID] = make(map[string]struct{})
	}
	is.likers[itemID][userID] = struct{}{}

	if it, ok := m.item(itemID); ok {
		it.likes.Add(1)
	}
	return true, nil
}

// DeleteLike implements feed.InteractionStore.
func (m *Memory) DeleteLike(_ context.Context, userID, itemID string) (bool, error) {
	us, is, unlock := m.lockPair(userID, itemID)
	defer unlock()

	if _, ok := us.likes[userID][itemID]; !ok {
		return false, nil
	}
	delete(us.likes[userID], itemID)
	delete(is.likers[itemID], userID)

	if it, ok := m.item(itemID); ok {
		decrementFloor(&it.likes)
	}
	return true, nil
}

// decrementFloor subtracts one unless the counter is already zero.
func decrementFloor(c *atomic.Int64) {
	for {
		v := c.Load()
		if v <= 0 || c.CompareAndSwap(v, v-1) {
			return
		}
	}
}

// HasLike implements feed.InteractionStore.
func (m *Memory) HasLike(_ context.Context, userID, itemID string) (bool, error) {
	s := m.shard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.likes[userID][itemID]
	return ok, nil
}

// GetView implements feed.InteractionStore.
func (m *Memory) GetView(_ context.Context, userID, itemID string) (feed.ViewRecord, bool, error) {
	s := m.shard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[userID][itemID]
	if ok && v.WatchSeconds != nil {
		w := *v.WatchSeconds
		v.WatchSeconds = &w
	}
	return v, ok, nil
}

// SaveView implements feed.InteractionStore.
//
//nolint:gocritic // hugeParam: view passed by value to match feed.InteractionStore
func (m *Memory) SaveView(_ context.Context, view feed.ViewRecord, countView bool) error {
	s := m.shard(view.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if view.WatchSeconds != nil {
		w := *view.WatchSeconds
		view.WatchSeconds = &w
	}
	if s.views[view.UserID] == nil {
		s.views[view.UserID] = make(map[string]feed.ViewRecord)
	}
	s.views[view.UserID][view.ItemID] = view

	if countView {
		if it, ok := m.item(view.ItemID); ok {
			it.views.Add(1)
		}
	}
	return nil
}

// RecordShare implements feed.InteractionStore.
func (m *Memory) RecordShare(_ context.Context, userID, itemID string, _ time.Time) error {
	if it, ok := m.item(itemID); ok {
		it.shares.Add(1)
	}
	if userID == "" {
		return nil
	}
	s := m.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shares[userID] == nil {
		s.shares[userID] = make(map[string]int)
	}
	s.shares[userID][itemID]++
	return nil
}

// InsertFollow implements feed.InteractionStore.
func (m *Memory) InsertFollow(_ context.Context, followerID, followeeID string, at time.Time) (bool, error) {
	fs, es, unlock := m.lockPair(followerID, followeeID)
	defer unlock()

	if _, ok := fs.follows[followerID][followeeID]; ok {
		return false, nil
	}
	if fs.follows[followerID] == nil {
		fs.follows[followerID] = make(map[string]time.Time)
	}
	fs.follows[followerID][followeeID] = at
	if es.followers[followeeID] == nil {
		es.followers[followeeID] = make(map[string]struct{})
	}
	es.followers[followeeID][followerID] = struct{}{}
	return true, nil
}

// DeleteFollow implements feed.InteractionStore.
func (m *Memory) DeleteFollow(_ context.Context, followerID, followeeID string) (bool, error) {
	fs, es, unlock := m.lockPair(followerID, followeeID)
	defer unlock()

	if _, ok := fs.follows[followerID][followeeID]; !ok {
		return false, nil
	}
	delete(fs.follows[followerID], followeeID)
	delete(es.followers[followeeID], followerID)
	return true, nil
}

// IsFollowing implements feed.InteractionStore.
func (m *Memory) IsFollowing(_ context.Context, followerID, followeeID string) (bool, error) {
	s := m.shard(followerID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.follows[followerID][followeeID]
	return ok, nil
}

// ApplyPreferenceDelta implements feed.PreferenceStore.
func (m *Memory) ApplyPreferenceDelta(_ context.Context, userID, categoryID string, delta float64, at time.Time) (feed.CategoryPreference, error) {
	s := m.shard(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefs[userID] == nil {
		s.prefs[userID] = make(map[string]feed.CategoryPreference)
	}
	p, ok := s.prefs[userID][categoryID]
	if !ok {
		p = feed.CategoryPreference{UserID: userID, CategoryID: categoryID}
	}
	p.Score = feed.ClampScore(p.Score + delta)
	p.InteractionCount++
	p.LastInteractionAt = at
	s.prefs[userID][categoryID] = p
	return p, nil
}

// ListPreferences implements feed.PreferenceStore.
func (m *Memory) ListPreferences(_ context.Context, userID string) ([]feed.CategoryPreference, error) {
	s := m.shard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]feed.CategoryPreference, 0, len(s.prefs[userID]))
	for _, p := range s.prefs[userID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

// UserActivity implements feed.ActivityReader.
func (m *Memory) UserActivity(_ context.Context, userID string) (feed.UserActivity, error) {
	s := m.shard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return feed.UserActivity{
		Likes:   len(s.likes[userID]),
		Views:   len(s.views[userID]),
		Follows: len(s.follows[userID]),
	}, nil
}

// Followees implements feed.GraphReader.
func (m *Memory) Followees(_ context.Context, userID string) ([]string, error) {
	s := m.shard(userID)
	s.mu.RLock()
	out := make([]string, 0, len(s.follows[userID]))
	for id := range s.follows[userID] {
		out = append(out, id)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

// Followers implements feed.GraphReader.
func (m *Memory) Followers(_ context.Context, userID string) ([]string, error) {
	s := m.shard(userID)
	s.mu.RLock()
	out := make([]string, 0, len(s.followers[userID]))
	for id := range s.followers[userID] {
		out = append(out, id)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

// likedItems snapshots the items userID likes.
func (m *Memory) likedItems(userID string) map[string]struct{} {
	s := m.shard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]struct{}, len(s.likes[userID]))
	for id := range s.likes[userID] {
		out[id] = struct{}{}
	}
	return out
}

// SimilarUsers implements feed.GraphReader.
func (m *Memory) SimilarUsers(_ context.Context, userID string, minCommon, limit int) ([]feed.SimilarUser, error) {
	common := make(map[string]int)
	for itemID := range m.likedItems(userID) {
		s := m.shard(itemID)
		s.mu.RLock()
		for other := range s.likers[itemID] {
			if other != userID {
				common[other]++
			}
		}
		s.mu.RUnlock()
	}

	out := make([]feed.SimilarUser, 0, len(common))
	for id, n := range common {
		if n >= minCommon {
			out = append(out, feed.SimilarUser{UserID: id, CommonLikes: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CommonLikes != out[j].CommonLikes {
			return out[i].CommonLikes > out[j].CommonLikes
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ItemsLikedBy implements feed.GraphReader.
func (m *Memory) ItemsLikedBy(_ context.Context, userIDs []string, excludeUserID string, limit int) ([]feed.Item, error) {
	counts := make(map[string]int)
	for _, u := range userIDs {
		for itemID := range m.likedItems(u) {
			counts[itemID]++
		}
	}
	for itemID := range m.likedItems(excludeUserID) {
		delete(counts, itemID)
	}

	items := m.selectItems(func(it *feed.Item) bool {
		_, ok := counts[it.ID]
		return ok
	}, func(a, b *feed.Item) bool {
		if counts[a.ID] != counts[b.ID] {
			return counts[a.ID] > counts[b.ID]
		}
		return newestFirst(a, b)
	})
	return limitItems(items, limit), nil
}
