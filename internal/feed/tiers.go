// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Quotas splits one page across the established-user tiers.
type Quotas struct {
	Followed int
	Category int
	Trending int
	Similar  int
}

// EstablishedQuotas applies the 40/30/20/10 split to n slots. Shares are
// rounded; the remainder goes to the similar tier and is never negative.
func EstablishedQuotas(n int) Quotas {
	q := Quotas{
		Followed: roundShare(n, 0.4),
		Category: roundShare(n, 0.3),
		Trending: roundShare(n, 0.2),
	}
	q.Similar = max(0, n-q.Followed-q.Category-q.Trending)
	return q
}

// ColdStartQuotas applies the 70/30 trending/category split to n slots.
func ColdStartQuotas(n int) (trending, category int) {
	trending = roundShare(n, 0.7)
	return trending, max(0, n-trending)
}

func roundShare(n int, share float64) int {
	return int(math.Round(float64(n) * share))
}

// fetchFunc retrieves up to limit scored candidates for one tier, best first.
type fetchFunc func(ctx context.Context, limit int) ([]Candidate, error)

// tierPlan is one tier of a feed recipe: its per-page quota and source.
type tierPlan struct {
	tier  Tier
	quota int
	fetch fetchFunc
}

// tierResult is the outcome of one tier retrieval.
type tierResult struct {
	tier  Tier
	quota int
	cands []Candidate
	err   error
	done  bool
}

// retrieveTiers runs every plan concurrently under the engine deadline and
// returns results in plan order. Tiers that fail or are still running at
// the deadline come back without candidates and are listed as degraded.
func (e *Engine) retrieveTiers(ctx context.Context, plans []tierPlan, pages int) ([]tierResult, []Tier) {
	dctx, cancel := context.WithTimeout(ctx, e.config.Deadline)
	defer cancel()

	var mu sync.Mutex
	results := make([]tierResult, len(plans))
	for i, p := range plans {
		results[i] = tierResult{tier: p.tier, quota: p.quota}
	}

	g, gctx := errgroup.WithContext(dctx)
	for i, p := range plans {
		if p.quota <= 0 {
			mu.Lock()
			results[i].done = true
			mu.Unlock()
			continue
		}
		limit := p.quota * pages * e.config.Overfetch
		g.Go(func() error {
			start := time.Now()
			cands, err := p.fetch(gctx, limit)
			e.observeTier(p.tier, start, err)

			mu.Lock()
			defer mu.Unlock()
			results[i].cands = cands
			results[i].err = err
			results[i].done = true
			// Tier failures degrade the page; they never cancel siblings.
			return nil
		})
	}

	waited := make(chan struct{})
	go func() {
		_ = g.Wait() //nolint:errcheck // tier goroutines never return errors
		close(waited)
	}()

	select {
	case <-waited:
	case <-dctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()

	out := make([]tierResult, len(results))
	var degraded []Tier
	for i, r := range results {
		switch {
		case !r.done:
			e.logger.Warn().Str("tier", string(r.tier)).Msg("tier retrieval missed deadline")
			r.cands, r.err = nil, context.DeadlineExceeded
			degraded = append(degraded, r.tier)
		case r.err != nil:
			e.logger.Warn().Str("tier", string(r.tier)).Err(r.err).Msg("tier retrieval failed")
			r.cands = nil
			degraded = append(degraded, r.tier)
		}
		out[i] = r
	}
	return out, degraded
}

// observeTier records retrieval latency when a metrics hook is set.
func (e *Engine) observeTier(tier Tier, start time.Time, err error) {
	if e.observer != nil {
		e.observer.ObserveTier(string(tier), time.Since(start), err)
	}
}

// eligible filters items through the delegated visibility predicate.
func (e *Engine) eligible(ctx context.Context, items []Item) []Item {
	out := items[:0:0]
	for i := range items {
		if e.eligibility.IsEligible(ctx, &items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// followedTier proposes recent items from followed creators.
func (e *Engine) followedTier(userID string, now time.Time) fetchFunc {
	return func(ctx context.Context, limit int) ([]Candidate, error) {
		followees, err := e.store.Followees(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list followees: %w", err)
		}
		return e.ownersTier(followees, now)(ctx, limit)
	}
}

// ownersTier proposes recent items from a fixed creator set.
func (e *Engine) ownersTier(owners []string, now time.Time) fetchFunc {
	return func(ctx context.Context, limit int) ([]Candidate, error) {
		if len(owners) == 0 {
			return nil, nil
		}
		items, err := e.store.ItemsByOwners(ctx, owners, limit)
		if err != nil {
			return nil, fmt.Errorf("items by followees: %w", err)
		}
		return scoreAll(e.eligible(ctx, items), TierFollowed, now, func(*Item) float64 { return 0 }), nil
	}
}

// categoryTier proposes items from the user's top categories by
// effective preference.
func (e *Engine) categoryTier(userID string, now time.Time) fetchFunc {
	return func(ctx context.Context, limit int) ([]Candidate, error) {
		top, err := e.topCategories(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		if len(top) == 0 {
			return nil, nil
		}
		weights := make(map[string]float64, len(top))
		ids := make([]string, len(top))
		for i, c := range top {
			weights[c.CategoryID] = c.Score
			ids[i] = c.CategoryID
		}
		items, err := e.store.ItemsByCategories(ctx, ids, limit)
		if err != nil {
			return nil, fmt.Errorf("items by categories: %w", err)
		}
		return scoreAll(e.eligible(ctx, items), TierCategory, now, func(it *Item) float64 {
			return weights[it.CategoryID]
		}), nil
	}
}

// trendingTier proposes the highest trending items created inside window.
func (e *Engine) trendingTier(window Window, now time.Time) fetchFunc {
	raw := e.trendingFeedTier(window, now)
	return func(ctx context.Context, limit int) ([]Candidate, error) {
		ranked, err := raw(ctx, limit)
		if err != nil {
			return nil, err
		}
		for i := range ranked {
			ranked[i].Score = finalScore(TierTrending, &ranked[i].Item, ranked[i].Score, now)
		}
		sortCandidates(ranked)
		return ranked, nil
	}
}

// trendingFeedTier ranks the whole window by trending score and keeps the
// top limit.
func (e *Engine) trendingFeedTier(window Window, now time.Time) fetchFunc {
	return func(ctx context.Context, limit int) ([]Candidate, error) {
		items, err := e.store.TrendingCandidates(ctx, now.Add(-window.Duration()))
		if err != nil {
			return nil, fmt.Errorf("trending candidates: %w", err)
		}
		ranked := RankTrending(e.eligible(ctx, items), now)
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
		return ranked, nil
	}
}

// similarTier proposes items liked by users who share enough likes with
// userID and that userID has not liked yet.
func (e *Engine) similarTier(userID string, now time.Time) fetchFunc {
	return func(ctx context.Context, limit int) ([]Candidate, error) {
		similar, err := e.store.SimilarUsers(ctx, userID, e.config.MinCommonLikes, e.config.SimilarUsersLimit)
		if err != nil {
			return nil, fmt.Errorf("similar users: %w", err)
		}
		if len(similar) == 0 {
			return nil, nil
		}
		ids := make([]string, len(similar))
		for i, s := range similar {
			ids[i] = s.UserID
		}
		items, err := e.store.ItemsLikedBy(ctx, ids, userID, limit)
		if err != nil {
			return nil, fmt.Errorf("items liked by similar users: %w", err)
		}
		return scoreAll(e.eligible(ctx, items), TierSimilar, now, func(*Item) float64 { return 0 }), nil
	}
}

// coldCategoryTier spreads new users across categories: their own top
// categories when they have any, globally popular ones otherwise. Items
// are interleaved round-robin and scored by position.
func (e *Engine) coldCategoryTier(userID string, now time.Time) fetchFunc {
	return func(ctx context.Context, limit int) ([]Candidate, error) {
		top, err := e.topCategories(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		cats := make([]string, 0, e.config.TopCategories)
		for _, c := range top {
			cats = append(cats, c.CategoryID)
		}
		if len(cats) == 0 {
			cats, err = e.store.PopularCategories(ctx, e.config.TopCategories)
			if err != nil {
				return nil, fmt.Errorf("popular categories: %w", err)
			}
		}
		if len(cats) == 0 {
			return nil, nil
		}

		per := (limit + len(cats) - 1) / len(cats)
		lanes := make([][]Item, len(cats))
		for i, cat := range cats {
			items, err := e.store.ItemsByCategories(ctx, []string{cat}, per)
			if err != nil {
				return nil, fmt.Errorf("items in category %s: %w", cat, err)
			}
			lanes[i] = e.eligible(ctx, items)
		}

		out := make([]Candidate, 0, limit)
		for depth := 0; len(out) < limit; depth++ {
			added := false
			for _, lane := range lanes {
				if depth < len(lane) && len(out) < limit {
					out = append(out, Candidate{Item: lane[depth], Tier: TierCategory})
					added = true
				}
			}
			if !added {
				break
			}
		}
		for i := range out {
			out[i].Score = float64(len(out) - i)
		}
		return out, nil
	}
}

// topCategories loads and ranks the user's preferences.
func (e *Engine) topCategories(ctx context.Context, userID string, now time.Time) ([]RankedCategory, error) {
	prefs, err := e.store.ListPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return TopCategories(prefs, e.config.TopCategories, now), nil
}

// scoreAll wraps items as candidates of tier with their final score and
// sorts them best first. base supplies the tier-specific input.
func scoreAll(items []Item, tier Tier, now time.Time, base func(*Item) float64) []Candidate {
	out := make([]Candidate, len(items))
	for i := range items {
		out[i] = Candidate{
			Item:  items[i],
			Tier:  tier,
			Score: finalScore(tier, &items[i], base(&items[i]), now),
		}
	}
	sortCandidates(out)
	return out
}

// sortCandidates orders by score, then newest, then ID.
func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		return lessTrending(&c[i], &c[j])
	})
}
