// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Final score weights per tier.
const (
	followedBase  = 10.0
	followedFresh = 2.0 // extra for followed items younger than 24h
	categoryScale = 5.0
	trendingScale = 3.0
	similarBase   = 2.0
	recencyBonus  = 1.0 // scaled by 1 - h/24 for items younger than 24h
)

// finalScore combines a tier's base value with the recency bonus.
func finalScore(tier Tier, it *Item, base float64, now time.Time) float64 {
	h := it.AgeHours(now)
	var s float64
	switch tier {
	case TierFollowed:
		s = followedBase
		if h < 24 {
			s += followedFresh
		}
	case TierCategory:
		s = base * categoryScale
	case TierTrending:
		s = base * trendingScale
	case TierSimilar:
		s = similarBase
	}
	if h < 24 {
		s += recencyBonus * (1 - h/24)
	}
	return s
}

// Observer receives engine and recorder measurements.
type Observer interface {
	ObserveTier(tier string, elapsed time.Duration, err error)
	ObserveInteraction(kind, outcome string)
}

// Engine retrieves tiers and composes diversified pages. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	store       Store
	config      *Config
	logger      zerolog.Logger
	eligibility Eligibility
	observer    Observer
	detector    *ColdStartDetector
	now         func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithEligibility replaces the default stored-flag predicate.
func WithEligibility(el Eligibility) EngineOption {
	return func(e *Engine) { e.eligibility = el }
}

// WithObserver installs a metrics hook.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) { e.observer = o }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a composition engine over store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(store Store, cfg *Config, logger zerolog.Logger, opts ...EngineOption) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("feed engine requires a store")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feed config: %w", err)
	}
	e := &Engine{
		store:       store,
		config:      cfg,
		logger:      logger.With().Str("component", "feed").Logger(),
		eligibility: StoredEligibility{},
		detector:    NewColdStartDetector(store, cfg.ColdStartThreshold),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Compose builds one page for req without consulting any cache.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Compose(ctx context.Context, req Request) (Page, error) {
	req, err := e.config.normalize(req)
	if err != nil {
		return Page{}, err
	}
	now := e.now()
	info := Info{
		FeedType:    req.Type,
		TiersUsed:   []Tier{},
		GeneratedAt: now,
	}

	var plans []tierPlan
	withGeneral := false
	switch req.Type {
	case TypePersonalized:
		cold, err := e.detector.IsNew(ctx, req.UserID)
		if err != nil {
			return Page{}, fmt.Errorf("cold start check: %w", err)
		}
		if cold {
			info.Variant = VariantColdStart
			plans = e.coldStartPlan(req, now)
		} else {
			plans = e.establishedPlan(req, now)
		}
		withGeneral = true

	case TypeTrending:
		info.Window = string(req.Window)
		plans = []tierPlan{{tier: TierTrending, quota: req.PageSize, fetch: e.trendingFeedTier(req.Window, now)}}

	case TypeFollowing:
		followees, err := e.store.Followees(ctx, req.UserID)
		if err != nil {
			return Page{}, fmt.Errorf("list followees: %w", err)
		}
		count := len(followees)
		info.FollowedCount = &count
		plans = []tierPlan{{tier: TierFollowed, quota: req.PageSize, fetch: e.ownersTier(followees, now)}}

	default:
		return Page{}, fmt.Errorf("%w: unknown feed type %q", ErrInvalidInput, req.Type)
	}

	page := Page{Page: req.Page, PageSize: req.PageSize, ItemIDs: []string{}, Items: []Item{}}
	if req.Page > e.config.MaxPage {
		page.Info = info
		return page, nil
	}

	results, degraded := e.retrieveTiers(ctx, plans, req.Page)
	p := e.newPool(results, req.PageSize, req.Page)
	if withGeneral {
		p.general = e.generalSource(now)
	}

	var picked []Candidate
	for n := 1; n <= req.Page; n++ {
		picked = p.nextPage(ctx, req.PageSize)
	}

	info.DegradedTiers = append(degraded, p.degraded...)
	info.TiersUsed = tiersUsed(picked, p.order)
	page.Info = info
	for i := range picked {
		page.ItemIDs = append(page.ItemIDs, picked[i].Item.ID)
		page.Items = append(page.Items, picked[i].Item)
	}
	page.HasMore = len(picked) == req.PageSize
	return page, nil
}

// establishedPlan is the blended 40/30/20/10 recipe.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) establishedPlan(req Request, now time.Time) []tierPlan {
	q := EstablishedQuotas(req.PageSize)
	return []tierPlan{
		{tier: TierFollowed, quota: q.Followed, fetch: e.followedTier(req.UserID, now)},
		{tier: TierCategory, quota: q.Category, fetch: e.categoryTier(req.UserID, now)},
		{tier: TierTrending, quota: q.Trending, fetch: e.trendingTier(e.config.DefaultWindow, now)},
		{tier: TierSimilar, quota: q.Similar, fetch: e.similarTier(req.UserID, now)},
	}
}

// coldStartPlan is the 70/30 trending/category recipe for new users.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) coldStartPlan(req Request, now time.Time) []tierPlan {
	trending, category := ColdStartQuotas(req.PageSize)
	return []tierPlan{
		{tier: TierTrending, quota: trending, fetch: e.trendingTier(e.config.DefaultWindow, now)},
		{tier: TierCategory, quota: category, fetch: e.coldCategoryTier(req.UserID, now)},
	}
}

// generalSource pages through the most recent eligible items.
func (e *Engine) generalSource(now time.Time) fetchPage {
	return func(ctx context.Context, offset, limit int) ([]Candidate, error) {
		items, err := e.store.RecentItems(ctx, offset, limit)
		if err != nil {
			e.logger.Warn().Err(err).Int("offset", offset).Msg("general fill failed")
			return nil, fmt.Errorf("recent items: %w", err)
		}
		n := len(items)
		cands := scoreAll(e.eligible(ctx, items), TierGeneral, now, func(*Item) float64 { return 0 })
		if n < limit {
			return cands, errExhausted
		}
		return cands, nil
	}
}

// Diversity is the running per-page owner and category count. Items with
// no category only count against their owner.
type Diversity struct {
	maxOwner    int
	maxCategory int
	owners      map[string]int
	categories  map[string]int
}

// NewDiversity creates an empty page counter.
func NewDiversity(maxOwner, maxCategory int) *Diversity {
	return &Diversity{
		maxOwner:    maxOwner,
		maxCategory: maxCategory,
		owners:      make(map[string]int),
		categories:  make(map[string]int),
	}
}

// Admit accepts it if neither cap would be exceeded and counts it.
func (d *Diversity) Admit(it *Item) bool {
	if d.owners[it.OwnerID] >= d.maxOwner {
		return false
	}
	if it.CategoryID != "" && d.categories[it.CategoryID] >= d.maxCategory {
		return false
	}
	d.owners[it.OwnerID]++
	if it.CategoryID != "" {
		d.categories[it.CategoryID]++
	}
	return true
}

// Diversify runs the greedy single-pass filter over ordered candidates and
// stops once size items are accepted. The result may be short.
func Diversify(cands []Candidate, size, maxOwner, maxCategory int) []Candidate {
	d := NewDiversity(maxOwner, maxCategory)
	out := make([]Candidate, 0, min(size, len(cands)))
	for i := range cands {
		if len(out) >= size {
			break
		}
		if d.Admit(&cands[i].Item) {
			out = append(out, cands[i])
		}
	}
	return out
}

func tiersUsed(picked []Candidate, order map[Tier]int) []Tier {
	used := []Tier{}
	seen := make(map[Tier]bool)
	for i := range picked {
		if t := picked[i].Tier; !seen[t] {
			seen[t] = true
			used = append(used, t)
		}
	}
	sort.SliceStable(used, func(i, j int) bool { return order[used[i]] < order[used[j]] })
	return used
}
