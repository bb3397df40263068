// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Service is the feed facade used by transports: cached page reads,
// interactions, and the catalog and moderation hooks.
type Service struct {
	engine      *Engine
	recorder    *Recorder
	cache       PageCache
	invalidator Invalidator
	logger      zerolog.Logger
}

// NewService wires the engine and recorder behind an optional page cache.
// A nil cache computes every request live. A nil invalidator falls back to
// dropping keys from the local cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(engine *Engine, recorder *Recorder, cache PageCache, inv Invalidator, logger zerolog.Logger) *Service {
	if inv == nil {
		inv = CacheInvalidator{Cache: cache}
	}
	return &Service{
		engine:      engine,
		recorder:    recorder,
		cache:       cache,
		invalidator: inv,
		logger:      logger.With().Str("component", "feed_service").Logger(),
	}
}

// Personalized returns a blended (or cold-start) page for userID.
func (s *Service) Personalized(ctx context.Context, userID string, page, pageSize int) (Page, error) {
	return s.Feed(ctx, Request{Type: TypePersonalized, UserID: userID, Page: page, PageSize: pageSize})
}

// Trending returns a public trending page. An empty window uses the default.
func (s *Service) Trending(ctx context.Context, window Window, page, pageSize int) (Page, error) {
	return s.Feed(ctx, Request{Type: TypeTrending, Window: window, Page: page, PageSize: pageSize})
}

// Following returns recent items from creators userID follows.
func (s *Service) Following(ctx context.Context, userID string, page, pageSize int) (Page, error) {
	return s.Feed(ctx, Request{Type: TypeFollowing, UserID: userID, Page: page, PageSize: pageSize})
}

// Feed serves any feed type through the page cache.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) Feed(ctx context.Context, req Request) (Page, error) {
	if req.Type == TypeTrending {
		req.UserID = ""
		if req.Window != "" {
			if _, err := ParseWindow(string(req.Window)); err != nil {
				return Page{}, err
			}
		}
	} else if err := requireID("user_id", req.UserID); err != nil {
		return Page{}, err
	}

	cfg := s.engine.Config()
	req, err := cfg.normalize(req)
	if err != nil {
		return Page{}, err
	}

	compute := func(ctx context.Context) (Page, error) {
		return s.engine.Compose(ctx, req)
	}
	if s.cache == nil {
		return compute(ctx)
	}

	page, hit, err := s.cache.GetOrCompute(ctx, CacheKey(req), cfg.TTL(req.Type), compute)
	if err != nil {
		return Page{}, err
	}
	page.Info.Cached = hit
	return page, nil
}

// RecordInteraction applies one user interaction.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) RecordInteraction(ctx context.Context, req InteractionRequest) (Effect, error) {
	return s.recorder.Record(ctx, req)
}

// Recorder exposes the interaction recorder.
func (s *Service) Recorder() *Recorder {
	return s.recorder
}

// Invalidate drops cached pages for scope. Backend failures are logged
// and swallowed; TTL expiry remains the fallback.
func (s *Service) Invalidate(ctx context.Context, scope Scope) error {
	if _, err := ParseScope(string(scope.Kind), scope.ID); err != nil {
		return err
	}
	s.invalidate(ctx, scope)
	return nil
}

// ItemUploaded upserts a new or edited item into the catalog projection and
// drops trending pages plus the pages of the owner's followers.
//
//nolint:gocritic // hugeParam: item passed by value to match Catalog.UpsertItem
func (s *Service) ItemUploaded(ctx context.Context, item Item) error {
	if err := requireID("item_id", item.ID); err != nil {
		return err
	}
	if err := requireID("owner_id", item.OwnerID); err != nil {
		return err
	}
	if item.CategoryID != "" {
		if err := requireID("category_id", item.CategoryID); err != nil {
			return err
		}
	}
	if item.DurationSeconds < 0 {
		return fmt.Errorf("%w: duration_seconds must be >= 0", ErrInvalidInput)
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.engine.now()
	}
	if err := s.engine.store.UpsertItem(ctx, item); err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}

	s.invalidate(ctx, TrendingScope())
	followers, err := s.engine.store.Followers(ctx, item.OwnerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("owner_id", item.OwnerID).Msg("list followers for invalidation failed")
		return nil
	}
	for _, f := range followers {
		s.invalidate(ctx, UserScope(f))
	}
	return nil
}

// ItemHidden marks an item ineligible and drops every page that may show it.
func (s *Service) ItemHidden(ctx context.Context, itemID string) error {
	if err := requireID("item_id", itemID); err != nil {
		return err
	}
	if err := s.engine.store.SetEligible(ctx, itemID, false); err != nil {
		return fmt.Errorf("hide item: %w", err)
	}
	s.invalidate(ctx, ItemScope(itemID))
	return nil
}

func (s *Service) invalidate(ctx context.Context, scope Scope) {
	if err := s.invalidator.Invalidate(ctx, scope); err != nil {
		s.logger.Warn().Err(err).Str("scope", scope.String()).Msg("cache invalidation failed")
	}
}
