// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
)

// Interaction outcomes reported to the Observer.
const (
	outcomeOK       = "ok"
	outcomeConflict = "conflict"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// lockStripes is the number of striped mutexes guarding view read-then-write.
const lockStripes = 256

// keyLocks serializes work per (user, item) without a global lock.
type keyLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (k *keyLocks) lock(userID, itemID string) func() {
	m := &k.stripes[xxhash.Sum64String(userID+"\x00"+itemID)%lockStripes]
	m.Lock()
	return m.Unlock
}

// Recorder applies user interactions: conditional writes, counter updates,
// preference deltas and cache invalidation.
type Recorder struct {
	store       Store
	config      *Config
	logger      zerolog.Logger
	eligibility Eligibility
	invalidator Invalidator
	observer    Observer
	locks       keyLocks
	now         func() time.Time
}

// RecorderOption customizes a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderEligibility replaces the default stored-flag predicate.
func WithRecorderEligibility(el Eligibility) RecorderOption {
	return func(r *Recorder) { r.eligibility = el }
}

// WithRecorderObserver installs a metrics hook.
func WithRecorderObserver(o Observer) RecorderOption {
	return func(r *Recorder) { r.observer = o }
}

// WithRecorderClock overrides time.Now, for tests.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder creates a recorder. A nil invalidator disables invalidation.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecorder(store Store, inv Invalidator, cfg *Config, logger zerolog.Logger, opts ...RecorderOption) *Recorder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if inv == nil {
		inv = NopInvalidator{}
	}
	r := &Recorder{
		store:       store,
		config:      cfg,
		logger:      logger.With().Str("component", "recorder").Logger(),
		eligibility: StoredEligibility{},
		invalidator: inv,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record dispatches one interaction. Conflict errors come with an Effect
// describing the current state.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (r *Recorder) Record(ctx context.Context, req InteractionRequest) (Effect, error) {
	var (
		eff Effect
		err error
	)
	switch req.Kind {
	case KindLike:
		eff, err = r.Like(ctx, req.UserID, req.ItemID)
	case KindUnlike:
		eff, err = r.Unlike(ctx, req.UserID, req.ItemID)
	case KindView:
		eff, err = r.View(ctx, req.UserID, req.ItemID, req.WatchSeconds)
	case KindShare:
		eff, err = r.Share(ctx, req.UserID, req.ItemID)
	case KindFollow:
		eff, err = r.Follow(ctx, req.UserID, req.TargetUserID)
	case KindUnfollow:
		eff, err = r.Unfollow(ctx, req.UserID, req.TargetUserID)
	default:
		return Effect{}, fmt.Errorf("%w: unknown interaction kind %q", ErrInvalidInput, req.Kind)
	}
	return eff, err
}

// Like records a like, bumps likes_count and raises the category preference.
func (r *Recorder) Like(ctx context.Context, userID, itemID string) (eff Effect, err error) {
	defer r.observe(KindLike, &err)
	if err := validateUserItem(userID, itemID); err != nil {
		return Effect{Kind: KindLike}, err
	}
	item, err := r.target(ctx, itemID)
	if err != nil {
		return Effect{Kind: KindLike, ItemID: itemID}, err
	}

	inserted, err := r.store.InsertLike(ctx, userID, itemID, r.now())
	if err != nil {
		return Effect{Kind: KindLike, ItemID: itemID}, fmt.Errorf("insert like: %w", err)
	}
	if !inserted {
		return r.effect(ctx, KindLike, item, boolPtr(true)), ErrAlreadyLiked
	}

	eff = r.effect(ctx, KindLike, item, boolPtr(true))
	eff.PreferenceDelta = r.applyPreference(ctx, userID, item.CategoryID, LikeDelta)
	r.invalidate(ctx, UserScope(userID))
	return eff, nil
}

// Unlike removes a like, decrements likes_count (floored at zero) and
// lowers the category preference. Unliking is allowed on items that have
// since become ineligible.
func (r *Recorder) Unlike(ctx context.Context, userID, itemID string) (eff Effect, err error) {
	defer r.observe(KindUnlike, &err)
	if err := validateUserItem(userID, itemID); err != nil {
		return Effect{Kind: KindUnlike}, err
	}
	item, err := r.store.GetItem(ctx, itemID)
	if err != nil {
		return Effect{Kind: KindUnlike, ItemID: itemID}, notEligible(itemID, err)
	}

	deleted, err := r.store.DeleteLike(ctx, userID, itemID)
	if err != nil {
		return Effect{Kind: KindUnlike, ItemID: itemID}, fmt.Errorf("delete like: %w", err)
	}
	if !deleted {
		return r.effect(ctx, KindUnlike, item, boolPtr(false)), ErrNotLiked
	}

	eff = r.effect(ctx, KindUnlike, item, boolPtr(false))
	eff.PreferenceDelta = r.applyPreference(ctx, userID, item.CategoryID, UnlikeDelta)
	r.invalidate(ctx, UserScope(userID))
	return eff, nil
}

// View records or updates the single view row for (user, item). The first
// view always counts. A repeat view counts only when its watch time reaches
// RewatchRatio times the stored value. Counted views apply the watch delta.
// Views do not invalidate cached pages; TTL expiry covers them.
func (r *Recorder) View(ctx context.Context, userID, itemID string, watchSeconds *float64) (eff Effect, err error) {
	defer r.observe(KindView, &err)
	if err := validateUserItem(userID, itemID); err != nil {
		return Effect{Kind: KindView}, err
	}
	item, err := r.target(ctx, itemID)
	if err != nil {
		return Effect{Kind: KindView, ItemID: itemID}, err
	}
	watch := clampWatch(watchSeconds, item.DurationSeconds)

	unlock := r.locks.lock(userID, itemID)
	prev, found, err := r.store.GetView(ctx, userID, itemID)
	if err != nil {
		unlock()
		return Effect{Kind: KindView, ItemID: itemID}, fmt.Errorf("get view: %w", err)
	}

	now := r.now()
	counted := !found || RewatchQualifies(prev.WatchSeconds, watch, r.config.RewatchRatio)
	rec := ViewRecord{
		UserID:       userID,
		ItemID:       itemID,
		WatchSeconds: watch,
		CreatedAt:    now,
		LastViewedAt: now,
	}
	if found {
		rec.CreatedAt = prev.CreatedAt
		if watch == nil {
			rec.WatchSeconds = prev.WatchSeconds
		}
	}
	err = r.store.SaveView(ctx, rec, counted)
	unlock()
	if err != nil {
		return Effect{Kind: KindView, ItemID: itemID}, fmt.Errorf("save view: %w", err)
	}

	eff = r.effect(ctx, KindView, item, nil)
	eff.ViewCounted = counted
	if counted {
		eff.PreferenceDelta = r.applyPreference(ctx, userID, item.CategoryID, WatchDelta(watch, item.DurationSeconds))
	}
	return eff, nil
}

// RewatchQualifies reports whether a repeat view counts again. A missing
// new watch time never qualifies; when nothing positive was stored, any
// positive watch time qualifies.
func RewatchQualifies(prev, next *float64, ratio float64) bool {
	if next == nil {
		return false
	}
	if prev == nil || *prev <= 0 {
		return *next > 0
	}
	return *next >= *prev*ratio
}

// clampWatch bounds a reported watch time to [0, duration]. An unknown
// duration only bounds below.
func clampWatch(w *float64, duration float64) *float64 {
	if w == nil {
		return nil
	}
	v := *w
	if v < 0 {
		v = 0
	}
	if duration > 0 && v > duration {
		v = duration
	}
	return &v
}

// Share bumps shares_count. An empty userID is an anonymous share and is
// counted without a per-user record.
func (r *Recorder) Share(ctx context.Context, userID, itemID string) (eff Effect, err error) {
	defer r.observe(KindShare, &err)
	if err := requireID("item_id", itemID); err != nil {
		return Effect{Kind: KindShare}, err
	}
	if userID != "" {
		if err := requireID("user_id", userID); err != nil {
			return Effect{Kind: KindShare}, err
		}
	}
	item, err := r.target(ctx, itemID)
	if err != nil {
		return Effect{Kind: KindShare, ItemID: itemID}, err
	}
	if err := r.store.RecordShare(ctx, userID, itemID, r.now()); err != nil {
		return Effect{Kind: KindShare, ItemID: itemID}, fmt.Errorf("record share: %w", err)
	}
	return r.effect(ctx, KindShare, item, nil), nil
}

// Follow creates a follow edge.
func (r *Recorder) Follow(ctx context.Context, followerID, followeeID string) (eff Effect, err error) {
	defer r.observe(KindFollow, &err)
	if err := validateFollow(followerID, followeeID); err != nil {
		return Effect{Kind: KindFollow}, err
	}
	eff = Effect{Kind: KindFollow, TargetUserID: followeeID, IsFollowing: boolPtr(true)}
	inserted, err := r.store.InsertFollow(ctx, followerID, followeeID, r.now())
	if err != nil {
		return Effect{Kind: KindFollow, TargetUserID: followeeID}, fmt.Errorf("insert follow: %w", err)
	}
	if !inserted {
		return eff, ErrAlreadyFollowing
	}
	r.invalidate(ctx, UserScope(followerID))
	return eff, nil
}

// Unfollow deletes a follow edge.
func (r *Recorder) Unfollow(ctx context.Context, followerID, followeeID string) (eff Effect, err error) {
	defer r.observe(KindUnfollow, &err)
	if err := validateFollow(followerID, followeeID); err != nil {
		return Effect{Kind: KindUnfollow}, err
	}
	eff = Effect{Kind: KindUnfollow, TargetUserID: followeeID, IsFollowing: boolPtr(false)}
	deleted, err := r.store.DeleteFollow(ctx, followerID, followeeID)
	if err != nil {
		return Effect{Kind: KindUnfollow, TargetUserID: followeeID}, fmt.Errorf("delete follow: %w", err)
	}
	if !deleted {
		return eff, ErrNotFollowing
	}
	r.invalidate(ctx, UserScope(followerID))
	return eff, nil
}

// target loads an item that must pass the visibility predicate.
func (r *Recorder) target(ctx context.Context, itemID string) (Item, error) {
	item, err := r.store.GetItem(ctx, itemID)
	if err != nil {
		return Item{}, notEligible(itemID, err)
	}
	if !r.eligibility.IsEligible(ctx, &item) {
		return Item{}, fmt.Errorf("%w: %s", ErrNotEligible, itemID)
	}
	return item, nil
}

func notEligible(itemID string, err error) error {
	if errors.Is(err, ErrItemNotFound) {
		return fmt.Errorf("%w: %w", ErrNotEligible, err)
	}
	return fmt.Errorf("get item %s: %w", itemID, err)
}

// effect reloads the item's counters after a write. If the reload fails
// the counters from before the write are reported.
func (r *Recorder) effect(ctx context.Context, kind InteractionKind, item Item, liked *bool) Effect {
	if fresh, err := r.store.GetItem(ctx, item.ID); err == nil {
		item = fresh
	}
	return Effect{
		Kind:        kind,
		ItemID:      item.ID,
		LikesCount:  item.Likes,
		ViewsCount:  item.Views,
		SharesCount: item.Shares,
		IsLiked:     liked,
	}
}

// applyPreference adjusts the user's affinity to categoryID. Failures are
// logged and swallowed; the interaction itself is already stored.
func (r *Recorder) applyPreference(ctx context.Context, userID, categoryID string, delta float64) float64 {
	if categoryID == "" {
		return 0
	}
	if _, err := r.store.ApplyPreferenceDelta(ctx, userID, categoryID, delta, r.now()); err != nil {
		r.logger.Warn().
			Err(err).
			Str("user_id", userID).
			Str("category_id", categoryID).
			Msg("preference update failed")
		return 0
	}
	return delta
}

// invalidate drops cached pages; failures only log.
func (r *Recorder) invalidate(ctx context.Context, scope Scope) {
	if err := r.invalidator.Invalidate(ctx, scope); err != nil {
		r.logger.Warn().Err(err).Str("scope", scope.String()).Msg("cache invalidation failed")
	}
}

func (r *Recorder) observe(kind InteractionKind, errp *error) {
	if r.observer == nil {
		return
	}
	outcome := outcomeOK
	switch err := *errp; {
	case err == nil:
	case IsConflict(err):
		outcome = outcomeConflict
	case errors.Is(err, ErrNotEligible), errors.Is(err, ErrInvalidInput):
		outcome = outcomeRejected
	default:
		outcome = outcomeError
	}
	r.observer.ObserveInteraction(string(kind), outcome)
}

func validateUserItem(userID, itemID string) error {
	if err := requireID("user_id", userID); err != nil {
		return err
	}
	return requireID("item_id", itemID)
}

func validateFollow(followerID, followeeID string) error {
	if err := requireID("user_id", followerID); err != nil {
		return err
	}
	if err := requireID("target_user_id", followeeID); err != nil {
		return err
	}
	if followerID == followeeID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalidInput)
	}
	return nil
}
