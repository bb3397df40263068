// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/reelfeed/internal/feed"
)

func ptr(f float64) *float64 { return &f }

func TestRecorder_LikeIsIdempotent(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.add(t, item("v1", "m1", "electronics", time.Hour))
	ctx := context.Background()

	eff, err := env.recorder.Like(ctx, "u1", "v1")
	if err != nil {
		t.Fatalf("Like() error = %v", err)
	}
	if eff.LikesCount != 1 || eff.IsLiked == nil || !*eff.IsLiked {
		t.Errorf("Like() effect = %+v", eff)
	}
	if eff.PreferenceDelta != feed.LikeDelta {
		t.Errorf("PreferenceDelta = %v, want %v", eff.PreferenceDelta, feed.LikeDelta)
	}
	if diff := cmp.Diff([]feed.Scope{feed.UserScope("u1")}, env.inv.take()); diff != "" {
		t.Errorf("invalidations mismatch (-want +got):\n%s", diff)
	}

	eff, err = env.recorder.Like(ctx, "u1", "v1")
	if !errors.Is(err, feed.ErrAlreadyLiked) {
		t.Fatalf("second Like() error = %v, want ErrAlreadyLiked", err)
	}
	if eff.LikesCount != 1 || eff.IsLiked == nil || !*eff.IsLiked {
		t.Errorf("conflict effect = %+v, want current state", eff)
	}
	if got := env.inv.take(); len(got) != 0 {
		t.Errorf("conflict invalidated %v", got)
	}

	prefs, _ := env.store.ListPreferences(ctx, "u1")
	if len(prefs) != 1 || prefs[0].Score != feed.LikeDelta || prefs[0].InteractionCount != 1 {
		t.Errorf("preferences after duplicate like = %+v", prefs)
	}
	if got := env.observer.outcome("like", "conflict"); got != 1 {
		t.Errorf("like/conflict observations = %d, want 1", got)
	}
}

func TestRecorder_Unlike(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.add(t, item("v1", "m1", "electronics", time.Hour))
	ctx := context.Background()

	eff, err := env.recorder.Unlike(ctx, "u1", "v1")
	if !errors.Is(err, feed.ErrNotLiked) {
		t.Fatalf("Unlike() of non-liked error = %v, want ErrNotLiked", err)
	}
	if eff.LikesCount != 0 || eff.IsLiked == nil || *eff.IsLiked {
		t.Errorf("conflict effect = %+v", eff)
	}

	if _, err := env.recorder.Like(ctx, "u1", "v1"); err != nil {
		t.Fatal(err)
	}
	eff, err = env.recorder.Unlike(ctx, "u1", "v1")
	if err != nil {
		t.Fatalf("Unlike() error = %v", err)
	}
	if eff.LikesCount != 0 || eff.PreferenceDelta != feed.UnlikeDelta {
		t.Errorf("Unlike() effect = %+v", eff)
	}

	prefs, _ := env.store.ListPreferences(ctx, "u1")
	want := feed.ClampScore(feed.LikeDelta + feed.UnlikeDelta)
	if len(prefs) != 1 || prefs[0].Score != want {
		t.Errorf("preference after like+unlike = %+v, want score %v", prefs, want)
	}
}

func TestRecorder_Eligibility(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	hidden := item("hidden", "m1", "c1", time.Hour)
	hidden.Eligible = false
	env.add(t, item("v1", "m1", "c1", time.Hour), hidden)
	ctx := context.Background()

	for _, kind := range []feed.InteractionKind{feed.KindLike, feed.KindView, feed.KindShare} {
		_, err := env.recorder.Record(ctx, feed.InteractionRequest{Kind: kind, UserID: "u1", ItemID: "hidden"})
		if !errors.Is(err, feed.ErrNotEligible) {
			t.Errorf("%s on hidden item error = %v, want ErrNotEligible", kind, err)
		}
	}

	_, err := env.recorder.Like(ctx, "u1", "ghost")
	if !errors.Is(err, feed.ErrNotEligible) || !errors.Is(err, feed.ErrItemNotFound) {
		t.Errorf("Like(unknown) error = %v, want ErrNotEligible wrapping ErrItemNotFound", err)
	}

	// A like survives the item being hidden and can still be withdrawn.
	if _, err := env.recorder.Like(ctx, "u1", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := env.store.SetEligible(ctx, "v1", false); err != nil {
		t.Fatal(err)
	}
	if _, err := env.recorder.Unlike(ctx, "u1", "v1"); err != nil {
		t.Errorf("Unlike() on hidden item error = %v", err)
	}
}

func TestRecorder_DelegatedEligibility(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.add(t, item("v1", "blocked", "c1", time.Hour))

	rec := feed.NewRecorder(env.store, nil, nil, zerologNop(),
		feed.WithRecorderEligibility(feed.EligibilityFunc(func(_ context.Context, it *feed.Item) bool {
			return it.OwnerID != "blocked"
		})))
	if _, err := rec.Like(context.Background(), "u1", "v1"); !errors.Is(err, feed.ErrNotEligible) {
		t.Errorf("Like() error = %v, want ErrNotEligible from delegated predicate", err)
	}
}

func TestRecorder_ViewCounting(t *testing.T) {
	tests := []struct {
		name        string
		first       *float64
		second      *float64
		wantCounted bool
		wantWatch   *float64
	}{
		{"small increase", ptr(10), ptr(12), false, ptr(12)},
		{"exact 25 percent", ptr(10), ptr(12.5), true, ptr(12.5)},
		{"large increase", ptr(10), ptr(30), true, ptr(30)},
		{"shorter rewatch", ptr(10), ptr(4), false, ptr(4)},
		{"missing watch keeps stored", ptr(10), nil, false, ptr(10)},
		{"first without watch", nil, ptr(5), true, ptr(5)},
		{"zero stored", ptr(0), ptr(1), true, ptr(1)},
		{"clamped to duration", ptr(10), ptr(500), true, ptr(40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, envOptions{})
			env.add(t, item("v1", "m1", "c1", time.Hour))
			ctx := context.Background()

			eff, err := env.recorder.View(ctx, "u1", "v1", tt.first)
			if err != nil {
				t.Fatalf("first View() error = %v", err)
			}
			if !eff.ViewCounted || eff.ViewsCount != 1 {
				t.Fatalf("first view effect = %+v, want counted", eff)
			}

			eff, err = env.recorder.View(ctx, "u1", "v1", tt.second)
			if err != nil {
				t.Fatalf("second View() error = %v", err)
			}
			if eff.ViewCounted != tt.wantCounted {
				t.Errorf("ViewCounted = %v, want %v", eff.ViewCounted, tt.wantCounted)
			}
			wantViews := int64(1)
			if tt.wantCounted {
				wantViews = 2
			}
			if eff.ViewsCount != wantViews {
				t.Errorf("ViewsCount = %d, want %d", eff.ViewsCount, wantViews)
			}

			rec, ok, _ := env.store.GetView(ctx, "u1", "v1")
			if !ok {
				t.Fatal("view record missing")
			}
			if diff := cmp.Diff(tt.wantWatch, rec.WatchSeconds); diff != "" {
				t.Errorf("stored watch mismatch (-want +got):\n%s", diff)
			}
			if got := env.inv.take(); len(got) != 0 {
				t.Errorf("views invalidated %v", got)
			}
		})
	}
}

func TestRecorder_ViewPreferenceDelta(t *testing.T) {
	tests := []struct {
		watch *float64
		want  float64
	}{
		{ptr(40), feed.ViewFullDelta},
		{ptr(32), feed.ViewFullDelta},
		{ptr(20), feed.ViewPartialDelta},
		{ptr(5), feed.ViewBriefDelta},
		{nil, feed.ViewDefaultDelta},
	}
	for _, tt := range tests {
		env := newTestEnv(t, envOptions{})
		env.add(t, item("v1", "m1", "c1", time.Hour))
		eff, err := env.recorder.View(context.Background(), "u1", "v1", tt.watch)
		if err != nil {
			t.Fatal(err)
		}
		if eff.PreferenceDelta != tt.want {
			t.Errorf("watch %v: PreferenceDelta = %v, want %v", tt.watch, eff.PreferenceDelta, tt.want)
		}
	}
}

func TestRecorder_ConcurrentDuplicateViews(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.add(t, item("v1", "m1", "c1", time.Hour))

	const retries = 16
	var wg sync.WaitGroup
	for i := 0; i < retries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.recorder.View(context.Background(), "u1", "v1", ptr(10)); err != nil {
				t.Errorf("View() error = %v", err)
			}
		}()
	}
	wg.Wait()

	it, _ := env.store.GetItem(context.Background(), "v1")
	if it.Views != 1 {
		t.Errorf("views_count = %d after duplicate retries, want 1", it.Views)
	}
}

func TestRecorder_ConcurrentDoubleTap(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.add(t, item("v1", "m1", "c1", time.Hour))

	const taps = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, dupes int
	)
	for i := 0; i < taps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.recorder.Like(context.Background(), "u1", "v1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, feed.ErrAlreadyLiked):
				dupes++
			default:
				t.Errorf("Like() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 || dupes != taps-1 {
		t.Errorf("got %d successes and %d conflicts, want 1 and %d", ok, dupes, taps-1)
	}
	it, _ := env.store.GetItem(context.Background(), "v1")
	if it.Likes != 1 {
		t.Errorf("likes_count = %d, want 1", it.Likes)
	}
}

func TestRecorder_ConcurrentLikesFromManyUsers(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.add(t, item("viral", "m1", "c1", time.Hour))

	const users = 64
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := env.recorder.Like(context.Background(), fmt.Sprintf("u%d", i), "viral"); err != nil {
				t.Errorf("Like() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	it, _ := env.store.GetItem(context.Background(), "viral")
	if it.Likes != users {
		t.Errorf("likes_count = %d, want %d", it.Likes, users)
	}
}

func TestRecorder_PreferenceStaysBounded(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()
	for i := 0; i < 6; i++ {
		env.add(t, item(fmt.Sprintf("v%d", i), "m1", "c1", time.Hour))
	}

	// Alternate likes, views and unlikes well past both bounds.
	for round := 0; round < 3; round++ {
		for i := 0; i < 6; i++ {
			id := fmt.Sprintf("v%d", i)
			_, _ = env.recorder.Like(ctx, "u1", id)
			_, _ = env.recorder.View(ctx, "u1", id, ptr(float64(10*(round+1))))
		}
		assertPreferenceBounds(t, env, "u1")
		for i := 0; i < 6; i++ {
			_, _ = env.recorder.Unlike(ctx, "u1", fmt.Sprintf("v%d", i))
		}
		assertPreferenceBounds(t, env, "u1")
	}
}

func assertPreferenceBounds(t *testing.T, env *testEnv, userID string) {
	t.Helper()
	prefs, err := env.store.ListPreferences(context.Background(), userID)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range prefs {
		if p.Score < 0 || p.Score > 1 {
			t.Errorf("preference %s = %v, outside [0, 1]", p.CategoryID, p.Score)
		}
	}
}

func TestRecorder_Share(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.add(t, item("v1", "m1", "c1", time.Hour))
	ctx := context.Background()

	for _, user := range []string{"u1", "u1", ""} {
		if _, err := env.recorder.Share(ctx, user, "v1"); err != nil {
			t.Fatalf("Share(%q) error = %v", user, err)
		}
	}
	eff, err := env.recorder.Share(ctx, "", "v1")
	if err != nil {
		t.Fatal(err)
	}
	if eff.SharesCount != 4 {
		t.Errorf("SharesCount = %d, want 4", eff.SharesCount)
	}
	if got := env.inv.take(); len(got) != 0 {
		t.Errorf("shares invalidated %v", got)
	}
	if _, err := env.recorder.Share(ctx, "bad user", "v1"); !errors.Is(err, feed.ErrInvalidInput) {
		t.Errorf("Share(bad user) error = %v, want ErrInvalidInput", err)
	}
}

func TestRecorder_Follow(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	ctx := context.Background()

	if _, err := env.recorder.Follow(ctx, "u1", "u1"); !errors.Is(err, feed.ErrInvalidInput) {
		t.Errorf("self-follow error = %v, want ErrInvalidInput", err)
	}

	eff, err := env.recorder.Follow(ctx, "u1", "m1")
	if err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if eff.IsFollowing == nil || !*eff.IsFollowing || eff.TargetUserID != "m1" {
		t.Errorf("Follow() effect = %+v", eff)
	}
	if _, err := env.recorder.Follow(ctx, "u1", "m1"); !errors.Is(err, feed.ErrAlreadyFollowing) {
		t.Errorf("duplicate Follow() error = %v, want ErrAlreadyFollowing", err)
	}
	if _, err := env.recorder.Unfollow(ctx, "u1", "m1"); err != nil {
		t.Errorf("Unfollow() error = %v", err)
	}
	if _, err := env.recorder.Unfollow(ctx, "u1", "m1"); !errors.Is(err, feed.ErrNotFollowing) {
		t.Errorf("duplicate Unfollow() error = %v, want ErrNotFollowing", err)
	}

	want := []feed.Scope{feed.UserScope("u1"), feed.UserScope("u1")}
	if diff := cmp.Diff(want, env.inv.take()); diff != "" {
		t.Errorf("invalidations mismatch (-want +got):\n%s", diff)
	}
}

func TestRecorder_InvalidationFailureIsSwallowed(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.inv.err = errors.New("cache down")
	env.add(t, item("v1", "m1", "c1", time.Hour))

	if _, err := env.recorder.Like(context.Background(), "u1", "v1"); err != nil {
		t.Errorf("Like() with failing invalidator error = %v", err)
	}
}

func TestRecorder_Record(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.add(t, item("v1", "m1", "c1", time.Hour))
	ctx := context.Background()

	if _, err := env.recorder.Record(ctx, feed.InteractionRequest{Kind: "poke", UserID: "u1", ItemID: "v1"}); !errors.Is(err, feed.ErrInvalidInput) {
		t.Errorf("unknown kind error = %v, want ErrInvalidInput", err)
	}
	if _, err := env.recorder.Record(ctx, feed.InteractionRequest{Kind: feed.KindLike, UserID: "u1", ItemID: "v1:x"}); !errors.Is(err, feed.ErrInvalidInput) {
		t.Errorf("bad item id error = %v, want ErrInvalidInput", err)
	}
	eff, err := env.recorder.Record(ctx, feed.InteractionRequest{Kind: feed.KindFollow, UserID: "u1", TargetUserID: "m1"})
	if err != nil || eff.Kind != feed.KindFollow {
		t.Errorf("Record(follow) = %+v, %v", eff, err)
	}
}

func TestRewatchQualifies(t *testing.T) {
	tests := []struct {
		name       string
		prev, next *float64
		want       bool
	}{
		{"nil next", ptr(10), nil, false},
		{"nil prev positive next", nil, ptr(1), true},
		{"nil prev zero next", nil, ptr(0), false},
		{"zero prev", ptr(0), ptr(0.1), true},
		{"below ratio", ptr(10), ptr(12.49), false},
		{"at ratio", ptr(10), ptr(12.5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := feed.RewatchQualifies(tt.prev, tt.next, 1.25); got != tt.want {
				t.Errorf("RewatchQualifies() = %v, want %v", got, tt.want)
			}
		})
	}
}
