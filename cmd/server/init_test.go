// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package main

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/feed"
)

func TestFeedConfig_MapsLoadedValues(t *testing.T) {
	cfg := &config.Config{
		Feed: config.FeedConfig{
			DefaultPageSize:    10,
			MaxPageSize:        40,
			MaxPage:            7,
			Overfetch:          3,
			GeneralBatches:     2,
			Deadline:           time.Second,
			MaxPerOwner:        2,
			MaxPerCategory:     4,
			SimilarUsersLimit:  25,
			MinCommonLikes:     2,
			ColdStartThreshold: 5,
			RewatchRatio:       1.5,
			TopCategories:      3,
			DefaultWindow:      "24h",
		},
		Cache: config.CacheConfig{
			PersonalizedTTL: time.Minute,
			TrendingTTL:     2 * time.Minute,
			FollowingTTL:    3 * time.Minute,
		},
	}

	fc := feedConfig(cfg)
	if err := fc.Validate(); err != nil {
		t.Fatalf("mapped config invalid: %v", err)
	}
	if fc.MaxPerOwner != 2 || fc.MaxPerCategory != 4 {
		t.Errorf("diversity caps = %d/%d, want 2/4", fc.MaxPerOwner, fc.MaxPerCategory)
	}
	if fc.DefaultWindow != feed.Window24h {
		t.Errorf("DefaultWindow = %q, want 24h", fc.DefaultWindow)
	}
	if fc.TTL(feed.TypeTrending) != 2*time.Minute {
		t.Errorf("trending TTL = %v, want 2m", fc.TTL(feed.TypeTrending))
	}
	if fc.RewatchRatio != 1.5 || fc.ColdStartThreshold != 5 {
		t.Errorf("rewatch/cold start = %v/%d", fc.RewatchRatio, fc.ColdStartThreshold)
	}
}

func TestOpenStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		sc, err := openStore(&config.StoreConfig{Driver: "memory"})
		if err != nil {
			t.Fatalf("openStore: %v", err)
		}
		if sc.store == nil {
			t.Fatal("store is nil")
		}
		if sc.pinger != nil {
			t.Error("memory store should not report a pinger")
		}
		if err := sc.close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		if _, err := openStore(&config.StoreConfig{Driver: "postgres"}); err == nil {
			t.Fatal("expected error for unknown driver")
		}
	})
}

func TestBuildAuthenticator(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		a, err := buildAuthenticator(&config.SecurityConfig{})
		if err != nil {
			t.Fatalf("buildAuthenticator: %v", err)
		}
		if a != nil {
			t.Fatalf("expected nil authenticator, got %T", a)
		}
	})

	t.Run("trusted header", func(t *testing.T) {
		a, err := buildAuthenticator(&config.SecurityConfig{TrustUserHeader: true})
		if err != nil {
			t.Fatalf("buildAuthenticator: %v", err)
		}
		r := httptest.NewRequest("GET", "/api/v1/feed/personalized", nil)
		r.Header.Set("X-User-ID", "u1")
		subject, err := a.Authenticate(context.Background(), r)
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if subject.ID != "u1" {
			t.Errorf("subject = %q, want u1", subject.ID)
		}
	})

	t.Run("malformed api key entry", func(t *testing.T) {
		if _, err := buildAuthenticator(&config.SecurityConfig{APIKeys: []string{"no-hash"}}); err == nil {
			t.Fatal("expected error for malformed api key entry")
		}
	})
}

type recordingInvalidator struct {
	err    error
	scopes []feed.Scope
}

func (r *recordingInvalidator) Invalidate(_ context.Context, scope feed.Scope) error {
	r.scopes = append(r.scopes, scope)
	return r.err
}

func TestBusInvalidator(t *testing.T) {
	t.Run("publish succeeds", func(t *testing.T) {
		bus := &recordingInvalidator{}
		local := &recordingInvalidator{}
		inv := busInvalidator{bus: bus, local: local}

		if err := inv.Invalidate(context.Background(), feed.UserScope("u1")); err != nil {
			t.Fatalf("Invalidate: %v", err)
		}
		if len(bus.scopes) != 1 {
			t.Errorf("bus got %d scopes, want 1", len(bus.scopes))
		}
		if len(local.scopes) != 0 {
			t.Errorf("local applied %d scopes, want 0 when the bus delivers", len(local.scopes))
		}
	})

	t.Run("publish fails falls back to local cache", func(t *testing.T) {
		errDown := errors.New("nats down")
		bus := &recordingInvalidator{err: errDown}
		local := &recordingInvalidator{}
		inv := busInvalidator{bus: bus, local: local}

		err := inv.Invalidate(context.Background(), feed.UserScope("u1"))
		if !errors.Is(err, errDown) {
			t.Fatalf("err = %v, want %v", err, errDown)
		}
		if len(local.scopes) != 1 || local.scopes[0] != feed.UserScope("u1") {
			t.Errorf("local scopes = %v, want [user u1]", local.scopes)
		}
	})
}
