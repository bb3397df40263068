// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package main

import (
	"fmt"
	"time"

	"github.com/tomtom215/reelfeed/internal/api"
	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/database"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
)

// storeComponents is the opened store plus what the health check and
// shutdown need from it.
type storeComponents struct {
	store  feed.Store
	pinger api.Pinger // nil for the memory store
	close  func() error
}

// openStore opens the configured feed store.
func openStore(cfg *config.StoreConfig) (*storeComponents, error) {
	switch cfg.Driver {
	case "duckdb":
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("open duckdb store: %w", err)
		}
		return &storeComponents{store: db, pinger: db, close: db.Close}, nil
	case "memory":
		logging.Warn().Msg("Using in-memory store; interactions are lost on restart (STORE_DRIVER=memory)")
		return &storeComponents{store: database.NewMemory(), close: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// feedConfig maps the loaded configuration onto the engine's tunables.
func feedConfig(cfg *config.Config) *feed.Config {
	fc := feed.DefaultConfig()
	f := cfg.Feed
	fc.DefaultPageSize = f.DefaultPageSize
	fc.MaxPageSize = f.MaxPageSize
	fc.MaxPage = f.MaxPage
	fc.Overfetch = f.Overfetch
	fc.GeneralBatches = f.GeneralBatches
	fc.Deadline = f.Deadline
	fc.MaxPerOwner = f.MaxPerOwner
	fc.MaxPerCategory = f.MaxPerCategory
	fc.SimilarUsersLimit = f.SimilarUsersLimit
	fc.MinCommonLikes = f.MinCommonLikes
	fc.ColdStartThreshold = f.ColdStartThreshold
	fc.RewatchRatio = f.RewatchRatio
	fc.TopCategories = f.TopCategories
	fc.DefaultWindow = feed.Window(f.DefaultWindow)
	fc.PersonalizedTTL = cfg.Cache.PersonalizedTTL
	fc.TrendingTTL = cfg.Cache.TrendingTTL
	fc.FollowingTTL = cfg.Cache.FollowingTTL
	return fc
}

// jwtTokenLifetime only matters for tokens minted by this process (tests
// and tooling); production tokens come from the auth service.
const jwtTokenLifetime = 24 * time.Hour
