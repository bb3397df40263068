// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"fmt"
	"time"
)

// Config contains all tunables for ranking, composition and caching.
type Config struct {
	// DefaultPageSize is used when a request omits page_size.
	DefaultPageSize int `json:"default_page_size"`

	// MaxPageSize caps page_size; larger requests are clamped.
	MaxPageSize int `json:"max_page_size"`

	// MaxPage caps the page number; deeper pages are returned empty.
	MaxPage int `json:"max_page"`

	// Deadline bounds concurrent tier retrieval. Tiers still running when
	// it expires are dropped from the page.
	Deadline time.Duration `json:"deadline"`

	// MaxPerOwner and MaxPerCategory are the per-page diversity caps.
	MaxPerOwner    int `json:"max_per_owner"`
	MaxPerCategory int `json:"max_per_category"`

	// SimilarUsersLimit bounds the similar-user set by common-like count.
	SimilarUsersLimit int `json:"similar_users_limit"`

	// MinCommonLikes is the shared-like threshold for a similar user.
	MinCommonLikes int `json:"min_common_likes"`

	// ColdStartThreshold: users with fewer raw interactions are new.
	ColdStartThreshold int `json:"cold_start_threshold"`

	// RewatchRatio is the factor a repeat view's watch time must reach,
	// relative to the stored value, to count again.
	RewatchRatio float64 `json:"rewatch_ratio"`

	// TopCategories is how many preferred categories the category tier reads.
	TopCategories int `json:"top_categories"`

	// Overfetch multiplies tier quotas so the diversity filter has slack.
	Overfetch int `json:"overfetch"`

	// GeneralBatches bounds how many extra most-recent batches the composer
	// pulls when diversity rejections leave a page short.
	GeneralBatches int `json:"general_batches"`

	// DefaultWindow is the trending window when a request omits one.
	DefaultWindow Window `json:"default_window"`

	// Cache TTLs per feed type.
	PersonalizedTTL time.Duration `json:"personalized_ttl"`
	TrendingTTL     time.Duration `json:"trending_ttl"`
	FollowingTTL    time.Duration `json:"following_ttl"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultPageSize:    20,
		MaxPageSize:        100,
		MaxPage:            50,
		Deadline:           2 * time.Second,
		MaxPerOwner:        3,
		MaxPerCategory:     5,
		SimilarUsersLimit:  50,
		MinCommonLikes:     3,
		ColdStartThreshold: 3,
		RewatchRatio:       1.25,
		TopCategories:      5,
		Overfetch:          2,
		GeneralBatches:     4,
		DefaultWindow:      Window7d,
		PersonalizedTTL:    5 * time.Minute,
		TrendingTTL:        10 * time.Minute,
		FollowingTTL:       5 * time.Minute,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.MaxPageSize < 1 {
		return fmt.Errorf("max_page_size must be positive, got %d", c.MaxPageSize)
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default_page_size must be in [1, %d], got %d", c.MaxPageSize, c.DefaultPageSize)
	}
	if c.MaxPage < 1 {
		return fmt.Errorf("max_page must be positive, got %d", c.MaxPage)
	}
	if c.Deadline <= 0 {
		return fmt.Errorf("deadline must be positive")
	}
	if c.MaxPerOwner < 1 || c.MaxPerCategory < 1 {
		return fmt.Errorf("diversity caps must be positive")
	}
	if c.SimilarUsersLimit < 1 || c.MinCommonLikes < 1 {
		return fmt.Errorf("similar user settings must be positive")
	}
	if c.RewatchRatio < 1 {
		return fmt.Errorf("rewatch_ratio must be >= 1, got %v", c.RewatchRatio)
	}
	if c.TopCategories < 1 || c.Overfetch < 1 || c.GeneralBatches < 0 {
		return fmt.Errorf("top_categories and overfetch must be positive, general_batches non-negative")
	}
	if _, err := ParseWindow(string(c.DefaultWindow)); err != nil {
		return err
	}
	if c.PersonalizedTTL <= 0 || c.TrendingTTL <= 0 || c.FollowingTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	return nil
}

// TTL returns the cache TTL for a feed type.
func (c *Config) TTL(t Type) time.Duration {
	switch t {
	case TypeTrending:
		return c.TrendingTTL
	case TypeFollowing:
		return c.FollowingTTL
	default:
		return c.PersonalizedTTL
	}
}

// normalize resolves defaults and clamps page parameters.
func (c *Config) normalize(req Request) (Request, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Page < 0 {
		return req, fmt.Errorf("%w: page must be >= 1", ErrInvalidInput)
	}
	if req.PageSize == 0 {
		req.PageSize = c.DefaultPageSize
	}
	if req.PageSize < 0 {
		return req, fmt.Errorf("%w: page_size must be >= 1", ErrInvalidInput)
	}
	if req.PageSize > c.MaxPageSize {
		req.PageSize = c.MaxPageSize
	}
	if req.Type == TypeTrending && req.Window == "" {
		req.Window = c.DefaultWindow
	}
	return req, nil
}
