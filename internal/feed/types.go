// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"fmt"
	"time"
)

// InteractionKind identifies a recorded user action.
type InteractionKind string

const (
	KindLike     InteractionKind = "like"
	KindUnlike   InteractionKind = "unlike"
	KindView     InteractionKind = "view"
	KindShare    InteractionKind = "share"
	KindFollow   InteractionKind = "follow"
	KindUnfollow InteractionKind = "unfollow"
)

// ParseInteractionKind validates a kind received over the wire.
func ParseInteractionKind(s string) (InteractionKind, error) {
	switch k := InteractionKind(s); k {
	case KindLike, KindUnlike, KindView, KindShare, KindFollow, KindUnfollow:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown interaction kind %q", ErrInvalidInput, s)
	}
}

// Item is the read-mostly projection of a reel used for ranking.
type Item struct {
	// ID is the unique item identifier.
	ID string `json:"item_id"`

	// OwnerID is the creator (merchant) that published the item.
	OwnerID string `json:"owner_id"`

	// CategoryID is the item's catalog category; empty when unknown.
	CategoryID string `json:"category_id,omitempty"`

	// CreatedAt is the publication time.
	CreatedAt time.Time `json:"created_at"`

	// DurationSeconds is the video length; zero when unknown.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`

	// Counters, maintained by atomic increments only.
	Views  int64 `json:"views_count"`
	Likes  int64 `json:"likes_count"`
	Shares int64 `json:"shares_count"`

	// Eligible is the catalog visibility gate (stock, approval, owner status).
	Eligible bool `json:"-"`
}

// AgeHours returns the item's age at now, never negative.
func (it *Item) AgeHours(now time.Time) float64 {
	h := now.Sub(it.CreatedAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// CategoryPreference is a user's stored affinity to one category.
type CategoryPreference struct {
	UserID            string    `json:"user_id"`
	CategoryID        string    `json:"category_id"`
	Score             float64   `json:"score"`
	InteractionCount  int       `json:"interaction_count"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

// ViewRecord is the single mutable view row per (user, item).
type ViewRecord struct {
	UserID string
	ItemID string

	// WatchSeconds is nil when no duration was ever reported.
	WatchSeconds *float64

	CreatedAt    time.Time
	LastViewedAt time.Time
}

// FollowEdge links a follower to a followee.
type FollowEdge struct {
	FollowerID string
	FolloweeID string
	CreatedAt  time.Time
}

// UserActivity holds a user's raw (undecayed) interaction counts.
type UserActivity struct {
	Likes   int
	Views   int
	Follows int
}

// Total is the sum used by the cold-start rule.
func (a UserActivity) Total() int {
	return a.Likes + a.Views + a.Follows
}

// SimilarUser is another user sharing liked items with the requester.
type SimilarUser struct {
	UserID      string
	CommonLikes int
}

// Type names a feed.
type Type string

const (
	TypePersonalized Type = "personalized"
	TypeTrending     Type = "trending"
	TypeFollowing    Type = "following"
)

// ParseType validates a feed type from a URL path.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypePersonalized, TypeTrending, TypeFollowing:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown feed type %q", ErrInvalidInput, s)
	}
}

// Tier names a retrieval strategy.
type Tier string

const (
	TierFollowed Tier = "followed"
	TierCategory Tier = "category"
	TierTrending Tier = "trending"
	TierSimilar  Tier = "similar"
	TierGeneral  Tier = "general"
)

// Candidate is an eligible item proposed by a tier, with its final score.
type Candidate struct {
	Item  Item
	Tier  Tier
	Score float64
}

// VariantColdStart marks a personalized page built with the cold-start blend.
const VariantColdStart = "cold_start"

// Info describes how a page was produced.
type Info struct {
	FeedType      Type      `json:"feed_type"`
	Variant       string    `json:"feed_variant,omitempty"`
	Window        string    `json:"time_window,omitempty"`
	TiersUsed     []Tier    `json:"tiers_used"`
	DegradedTiers []Tier    `json:"degraded_tiers,omitempty"`
	FollowedCount *int      `json:"followed_count,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
	Cached        bool      `json:"cached"`
}

// Page is one composed feed page. Item IDs are unique within the page.
type Page struct {
	ItemIDs  []string `json:"item_ids"`
	Items    []Item   `json:"items"`
	Info     Info     `json:"feed_info"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`

	// HasMore is true when the page came back full. A short page is valid
	// and means the feed is exhausted for this request.
	HasMore bool `json:"has_more"`
}

// Cacheable reports whether the page is a complete answer. A page that lost
// a tier to the deadline or an error must not outlive the request.
func (p *Page) Cacheable() bool {
	return len(p.Info.DegradedTiers) == 0
}

// Request selects one feed page.
type Request struct {
	Type     Type
	UserID   string // empty for anonymous trending requests
	Page     int
	PageSize int
	Window   Window // trending only
}

// Effect reports the state after an interaction, including on conflicts.
type Effect struct {
	Kind   InteractionKind `json:"kind"`
	ItemID string          `json:"item_id,omitempty"`

	// TargetUserID is set for follow and unfollow.
	TargetUserID string `json:"target_user_id,omitempty"`

	LikesCount  int64 `json:"likes_count"`
	ViewsCount  int64 `json:"views_count"`
	SharesCount int64 `json:"shares_count"`

	IsLiked     *bool `json:"is_liked,omitempty"`
	IsFollowing *bool `json:"is_following,omitempty"`

	// ViewCounted is true when a view incremented views_count.
	ViewCounted bool `json:"view_counted,omitempty"`

	// PreferenceDelta is the delta applied to the item's category, if any.
	PreferenceDelta float64 `json:"preference_delta,omitempty"`
}

// InteractionRequest is the input to Recorder.Record.
type InteractionRequest struct {
	Kind   InteractionKind
	UserID string // empty only for anonymous shares

	// ItemID is the target of like, unlike, view and share.
	ItemID string

	// TargetUserID is the followee for follow and unfollow.
	TargetUserID string

	// WatchSeconds is optional for views.
	WatchSeconds *float64
}

func boolPtr(b bool) *bool { return &b }
