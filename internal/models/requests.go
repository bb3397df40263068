// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package models

import "time"

// FeedQuery holds the query parameters of a feed request.
type FeedQuery struct {
	Page       int    `validate:"omitempty,min=1"`
	PageSize   int    `validate:"omitempty,min=1,max=100"`
	TimeWindow string `validate:"omitempty,oneof=24h 7d 30d"`
}

// ViewRequest is the optional body of POST /reels/{id}/view.
type ViewRequest struct {
	WatchSeconds *float64 `json:"watch_seconds,omitempty" validate:"omitempty,gte=0"`
}

// InvalidateRequest is the body of POST /admin/invalidate.
type InvalidateRequest struct {
	Scope string `json:"scope" validate:"required,oneof=user item trending global"`
	ID    string `json:"id,omitempty" validate:"omitempty,feedid"`
}

// ItemUploadRequest is the body of POST /admin/items, sent by the
// ingestion pipeline when a reel becomes available.
type ItemUploadRequest struct {
	ID              string     `json:"id" validate:"required,feedid"`
	OwnerID         string     `json:"owner_id" validate:"required,feedid"`
	CategoryID      string     `json:"category_id,omitempty" validate:"omitempty,feedid"`
	DurationSeconds float64    `json:"duration_seconds" validate:"gte=0"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

// InteractionResponse reports the effect of an interaction.
type InteractionResponse struct {
	ItemID       string   `json:"item_id,omitempty"`
	TargetUserID string   `json:"target_user_id,omitempty"`
	LikesCount   *int64   `json:"likes_count,omitempty"`
	IsLiked      *bool    `json:"is_liked,omitempty"`
	ViewsCount   *int64   `json:"views_count,omitempty"`
	ViewCounted  *bool    `json:"view_counted,omitempty"`
	SharesCount  *int64   `json:"shares_count,omitempty"`
	IsFollowing  *bool    `json:"is_following,omitempty"`
	Preference   *float64 `json:"preference_delta,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status         string            `json:"status"` // "healthy" or "degraded"
	Version        string            `json:"version"`
	Uptime         float64           `json:"uptime_seconds"`
	Store          string            `json:"store"`
	CacheBackend   string            `json:"cache_backend"`
	CacheBreaker   string            `json:"cache_breaker,omitempty"`
	EventTransport string            `json:"event_transport"`
	WSClients      int               `json:"websocket_clients"`
	Checks         map[string]string `json:"checks,omitempty"`
}
