// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
	ws "github.com/tomtom215/reelfeed/internal/websocket"
)

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthSources describes the wired backends for the health endpoint.
type HealthSources struct {
	Version        string
	StoreDriver    string
	Store          Pinger // nil for stores without a connection
	CacheBackend   string
	BreakerState   func() string // nil when caching is disabled
	EventTransport string
	EventsRunning  <-chan struct{}
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response envelope and error mapping
//   - handlers_feed.go: feed pages
//   - handlers_interactions.go: likes, views, shares, follows
//   - handlers_admin.go: catalog hooks and manual invalidation
//   - handlers_health.go: health and websocket endpoints
type Handler struct {
	service   *feed.Service
	wsHub     *ws.Hub
	upgrader  *websocket.Upgrader
	health    HealthSources
	security  *logging.SecurityLogger
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// Example:
//
//	handler := api.NewHandler(service, hub, ws.NewUpgrader(cfg.Server.CORSOrigins), sources)
//	router := api.NewRouter(handler, chiMW, authMW, authzMW, limiter)
//	http.ListenAndServe(":8080", router.SetupChi())
//
//nolint:gocritic // hugeParam: sources is copied once at startup
func NewHandler(service *feed.Service, hub *ws.Hub, upgrader *websocket.Upgrader, sources HealthSources) *Handler {
	if upgrader == nil {
		upgrader = ws.NewUpgrader(nil)
	}
	return &Handler{
		service:   service,
		wsHub:     hub,
		upgrader:  upgrader,
		health:    sources,
		security:  logging.NewSecurityLogger(),
		startTime: time.Now(),
	}
}
