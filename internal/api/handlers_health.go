// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/models"
	ws "github.com/tomtom215/reelfeed/internal/websocket"
)

const healthPingTimeout = 2 * time.Second

// Health handles health check requests
//
// @Summary Get system health status
// @Description Reports store connectivity, cache backend and breaker state, event channel status and websocket clients. Returns 503 when degraded.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthResponse} "Healthy"
// @Failure 503 {object} models.APIResponse{data=models.HealthResponse} "Degraded"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := models.HealthResponse{
		Status:         "healthy",
		Version:        h.health.Version,
		Uptime:         time.Since(h.startTime).Seconds(),
		Store:          h.health.StoreDriver,
		CacheBackend:   h.health.CacheBackend,
		EventTransport: h.health.EventTransport,
		Checks:         map[string]string{},
	}
	if h.wsHub != nil {
		resp.WSClients = h.wsHub.GetClientCount()
	}

	if h.health.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		err := h.health.Store.Ping(ctx)
		cancel()
		if err != nil {
			resp.Status = "degraded"
			resp.Checks["store"] = err.Error()
		} else {
			resp.Checks["store"] = "ok"
		}
	}

	// An open breaker means pages are computed live; still serving.
	if h.health.BreakerState != nil {
		resp.CacheBreaker = h.health.BreakerState()
	}

	if h.health.EventsRunning != nil {
		select {
		case <-h.health.EventsRunning:
			resp.Checks["events"] = "ok"
		default:
			resp.Status = "degraded"
			resp.Checks["events"] = "not running"
		}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, r, status, resp, start, false)
}

// WebSocket upgrades the connection and subscribes the caller to
// invalidation notices for their feeds.
//
// @Summary Subscribe to feed invalidations
// @Description Pass the JWT as a bearer header or as the access_token query parameter.
// @Tags Core
// @Success 101 "Switching protocols"
// @Failure 401 {object} models.APIResponse "Authentication required"
// @Security BearerAuth
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "websocket notifications are disabled", nil)
		return
	}
	subject := auth.GetAuthSubject(r.Context())
	ws.ServeWS(h.wsHub, h.upgrader, w, r, subject.ID)
}
