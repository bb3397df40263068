// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/models"
)

// Invalidate drops cached pages for a scope on every instance.
//
// @Summary Invalidate cached feed pages
// @Description Scopes: user (one user's personalized and following pages), item and global (everything), trending (all trending pages).
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body models.InvalidateRequest true "Scope to invalidate"
// @Success 202 {object} models.APIResponse{data=feed.Scope} "Invalidation published"
// @Failure 400 {object} models.APIResponse "Invalid scope"
// @Failure 403 {object} models.APIResponse "Admin role required"
// @Security BearerAuth
// @Router /admin/invalidate [post]
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var body models.InvalidateRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	scope, err := feed.ParseScope(body.Scope, body.ID)
	if err != nil {
		respondFeedError(w, r, err)
		return
	}
	if err := h.service.Invalidate(r.Context(), scope); err != nil {
		respondFeedError(w, r, err)
		return
	}

	h.security.LogAdminAction(auth.GetAuthSubject(r.Context()).ID, "invalidate", scope.String())
	respondSuccess(w, r, http.StatusAccepted, scope, start, false)
}

// UploadItem is the catalog hook called when a reel becomes available or
// is edited.
//
// @Summary Upsert a catalog item
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body models.ItemUploadRequest true "Item projection"
// @Success 201 {object} models.APIResponse{data=feed.Item} "Item stored"
// @Failure 400 {object} models.APIResponse "Invalid item"
// @Security APIKeyAuth
// @Router /admin/items [post]
func (h *Handler) UploadItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var body models.ItemUploadRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	item := feed.Item{
		ID:              body.ID,
		OwnerID:         body.OwnerID,
		CategoryID:      body.CategoryID,
		DurationSeconds: body.DurationSeconds,
		Eligible:        true,
	}
	if body.CreatedAt != nil {
		item.CreatedAt = body.CreatedAt.UTC()
	}
	if err := h.service.ItemUploaded(r.Context(), item); err != nil {
		respondFeedError(w, r, err)
		return
	}

	h.security.LogAdminAction(auth.GetAuthSubject(r.Context()).ID, "upload_item", item.ID)
	respondSuccess(w, r, http.StatusCreated, item, start, false)
}

// HideItem is the moderation hook: the item stops appearing in feeds and
// every cached page is dropped.
//
// @Summary Hide a catalog item
// @Tags Admin
// @Produce json
// @Param id path string true "Reel ID"
// @Success 200 {object} models.APIResponse "Item hidden"
// @Failure 404 {object} models.APIResponse "Unknown item"
// @Security APIKeyAuth
// @Router /admin/items/{id}/hide [post]
func (h *Handler) HideItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	itemID := chi.URLParam(r, "id")
	if err := h.service.ItemHidden(r.Context(), itemID); err != nil {
		respondFeedError(w, r, err)
		return
	}

	h.security.LogAdminAction(auth.GetAuthSubject(r.Context()).ID, "hide_item", itemID)
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{"item_id": itemID, "hidden": true}, start, false)
}
