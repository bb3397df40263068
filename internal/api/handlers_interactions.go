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

// LikeReel records a like.
//
// @Summary Like a reel
// @Tags Interactions
// @Produce json
// @Param id path string true "Reel ID"
// @Success 200 {object} models.APIResponse{data=models.InteractionResponse} "Like recorded"
// @Failure 404 {object} models.APIResponse "Reel not available (NOT_ELIGIBLE)"
// @Failure 409 {object} models.APIResponse "Already liked; details carry likes_count and is_liked"
// @Security BearerAuth
// @Router /reels/{id}/like [post]
func (h *Handler) LikeReel(w http.ResponseWriter, r *http.Request) {
	h.recordItemInteraction(w, r, feed.KindLike, nil)
}

// UnlikeReel removes a like.
//
// @Summary Unlike a reel
// @Tags Interactions
// @Produce json
// @Param id path string true "Reel ID"
// @Success 200 {object} models.APIResponse{data=models.InteractionResponse} "Like removed"
// @Failure 409 {object} models.APIResponse "Not liked; details carry likes_count and is_liked"
// @Security BearerAuth
// @Router /reels/{id}/like [delete]
func (h *Handler) UnlikeReel(w http.ResponseWriter, r *http.Request) {
	h.recordItemInteraction(w, r, feed.KindUnlike, nil)
}

// ViewReel records a view with an optional watch duration.
//
// @Summary Record a view
// @Description The first view always counts. Repeat views count only when watch time reaches the re-watch ratio of the stored value.
// @Tags Interactions
// @Accept json
// @Produce json
// @Param id path string true "Reel ID"
// @Param body body models.ViewRequest false "Watch duration"
// @Success 200 {object} models.APIResponse{data=models.InteractionResponse} "View recorded"
// @Failure 400 {object} models.APIResponse "Invalid watch_seconds"
// @Security BearerAuth
// @Router /reels/{id}/view [post]
func (h *Handler) ViewReel(w http.ResponseWriter, r *http.Request) {
	var body models.ViewRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&body); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}
	h.recordItemInteraction(w, r, feed.KindView, body.WatchSeconds)
}

// ShareReel records a share. Anonymous shares are counted.
//
// @Summary Share a reel
// @Tags Interactions
// @Produce json
// @Param id path string true "Reel ID"
// @Success 200 {object} models.APIResponse{data=models.InteractionResponse} "Share recorded"
// @Failure 404 {object} models.APIResponse "Reel not available (NOT_ELIGIBLE)"
// @Router /reels/{id}/share [post]
func (h *Handler) ShareReel(w http.ResponseWriter, r *http.Request) {
	h.recordItemInteraction(w, r, feed.KindShare, nil)
}

// FollowUser follows a creator.
//
// @Summary Follow a creator
// @Tags Interactions
// @Produce json
// @Param id path string true "Creator user ID"
// @Success 200 {object} models.APIResponse{data=models.InteractionResponse} "Now following"
// @Failure 400 {object} models.APIResponse "Self-follow or invalid ID"
// @Failure 409 {object} models.APIResponse "Already following"
// @Security BearerAuth
// @Router /users/{id}/follow [post]
func (h *Handler) FollowUser(w http.ResponseWriter, r *http.Request) {
	h.recordFollow(w, r, feed.KindFollow)
}

// UnfollowUser unfollows a creator.
//
// @Summary Unfollow a creator
// @Tags Interactions
// @Produce json
// @Param id path string true "Creator user ID"
// @Success 200 {object} models.APIResponse{data=models.InteractionResponse} "No longer following"
// @Failure 409 {object} models.APIResponse "Not following"
// @Security BearerAuth
// @Router /users/{id}/follow [delete]
func (h *Handler) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	h.recordFollow(w, r, feed.KindUnfollow)
}

func (h *Handler) recordItemInteraction(w http.ResponseWriter, r *http.Request, kind feed.InteractionKind, watchSeconds *float64) {
	req := feed.InteractionRequest{
		Kind:         kind,
		ItemID:       chi.URLParam(r, "id"),
		WatchSeconds: watchSeconds,
	}
	if subject := auth.GetAuthSubject(r.Context()); subject != nil && !subject.IsService() {
		req.UserID = subject.ID
	}
	h.record(w, r, req)
}

func (h *Handler) recordFollow(w http.ResponseWriter, r *http.Request, kind feed.InteractionKind) {
	h.record(w, r, feed.InteractionRequest{
		Kind:         kind,
		UserID:       auth.GetAuthSubject(r.Context()).ID,
		TargetUserID: chi.URLParam(r, "id"),
	})
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (h *Handler) record(w http.ResponseWriter, r *http.Request, req feed.InteractionRequest) {
	start := time.Now()
	eff, err := h.service.RecordInteraction(r.Context(), req)
	switch {
	case err == nil:
		respondSuccess(w, r, http.StatusOK, interactionResponse(eff), start, false)
	case feed.IsConflict(err):
		respondErrorDetails(w, r, http.StatusConflict, conflictCode(err), err.Error(), interactionDetails(eff), nil)
	default:
		respondFeedError(w, r, err)
	}
}
