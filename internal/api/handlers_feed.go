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
	"github.com/tomtom215/reelfeed/internal/metrics"
	"github.com/tomtom215/reelfeed/internal/models"
)

// Feed serves personalized, trending and following pages.
//
// @Summary Get a feed page
// @Description Personalized and following feeds require an end-user identity; trending is public.
// @Description Personalized pages blend followed creators, preferred categories, trending and similar users, with at most 3 items per creator and 5 per category.
// @Tags Feed
// @Produce json
// @Param type path string true "Feed type" Enums(personalized, trending, following)
// @Param page query int false "Page number (1-based)" minimum(1) default(1)
// @Param page_size query int false "Items per page" minimum(1) maximum(100) default(20)
// @Param time_window query string false "Trending window" Enums(24h, 7d, 30d) default(7d)
// @Success 200 {object} models.APIResponse{data=feed.Page} "Feed page"
// @Failure 400 {object} models.APIResponse "Invalid parameters"
// @Failure 401 {object} models.APIResponse "Authentication required"
// @Security BearerAuth
// @Router /feed/{type} [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	feedType, err := feed.ParseType(chi.URLParam(r, "type"))
	if err != nil {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "unknown feed type", nil)
		return
	}

	page, err := getIntParam(r, "page")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	pageSize, err := getIntParam(r, "page_size")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, err.Error(), nil)
		return
	}
	query := models.FeedQuery{Page: page, PageSize: pageSize, TimeWindow: r.URL.Query().Get("time_window")}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	req := feed.Request{Type: feedType, Page: query.Page, PageSize: query.PageSize}
	if feedType == feed.TypeTrending {
		req.Window = feed.Window(query.TimeWindow)
	} else {
		subject := auth.GetAuthSubject(r.Context())
		if subject == nil {
			respondError(w, r, http.StatusUnauthorized, models.ErrCodeAuthRequired, "authentication required", nil)
			return
		}
		if subject.IsService() {
			respondError(w, r, http.StatusForbidden, models.ErrCodeForbidden, "endpoint requires an end-user identity", nil)
			return
		}
		req.UserID = subject.ID
	}

	result, err := h.service.Feed(r.Context(), req)
	if err != nil {
		respondFeedError(w, r, err)
		return
	}

	metrics.RecordFeedRequest(string(feedType), result.Info.Cached)
	respondSuccess(w, r, http.StatusOK, result, start, result.Info.Cached)
}
