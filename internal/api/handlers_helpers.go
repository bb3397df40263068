// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/models"
	"github.com/tomtom215/reelfeed/internal/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response. Feed pages are per-user and change
// on every interaction, so responses are never cacheable by proxies.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in the success envelope.
func respondSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}, start time.Time, cached bool) {
	respondJSON(w, status, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// respondError sends an error response
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	respondErrorDetails(w, r, status, code, message, nil, err)
}

func respondErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	resp := models.NewErrorResponse(code, message, details)
	resp.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
	respondJSON(w, status, &resp)
}

// respondFeedError maps feed sentinel errors onto HTTP statuses.
func respondFeedError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, feed.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, strings.TrimPrefix(err.Error(), feed.ErrInvalidInput.Error()+": "), nil)
	case errors.Is(err, feed.ErrNotEligible):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotEligible, "reel is not available", nil)
	case errors.Is(err, feed.ErrItemNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "reel not found", nil)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
		logging.Ctx(r.Context()).Debug().Msg("Request canceled by client")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "request timed out", err)
	default:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "internal server error", err)
	}
}

// conflictCode returns the API code of a conflict error.
func conflictCode(err error) string {
	switch {
	case errors.Is(err, feed.ErrAlreadyLiked):
		return models.ErrCodeAlreadyLiked
	case errors.Is(err, feed.ErrNotLiked):
		return models.ErrCodeNotLiked
	case errors.Is(err, feed.ErrAlreadyFollowing):
		return models.ErrCodeAlreadyFollowing
	default:
		return models.ErrCodeNotFollowing
	}
}

// validateRequest validates a struct using go-playground/validator.
func validateRequest(v interface{}) *models.APIError {
	if validationErr := validation.ValidateStruct(v); validationErr != nil {
		return validationErr.ToAPIError()
	}
	return nil
}

// decodeJSON reads an optional JSON body into dst. An empty body leaves
// dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// getIntParam extracts an integer query parameter. Missing values return
// zero so downstream defaults apply; malformed values are an error.
func getIntParam(r *http.Request, key string) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

// interactionResponse projects an Effect onto the fields relevant to its kind.
func interactionResponse(eff feed.Effect) models.InteractionResponse {
	resp := models.InteractionResponse{ItemID: eff.ItemID, TargetUserID: eff.TargetUserID}
	switch eff.Kind {
	case feed.KindLike, feed.KindUnlike:
		resp.LikesCount = &eff.LikesCount
		resp.IsLiked = eff.IsLiked
	case feed.KindView:
		resp.ViewsCount = &eff.ViewsCount
		resp.ViewCounted = &eff.ViewCounted
	case feed.KindShare:
		resp.SharesCount = &eff.SharesCount
	case feed.KindFollow, feed.KindUnfollow:
		resp.IsFollowing = eff.IsFollowing
	}
	if eff.PreferenceDelta != 0 {
		resp.Preference = &eff.PreferenceDelta
	}
	return resp
}

// interactionDetails is the current state attached to conflict errors.
func interactionDetails(eff feed.Effect) map[string]interface{} {
	details := map[string]interface{}{}
	if eff.ItemID != "" {
		details["item_id"] = eff.ItemID
		details["likes_count"] = eff.LikesCount
	}
	if eff.IsLiked != nil {
		details["is_liked"] = *eff.IsLiked
	}
	if eff.TargetUserID != "" {
		details["target_user_id"] = eff.TargetUserID
	}
	if eff.IsFollowing != nil {
		details["is_following"] = *eff.IsFollowing
	}
	return details
}
