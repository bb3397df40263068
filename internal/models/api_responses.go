// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"item_ids": ["v1", "v2"], "page": 1, "page_size": 20, "has_more": false},
//	  "metadata": {"timestamp": "2026-03-10T12:00:00Z", "request_id": "…", "cached": true}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "ALREADY_LIKED", "message": "…", "details": {"likes_count": 4, "is_liked": true}},
//	  "metadata": {"timestamp": "2026-03-10T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metadata contains response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError represents an error response with structured error details.
// Conflict errors carry the current state of the target in Details so
// clients can reconcile without a second request.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeAuthRequired     = "AUTH_REQUIRED"
	ErrCodeInvalidToken     = "INVALID_TOKEN"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeNotEligible      = "NOT_ELIGIBLE"
	ErrCodeAlreadyLiked     = "ALREADY_LIKED"
	ErrCodeNotLiked         = "NOT_LIKED"
	ErrCodeAlreadyFollowing = "ALREADY_FOLLOWING"
	ErrCodeNotFollowing     = "NOT_FOLLOWING"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewErrorResponse builds an error envelope stamped with the current time.
func NewErrorResponse(code, message string, details map[string]interface{}) APIResponse {
	return APIResponse{
		Status:   StatusError,
		Metadata: Metadata{Timestamp: time.Now().UTC()},
		Error:    &APIError{Code: code, Message: message, Details: details},
	}
}
