// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps a thread-safe singleton validator with the feedid
// custom tag and translates failures into the VALIDATION_ERROR response
// format used by every handler.
//
// # Quick Start
//
//	var req models.ItemUploadRequest
//	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
//	    // handle decode error
//	}
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr
//	}
//
// # Custom Tags
//
//   - feedid: a user, item or category identifier matching [A-Za-z0-9_-]{1,64},
//     the same rule internal/feed applies before building cache keys
//
// Field names in messages come from the json tag, so a failure on
// ItemUploadRequest.OwnerID reports "owner_id".
package validation
