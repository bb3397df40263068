// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package models defines the HTTP-facing data structures of the feed service.

Domain types (items, pages, scopes) live in internal/feed; this package
holds what crosses the API boundary:

  - APIResponse, Metadata, APIError: the response envelope and error codes
  - FeedQuery, ViewRequest, InvalidateRequest, ItemUploadRequest: request
    DTOs carrying go-playground/validator tags (the custom feedid tag is
    registered by internal/validation)
  - InteractionResponse, HealthResponse: response payloads
  - Role constants shared by authentication and the Casbin policy
*/
package models
