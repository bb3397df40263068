// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
Package api exposes the feed service over HTTP using the Chi router.

Routes live under /api/v1:

	GET    /feed/{type}           personalized, trending or following pages
	POST   /reels/{id}/like       like (409 ALREADY_LIKED carries current state)
	DELETE /reels/{id}/like       unlike
	POST   /reels/{id}/view       view with optional {"watch_seconds": n}
	POST   /reels/{id}/share      share, anonymous allowed
	POST   /users/{id}/follow     follow a creator
	DELETE /users/{id}/follow     unfollow
	POST   /admin/invalidate      publish a cache invalidation
	POST   /admin/items           catalog upload hook
	POST   /admin/items/{id}/hide moderation hook

Operational endpoints sit at the root: /health, /metrics, /swagger/* and
/ws for live invalidation notices.

Every response uses the models.APIResponse envelope. Feed sentinel errors
are mapped in respondFeedError; conflicts return 409 with the current
interaction state in error.details.

Middleware order (outermost first): request ID, real IP, panic recovery,
CORS, compression, then per-IP rate limiting, security headers,
Prometheus instrumentation and authentication on /api/v1. Interaction
routes add the per-user InteractionLimiter and casbin authorization.
*/
package api
