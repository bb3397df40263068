// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

// Package main provides the Reelfeed HTTP server
//
// @title Reelfeed API
// @version 1.0
// @description Feed ranking and composition for merchant short videos.
// @description
// @description ## Feeds
// @description
// @description - **personalized**: followed creators (40%), preferred categories (30%), trending (20%) and similar users (10%), or a 70/30 trending/category blend for new users
// @description - **trending**: time-decayed engagement over a 24h, 7d or 30d window; public
// @description - **following**: recent reels from followed creators
// @description
// @description Every page holds at most 3 reels per creator and 5 per category. A page shorter than page_size is the last page.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": {"likes_count": 12, "is_liked": true},
// @description   "error": {"code": "ALREADY_LIKED", "message": "item already liked"},
// @description   "metadata": {"timestamp": "2026-01-18T12:34:56Z"}
// @description }
// @description ```
// @description Conflict responses (409) carry the current state in data.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/reelfeed/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by the auth service ("Bearer <jwt>").
//
// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name X-API-Key
// @description Service key ("name.secret") for ingestion and moderation callers.
//
// @tag.name Feed
// @tag.description Feed pages
//
// @tag.name Interactions
// @tag.description Likes, views, shares and follows
//
// @tag.name Admin
// @tag.description Catalog hooks and cache invalidation for service callers
//
// @tag.name Core
// @tag.description Health and realtime notifications
package main
