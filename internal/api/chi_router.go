// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/authz"
	"github.com/tomtom215/reelfeed/internal/middleware"
)

// Router wires handlers to the middleware chain.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
	authz         *authz.Middleware
	limiter       *InteractionLimiter
}

// NewRouter creates a new router. A nil chiMW uses the default
// configuration and a nil limiter disables interaction throttling.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authMW *auth.Middleware, authzMW *authz.Middleware, limiter *InteractionLimiter) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	if authMW == nil {
		authMW = auth.NewMiddleware(nil, nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: chiMW,
		auth:          authMW,
		authz:         authzMW,
		limiter:       limiter,
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(chimiddleware.Compress(5, "application/json"))

	// ========================
	// Operational Endpoints
	// ========================
	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		r.Use(router.auth.Authenticate)
		r.Use(auth.RequireUser)
		r.Use(router.authorize)
		r.Get("/ws", router.handler.WebSocket)
	})

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.auth.Authenticate)

		r.Get("/health", router.handler.Health)

		// Trending is public; the handler enforces a user for the others.
		r.Get("/feed/{type}", router.handler.Feed)

		r.Route("/reels/{id}", func(r chi.Router) {
			r.Use(router.throttle)
			r.Post("/share", router.handler.ShareReel)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireUser)
				r.Use(router.authorize)
				r.Post("/like", router.handler.LikeReel)
				r.Delete("/like", router.handler.UnlikeReel)
				r.Post("/view", router.handler.ViewReel)
			})
		})

		r.Route("/users/{id}/follow", func(r chi.Router) {
			r.Use(router.throttle)
			r.Use(auth.RequireUser)
			r.Use(router.authorize)
			r.Post("/", router.handler.FollowUser)
			r.Delete("/", router.handler.UnfollowUser)
		})

		// Catalog hooks and manual invalidation; roles enforced by casbin.
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth)
			r.Use(router.authorize)
			r.Post("/invalidate", router.handler.Invalidate)
			r.Post("/items", router.handler.UploadItem)
			r.Post("/items/{id}/hide", router.handler.HideItem)
		})
	})

	return r
}

func (router *Router) authorize(next http.Handler) http.Handler {
	if router.authz == nil {
		return next
	}
	return router.authz.AuthorizeRequest(next)
}

func (router *Router) throttle(next http.Handler) http.Handler {
	if router.limiter == nil {
		return next
	}
	return router.limiter.Middleware(next)
}
