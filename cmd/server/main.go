// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/reelfeed/docs" // Import generated swagger docs
	"github.com/tomtom215/reelfeed/internal/api"
	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/authz"
	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/feed"
	"github.com/tomtom215/reelfeed/internal/logging"
	"github.com/tomtom215/reelfeed/internal/metrics"
	"github.com/tomtom215/reelfeed/internal/supervisor"
	"github.com/tomtom215/reelfeed/internal/supervisor/services"
	ws "github.com/tomtom215/reelfeed/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	started := time.Now()

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.SetAppInfo(version, started)

	logging.Info().
		Str("version", version).
		Str("store", cfg.Store.Driver).
		Str("cache", cfg.Cache.Backend).
		Str("events", cfg.Events.Transport).
		Msg("Starting Reelfeed with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === DATA LAYER ===

	store, err := openStore(&cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := store.close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Str("driver", cfg.Store.Driver).Msg("Store initialized")

	fc, cacheBackend, err := initCache(ctx, &cfg.Cache, cfg.Feed.Deadline, tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize page cache")
	}

	// A nil *feedcache.Cache must not reach the feed package as a non-nil
	// interface value.
	var (
		pageCache    feed.PageCache
		breakerState func() string
	)
	if fc != nil {
		pageCache = fc
		breakerState = fc.BreakerState
		defer func() {
			if err := fc.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing page cache")
			}
		}()
	}

	// === MESSAGING LAYER ===

	wsHub := ws.NewHub()

	bus, err := initEvents(cfg, tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize invalidation bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing invalidation bus")
		}
	}()

	localInvalidator := feed.CacheInvalidator{Cache: pageCache}
	if pageCache != nil {
		bus.Subscribe("page-cache", meteredHandler("page-cache", localInvalidator.Invalidate))
	}
	bus.Subscribe("websocket", meteredHandler("websocket", wsHub.NotifyScope))

	tree.AddMessagingService(services.NewInvalidationBusService(bus))
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))

	// === FEED ENGINE ===

	logger := logging.Logger()
	fcfg := feedConfig(cfg)
	invalidator := busInvalidator{bus: bus, local: localInvalidator}

	engine, err := feed.NewEngine(store.store, fcfg, logger, feed.WithObserver(metrics.Observer{}))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create feed engine")
	}
	recorder := feed.NewRecorder(store.store, invalidator, fcfg, logger, feed.WithRecorderObserver(metrics.Observer{}))
	service := feed.NewService(engine, recorder, pageCache, invalidator, logger)

	// === API LAYER ===

	authenticator, err := buildAuthenticator(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure authentication")
	}
	enforcer, err := buildEnforcer(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	defer enforcer.Close()

	security := logging.NewSecurityLogger()
	authMW := auth.NewMiddleware(authenticator, security)
	authzMW := authz.NewMiddleware(enforcer, security)

	limiter := api.NewInteractionLimiter(cfg.Interactions.RatePerSecond, cfg.Interactions.Burst)
	tree.AddDataService(limiter)

	handler := api.NewHandler(service, wsHub, ws.NewUpgrader(cfg.Server.CORSOrigins), api.HealthSources{
		Version:        version,
		StoreDriver:    cfg.Store.Driver,
		Store:          store.pinger,
		CacheBackend:   cacheBackend,
		BreakerState:   breakerState,
		EventTransport: cfg.Events.Transport,
		EventsRunning:  bus.Running(),
	})
	chiMW := api.NewChiMiddlewareFromServer(cfg.Server.CORSOrigins, cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow)
	router := api.NewRouter(handler, chiMW, authMW, authzMW, limiter)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// The channel delivers exactly one value when the tree stops.
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		err = <-errCh
	case err = <-errCh:
		cancel()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
