// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package main

import (
	"fmt"

	"github.com/tomtom215/reelfeed/internal/auth"
	"github.com/tomtom215/reelfeed/internal/authz"
	"github.com/tomtom215/reelfeed/internal/config"
	"github.com/tomtom215/reelfeed/internal/logging"
)

// buildAuthenticator combines the configured identity sources. It returns
// nil when none is configured, in which case every request is anonymous
// and only the trending feed is usable.
func buildAuthenticator(cfg *config.SecurityConfig) (auth.Authenticator, error) {
	var authenticators []auth.Authenticator

	if cfg.JWTSecret != "" {
		manager, err := auth.NewJWTManager(cfg.JWTSecret, jwtTokenLifetime)
		if err != nil {
			return nil, fmt.Errorf("jwt: %w", err)
		}
		authenticators = append(authenticators, auth.NewJWTAuthenticator(manager))
		logging.Info().Msg("JWT bearer authentication enabled")
	}

	if len(cfg.APIKeys) > 0 {
		keys, err := auth.NewAPIKeyAuthenticator(cfg.APIKeys)
		if err != nil {
			return nil, fmt.Errorf("api keys: %w", err)
		}
		authenticators = append(authenticators, keys)
		logging.Info().Int("keys", len(cfg.APIKeys)).Msg("Service API key authentication enabled")
	}

	if cfg.TrustUserHeader {
		authenticators = append(authenticators, auth.NewHeaderAuthenticator())
		logging.Warn().Msg("Trusting X-User-ID from upstream gateway (TRUST_USER_HEADER=true); never expose this port directly")
	}

	if len(authenticators) == 0 {
		logging.Warn().Msg("No authentication configured; only the trending feed is available")
		return nil, nil
	}
	return auth.NewMultiAuthenticator(authenticators...), nil
}

// buildEnforcer loads the Casbin rules guarding interaction and admin routes.
func buildEnforcer(cfg *config.SecurityConfig) (*authz.Enforcer, error) {
	ecfg := authz.DefaultEnforcerConfig()
	ecfg.ModelPath = cfg.CasbinModelPath
	ecfg.PolicyPath = cfg.CasbinPolicyPath
	return authz.NewEnforcer(ecfg)
}
