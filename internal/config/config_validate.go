// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/reelfeed/internal/logging"
)

// minJWTSecretLength is the shortest HS256 secret accepted.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("RATE_LIMIT_REQS must not be negative")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case "memory":
		return nil
	case "duckdb":
		if c.Store.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when STORE_DRIVER=duckdb")
		}
		return nil
	default:
		return fmt.Errorf("STORE_DRIVER must be memory or duckdb, got %q", c.Store.Driver)
	}
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "none", "memory":
	case "badger":
		if c.Cache.BadgerPath == "" {
			return fmt.Errorf("CACHE_BADGER_PATH is required when CACHE_BACKEND=badger")
		}
	case "redis":
		u, err := url.Parse(c.Cache.RedisURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			return fmt.Errorf("REDIS_URL must be a redis:// or rediss:// URL, got %q", c.Cache.RedisURL)
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be none, memory, badger or redis, got %q", c.Cache.Backend)
	}

	if c.Cache.PersonalizedTTL <= 0 || c.Cache.TrendingTTL <= 0 || c.Cache.FollowingTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.Cache.BreakerFailures == 0 {
		return fmt.Errorf("CACHE_BREAKER_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Transport {
	case "gochannel":
	case "nats":
		if !strings.HasPrefix(c.Events.NATSURL, "nats://") && !strings.HasPrefix(c.Events.NATSURL, "tls://") {
			return fmt.Errorf("NATS_URL must start with nats:// or tls://, got %q", c.Events.NATSURL)
		}
	case "embedded":
		if c.Events.EmbeddedPort < 1 || c.Events.EmbeddedPort > 65535 {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be gochannel, nats or embedded, got %q", c.Events.Transport)
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required")
	}
	return nil
}

func (c *Config) validateFeed() error {
	f := c.Feed
	if f.MaxPageSize < 1 {
		return fmt.Errorf("FEED_MAX_PAGE_SIZE must be positive")
	}
	if f.DefaultPageSize < 1 || f.DefaultPageSize > f.MaxPageSize {
		return fmt.Errorf("FEED_DEFAULT_PAGE_SIZE must be between 1 and %d", f.MaxPageSize)
	}
	if f.MaxPage < 1 || f.Overfetch < 1 || f.GeneralBatches < 0 {
		return fmt.Errorf("FEED_MAX_PAGE and FEED_OVERFETCH must be positive, FEED_GENERAL_BATCHES non-negative")
	}
	if f.MaxPerOwner < 1 || f.MaxPerCategory < 1 {
		return fmt.Errorf("feed diversity limits must be positive")
	}
	if f.Deadline <= 0 {
		return fmt.Errorf("FEED_DEADLINE must be positive")
	}
	if f.RewatchRatio < 1 {
		return fmt.Errorf("FEED_REWATCH_RATIO must be >= 1, got %v", f.RewatchRatio)
	}
	switch f.DefaultWindow {
	case "24h", "7d", "30d":
	default:
		return fmt.Errorf("FEED_DEFAULT_WINDOW must be 24h, 7d or 30d, got %q", f.DefaultWindow)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	for _, entry := range c.Security.APIKeys {
		name, hash, ok := strings.Cut(entry, ":")
		if !ok || name == "" || !strings.HasPrefix(hash, "$2") {
			return fmt.Errorf("API_KEYS entries must be name:bcrypt-hash")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
