// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Cache.PersonalizedTTL != 5*time.Minute {
		t.Errorf("Cache.PersonalizedTTL = %v, want 5m", cfg.Cache.PersonalizedTTL)
	}
	if cfg.Cache.TrendingTTL != 10*time.Minute {
		t.Errorf("Cache.TrendingTTL = %v, want 10m", cfg.Cache.TrendingTTL)
	}
	if cfg.Cache.FollowingTTL != 5*time.Minute {
		t.Errorf("Cache.FollowingTTL = %v, want 5m", cfg.Cache.FollowingTTL)
	}
	if cfg.Feed.DefaultPageSize != 20 || cfg.Feed.MaxPageSize != 100 {
		t.Errorf("page sizes = %d/%d, want 20/100", cfg.Feed.DefaultPageSize, cfg.Feed.MaxPageSize)
	}
	if cfg.Feed.MaxPerOwner != 3 || cfg.Feed.MaxPerCategory != 5 {
		t.Errorf("diversity = %d/%d, want 3/5", cfg.Feed.MaxPerOwner, cfg.Feed.MaxPerCategory)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("Store.Driver = %q, want memory", cfg.Store.Driver)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "store.path"},
		{"CACHE_BACKEND", "cache.backend"},
		{"FEED_MAX_PER_OWNER", "feed.max_per_owner"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CACHE_BACKEND", "none")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("FEED_DEADLINE", "750ms")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("Cache.Backend = %q, want none", cfg.Cache.Backend)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Feed.Deadline != 750*time.Millisecond {
		t.Errorf("Feed.Deadline = %v, want 750ms", cfg.Feed.Deadline)
	}
}

func TestLoadWithKoanf_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
server:
  port: 7070
feed:
  max_per_owner: 2
  default_window: 24h
cache:
  backend: badger
  badger_path: /tmp/reelfeed-cache
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Feed.MaxPerOwner != 2 {
		t.Errorf("Feed.MaxPerOwner = %d, want 2", cfg.Feed.MaxPerOwner)
	}
	if cfg.Feed.MaxPerCategory != 5 {
		t.Errorf("Feed.MaxPerCategory should keep default 5, got %d", cfg.Feed.MaxPerCategory)
	}
	if cfg.Cache.Backend != "badger" {
		t.Errorf("Cache.Backend = %q, want badger", cfg.Cache.Backend)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"unknown store", func(c *Config) { c.Store.Driver = "postgres" }},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis url scheme", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.RedisURL = "http://x" }},
		{"zero ttl", func(c *Config) { c.Cache.TrendingTTL = 0 }},
		{"page size over max", func(c *Config) { c.Feed.DefaultPageSize = 500 }},
		{"rewatch below one", func(c *Config) { c.Feed.RewatchRatio = 0.5 }},
		{"bad window", func(c *Config) { c.Feed.DefaultWindow = "1y" }},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "short" }},
		{"bad api key", func(c *Config) { c.Security.APIKeys = []string{"ingest"} }},
		{"bad events transport", func(c *Config) { c.Events.Transport = "kafka" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
