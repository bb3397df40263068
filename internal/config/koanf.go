// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelfeed/config.yaml",
	"/etc/reelfeed/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Store: StoreConfig{
			Driver:    "memory",
			Path:      "/data/reelfeed.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Cache: CacheConfig{
			Backend:          "memory",
			BadgerPath:       "/data/feedcache",
			RedisURL:         "redis://127.0.0.1:6379/0",
			PersonalizedTTL:  5 * time.Minute,
			TrendingTTL:      10 * time.Minute,
			FollowingTTL:     5 * time.Minute,
			OpTimeout:        100 * time.Millisecond,
			BreakerFailures:  5,
			BreakerTimeout:   30 * time.Second,
			BadgerGCInterval: 10 * time.Minute,
		},
		Events: EventsConfig{
			Transport:    "gochannel",
			NATSURL:      "nats://127.0.0.1:4222",
			Topic:        "feed.invalidations",
			EmbeddedHost: "127.0.0.1",
			EmbeddedPort: 4222,
			QueueGroup:   "",
		},
		Feed: FeedConfig{
			DefaultPageSize:    20,
			MaxPageSize:        100,
			MaxPage:            50,
			Overfetch:          2,
			GeneralBatches:     4,
			Deadline:           2 * time.Second,
			MaxPerOwner:        3,
			MaxPerCategory:     5,
			SimilarUsersLimit:  50,
			MinCommonLikes:     3,
			ColdStartThreshold: 3,
			RewatchRatio:       1.25,
			TopCategories:      5,
			DefaultWindow:      "7d",
		},
		Interactions: InteractionsConfig{
			RatePerSecond: 5,
			Burst:         20,
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			APIKeys:         []string{},
			TrustUserHeader: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file
// and environment variables, in increasing order of priority, then validates it.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// HTTP_PORT -> server.port, CACHE_BACKEND -> cache.backend, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first default path found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
	"security.api_keys",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak in.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_reqs":       "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",

	"store_driver":      "store.driver",
	"duckdb_path":       "store.path",
	"duckdb_max_memory": "store.max_memory",
	"duckdb_threads":    "store.threads",

	"cache_backend":            "cache.backend",
	"cache_badger_path":        "cache.badger_path",
	"redis_url":                "cache.redis_url",
	"cache_personalized_ttl":   "cache.personalized_ttl",
	"cache_trending_ttl":       "cache.trending_ttl",
	"cache_following_ttl":      "cache.following_ttl",
	"cache_op_timeout":         "cache.op_timeout",
	"cache_breaker_failures":   "cache.breaker_failures",
	"cache_breaker_timeout":    "cache.breaker_timeout",
	"cache_badger_gc_interval": "cache.badger_gc_interval",

	"events_transport":   "events.transport",
	"nats_url":           "events.nats_url",
	"events_topic":       "events.topic",
	"nats_embedded_host": "events.embedded_host",
	"nats_embedded_port": "events.embedded_port",
	"events_queue_group": "events.queue_group",

	"feed_default_page_size":    "feed.default_page_size",
	"feed_max_page_size":        "feed.max_page_size",
	"feed_max_page":             "feed.max_page",
	"feed_overfetch":            "feed.overfetch",
	"feed_general_batches":      "feed.general_batches",
	"feed_deadline":             "feed.deadline",
	"feed_max_per_owner":        "feed.max_per_owner",
	"feed_max_per_category":     "feed.max_per_category",
	"feed_similar_users_limit":  "feed.similar_users_limit",
	"feed_min_common_likes":     "feed.min_common_likes",
	"feed_cold_start_threshold": "feed.cold_start_threshold",
	"feed_rewatch_ratio":        "feed.rewatch_ratio",
	"feed_top_categories":       "feed.top_categories",
	"feed_default_window":       "feed.default_window",

	"interaction_rate_per_second": "interactions.rate_per_second",
	"interaction_burst":           "interactions.burst",

	"jwt_secret":         "security.jwt_secret",
	"api_keys":           "security.api_keys",
	"trust_user_header":  "security.trust_user_header",
	"casbin_model_path":  "security.casbin_model_path",
	"casbin_policy_path": "security.casbin_policy_path",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> store.path
//   - FEED_MAX_PER_OWNER -> feed.max_per_owner
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
