// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package config

import "time"

// Config holds all application configuration.
//
// Values are layered by LoadWithKoanf: struct defaults, then an optional
// YAML file, then environment variables.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Store        StoreConfig        `koanf:"store"`
	Cache        CacheConfig        `koanf:"cache"`
	Events       EventsConfig       `koanf:"events"`
	Feed         FeedConfig         `koanf:"feed"`
	Interactions InteractionsConfig `koanf:"interactions"`
	Security     SecurityConfig     `koanf:"security"`
	Logging      LoggingConfig      `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`   // Requests per window per IP
	RateLimitWindow time.Duration `koanf:"rate_limit_window"` // Window for RateLimitReqs
}

// StoreConfig selects and tunes the interaction/catalog store.
type StoreConfig struct {
	// Driver is "memory" (process-local, lost on restart) or "duckdb".
	Driver    string `koanf:"driver"`
	Path      string `koanf:"path"`       // DuckDB file; ":memory:" for an ephemeral database
	MaxMemory string `koanf:"max_memory"` // DuckDB memory limit, e.g. "1GB"
	Threads   int    `koanf:"threads"`    // DuckDB threads (0 = use NumCPU)
}

// CacheConfig configures the feed page cache.
type CacheConfig struct {
	// Backend is one of: none, memory, badger, redis.
	Backend    string `koanf:"backend"`
	BadgerPath string `koanf:"badger_path"`
	RedisURL   string `koanf:"redis_url"`

	PersonalizedTTL time.Duration `koanf:"personalized_ttl"`
	TrendingTTL     time.Duration `koanf:"trending_ttl"`
	FollowingTTL    time.Duration `koanf:"following_ttl"`

	// OpTimeout bounds a single backend call; a slower backend is bypassed.
	OpTimeout time.Duration `koanf:"op_timeout"`

	// BreakerFailures consecutive failures open the circuit breaker,
	// which stays open for BreakerTimeout.
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`

	// BadgerGCInterval is how often value log GC runs for the badger backend.
	BadgerGCInterval time.Duration `koanf:"badger_gc_interval"`
}

// EventsConfig configures the invalidation bus shared between instances.
type EventsConfig struct {
	// Transport is "gochannel" (single instance), "nats" (external server)
	// or "embedded" (in-process NATS server).
	Transport    string `koanf:"transport"`
	NATSURL      string `koanf:"nats_url"`
	Topic        string `koanf:"topic"`
	EmbeddedHost string `koanf:"embedded_host"`
	EmbeddedPort int    `koanf:"embedded_port"`
	QueueGroup   string `koanf:"queue_group"`
}

// FeedConfig tunes ranking and composition.
type FeedConfig struct {
	DefaultPageSize    int           `koanf:"default_page_size"`
	MaxPageSize        int           `koanf:"max_page_size"`
	MaxPage            int           `koanf:"max_page"` // deeper pages come back empty
	Overfetch          int           `koanf:"overfetch"`
	GeneralBatches     int           `koanf:"general_batches"`
	Deadline           time.Duration `koanf:"deadline"`
	MaxPerOwner        int           `koanf:"max_per_owner"`
	MaxPerCategory     int           `koanf:"max_per_category"`
	SimilarUsersLimit  int           `koanf:"similar_users_limit"`
	MinCommonLikes     int           `koanf:"min_common_likes"`
	ColdStartThreshold int           `koanf:"cold_start_threshold"`
	RewatchRatio       float64       `koanf:"rewatch_ratio"`
	TopCategories      int           `koanf:"top_categories"`
	DefaultWindow      string        `koanf:"default_window"`
}

// InteractionsConfig limits how fast a single user can record interactions.
type InteractionsConfig struct {
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`
}

// SecurityConfig holds identity settings.
type SecurityConfig struct {
	// JWTSecret verifies HS256 bearer tokens issued by the auth collaborator.
	JWTSecret string `koanf:"jwt_secret"`

	// APIKeys are "name:bcrypt-hash" pairs for service callers
	// (ingestion and moderation hooks).
	APIKeys []string `koanf:"api_keys"`

	// TrustUserHeader accepts X-User-ID from a trusted gateway when no token is present.
	TrustUserHeader bool `koanf:"trust_user_header"`

	// CasbinModelPath and CasbinPolicyPath override the embedded authorization rules.
	CasbinModelPath  string `koanf:"casbin_model_path"`
	CasbinPolicyPath string `koanf:"casbin_policy_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}
