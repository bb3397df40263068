// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

/*
database_schema.go - Database Schema Management

Tables:
  - items: catalog projection of reels (owner, category, duration, counters,
    eligibility flag). Counters only change through x = x + 1 style updates.
  - likes: one row per active (user, item) like; unlike hard-deletes.
  - views: one mutable row per (user, item) holding the latest watch time.
  - shares: one row per identified (user, item) share; anonymous shares only
    bump items.shares_count.
  - follows: one row per (follower, followee) edge.
  - category_preferences: per (user, category) affinity, clamped to [0, 1].
    Decay is applied at read time and never written back.

Index Strategy:
Primary keys enforce the at-most-one-record-per-pair rule and back the
ON CONFLICT conditional writes. Secondary indexes cover the reverse graph
lookups (likers of an item, followers of a creator). The items table has
no secondary indexes: DuckDB rejects ON CONFLICT DO UPDATE assignments to
indexed columns, and item scans rely on zonemaps instead.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// createIndexes creates secondary indexes
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range indexCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS items (
		item_id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		category_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		duration_seconds DOUBLE NOT NULL DEFAULT 0,
		views_count BIGINT NOT NULL DEFAULT 0,
		likes_count BIGINT NOT NULL DEFAULT 0,
		shares_count BIGINT NOT NULL DEFAULT 0,
		is_eligible BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		user_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS views (
		user_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		watch_seconds DOUBLE,
		created_at TIMESTAMP NOT NULL,
		last_viewed_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS shares (
		user_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		share_count INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		last_shared_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS follows (
		follower_id TEXT NOT NULL,
		followee_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (follower_id, followee_id)
	)`,
	`CREATE TABLE IF NOT EXISTS category_preferences (
		user_id TEXT NOT NULL,
		category_id TEXT NOT NULL,
		score DOUBLE NOT NULL DEFAULT 0,
		interaction_count INTEGER NOT NULL DEFAULT 0,
		last_interaction_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, category_id)
	)`,
}

var indexCreationQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_likes_item ON likes(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_follows_followee ON follows(followee_id)`,
}
