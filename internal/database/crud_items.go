// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/reelfeed/internal/feed"
)

const itemColumns = `item_id, owner_id, category_id, created_at, duration_seconds,
	views_count, likes_count, shares_count, is_eligible`

// GetItem returns feed.ErrItemNotFound for unknown IDs.
func (db *DB) GetItem(ctx context.Context, itemID string) (feed.Item, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE item_id = ?`, itemID)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return feed.Item{}, feed.ErrItemNotFound
	}
	if err != nil {
		return feed.Item{}, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

// UpsertItem inserts an item or replaces its metadata. Counters of an
// existing item are left untouched.
//
//nolint:gocritic // hugeParam: item passed by value to match feed.Catalog
func (db *DB) UpsertItem(ctx context.Context, item feed.Item) error {
	return db.withTx(ctx, "upsert_item", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO items (`+itemColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (item_id) DO UPDATE SET
				owner_id = EXCLUDED.owner_id,
				category_id = EXCLUDED.category_id,
				created_at = EXCLUDED.created_at,
				duration_seconds = EXCLUDED.duration_seconds,
				is_eligible = EXCLUDED.is_eligible`,
			item.ID, item.OwnerID, item.CategoryID, item.CreatedAt.UTC(), item.DurationSeconds,
			item.Views, item.Likes, item.Shares, item.Eligible)
		if err != nil {
			return fmt.Errorf("failed to upsert item: %w", err)
		}
		return nil
	})
}

// SetEligible flips the stored visibility flag.
func (db *DB) SetEligible(ctx context.Context, itemID string, eligible bool) error {
	res, err := db.conn.ExecContext(ctx, `UPDATE items SET is_eligible = ? WHERE item_id = ?`, eligible, itemID)
	if err != nil {
		return fmt.Errorf("failed to set eligibility: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return feed.ErrItemNotFound
	}
	return nil
}

// ItemsByOwners returns eligible items by any of ownerIDs, newest first.
func (db *DB) ItemsByOwners(ctx context.Context, ownerIDs []string, limit int) ([]feed.Item, error) {
	if len(ownerIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	args := append(stringArgs(ownerIDs), limit)
	return db.queryItems(ctx, `SELECT `+itemColumns+` FROM items
		WHERE is_eligible AND owner_id IN (`+placeholders(len(ownerIDs))+`)
		ORDER BY created_at DESC, item_id
		LIMIT ?`, args...)
}

// ItemsByCategories returns eligible items in any of categoryIDs, newest first.
func (db *DB) ItemsByCategories(ctx context.Context, categoryIDs []string, limit int) ([]feed.Item, error) {
	if len(categoryIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	args := append(stringArgs(categoryIDs), limit)
	return db.queryItems(ctx, `SELECT `+itemColumns+` FROM items
		WHERE is_eligible AND category_id IN (`+placeholders(len(categoryIDs))+`)
		ORDER BY created_at DESC, item_id
		LIMIT ?`, args...)
}

// TrendingCandidates returns every eligible item created at or after since,
// newest first. Decay depends on age, so no engagement cut is safe here.
func (db *DB) TrendingCandidates(ctx context.Context, since time.Time) ([]feed.Item, error) {
	return db.queryItems(ctx, `SELECT `+itemColumns+` FROM items
		WHERE is_eligible AND created_at >= ?
		ORDER BY created_at DESC, item_id`, since.UTC())
}

// RecentItems pages through all eligible items, newest first.
func (db *DB) RecentItems(ctx context.Context, offset, limit int) ([]feed.Item, error) {
	if limit <= 0 {
		return nil, nil
	}
	return db.queryItems(ctx, `SELECT `+itemColumns+` FROM items
		WHERE is_eligible
		ORDER BY created_at DESC, item_id
		LIMIT ? OFFSET ?`, limit, offset)
}

// PopularCategories ranks categories by the total likes of their eligible items.
func (db *DB) PopularCategories(ctx context.Context, limit int) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT category_id FROM items
		WHERE is_eligible AND category_id <> ''
		GROUP BY category_id
		ORDER BY SUM(likes_count) DESC, COUNT(*) DESC, category_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular categories: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	var cats []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// queryItems runs an item query and scans every row.
func (db *DB) queryItems(ctx context.Context, query string, args ...interface{}) ([]feed.Item, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	var items []feed.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(r rowScanner) (feed.Item, error) {
	var it feed.Item
	err := r.Scan(&it.ID, &it.OwnerID, &it.CategoryID, &it.CreatedAt, &it.DurationSeconds,
		&it.Views, &it.Likes, &it.Shares, &it.Eligible)
	return it, err
}
