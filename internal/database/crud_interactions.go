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

// InsertLike stores the like and increments likes_count in one
// transaction. It returns false, changing nothing, if the like exists.
func (db *DB) InsertLike(ctx context.Context, userID, itemID string, at time.Time) (bool, error) {
	var inserted bool
	err := db.withTx(ctx, "insert_like", func(tx *sql.Tx) error {
		n, err := execAffected(ctx, tx, `INSERT INTO likes (user_id, item_id, created_at)
			VALUES (?, ?, ?) ON CONFLICT DO NOTHING`, userID, itemID, at.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert like: %w", err)
		}
		inserted = n > 0
		if !inserted {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE items SET likes_count = likes_count + 1 WHERE item_id = ?`, itemID); err != nil {
			return fmt.Errorf("failed to increment likes: %w", err)
		}
		return nil
	})
	return inserted, err
}

// DeleteLike removes the like and decrements likes_count, floored at zero.
// It returns false, changing nothing, if no like exists.
func (db *DB) DeleteLike(ctx context.Context, userID, itemID string) (bool, error) {
	var deleted bool
	err := db.withTx(ctx, "delete_like", func(tx *sql.Tx) error {
		n, err := execAffected(ctx, tx, `DELETE FROM likes WHERE user_id = ? AND item_id = ?`, userID, itemID)
		if err != nil {
			return fmt.Errorf("failed to delete like: %w", err)
		}
		deleted = n > 0
		if !deleted {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE items SET likes_count = GREATEST(likes_count - 1, 0) WHERE item_id = ?`, itemID); err != nil {
			return fmt.Errorf("failed to decrement likes: %w", err)
		}
		return nil
	})
	return deleted, err
}

// HasLike reports whether an active like exists.
func (db *DB) HasLike(ctx context.Context, userID, itemID string) (bool, error) {
	return db.exists(ctx, `SELECT 1 FROM likes WHERE user_id = ? AND item_id = ?`, userID, itemID)
}

// GetView returns the stored view row, if any.
func (db *DB) GetView(ctx context.Context, userID, itemID string) (feed.ViewRecord, bool, error) {
	var (
		v     = feed.ViewRecord{UserID: userID, ItemID: itemID}
		watch sql.NullFloat64
	)
	err := db.conn.QueryRowContext(ctx, `SELECT watch_seconds, created_at, last_viewed_at
		FROM views WHERE user_id = ? AND item_id = ?`, userID, itemID).
		Scan(&watch, &v.CreatedAt, &v.LastViewedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return feed.ViewRecord{}, false, nil
	}
	if err != nil {
		return feed.ViewRecord{}, false, fmt.Errorf("failed to get view: %w", err)
	}
	if watch.Valid {
		w := watch.Float64
		v.WatchSeconds = &w
	}
	return v, true, nil
}

// SaveView upserts the view row and, when countView is set, increments
// views_count in the same transaction.
//
//nolint:gocritic // hugeParam: view passed by value to match feed.InteractionStore
func (db *DB) SaveView(ctx context.Context, view feed.ViewRecord, countView bool) error {
	var watch sql.NullFloat64
	if view.WatchSeconds != nil {
		watch = sql.NullFloat64{Float64: *view.WatchSeconds, Valid: true}
	}
	return db.withTx(ctx, "save_view", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO views (user_id, item_id, watch_seconds, created_at, last_viewed_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id, item_id) DO UPDATE SET
				watch_seconds = EXCLUDED.watch_seconds,
				last_viewed_at = EXCLUDED.last_viewed_at`,
			view.UserID, view.ItemID, watch, view.CreatedAt.UTC(), view.LastViewedAt.UTC()); err != nil {
			return fmt.Errorf("failed to upsert view: %w", err)
		}
		if !countView {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE items SET views_count = views_count + 1 WHERE item_id = ?`, view.ItemID); err != nil {
			return fmt.Errorf("failed to increment views: %w", err)
		}
		return nil
	})
}

// RecordShare increments shares_count. Identified users also get a
// deduplicated share row whose share_count tracks repeats.
func (db *DB) RecordShare(ctx context.Context, userID, itemID string, at time.Time) error {
	return db.withTx(ctx, "record_share", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE items SET shares_count = shares_count + 1 WHERE item_id = ?`, itemID); err != nil {
			return fmt.Errorf("failed to increment shares: %w", err)
		}
		if userID == "" {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO shares (user_id, item_id, share_count, created_at, last_shared_at)
			VALUES (?, ?, 1, ?, ?)
			ON CONFLICT (user_id, item_id) DO UPDATE SET
				share_count = share_count + 1,
				last_shared_at = EXCLUDED.last_shared_at`,
			userID, itemID, at.UTC(), at.UTC()); err != nil {
			return fmt.Errorf("failed to upsert share: %w", err)
		}
		return nil
	})
}

// InsertFollow creates the edge, returning false if it exists.
func (db *DB) InsertFollow(ctx context.Context, followerID, followeeID string, at time.Time) (bool, error) {
	var inserted bool
	err := db.withTx(ctx, "insert_follow", func(tx *sql.Tx) error {
		n, err := execAffected(ctx, tx, `INSERT INTO follows (follower_id, followee_id, created_at)
			VALUES (?, ?, ?) ON CONFLICT DO NOTHING`, followerID, followeeID, at.UTC())
		if err != nil {
			return fmt.Errorf("failed to insert follow: %w", err)
		}
		inserted = n > 0
		return nil
	})
	return inserted, err
}

// DeleteFollow removes the edge, returning false if none exists.
func (db *DB) DeleteFollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	var deleted bool
	err := db.withTx(ctx, "delete_follow", func(tx *sql.Tx) error {
		n, err := execAffected(ctx, tx, `DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`, followerID, followeeID)
		if err != nil {
			return fmt.Errorf("failed to delete follow: %w", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// IsFollowing reports whether the edge exists.
func (db *DB) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	return db.exists(ctx, `SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?`, followerID, followeeID)
}

func (db *DB) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return true, nil
}

func execAffected(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (int64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
