// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/reelfeed/internal/feed"
)

// ApplyPreferenceDelta creates the preference lazily and moves its score by
// delta, clamped to [0, 1], in one upsert.
func (db *DB) ApplyPreferenceDelta(ctx context.Context, userID, categoryID string, delta float64, at time.Time) (feed.CategoryPreference, error) {
	p := feed.CategoryPreference{UserID: userID, CategoryID: categoryID}
	err := db.withTx(ctx, "apply_preference", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO category_preferences
				(user_id, category_id, score, interaction_count, last_interaction_at)
			VALUES ($1, $2, LEAST(GREATEST($3, 0.0), 1.0), 1, $4)
			ON CONFLICT (user_id, category_id) DO UPDATE SET
				score = LEAST(GREATEST(score + $3, 0.0), 1.0),
				interaction_count = interaction_count + 1,
				last_interaction_at = EXCLUDED.last_interaction_at`,
			userID, categoryID, delta, at.UTC()); err != nil {
			return fmt.Errorf("failed to upsert preference: %w", err)
		}
		return tx.QueryRowContext(ctx, `SELECT score, interaction_count, last_interaction_at
			FROM category_preferences WHERE user_id = ? AND category_id = ?`, userID, categoryID).
			Scan(&p.Score, &p.InteractionCount, &p.LastInteractionAt)
	})
	if err != nil {
		return feed.CategoryPreference{}, err
	}
	return p, nil
}

// ListPreferences returns all stored preferences of userID.
func (db *DB) ListPreferences(ctx context.Context, userID string) ([]feed.CategoryPreference, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT category_id, score, interaction_count, last_interaction_at
		FROM category_preferences WHERE user_id = ? ORDER BY category_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	var prefs []feed.CategoryPreference
	for rows.Next() {
		p := feed.CategoryPreference{UserID: userID}
		if err := rows.Scan(&p.CategoryID, &p.Score, &p.InteractionCount, &p.LastInteractionAt); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// UserActivity counts the user's likes, viewed items and follows.
func (db *DB) UserActivity(ctx context.Context, userID string) (feed.UserActivity, error) {
	var a feed.UserActivity
	err := db.conn.QueryRowContext(ctx, `SELECT
			(SELECT COUNT(*) FROM likes WHERE user_id = $1),
			(SELECT COUNT(*) FROM views WHERE user_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)`, userID).
		Scan(&a.Likes, &a.Views, &a.Follows)
	if err != nil {
		return feed.UserActivity{}, fmt.Errorf("failed to count activity: %w", err)
	}
	return a, nil
}

// Followees lists the creators userID follows.
func (db *DB) Followees(ctx context.Context, userID string) ([]string, error) {
	return db.queryIDs(ctx, `SELECT followee_id FROM follows WHERE follower_id = ? ORDER BY followee_id`, userID)
}

// Followers lists the users following userID.
func (db *DB) Followers(ctx context.Context, userID string) ([]string, error) {
	return db.queryIDs(ctx, `SELECT follower_id FROM follows WHERE followee_id = ? ORDER BY follower_id`, userID)
}

// SimilarUsers returns users sharing at least minCommon likes with userID,
// most common likes first, at most limit users.
func (db *DB) SimilarUsers(ctx context.Context, userID string, minCommon, limit int) ([]feed.SimilarUser, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT other.user_id, COUNT(*) AS common
		FROM likes mine
		JOIN likes other ON other.item_id = mine.item_id AND other.user_id <> mine.user_id
		WHERE mine.user_id = ?
		GROUP BY other.user_id
		HAVING COUNT(*) >= ?
		ORDER BY common DESC, other.user_id
		LIMIT ?`, userID, minCommon, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar users: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	var out []feed.SimilarUser
	for rows.Next() {
		var s feed.SimilarUser
		if err := rows.Scan(&s.UserID, &s.CommonLikes); err != nil {
			return nil, fmt.Errorf("failed to scan similar user: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ItemsLikedBy returns eligible items liked by any of userIDs and not by
// excludeUserID, most liked within the group first.
func (db *DB) ItemsLikedBy(ctx context.Context, userIDs []string, excludeUserID string, limit int) ([]feed.Item, error) {
	if len(userIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	args := stringArgs(userIDs)
	args = append(args, excludeUserID, limit)
	return db.queryItems(ctx, `SELECT i.item_id, i.owner_id, i.category_id, i.created_at, i.duration_seconds,
			i.views_count, i.likes_count, i.shares_count, i.is_eligible
		FROM items i
		JOIN (
			SELECT item_id, COUNT(*) AS n FROM likes
			WHERE user_id IN (`+placeholders(len(userIDs))+`)
			GROUP BY item_id
		) g ON g.item_id = i.item_id
		WHERE i.is_eligible
			AND NOT EXISTS (SELECT 1 FROM likes x WHERE x.user_id = ? AND x.item_id = i.item_id)
		ORDER BY g.n DESC, i.created_at DESC, i.item_id
		LIMIT ?`, args...)
}

func (db *DB) queryIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer closeWithLog(rows, nil, "rows")

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
