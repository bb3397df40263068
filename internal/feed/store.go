// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"time"
)

// Catalog reads and maintains the content projection. Retrieval queries
// return only items whose stored eligibility flag is set, newest first.
type Catalog interface {
	// GetItem returns ErrItemNotFound for unknown IDs.
	GetItem(ctx context.Context, itemID string) (Item, error)

	// UpsertItem inserts or replaces metadata, keeping existing counters.
	UpsertItem(ctx context.Context, item Item) error

	// SetEligible flips the stored visibility flag.
	SetEligible(ctx context.Context, itemID string, eligible bool) error

	ItemsByOwners(ctx context.Context, ownerIDs []string, limit int) ([]Item, error)
	ItemsByCategories(ctx context.Context, categoryIDs []string, limit int) ([]Item, error)

	// TrendingCandidates returns every item created at or after since,
	// newest first. Callers score and cut the whole window themselves.
	TrendingCandidates(ctx context.Context, since time.Time) ([]Item, error)

	// RecentItems pages through all eligible items, newest first.
	RecentItems(ctx context.Context, offset, limit int) ([]Item, error)

	// PopularCategories ranks categories by total likes of eligible items.
	PopularCategories(ctx context.Context, limit int) ([]string, error)
}

// InteractionStore holds like, view, share and follow records. Each
// conditional write (existence check plus insert or delete, plus the
// counter change) is atomic.
type InteractionStore interface {
	// InsertLike returns false if the like already exists; otherwise it
	// stores the like and increments likes_count.
	InsertLike(ctx context.Context, userID, itemID string, at time.Time) (bool, error)

	// DeleteLike returns false if no like exists; otherwise it removes the
	// like and decrements likes_count with a floor of zero.
	DeleteLike(ctx context.Context, userID, itemID string) (bool, error)

	HasLike(ctx context.Context, userID, itemID string) (bool, error)

	// GetView returns the stored view, if any.
	GetView(ctx context.Context, userID, itemID string) (ViewRecord, bool, error)

	// SaveView upserts the view record and, when countView is set,
	// increments views_count in the same write.
	SaveView(ctx context.Context, view ViewRecord, countView bool) error

	// RecordShare increments shares_count. A non-empty userID also
	// upserts a per-user share record.
	RecordShare(ctx context.Context, userID, itemID string, at time.Time) error

	InsertFollow(ctx context.Context, followerID, followeeID string, at time.Time) (bool, error)
	DeleteFollow(ctx context.Context, followerID, followeeID string) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
}

// PreferenceStore keeps per-(user, category) affinity.
type PreferenceStore interface {
	// ApplyPreferenceDelta creates the row lazily, sets
	// score = clamp(score+delta, 0, 1), increments interaction_count and
	// stamps last_interaction_at.
	ApplyPreferenceDelta(ctx context.Context, userID, categoryID string, delta float64, at time.Time) (CategoryPreference, error)

	ListPreferences(ctx context.Context, userID string) ([]CategoryPreference, error)
}

// ActivityReader exposes raw counts for the cold-start rule.
type ActivityReader interface {
	UserActivity(ctx context.Context, userID string) (UserActivity, error)
}

// GraphReader reads the follow and like graphs.
type GraphReader interface {
	Followees(ctx context.Context, userID string) ([]string, error)
	Followers(ctx context.Context, userID string) ([]string, error)

	// SimilarUsers returns users sharing at least minCommon liked items
	// with userID, most common likes first, at most limit users.
	SimilarUsers(ctx context.Context, userID string, minCommon, limit int) ([]SimilarUser, error)

	// ItemsLikedBy returns eligible items liked by any of userIDs and not
	// liked by excludeUserID, most liked first.
	ItemsLikedBy(ctx context.Context, userIDs []string, excludeUserID string, limit int) ([]Item, error)
}

// Store is everything the feed reads and writes.
type Store interface {
	Catalog
	InteractionStore
	PreferenceStore
	ActivityReader
	GraphReader
}

// Eligibility is the delegated visibility predicate owned by the catalog.
// It is applied to every candidate and to the target of every direct
// interaction.
type Eligibility interface {
	IsEligible(ctx context.Context, item *Item) bool
}

// StoredEligibility trusts the eligibility flag kept in the catalog projection.
type StoredEligibility struct{}

// IsEligible implements Eligibility.
func (StoredEligibility) IsEligible(_ context.Context, item *Item) bool {
	return item.Eligible
}

// EligibilityFunc adapts a function to Eligibility.
type EligibilityFunc func(ctx context.Context, item *Item) bool

// IsEligible implements Eligibility.
func (f EligibilityFunc) IsEligible(ctx context.Context, item *Item) bool {
	return f(ctx, item)
}
