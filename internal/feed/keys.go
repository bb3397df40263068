// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	keyRoot    = "feed:"
	publicUser = "public"
)

// idPattern bounds user and item IDs so they are safe inside cache keys
// and key patterns.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id is usable as a user or item identifier.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

func requireID(field, id string) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %s must match [A-Za-z0-9_-]{1,64}", ErrInvalidInput, field)
	}
	return nil
}

// CacheKey builds the composite key for a normalized request:
//
//	feed:personalized:{user}:{page}:{size}
//	feed:following:{user}:{page}:{size}
//	feed:trending:public:{window}:{page}:{size}
func CacheKey(req Request) string {
	var b strings.Builder
	b.WriteString(keyRoot)
	b.WriteString(string(req.Type))
	b.WriteByte(':')
	if req.Type == TypeTrending {
		b.WriteString(publicUser)
		b.WriteByte(':')
		b.WriteString(string(req.Window))
	} else {
		b.WriteString(req.UserID)
	}
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(req.Page))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(req.PageSize))
	return b.String()
}

// ScopeKind selects what an invalidation drops.
type ScopeKind string

const (
	ScopeUser     ScopeKind = "user"
	ScopeItem     ScopeKind = "item"
	ScopeTrending ScopeKind = "trending"
	ScopeGlobal   ScopeKind = "global"
)

// Scope is an invalidation target.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

// UserScope drops one user's personalized and following pages.
func UserScope(userID string) Scope { return Scope{Kind: ScopeUser, ID: userID} }

// ItemScope drops every page that may contain the item.
func ItemScope(itemID string) Scope { return Scope{Kind: ScopeItem, ID: itemID} }

// TrendingScope drops all public trending pages.
func TrendingScope() Scope { return Scope{Kind: ScopeTrending} }

// GlobalScope drops everything.
func GlobalScope() Scope { return Scope{Kind: ScopeGlobal} }

// ParseScope validates an administrative invalidation request.
func ParseScope(kind, id string) (Scope, error) {
	switch k := ScopeKind(kind); k {
	case ScopeUser, ScopeItem:
		if err := requireID(kind+" id", id); err != nil {
			return Scope{}, err
		}
		return Scope{Kind: k, ID: id}, nil
	case ScopeTrending, ScopeGlobal:
		return Scope{Kind: k}, nil
	default:
		return Scope{}, fmt.Errorf("%w: scope must be user, item, trending or global, got %q", ErrInvalidInput, kind)
	}
}

// String renders the scope as kind or kind:id.
func (s Scope) String() string {
	if s.ID == "" {
		return string(s.Kind)
	}
	return string(s.Kind) + ":" + s.ID
}

// Prefixes returns the cache key prefixes the scope covers. An item can
// sit on any personalized, following or trending page, so item scope
// covers the whole keyspace.
func (s Scope) Prefixes() []string {
	switch s.Kind {
	case ScopeUser:
		return []string{
			keyRoot + string(TypePersonalized) + ":" + s.ID + ":",
			keyRoot + string(TypeFollowing) + ":" + s.ID + ":",
		}
	case ScopeTrending:
		return []string{keyRoot + string(TypeTrending) + ":"}
	default:
		return []string{keyRoot}
	}
}

// Invalidator drops cached pages. Implementations are best-effort;
// callers log and swallow errors.
type Invalidator interface {
	Invalidate(ctx context.Context, scope Scope) error
}

// PageCache stores composed pages under a TTL. The bool result reports a
// cache hit. Backend failures must fall through to compute. Pages that are
// not Cacheable, or whose computation was cut short, are returned but never
// stored.
type PageCache interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (Page, error)) (Page, bool, error)
	DeletePrefixes(ctx context.Context, prefixes ...string) error
}

// CacheInvalidator applies scopes directly to a local page cache.
type CacheInvalidator struct {
	Cache PageCache
}

// Invalidate implements Invalidator.
func (c CacheInvalidator) Invalidate(ctx context.Context, scope Scope) error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.DeletePrefixes(ctx, scope.Prefixes()...)
}

// NopInvalidator discards invalidations.
type NopInvalidator struct{}

// Invalidate implements Invalidator.
func (NopInvalidator) Invalidate(context.Context, Scope) error { return nil }
