// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feedcache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/reelfeed/internal/feed"
)

// Cache results reported to the Observer.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultOK      = "ok"
	ResultError   = "error"
	ResultCorrupt = "corrupt"
	ResultSkipped = "skipped"
)

// Observer receives cache outcomes. The metrics package implements it.
type Observer interface {
	ObserveCache(op, result string)
	ObserveBreakerState(name string, state string)
}

// Options tunes backend protection.
type Options struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// OpTimeout bounds a single backend call. Zero disables the bound.
	OpTimeout time.Duration

	// ComputeTimeout bounds a shared page computation. The computation is
	// detached from the caller that started it, so this is its only limit.
	// Zero disables the bound.
	ComputeTimeout time.Duration

	// BreakerFailures consecutive failures open the breaker.
	BreakerFailures uint32

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration
}

// DefaultOptions returns production defaults.
func DefaultOptions() Options {
	return Options{
		Name:            "feedcache",
		OpTimeout:       100 * time.Millisecond,
		ComputeTimeout:  5 * time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Cache implements feed.PageCache over a Backend.
type Cache struct {
	backend  Backend
	breaker  *gobreaker.CircuitBreaker[[]byte]
	group    singleflight.Group
	opts     Options
	logger   zerolog.Logger
	observer Observer

	// generation advances on every delete; in-flight computations that
	// started under an older generation skip the write-back.
	generation atomic.Uint64
}

var _ feed.PageCache = (*Cache)(nil)

// New creates a cache. observer may be nil.
func New(backend Backend, opts Options, logger zerolog.Logger, observer Observer) *Cache {
	if opts.Name == "" {
		opts.Name = "feedcache"
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	c := &Cache{
		backend:  backend,
		opts:     opts,
		logger:   logger.With().Str("component", "feedcache").Logger(),
		observer: observer,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		// A caller giving up is not a backend fault.
		IsExcluded: func(err error) bool {
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Cache circuit breaker state changed")
			if c.observer != nil {
				c.observer.ObserveBreakerState(name, to.String())
			}
		},
	})
	return c
}

// GetOrCompute returns the cached page for key, or computes, stores and
// returns it. Backend failures fall through to compute; only compute
// errors and the caller's own cancellation are returned.
//
// Concurrent misses share one computation. It runs detached from every
// caller's cancellation, bounded by ComputeTimeout, so one caller going
// away cannot hand the others a truncated page. Degraded pages and pages
// from a computation that hit its bound are returned but not stored.
func (c *Cache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (feed.Page, error)) (feed.Page, bool, error) {
	if page, ok := c.lookup(ctx, key); ok {
		return page, true, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		cctx, cancel := c.computeContext(ctx)
		defer cancel()

		gen := c.generation.Load()
		page, err := compute(cctx)
		if err != nil {
			return feed.Page{}, err
		}
		switch {
		case cctx.Err() != nil:
			c.observe("set", ResultSkipped)
			c.logger.Debug().Str("key", key).Msg("Page computation overran its bound, not caching")
		case !page.Cacheable():
			c.observe("set", ResultSkipped)
			c.logger.Debug().Str("key", key).Interface("degraded_tiers", page.Info.DegradedTiers).
				Msg("Degraded page not cached")
		case c.generation.Load() == gen:
			c.store(cctx, key, page, ttl)
		}
		return page, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return feed.Page{}, false, res.Err
		}
		return res.Val.(feed.Page), false, nil
	case <-ctx.Done():
		return feed.Page{}, false, ctx.Err()
	}
}

// DeletePrefixes removes every key under the given prefixes. All prefixes
// are attempted; the joined error reports the failures.
func (c *Cache) DeletePrefixes(ctx context.Context, prefixes ...string) error {
	c.generation.Add(1)

	var errs []error
	for _, prefix := range prefixes {
		var removed int
		_, err := c.breaker.Execute(func() ([]byte, error) {
			opCtx, cancel := c.opContext(ctx)
			defer cancel()
			n, err := c.backend.DeletePrefix(opCtx, prefix)
			removed = n
			return nil, err
		})
		if err != nil {
			c.observe("delete", ResultError)
			errs = append(errs, fmt.Errorf("delete prefix %s: %w", prefix, err))
			continue
		}
		c.observe("delete", ResultOK)
		c.logger.Debug().Str("prefix", prefix).Int("removed", removed).Msg("Cache prefix invalidated")
	}
	return errors.Join(errs...)
}

// BreakerState returns the breaker state name for health reporting.
func (c *Cache) BreakerState() string {
	return c.breaker.State().String()
}

// Close closes the backend.
func (c *Cache) Close() error {
	return c.backend.Close()
}

func (c *Cache) lookup(ctx context.Context, key string) (feed.Page, bool) {
	var found bool
	data, err := c.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := c.opContext(ctx)
		defer cancel()
		v, ok, err := c.backend.Get(opCtx, key)
		found = ok
		return v, err
	})
	if err != nil {
		c.observe("get", ResultError)
		c.logger.Debug().Err(err).Str("key", key).Msg("Cache read failed, computing page")
		return feed.Page{}, false
	}
	if !found {
		c.observe("get", ResultMiss)
		return feed.Page{}, false
	}

	var page feed.Page
	if err := json.Unmarshal(data, &page); err != nil {
		c.observe("get", ResultCorrupt)
		c.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cached page")
		return feed.Page{}, false
	}
	page.Info.Cached = true
	c.observe("get", ResultHit)
	return page, true
}

func (c *Cache) store(ctx context.Context, key string, page feed.Page, ttl time.Duration) {
	page.Info.Cached = false
	data, err := json.Marshal(page)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode page for cache")
		return
	}
	_, err = c.breaker.Execute(func() ([]byte, error) {
		opCtx, cancel := c.opContext(ctx)
		defer cancel()
		return nil, c.backend.Set(opCtx, key, data, ttl)
	})
	if err != nil {
		c.observe("set", ResultError)
		c.logger.Debug().Err(err).Str("key", key).Msg("Cache write failed")
		return
	}
	c.observe("set", ResultOK)
}

func (c *Cache) computeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if c.opts.ComputeTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, c.opts.ComputeTimeout)
}

func (c *Cache) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.OpTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.OpTimeout)
}

func (c *Cache) observe(op, result string) {
	if c.observer != nil {
		c.observer.ObserveCache(op, result)
	}
}
