// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/database"
	"github.com/tomtom215/reelfeed/internal/feed"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// testEnv wires an engine, recorder and service over an in-memory store.
type testEnv struct {
	store    *database.Memory
	engine   *feed.Engine
	recorder *feed.Recorder
	service  *feed.Service
	inv      *recordingInvalidator
	cache    *mapCache
	observer *recordingObserver
}

type envOptions struct {
	cfg   *feed.Config
	wrap  func(*database.Memory) feed.Store
	cache bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	mem := database.NewMemory()
	var store feed.Store = mem
	if opts.wrap != nil {
		store = opts.wrap(mem)
	}
	cfg := opts.cfg
	if cfg == nil {
		cfg = feed.DefaultConfig()
	}

	env := &testEnv{store: mem, inv: &recordingInvalidator{}, observer: &recordingObserver{}}
	logger := zerolog.Nop()

	engine, err := feed.NewEngine(store, cfg, logger,
		feed.WithClock(fixedClock), feed.WithObserver(env.observer))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	env.engine = engine
	env.recorder = feed.NewRecorder(store, env.inv, cfg, logger,
		feed.WithRecorderClock(fixedClock), feed.WithRecorderObserver(env.observer))

	var cache feed.PageCache
	if opts.cache {
		env.cache = newMapCache()
		cache = env.cache
	}
	env.service = feed.NewService(engine, env.recorder, cache, env.inv, logger)
	return env
}

// add upserts items directly into the store.
func (e *testEnv) add(t *testing.T, items ...feed.Item) {
	t.Helper()
	for i := range items {
		if err := e.store.UpsertItem(context.Background(), items[i]); err != nil {
			t.Fatalf("UpsertItem(%s) error = %v", items[i].ID, err)
		}
	}
}

func item(id, owner, category string, age time.Duration) feed.Item {
	return feed.Item{
		ID:              id,
		OwnerID:         owner,
		CategoryID:      category,
		CreatedAt:       testNow.Add(-age),
		DurationSeconds: 40,
		Eligible:        true,
	}
}

// assertDiverse checks the per-page owner and category caps and
// uniqueness of item IDs.
func assertDiverse(t *testing.T, page feed.Page, maxOwner, maxCategory int) {
	t.Helper()
	owners := map[string]int{}
	cats := map[string]int{}
	seen := map[string]bool{}
	for _, it := range page.Items {
		if seen[it.ID] {
			t.Errorf("page %d repeats item %s", page.Page, it.ID)
		}
		seen[it.ID] = true
		owners[it.OwnerID]++
		if it.CategoryID != "" {
			cats[it.CategoryID]++
		}
	}
	for o, n := range owners {
		if n > maxOwner {
			t.Errorf("page %d has %d items from owner %s, cap %d", page.Page, n, o, maxOwner)
		}
	}
	for c, n := range cats {
		if n > maxCategory {
			t.Errorf("page %d has %d items in category %s, cap %d", page.Page, n, c, maxCategory)
		}
	}
	if len(page.ItemIDs) != len(page.Items) {
		t.Errorf("ItemIDs has %d entries, Items %d", len(page.ItemIDs), len(page.Items))
	}
}

// recordingInvalidator remembers every scope it receives.
type recordingInvalidator struct {
	mu     sync.Mutex
	scopes []feed.Scope
	err    error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, scope feed.Scope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scopes = append(r.scopes, scope)
	return r.err
}

func (r *recordingInvalidator) take() []feed.Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.scopes
	r.scopes = nil
	return out
}

// recordingObserver counts interaction outcomes and tier errors.
type recordingObserver struct {
	mu           sync.Mutex
	outcomes     map[string]int
	tierFailures map[string]int
}

func (o *recordingObserver) ObserveTier(tier string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err == nil {
		return
	}
	if o.tierFailures == nil {
		o.tierFailures = map[string]int{}
	}
	o.tierFailures[tier]++
}

func (o *recordingObserver) ObserveInteraction(kind, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[kind+"/"+outcome]++
}

func (o *recordingObserver) outcome(kind, outcome string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcomes[kind+"/"+outcome]
}

// mapCache is a TTL-less PageCache for exercising the service.
type mapCache struct {
	mu      sync.Mutex
	pages   map[string]feed.Page
	fail    bool
	deletes [][]string
}

func newMapCache() *mapCache {
	return &mapCache{pages: map[string]feed.Page{}}
}

func (c *mapCache) GetOrCompute(ctx context.Context, key string, _ time.Duration, compute func(context.Context) (feed.Page, error)) (feed.Page, bool, error) {
	c.mu.Lock()
	if !c.fail {
		if p, ok := c.pages[key]; ok {
			c.mu.Unlock()
			return p, true, nil
		}
	}
	c.mu.Unlock()

	p, err := compute(ctx)
	if err != nil {
		return feed.Page{}, false, err
	}
	c.mu.Lock()
	if !c.fail && p.Cacheable() && ctx.Err() == nil {
		c.pages[key] = p
	}
	c.mu.Unlock()
	return p, false, nil
}

func (c *mapCache) DeletePrefixes(_ context.Context, prefixes ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, prefixes)
	if c.fail {
		return fmt.Errorf("cache unavailable")
	}
	for k := range c.pages {
		for _, p := range prefixes {
			if strings.HasPrefix(k, p) {
				delete(c.pages, k)
			}
		}
	}
	return nil
}

func (c *mapCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.pages))
	for k := range c.pages {
		out = append(out, k)
	}
	return out
}

func zerologNop() zerolog.Logger { return zerolog.Nop() }
