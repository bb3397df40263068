// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import (
	"context"
	"errors"
	"sort"
)

// errExhausted marks the last batch of a paged source.
var errExhausted = errors.New("source exhausted")

// fetchPage reads one batch of a paged source.
type fetchPage func(ctx context.Context, offset, limit int) ([]Candidate, error)

// pool holds the merged candidates of one request. Each lane keeps one
// tier's unused candidates in score order; the general lane is last and
// grows lazily.
type pool struct {
	lanes  [][]Candidate
	quotas []int
	tiers  []Tier
	order  map[Tier]int
	seen   map[string]struct{}

	maxOwner    int
	maxCategory int

	general       fetchPage
	generalOffset int
	generalBatch  int
	generalBudget int
	degraded      []Tier
}

// newPool merges tier results in plan order. An item proposed by several
// tiers stays only in the first.
func (e *Engine) newPool(results []tierResult, pageSize, pages int) *pool {
	p := &pool{
		lanes:         make([][]Candidate, 0, len(results)+1),
		quotas:        make([]int, 0, len(results)+1),
		tiers:         make([]Tier, 0, len(results)+1),
		order:         make(map[Tier]int, len(results)+1),
		seen:          make(map[string]struct{}),
		maxOwner:      e.config.MaxPerOwner,
		maxCategory:   e.config.MaxPerCategory,
		generalBatch:  pageSize * e.config.Overfetch,
		generalBudget: e.config.GeneralBatches * pages,
	}
	for _, r := range results {
		lane := make([]Candidate, 0, len(r.cands))
		for _, c := range r.cands {
			if _, dup := p.seen[c.Item.ID]; dup {
				continue
			}
			p.seen[c.Item.ID] = struct{}{}
			lane = append(lane, c)
		}
		p.addLane(r.tier, r.quota, lane)
	}
	p.addLane(TierGeneral, 0, nil)
	return p
}

func (p *pool) addLane(tier Tier, quota int, lane []Candidate) {
	if _, ok := p.order[tier]; !ok {
		p.order[tier] = len(p.tiers)
	}
	p.lanes = append(p.lanes, lane)
	p.quotas = append(p.quotas, quota)
	p.tiers = append(p.tiers, tier)
}

// nextPage picks the next page. Each tier first gets its quota, then any
// lane may fill remaining slots in tier order, then general batches are
// pulled until the page is full or the budget runs out. The result is
// ordered by tier, then score.
func (p *pool) nextPage(ctx context.Context, size int) []Candidate {
	d := NewDiversity(p.maxOwner, p.maxCategory)
	page := make([]Candidate, 0, size)

	for i := range p.lanes {
		page = p.take(i, p.quotas[i], page, size, d)
	}
	for i := range p.lanes {
		page = p.take(i, size, page, size, d)
	}
	generalLane := len(p.lanes) - 1
	for len(page) < size && p.pullGeneral(ctx) {
		page = p.take(generalLane, size, page, size, d)
	}

	sort.SliceStable(page, func(i, j int) bool {
		oi, oj := p.order[page[i].Tier], p.order[page[j].Tier]
		if oi != oj {
			return oi < oj
		}
		return lessTrending(&page[i], &page[j])
	})
	return page
}

// take moves up to n admissible candidates from lane i into page.
// Rejected candidates stay in the lane for later pages.
func (p *pool) take(i, n int, page []Candidate, size int, d *Diversity) []Candidate {
	lane := p.lanes[i]
	kept := lane[:0]
	taken := 0
	for j := range lane {
		if taken < n && len(page) < size && d.Admit(&lane[j].Item) {
			page = append(page, lane[j])
			taken++
			continue
		}
		kept = append(kept, lane[j])
	}
	p.lanes[i] = kept
	return page
}

// pullGeneral appends the next most-recent batch to the general lane.
// It reports false once the source or budget is exhausted.
func (p *pool) pullGeneral(ctx context.Context) bool {
	if p.general == nil || p.generalBudget <= 0 {
		return false
	}
	p.generalBudget--
	cands, err := p.general(ctx, p.generalOffset, p.generalBatch)
	p.generalOffset += p.generalBatch
	switch {
	case errors.Is(err, errExhausted):
		p.generalBudget = 0
	case err != nil:
		p.generalBudget = 0
		p.degraded = append(p.degraded, TierGeneral)
		return false
	}

	lane := len(p.lanes) - 1
	for _, c := range cands {
		if _, dup := p.seen[c.Item.ID]; dup {
			continue
		}
		p.seen[c.Item.ID] = struct{}{}
		p.lanes[lane] = append(p.lanes[lane], c)
	}
	return true
}
