// Reelfeed - Short-Video Feed Ranking and Composition
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/reelfeed/internal/auth"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = time.Hour
)

// InteractionLimiter throttles interaction writes per caller. Authenticated
// callers are keyed by subject; anonymous shares fall back to the client IP.
type InteractionLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewInteractionLimiter returns a limiter allowing perSecond sustained
// writes with the given burst. A non-positive rate disables limiting.
func NewInteractionLimiter(perSecond float64, burst int) *InteractionLimiter {
	if burst < 1 {
		burst = 1
	}
	return &InteractionLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether key may perform another interaction now.
func (l *InteractionLimiter) Allow(key string) bool {
	if l == nil || l.rate <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Middleware rejects callers over their budget with 429.
func (l *InteractionLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(limiterKey(r)) {
			rateLimited("interaction")(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Serve sweeps idle entries until ctx is done.
func (l *InteractionLimiter) Serve(ctx context.Context) error {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.sweep()
		}
	}
}

// String names the limiter in supervisor logs.
func (l *InteractionLimiter) String() string {
	return "interaction-limiter"
}

func (l *InteractionLimiter) sweep() {
	threshold := l.now().Add(-limiterIdleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, key)
		}
	}
}

// size is the number of tracked callers.
func (l *InteractionLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func limiterKey(r *http.Request) string {
	if subject := auth.GetAuthSubject(r.Context()); subject != nil {
		return "subject:" + subject.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
