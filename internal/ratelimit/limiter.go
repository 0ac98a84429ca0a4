// Package ratelimit holds the per-client token buckets and the client
// address resolution shared by the HTTP middleware and the form intake.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTracked bounds the bucket map; reaching it triggers a sweep.
const maxTracked = 10000

// Limiter hands out one token bucket per key, usually a client IP.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithIdleTTL sets how long an unused bucket survives a sweep. Default 10m.
func WithIdleTTL(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.idle = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// PerMinute converts a per-minute allowance into a rate.Limit.
func PerMinute(n float64) rate.Limit {
	return rate.Limit(n / 60)
}

// New creates a limiter refilling at limit with bucket size burst.
func New(limit rate.Limit, burst int, opts ...Option) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow takes one token from key's bucket.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= maxTracked {
			l.sweep(now)
		}
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// Sweep drops buckets idle longer than the TTL.
func (l *Limiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(l.now())
}

// Len reports how many keys are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep must be called with l.mu held.
func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.idle)
	for key, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
