package service

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is an in-memory per-key rate limiter. The server keys it by
// client address to bound how fast new viewer sessions can be created.
// It is safe for concurrent use.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64 // maximum tokens
	now      func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter allowing bursts of capacity per key,
// refilled at rate tokens per second.
func NewTokenBucket(rate, capacity float64) *TokenBucket {
	return &TokenBucket{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		now:      time.Now,
	}
}

// Allow consumes one token for key and reports whether one was available.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.capacity, last: now}
		tb.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	b.tokens = min(b.tokens+elapsed*tb.rate, tb.capacity)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Sweep removes buckets untouched for longer than maxAge.
func (tb *TokenBucket) Sweep(maxAge time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	cutoff := tb.now().Add(-maxAge)
	for key, b := range tb.buckets {
		if b.last.Before(cutoff) {
			delete(tb.buckets, key)
		}
	}
}

// Run sweeps stale buckets every interval until ctx is cancelled.
func (tb *TokenBucket) Run(ctx context.Context, every, maxAge time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tb.Sweep(maxAge)
		}
	}
}
