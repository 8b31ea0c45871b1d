package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery bounds how often Admit scans for idle buckets.
const sweepEvery = 5 * time.Minute

// MemoryLimiter keeps buckets in process memory. It is correct for a single
// replica; use RedisLimiter when several replicas share limits.
type MemoryLimiter struct {
	// Now is the clock, overridable in tests.
	Now func() time.Time

	policies Policies

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	windowStart time.Time
	window      time.Duration
	count       int
}

// NewMemoryLimiter returns a limiter enforcing policies.
func NewMemoryLimiter(policies Policies) *MemoryLimiter {
	return &MemoryLimiter{
		Now:       time.Now,
		policies:  policies,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// Admit implements Limiter.
func (m *MemoryLimiter) Admit(_ context.Context, key string, class Class) (Decision, error) {
	p, ok := m.policies[class]
	if !ok {
		return Decision{}, ErrUnknownClass
	}
	if p.Unlimited() {
		return unlimited(), nil
	}

	now := m.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= sweepEvery {
		m.sweepLocked(now)
	}

	k := bucketKey(class, key)
	b, ok := m.buckets[k]
	if !ok || !now.Before(b.windowStart.Add(b.window)) {
		b = &bucket{windowStart: now, window: p.Window}
		m.buckets[k] = b
	}
	b.count++

	return Decision{
		Allowed:   b.count <= p.Limit,
		Limit:     p.Limit,
		Remaining: max(p.Limit-b.count, 0),
		ResetAt:   b.windowStart.Add(b.window),
	}, nil
}

// Sweep drops buckets whose window has elapsed and returns how many went.
func (m *MemoryLimiter) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(now)
}

func (m *MemoryLimiter) sweepLocked(now time.Time) int {
	m.lastSweep = now
	removed := 0
	for k, b := range m.buckets {
		if !now.Before(b.windowStart.Add(b.window)) {
			delete(m.buckets, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of live buckets.
func (m *MemoryLimiter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}
