package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps one timestamp slice per identifier, pruned on every
// check. Suitable for a single instance; state is lost on restart.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	// now is swappable for tests
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryLimiter creates an in-memory sliding-window limiter
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records the request if the identifier is under its limit
func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-m.window)
	m.sweep(now, cutoff)

	kept := m.hits[key][:0]
	for _, t := range m.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= m.limit {
		m.hits[key] = kept
		// The window slides past the oldest hit before a slot frees up
		retryAfter := kept[0].Sub(cutoff)
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	kept = append(kept, now)
	m.hits[key] = kept
	return Decision{Allowed: true, Remaining: m.limit - len(kept)}, nil
}

// sweep drops identifiers whose every hit has left the window, at most once
// per window, so idle keys do not accumulate.
func (m *MemoryLimiter) sweep(now time.Time, cutoff time.Time) {
	if now.Sub(m.lastSweep) < m.window {
		return
	}
	m.lastSweep = now
	for key, hits := range m.hits {
		stale := true
		for _, t := range hits {
			if t.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(m.hits, key)
		}
	}
}

// Ping always succeeds; the backend is in-process
func (m *MemoryLimiter) Ping(_ context.Context) error {
	return nil
}

// Close drops all tracked windows
func (m *MemoryLimiter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits = make(map[string][]time.Time)
	return nil
}
