package ratelimit

import (
	"context"
	"testing"
	"time"
)

func newTestLimiter(limit int, window time.Duration) (*MemoryLimiter, *time.Time) {
	m := NewMemoryLimiter(limit, window)
	current := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }
	return m, &current
}

func TestMemoryLimiterAllowsUnderLimit(t *testing.T) {
	m, _ := newTestLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := m.Allow(ctx, "client-a")
		if err != nil {
			t.Fatalf("Allow returned error: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
		if want := 3 - i - 1; d.Remaining != want {
			t.Errorf("request %d remaining = %d, want %d", i+1, d.Remaining, want)
		}
	}

	d, err := m.Allow(ctx, "client-a")
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if d.Allowed {
		t.Error("fourth request allowed, want denied")
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v, want within (0, window]", d.RetryAfter)
	}
}

func TestMemoryLimiterWindowSlides(t *testing.T) {
	m, now := newTestLimiter(2, time.Minute)
	ctx := context.Background()

	m.Allow(ctx, "client-a")
	*now = now.Add(30 * time.Second)
	m.Allow(ctx, "client-a")

	if d, _ := m.Allow(ctx, "client-a"); d.Allowed {
		t.Fatal("expected denial at limit")
	}

	// 31 more seconds pushes the first hit out of the window
	*now = now.Add(31 * time.Second)
	d, _ := m.Allow(ctx, "client-a")
	if !d.Allowed {
		t.Error("expected allowance after window slid past oldest hit")
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	m, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	if d, _ := m.Allow(ctx, "client-a"); !d.Allowed {
		t.Fatal("first key first request denied")
	}
	if d, _ := m.Allow(ctx, "client-a"); d.Allowed {
		t.Fatal("first key second request allowed, want denied")
	}
	if d, _ := m.Allow(ctx, "client-b"); !d.Allowed {
		t.Error("second key should have its own window")
	}
}

func TestMemoryLimiterRetryAfterMatchesOldestHit(t *testing.T) {
	m, now := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	m.Allow(ctx, "client-a")
	*now = now.Add(20 * time.Second)

	d, _ := m.Allow(ctx, "client-a")
	if d.Allowed {
		t.Fatal("expected denial")
	}
	// Oldest hit leaves the window 40s from now
	if d.RetryAfter != 40*time.Second {
		t.Errorf("RetryAfter = %v, want 40s", d.RetryAfter)
	}
}

func TestMemoryLimiterSweepDropsIdleKeys(t *testing.T) {
	m, now := newTestLimiter(5, time.Minute)
	ctx := context.Background()

	m.Allow(ctx, "idle-client")
	*now = now.Add(3 * time.Minute)
	m.Allow(ctx, "active-client")

	m.mu.Lock()
	_, exists := m.hits["idle-client"]
	m.mu.Unlock()
	if exists {
		t.Error("expected idle key to be swept")
	}
}
