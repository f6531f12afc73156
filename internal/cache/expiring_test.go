// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestExpiring_BasicOperations(t *testing.T) {
	c := NewExpiring[string](3, time.Minute)

	c.Put("a", "1")
	c.Put("b", "2")

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	if !c.Delete("a") {
		t.Error("Delete(a) should report true")
	}
	if c.Delete("a") {
		t.Error("second Delete(a) should report false")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit and 1 miss", stats)
	}
}

func TestExpiring_TTLBoundary(t *testing.T) {
	clock := newFakeClock()
	ttl := 10 * time.Second
	c := NewExpiring[int](10, ttl, WithClock(clock.Now))

	c.Put("k", 42)

	clock.Advance(ttl - time.Millisecond)
	if v, ok := c.Get("k"); !ok || v != 42 {
		t.Fatalf("value should be visible at T+TTL-eps, got %d, %v", v, ok)
	}

	clock.Advance(2 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("value should be absent at T+TTL+eps")
	}

	// Expired entry is removed by the read that observed it.
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expired read, want 0", c.Len())
	}
	if got := c.Stats().Expirations; got != 1 {
		t.Errorf("Expirations = %d, want 1", got)
	}
}

func TestExpiring_ExactlyTTLIsExpired(t *testing.T) {
	clock := newFakeClock()
	c := NewExpiring[int](10, time.Second, WithClock(clock.Now))

	c.Put("k", 1)
	clock.Advance(time.Second)

	if _, ok := c.Get("k"); ok {
		t.Error("entry aged exactly TTL should be treated as absent")
	}
}

func TestExpiring_InsertionOrderEviction(t *testing.T) {
	c := NewExpiring[int](3, time.Minute)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Reading 'a' must not protect it: eviction is by insertion order.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected 'a' present before overflow")
	}

	c.Put("d", 4)

	if _, ok := c.Get("a"); ok {
		t.Error("expected oldest-inserted 'a' to be evicted despite recent read")
	}
	for _, key := range []string{"b", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected %q to be present", key)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestExpiring_OverwriteRefreshesInsertion(t *testing.T) {
	clock := newFakeClock()
	c := NewExpiring[int](2, time.Minute, WithClock(clock.Now))

	c.Put("a", 1)
	c.Put("b", 2)

	clock.Advance(30 * time.Second)
	c.Put("a", 10) // re-insert makes 'a' the newest

	c.Put("c", 3) // overflow evicts 'b', now the oldest insertion

	if _, ok := c.Get("b"); ok {
		t.Error("expected 'b' to be evicted after 'a' was re-inserted")
	}
	if v, ok := c.Get("a"); !ok || v != 10 {
		t.Errorf("Get(a) = %d, %v; want 10, true", v, ok)
	}

	// Overwrite also reset the TTL window for 'a'.
	clock.Advance(45 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("expected overwritten 'a' to use its new insertion time")
	}
}

func TestExpiring_Defaults(t *testing.T) {
	c := NewExpiring[int](0, 0)
	if c.maxSize != DefaultMaxSize {
		t.Errorf("maxSize = %d, want %d", c.maxSize, DefaultMaxSize)
	}
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}

func TestExpiring_HitRate(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  float64
	}{
		{"no lookups", Stats{}, 0},
		{"all hits", Stats{Hits: 4}, 1},
		{"half", Stats{Hits: 2, Misses: 2}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.HitRate(); got != tt.want {
				t.Errorf("HitRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpiring_ConcurrentAccess(t *testing.T) {
	c := NewExpiring[int](50, time.Minute, WithName("test_concurrent"))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k%d", (worker*31+i)%120)
				c.Put(key, i)
				c.Get(key)
			}
		}(w)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d exceeds max size 50", c.Len())
	}

	// List and map must agree after concurrent mutation.
	count := 0
	for e := c.head.next; e != c.tail; e = e.next {
		count++
	}
	if count != c.Len() {
		t.Errorf("list length %d != map length %d", count, c.Len())
	}
}
