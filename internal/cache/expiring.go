// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/resonance/internal/metrics"
)

// Default bounds used when a zero value is passed to NewExpiring.
const (
	DefaultTTL     = time.Hour
	DefaultMaxSize = 1000
)

// expiringEntry is a node in the insertion-ordered list.
type expiringEntry[V any] struct {
	key        string
	value      V
	insertedAt time.Time
	prev       *expiringEntry[V]
	next       *expiringEntry[V]
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	Size        int
}

// HitRate returns hits / (hits + misses), or 0 when there were no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Expiring is a bounded key/value store with a fixed time-to-live per entry.
//
// Key properties:
//   - Eviction is by insertion order, not access order. Reading an old entry
//     does not protect it from being evicted before a newer unread one.
//   - Expiry is checked on read only. An entry older than the TTL is treated
//     as absent and removed by the Get that observes it. There is no sweeper.
//   - Every operation holds one mutex, so list reordering and map updates are
//     a single atomic step for concurrent fetch workers.
//
// The list uses sentinel head and tail nodes. head.next is the newest
// insertion, tail.prev is the oldest.
type Expiring[V any] struct {
	mu sync.Mutex

	name    string
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	items map[string]*expiringEntry[V]
	head  *expiringEntry[V]
	tail  *expiringEntry[V]

	hits        int64
	misses      int64
	evictions   int64
	expirations int64
}

// Option configures an Expiring cache.
type Option func(*options)

type options struct {
	name string
	now  func() time.Time
}

// WithName labels the cache in metrics and logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithClock replaces time.Now. Used by tests to step time deterministically.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewExpiring creates a cache holding at most maxSize entries for at most ttl each.
// Non-positive values fall back to DefaultMaxSize and DefaultTTL.
func NewExpiring[V any](maxSize int, ttl time.Duration, opts ...Option) *Expiring[V] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Expiring[V]{
		name:    o.name,
		maxSize: maxSize,
		ttl:     ttl,
		now:     o.now,
		items:   make(map[string]*expiringEntry[V]),
		head:    &expiringEntry[V]{},
		tail:    &expiringEntry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Name returns the metrics label given at construction.
func (c *Expiring[V]) Name() string {
	return c.name
}

// Get returns the value for key if present and younger than the TTL.
// An expired entry is removed and reported as absent.
func (c *Expiring[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	entry, ok := c.items[key]
	if !ok {
		c.recordMiss()
		return zero, false
	}

	if c.now().Sub(entry.insertedAt) >= c.ttl {
		c.removeEntry(entry)
		c.expirations++
		c.recordMiss()
		return zero, false
	}

	c.recordHit()
	return entry.value, true
}

// Put inserts or overwrites key. An overwrite counts as a fresh insertion:
// its timestamp is reset and it becomes the newest entry.
// When the bound is exceeded the oldest insertion is evicted.
func (c *Expiring[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if entry, ok := c.items[key]; ok {
		entry.value = value
		entry.insertedAt = now
		c.unlink(entry)
		c.pushFront(entry)
		return
	}

	entry := &expiringEntry[V]{
		key:        key,
		value:      value,
		insertedAt: now,
	}
	c.pushFront(entry)
	c.items[key] = entry

	for len(c.items) > c.maxSize {
		c.evictOldest()
	}
}

// Delete removes key. It reports whether an entry was present.
func (c *Expiring[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.items[key]; ok {
		c.removeEntry(entry)
		return true
	}
	return false
}

// Len returns the number of stored entries, including expired ones not yet read.
func (c *Expiring[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns a snapshot of the cache counters.
func (c *Expiring[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Size:        len(c.items),
	}
}

// Internal methods (must be called with lock held)

func (c *Expiring[V]) recordHit() {
	c.hits++
	if c.name != "" {
		metrics.CacheHits.WithLabelValues(c.name).Inc()
	}
}

func (c *Expiring[V]) recordMiss() {
	c.misses++
	if c.name != "" {
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
	}
}

// pushFront links entry as the newest insertion.
func (c *Expiring[V]) pushFront(entry *expiringEntry[V]) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

// unlink detaches entry from the list without touching the map.
func (c *Expiring[V]) unlink(entry *expiringEntry[V]) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	entry.prev = nil
	entry.next = nil
}

// removeEntry removes an entry from both the list and the map.
func (c *Expiring[V]) removeEntry(entry *expiringEntry[V]) {
	c.unlink(entry)
	delete(c.items, entry.key)
}

// evictOldest drops the least recently inserted entry.
func (c *Expiring[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
	c.evictions++
	if c.name != "" {
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	}
}
