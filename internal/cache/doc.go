// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

/*
Package cache provides the bounded, expiring key/value store used by the
recommendation pipeline's stage caches.

# Overview

Expiring[V] holds at most maxSize entries, each for at most ttl:
  - Insertion-order eviction: the oldest insertion goes first when full.
    Reads do not refresh an entry's position.
  - Lazy expiry: a Get that finds a stale entry removes it and reports a
    miss. No background goroutine sweeps the cache.
  - One mutex guards every operation, so harvest workers can share a cache.

Hits, misses, evictions and expirations are counted per cache and exported
to Prometheus under the name given with WithName.

# Usage Example

	import "github.com/tomtom215/resonance/internal/cache"

	similar := cache.NewExpiring[[]string](10000, time.Hour, cache.WithName("similar_artists"))
	similar.Put("radiohead", []string{"Thom Yorke", "Portishead"})
	if names, ok := similar.Get("radiohead"); ok {
	    use(names)
	}
	fmt.Printf("hit rate %.2f\n", similar.Stats().HitRate())

Tests replace the clock with WithClock to step past the TTL without sleeping.
*/
package cache
