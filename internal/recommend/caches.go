// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"time"

	"github.com/tomtom215/resonance/internal/cache"
)

// Cache names used as metric labels.
const (
	CacheSimilarArtists = "similar_artists"
	CacheTopTracks      = "top_tracks"
	CacheResolved       = "resolved_tracks"
	CacheFeatures       = "audio_features"
)

// Caches are the process-wide lookup caches shared by every invocation.
type Caches struct {
	// Similar maps a normalized artist name to its similar artists.
	Similar *cache.Expiring[[]string]

	// TopTracks maps a normalized artist name to its top track names.
	TopTracks *cache.Expiring[[]string]

	// Resolved maps a normalized (track, artist) key to a catalog ID.
	Resolved *cache.Expiring[string]

	// Features maps a catalog ID to its feature vector.
	Features *cache.Expiring[Features]
}

// NewCaches builds the four pipeline caches with one TTL and size bound.
func NewCaches(ttl time.Duration, maxSize int, opts ...cache.Option) Caches {
	with := func(name string) []cache.Option {
		return append([]cache.Option{cache.WithName(name)}, opts...)
	}
	return Caches{
		Similar:   cache.NewExpiring[[]string](maxSize, ttl, with(CacheSimilarArtists)...),
		TopTracks: cache.NewExpiring[[]string](maxSize, ttl, with(CacheTopTracks)...),
		Resolved:  cache.NewExpiring[string](maxSize, ttl, with(CacheResolved)...),
		Features:  cache.NewExpiring[Features](maxSize, ttl, with(CacheFeatures)...),
	}
}

// Sized is the part of a cache a stats reporter reads.
type Sized interface {
	Name() string
	Len() int
}

// All returns every non-nil cache.
func (c Caches) All() []Sized {
	out := make([]Sized, 0, 4)
	if c.Similar != nil {
		out = append(out, c.Similar)
	}
	if c.TopTracks != nil {
		out = append(out, c.TopTracks)
	}
	if c.Resolved != nil {
		out = append(out, c.Resolved)
	}
	if c.Features != nil {
		out = append(out, c.Features)
	}
	return out
}

// withDefaults fills missing caches so a partially built Caches still works.
func (c Caches) withDefaults() Caches {
	if c.Similar == nil {
		c.Similar = cache.NewExpiring[[]string](0, 0, cache.WithName(CacheSimilarArtists))
	}
	if c.TopTracks == nil {
		c.TopTracks = cache.NewExpiring[[]string](0, 0, cache.WithName(CacheTopTracks))
	}
	if c.Resolved == nil {
		c.Resolved = cache.NewExpiring[string](0, 0, cache.WithName(CacheResolved))
	}
	if c.Features == nil {
		c.Features = cache.NewExpiring[Features](0, 0, cache.WithName(CacheFeatures))
	}
	return c
}
