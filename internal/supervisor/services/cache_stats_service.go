// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/metrics"
)

// CacheSource is a named cache whose current entry count can be read.
// recommend.Sized satisfies it.
type CacheSource interface {
	Name() string
	Len() int
}

// CacheStatsService periodically publishes the size of each cache to the
// cache_entries gauge. It only reads; expiry stays with the caches.
type CacheStatsService struct {
	sources  []CacheSource
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheStatsService creates a reporter for the given caches.
// A non-positive interval becomes 30s.
func NewCacheStatsService(sources []CacheSource, interval time.Duration) *CacheStatsService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &CacheStatsService{
		sources:  sources,
		interval: interval,
		logger:   logging.WithComponent("cache-stats"),
		name:     "cache-stats",
	}
}

// Serve implements suture.Service. Sizes are published once immediately and
// then on every tick until ctx is canceled.
func (s *CacheStatsService) Serve(ctx context.Context) error {
	s.logger.Debug().
		Int("caches", len(s.sources)).
		Dur("interval", s.interval).
		Msg("Cache stats reporter started")

	s.publish()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("Cache stats reporter stopped")
			return ctx.Err()
		case <-ticker.C:
			s.publish()
		}
	}
}

func (s *CacheStatsService) publish() {
	total := 0
	for _, src := range s.sources {
		if src == nil {
			continue
		}
		n := src.Len()
		total += n
		metrics.SetCacheEntries(src.Name(), n)
	}
	s.logger.Trace().Int("entries", total).Msg("Published cache sizes")
}

// String implements fmt.Stringer; suture uses it in event logs.
func (s *CacheStatsService) String() string {
	return s.name
}
