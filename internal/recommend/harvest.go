// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/resonance/internal/cache"
	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/metrics"
	"github.com/tomtom215/resonance/internal/provider"
)

// Harvester collects candidate tracks from a pool of artists in parallel.
type Harvester struct {
	similar SimilarityProvider
	cache   *cache.Expiring[[]string]
	workers int
	limit   int
}

// NewHarvester creates a Harvester running at most workers lookups at once
// and taking up to limit tracks per artist.
func NewHarvester(similar SimilarityProvider, c *cache.Expiring[[]string], workers, limit int) *Harvester {
	if workers < 1 {
		workers = 1
	}
	return &Harvester{similar: similar, cache: c, workers: workers, limit: limit}
}

// Harvest looks up the top tracks of each artist and returns up to target
// candidates in completion order.
//
// Once target candidates exist, no further lookups are dispatched and the
// in-flight ones are canceled. An artist whose lookup fails contributes
// nothing. A non-positive target harvests every artist. The error is non-nil
// only when the parent context ends.
func (h *Harvester) Harvest(ctx context.Context, artists []string, target int) ([]Candidate, error) {
	if len(artists) == 0 {
		return nil, nil
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan []Candidate)

	var g errgroup.Group
	g.SetLimit(h.workers)

	go func() {
		defer close(results)
		for _, artist := range artists {
			if workCtx.Err() != nil {
				break
			}
			g.Go(func() error {
				found := h.lookup(workCtx, artist)
				select {
				case results <- found:
				case <-workCtx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	var out []Candidate
	for found := range results {
		out = append(out, found...)
		if target > 0 && len(out) >= target {
			cancel()
			break
		}
	}
	// Drain so the dispatcher can finish and close the channel.
	for range results {
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if target > 0 && len(out) > target {
		out = out[:target]
	}
	return out, nil
}

// lookup returns the candidates of one artist. Failures yield none.
func (h *Harvester) lookup(ctx context.Context, artist string) []Candidate {
	key := NormalizeName(artist)

	tracks, ok := h.cache.Get(key)
	if !ok {
		var err error
		tracks, err = h.similar.TopTracks(ctx, artist, h.limit)
		if err != nil {
			if ctx.Err() == nil {
				metrics.HarvestArtistFailures.Inc()
				logging.Ctx(ctx).Warn().Err(err).
					Str("artist", artist).
					Bool("recoverable", provider.IsRecoverable(err)).
					Msg("Top tracks lookup failed, skipping artist")
			}
			return nil
		}
		h.cache.Put(key, tracks)
	}

	if h.limit > 0 && len(tracks) > h.limit {
		tracks = tracks[:h.limit]
	}
	out := make([]Candidate, 0, len(tracks))
	for _, name := range tracks {
		if name != "" {
			out = append(out, Candidate{TrackName: name, ArtistName: artist})
		}
	}
	return out
}
