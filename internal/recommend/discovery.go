// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"context"
	"math/rand"
	"sync"

	"github.com/tomtom215/resonance/internal/cache"
	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/provider"
)

// familiarDivisor re-admits one seed artist per this many seeds.
const familiarDivisor = 5

// Discovery expands seed artists into a pool of similar artists.
type Discovery struct {
	similar     SimilarityProvider
	cache       *cache.Expiring[[]string]
	limit       int
	familiarCap int

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewDiscovery creates a Discovery. rng drives sampling and shuffling.
func NewDiscovery(similar SimilarityProvider, c *cache.Expiring[[]string], limit, familiarCap int, rng *rand.Rand) *Discovery {
	return &Discovery{
		similar:     similar,
		cache:       c,
		limit:       limit,
		familiarCap: familiarCap,
		rng:         rng,
	}
}

// Discover returns a shuffled pool of artists similar to seeds.
//
// Seeds themselves are removed from the pool, then min(len(seeds)/5,
// familiarCap) of them are sampled back in so results keep some familiar
// ground. When no seed yields any similar artist, the seeds are returned
// unchanged. The only error is a finished context or a rejected credential.
func (d *Discovery) Discover(ctx context.Context, seeds []string) ([]string, error) {
	seeds = uniqueNames(seeds)
	if len(seeds) == 0 {
		return nil, nil
	}

	var union []string
	for _, seed := range seeds {
		similar, err := d.lookup(ctx, seed)
		if err != nil {
			if !provider.IsRecoverable(err) {
				return nil, err
			}
			logging.Ctx(ctx).Warn().Err(err).Str("artist", seed).Msg("Similar artist lookup failed, skipping seed")
			continue
		}
		union = append(union, similar...)
	}

	union = uniqueNames(union)
	if len(union) == 0 {
		logging.Ctx(ctx).Debug().Int("seeds", len(seeds)).Msg("No similarity data, falling back to seed artists")
		return append([]string(nil), seeds...), nil
	}

	seedKeys := make(map[string]struct{}, len(seeds))
	for _, s := range seeds {
		seedKeys[NormalizeName(s)] = struct{}{}
	}

	pool := make([]string, 0, len(union))
	for _, name := range union {
		if _, isSeed := seedKeys[NormalizeName(name)]; !isSeed {
			pool = append(pool, name)
		}
	}

	familiar := len(seeds) / familiarDivisor
	if familiar > d.familiarCap {
		familiar = d.familiarCap
	}

	d.rngMu.Lock()
	if familiar > 0 {
		for _, i := range d.rng.Perm(len(seeds))[:familiar] {
			pool = append(pool, seeds[i])
		}
	}
	d.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	d.rngMu.Unlock()

	logging.Ctx(ctx).Debug().
		Int("seeds", len(seeds)).
		Int("similar", len(union)).
		Int("familiar", familiar).
		Int("pool", len(pool)).
		Msg("Artist discovery complete")

	return pool, nil
}

// lookup returns the similar artists of one artist, through the cache.
// Failures are not cached.
//
// The limit only bounds the provider request. Whatever list the provider
// returns is cached whole and never trimmed afterwards.
func (d *Discovery) lookup(ctx context.Context, artist string) ([]string, error) {
	key := NormalizeName(artist)
	if similar, ok := d.cache.Get(key); ok {
		return similar, nil
	}

	similar, err := d.similar.SimilarArtists(ctx, artist, d.limit)
	if err != nil {
		return nil, err
	}

	d.cache.Put(key, similar)
	return similar, nil
}
