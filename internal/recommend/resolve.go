// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"context"

	"github.com/tomtom215/resonance/internal/cache"
	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/provider"
)

// Resolver maps candidates to canonical catalog track IDs.
type Resolver struct {
	catalog CatalogProvider
	cache   *cache.Expiring[string]
}

// NewResolver creates a Resolver backed by the given cache.
func NewResolver(catalog CatalogProvider, c *cache.Expiring[string]) *Resolver {
	return &Resolver{catalog: catalog, cache: c}
}

// Resolve returns the catalog ID of the first search match for c.
//
// ok is false when the catalog has no match or the lookup failed with a
// recoverable error; neither outcome is cached. err is non-nil only for a
// finished context or a rejected credential.
func (r *Resolver) Resolve(ctx context.Context, token string, c Candidate) (id string, ok bool, err error) {
	key := candidateKey(c)
	if id, hit := r.cache.Get(key); hit {
		return id, true, nil
	}

	track, err := r.catalog.SearchTrack(ctx, token, c.TrackName, c.ArtistName)
	if err != nil {
		if !provider.IsRecoverable(err) {
			return "", false, err
		}
		logging.Ctx(ctx).Warn().Err(err).
			Str("track", c.TrackName).
			Str("artist", c.ArtistName).
			Msg("Catalog search failed, skipping candidate")
		return "", false, nil
	}
	if track == nil || track.ID == "" {
		return "", false, nil
	}

	r.cache.Put(key, track.ID)
	return track.ID, true, nil
}
