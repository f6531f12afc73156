// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

// Package recommend implements the recommendation discovery and ranking
// pipeline.
//
// # Architecture
//
// A request runs as one straight-line transaction:
//
//	seed track IDs
//	  -> catalog GetTracks           (seed artists)
//	  -> Discovery                   (similar artist pool)
//	  -> Harvester                   (candidate tracks, parallel)
//	  -> Resolver                    (canonical catalog IDs)
//	  -> catalog AudioFeatures
//	  -> Rank                        (cosine similarity to the taste embedding)
//
// Only harvesting fans out, to a fixed-width worker pool that stops as soon
// as enough candidates exist. Every other step runs on the request goroutine.
//
// # Failure Model
//
// A failed provider lookup for one artist or candidate is logged and skipped.
// A step that ends with nothing to pass on fails the whole invocation with a
// *StageError naming the step. A missing credential is rejected before any
// external call.
//
// # Shared State
//
// Caches and provider clients are created once by the caller and injected.
// The pipeline itself only owns the result memo, keyed by the seed-set
// fingerprint; the credential is never part of the key. The memo is consulted
// after the seed lookup, so the catalog still vets every credential.
//
// # Usage
//
//	p, err := recommend.NewPipeline(recommend.DefaultConfig(), recommend.Dependencies{
//	    Similarity: lastfmClient,
//	    Catalog:    spotify.NewCatalog(spotifyClient),
//	    Caches:     recommend.NewCaches(time.Hour, 1000),
//	})
//	res, err := p.Recommend(ctx, recommend.Request{SeedTrackIDs: ids, Token: token})
package recommend
