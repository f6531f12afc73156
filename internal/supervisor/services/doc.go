// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

/*
Package services provides suture.Service wrappers for Resonance components.

  - HTTPServerService turns http.Server's blocking ListenAndServe into a
    context-aware Serve with bounded graceful shutdown.
  - CacheStatsService publishes cache entry counts to the cache_entries
    Prometheus gauge on a fixed interval.

Every wrapper implements fmt.Stringer so suture event logs name it.
*/
package services
