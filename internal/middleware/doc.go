// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

/*
Package middleware provides HTTP middleware for the Resonance API.

  - RequestID: assigns X-Request-ID and seeds the logging context with
    request and correlation IDs
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled by
    chi route pattern

Both are chi-compatible func(http.Handler) http.Handler:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

RequestID must run before any handler that logs through logging.Ctx.
*/
package middleware
