// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

/*
Package api serves the Resonance HTTP API on a chi router.

# Endpoints

	POST /api/v1/recommendations        seeds in the body, bearer token in Authorization
	GET  /api/v1/recommendations        seeds from the listener's top tracks (?time_range=)
	GET  /api/v1/stats                  genre breakdown of the listener's top tracks
	GET  /api/v1/health/live            process liveness
	GET  /api/v1/health/ready           503 while a provider circuit breaker is open
	GET  /metrics                       Prometheus exposition

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "STAGE_FAILED", "message": "no similar artists found", "details": {"stage": "similar_artists"}}}

# Error Codes

  - 401 UNAUTHORIZED: missing bearer token, or the catalog rejected it
  - 400 VALIDATION_FAILED: malformed body or seed list
  - 422 STAGE_FAILED: a pipeline step produced nothing; details.stage names it
  - 502 EXTERNAL_SERVICE_FAILED: a provider could not be reached
  - 504 GATEWAY_TIMEOUT: the request deadline passed

Provider error text never reaches the response body; it is logged with the
request ID instead.

# Middleware

Global: request ID with logging context, real IP, panic recovery, CORS.
API routes add per-IP rate limiting (httprate), security headers and
Prometheus instrumentation.
*/
package api
