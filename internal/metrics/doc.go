// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

/*
Package metrics provides Prometheus metrics for Resonance.

All collectors are registered with the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

Provider Metrics:
  - provider_requests_total{provider,outcome}
  - provider_request_duration_seconds{provider}
  - provider_retries_total{provider,reason}
  - rate_limiter_wait_seconds{provider}

Circuit Breaker Metrics:
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

Cache Metrics:
  - cache_hits_total{cache}, cache_misses_total{cache}, cache_evictions_total{cache}
  - cache_entries{cache}: refreshed by the cache stats reporter

Pipeline Metrics:
  - recommend_pipeline_duration_seconds
  - recommend_pipeline_runs_total{outcome}
  - recommend_stage_failures_total{stage}
  - recommend_results_count
  - recommend_harvest_artist_failures_total

API Metrics:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
*/
package metrics
