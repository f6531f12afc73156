// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

/*
Package config provides centralized configuration management for Resonance.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The first file found among
CONFIG_PATH, config.yaml, config.yml, /etc/resonance/config.yaml and
/etc/resonance/config.yml is used.

# Environment Variables

Only the variables listed in the mapping table are read. The most common:

Server:
  - HTTP_HOST, HTTP_PORT: listen address (default: 0.0.0.0:8080)
  - HTTP_TIMEOUT: per-request deadline (default: 60s)
  - CORS_ORIGINS: comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW: inbound limit per client (default: 60/1m)

Providers:
  - LASTFM_API_KEY: Last.fm API key (required)
  - LASTFM_CALLS_PER_SECOND: outbound rate to Last.fm (default: 5)
  - SPOTIFY_CALLS_PER_SECOND: outbound rate to Spotify (default: 10)
  - RETRY_MAX_RETRIES: total attempts per provider request (default: 3)

Pipeline:
  - CACHE_TTL, CACHE_MAX_SIZE: stage caches (default: 1h, 10000)
  - RECOMMEND_MAX_RESULTS: tracks per recommendation (default: 10)
  - RECOMMEND_RERANK_ENABLED: order by audio-feature similarity (default: true)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)

# Example YAML

	lastfm:
	  api_key: "..."
	  calls_per_second: 5
	spotify:
	  calls_per_second: 10
	retry:
	  max_retries: 3
	  initial_backoff: 1s
	recommend:
	  max_results: 10
	  memo_ttl: 15m

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	pipelineCfg := cfg.Pipeline()
	lastfmClient := provider.NewClient(cfg.LastFMClient(), limiter)

Config is immutable after Load() and safe for concurrent reads.
*/
package config
