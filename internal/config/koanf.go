// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/resonance/internal/provider/lastfm"
	"github.com/tomtom215/resonance/internal/provider/spotify"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/resonance/config.yaml",
	"/etc/resonance/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			RequestTimeout:  60 * time.Second, // a cold pipeline run makes dozens of rate-limited calls
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   60,
			RateLimitWindow: time.Minute,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		LastFM: LastFMConfig{
			BaseURL:        lastfm.DefaultBaseURL,
			APIKey:         "", // required
			CallsPerSecond: 5,
			Timeout:        15 * time.Second,
			SimilarLimit:   10,
			TopTracksLimit: 3,
		},
		Spotify: SpotifyConfig{
			BaseURL:           spotify.DefaultBaseURL,
			CallsPerSecond:    10,
			Timeout:           15 * time.Second,
			BatchSize:         spotify.DefaultTracksBatch,
			FeaturesBatchSize: spotify.DefaultFeaturesBatch,
		},
		Retry: RetryConfig{
			MaxRetries:     3,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      2 * time.Minute,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Cache: CacheConfig{
			TTL:     time.Hour,
			MaxSize: 10000,
		},
		Recommend: RecommendConfig{
			HarvestWorkers: 5,
			HarvestTarget:  50,
			MaxResults:     10,
			FamiliarCap:    10,
			RerankEnabled:  true,
			MemoEnabled:    true,
			MemoTTL:        15 * time.Minute,
			MemoSize:       256,
			Seed:           0, // 0 = seeded from the clock
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// LASTFM_API_KEY -> lastfm.api_key
	// SPOTIFY_BASE_URL -> spotify.base_url
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unlisted variables are ignored so unrelated environment cannot leak in.
var envMappings = map[string]string{
	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.request_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_reqs",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",
	"environment":         "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Last.fm
	"lastfm_base_url":         "lastfm.base_url",
	"lastfm_api_key":          "lastfm.api_key",
	"lastfm_calls_per_second": "lastfm.calls_per_second",
	"lastfm_timeout":          "lastfm.timeout",
	"lastfm_similar_limit":    "lastfm.similar_limit",
	"lastfm_top_tracks_limit": "lastfm.top_tracks_limit",

	// Spotify
	"spotify_base_url":            "spotify.base_url",
	"spotify_calls_per_second":    "spotify.calls_per_second",
	"spotify_timeout":             "spotify.timeout",
	"spotify_batch_size":          "spotify.batch_size",
	"spotify_features_batch_size": "spotify.features_batch_size",

	// Retry
	"retry_max_retries":     "retry.max_retries",
	"retry_initial_backoff": "retry.initial_backoff",
	"retry_max_backoff":     "retry.max_backoff",

	// Breaker
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	// Cache
	"cache_ttl":      "cache.ttl",
	"cache_max_size": "cache.max_size",

	// Recommend
	"recommend_harvest_workers": "recommend.harvest_workers",
	"recommend_harvest_target":  "recommend.harvest_target",
	"recommend_max_results":     "recommend.max_results",
	"recommend_familiar_cap":    "recommend.familiar_cap",
	"recommend_rerank_enabled":  "recommend.rerank_enabled",
	"recommend_memo_enabled":    "recommend.memo_enabled",
	"recommend_memo_ttl":        "recommend.memo_ttl",
	"recommend_memo_size":       "recommend.memo_size",
	"recommend_seed":            "recommend.seed",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - LASTFM_API_KEY -> lastfm.api_key
//   - SPOTIFY_BASE_URL -> spotify.base_url
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	// Unmapped keys return "" and are skipped.
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for synchronizing access to any configuration it
// swaps in from the callback.
func WatchConfigFile(path string, callback func()) error {
	return file.Provider(path).Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
