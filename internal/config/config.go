// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package config

import (
	"time"

	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/provider"
	"github.com/tomtom215/resonance/internal/provider/spotify"
	"github.com/tomtom215/resonance/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Providers:
//     - LastFM: similarity source (API key required)
//     - Spotify: catalog, audio features and listener data
//     - Retry, Breaker: shared resilience settings for both providers
//
//  2. Pipeline:
//     - Cache: TTL and size of the per-stage caches
//     - Recommend: harvesting, ranking and memoization knobs
//
//  3. Service:
//     - Server: HTTP listener, CORS and inbound rate limiting
//     - Logging: Log levels and output formats
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	LastFM    LastFMConfig    `koanf:"lastfm"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	Retry     RetryConfig     `koanf:"retry"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Cache     CacheConfig     `koanf:"cache"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT: listen address (default: 0.0.0.0:8080)
//   - HTTP_TIMEOUT: per-request deadline (default: 60s)
//   - SHUTDOWN_TIMEOUT: graceful shutdown budget (default: 15s)
//   - CORS_ORIGINS: comma-separated allowed origins (default: *)
//   - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT: inbound limiting per client IP
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	Environment       string        `koanf:"environment"` // "development" or "production"
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// LastFMConfig configures the similarity provider.
//
// Environment Variables:
//   - LASTFM_API_KEY: API key (required)
//   - LASTFM_BASE_URL: endpoint override (default: https://ws.audioscrobbler.com/2.0/)
//   - LASTFM_CALLS_PER_SECOND: outbound rate (default: 5)
//   - LASTFM_SIMILAR_LIMIT, LASTFM_TOP_TRACKS_LIMIT: per-request result sizes
type LastFMConfig struct {
	BaseURL        string        `koanf:"base_url"`
	APIKey         string        `koanf:"api_key"`
	CallsPerSecond float64       `koanf:"calls_per_second"`
	Timeout        time.Duration `koanf:"timeout"`
	SimilarLimit   int           `koanf:"similar_limit"`
	TopTracksLimit int           `koanf:"top_tracks_limit"`
}

// SpotifyConfig configures the catalog provider. Listener tokens arrive with
// each request, so no credential is configured here.
//
// Environment Variables:
//   - SPOTIFY_BASE_URL: endpoint override (default: https://api.spotify.com/v1)
//   - SPOTIFY_CALLS_PER_SECOND: outbound rate (default: 10)
//   - SPOTIFY_BATCH_SIZE, SPOTIFY_FEATURES_BATCH_SIZE: multi-ID request sizes
type SpotifyConfig struct {
	BaseURL           string        `koanf:"base_url"`
	CallsPerSecond    float64       `koanf:"calls_per_second"`
	Timeout           time.Duration `koanf:"timeout"`
	BatchSize         int           `koanf:"batch_size"`
	FeaturesBatchSize int           `koanf:"features_batch_size"`
}

// RetryConfig is the backoff policy shared by both providers.
// MaxRetries counts total attempts, not retries after the first.
type RetryConfig struct {
	MaxRetries     int           `koanf:"max_retries"`
	InitialBackoff time.Duration `koanf:"initial_backoff"`
	MaxBackoff     time.Duration `koanf:"max_backoff"`
}

// BreakerConfig configures the per-provider circuit breakers.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// CacheConfig sizes the similar-artist, top-track, resolution and feature caches.
type CacheConfig struct {
	TTL     time.Duration `koanf:"ttl"`
	MaxSize int           `koanf:"max_size"`
}

// RecommendConfig holds pipeline tuning.
type RecommendConfig struct {
	HarvestWorkers int           `koanf:"harvest_workers"`
	HarvestTarget  int           `koanf:"harvest_target"`
	MaxResults     int           `koanf:"max_results"`
	FamiliarCap    int           `koanf:"familiar_cap"`
	RerankEnabled  bool          `koanf:"rerank_enabled"`
	MemoEnabled    bool          `koanf:"memo_enabled"`
	MemoTTL        time.Duration `koanf:"memo_ttl"`
	MemoSize       int           `koanf:"memo_size"`
	Seed           int64         `koanf:"seed"`
}

// Load reads configuration with the following precedence (highest to lowest):
//  1. Environment variables
//  2. Config file (config.yaml if it exists, or the path in CONFIG_PATH)
//  3. Built-in defaults
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// LoggingSettings converts the logging section for logging.Init.
func (c *Config) LoggingSettings() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	if c.Logging.Format != "" {
		lc.Format = c.Logging.Format
	}
	lc.Caller = c.Logging.Caller
	return lc
}

// RetryPolicy converts the retry section for provider clients.
func (c *Config) RetryPolicy() provider.RetryPolicy {
	return provider.RetryPolicy{
		MaxRetries:     c.Retry.MaxRetries,
		InitialBackoff: c.Retry.InitialBackoff,
		MaxBackoff:     c.Retry.MaxBackoff,
	}
}

// BreakerSettings converts the breaker section for provider clients.
func (c *Config) BreakerSettings() provider.BreakerSettings {
	return provider.BreakerSettings{
		MaxRequests:  c.Breaker.MaxRequests,
		Interval:     c.Breaker.Interval,
		Timeout:      c.Breaker.Timeout,
		MinRequests:  c.Breaker.MinRequests,
		FailureRatio: c.Breaker.FailureRatio,
	}
}

// LastFMClient returns the provider client settings for Last.fm.
func (c *Config) LastFMClient() provider.Config {
	return provider.Config{
		Name:    "lastfm",
		BaseURL: c.LastFM.BaseURL,
		Timeout: c.LastFM.Timeout,
		Retry:   c.RetryPolicy(),
		Breaker: c.BreakerSettings(),
	}
}

// SpotifyClient returns the provider client settings for Spotify.
func (c *Config) SpotifyClient() provider.Config {
	return provider.Config{
		Name:    "spotify",
		BaseURL: c.Spotify.BaseURL,
		Timeout: c.Spotify.Timeout,
		Retry:   c.RetryPolicy(),
		Breaker: c.BreakerSettings(),
	}
}

// SpotifyOptions returns the catalog adapter's batch sizes.
func (c *Config) SpotifyOptions() spotify.Options {
	return spotify.Options{
		TracksBatch:   c.Spotify.BatchSize,
		FeaturesBatch: c.Spotify.FeaturesBatchSize,
	}
}

// Pipeline converts the recommend and lastfm sections for recommend.NewPipeline.
func (c *Config) Pipeline() *recommend.Config {
	rc := recommend.DefaultConfig()
	rc.SimilarLimit = c.LastFM.SimilarLimit
	rc.TopTracksLimit = c.LastFM.TopTracksLimit
	rc.HarvestWorkers = c.Recommend.HarvestWorkers
	rc.HarvestTarget = c.Recommend.HarvestTarget
	rc.MaxResults = c.Recommend.MaxResults
	rc.FamiliarCap = c.Recommend.FamiliarCap
	rc.RerankEnabled = c.Recommend.RerankEnabled
	rc.MemoEnabled = c.Recommend.MemoEnabled
	rc.MemoTTL = c.Recommend.MemoTTL
	rc.MemoSize = c.Recommend.MemoSize
	rc.Seed = c.Recommend.Seed
	return rc
}
