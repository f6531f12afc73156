// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateLastFM,
		c.validateSpotify,
		c.validateRetry,
		c.validateBreaker,
		c.validateCache,
		c.validateRecommend,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitReqs < minRateLimitRequests || c.Server.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Server.RateLimitWindow < minRateLimitWindow || c.Server.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// ShouldWarnAboutCORS returns true if wildcard CORS is configured in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateLastFM validates the similarity provider settings
func (c *Config) validateLastFM() error {
	if c.LastFM.APIKey == "" {
		return fmt.Errorf("LASTFM_API_KEY is required")
	}
	if containsPlaceholder(c.LastFM.APIKey) {
		return fmt.Errorf("LASTFM_API_KEY contains a placeholder value, set a real API key")
	}
	if err := validateHTTPURL(c.LastFM.BaseURL, "LASTFM_BASE_URL"); err != nil {
		return err
	}
	if c.LastFM.CallsPerSecond <= 0 {
		return fmt.Errorf("LASTFM_CALLS_PER_SECOND must be positive")
	}
	if c.LastFM.SimilarLimit < 1 {
		return fmt.Errorf("LASTFM_SIMILAR_LIMIT must be at least 1")
	}
	if c.LastFM.TopTracksLimit < 1 {
		return fmt.Errorf("LASTFM_TOP_TRACKS_LIMIT must be at least 1")
	}
	return nil
}

// validateSpotify validates the catalog provider settings
func (c *Config) validateSpotify() error {
	if err := validateHTTPURL(c.Spotify.BaseURL, "SPOTIFY_BASE_URL"); err != nil {
		return err
	}
	if c.Spotify.CallsPerSecond <= 0 {
		return fmt.Errorf("SPOTIFY_CALLS_PER_SECOND must be positive")
	}
	if c.Spotify.BatchSize < 1 || c.Spotify.BatchSize > 50 {
		return fmt.Errorf("SPOTIFY_BATCH_SIZE must be between 1 and 50")
	}
	if c.Spotify.FeaturesBatchSize < 1 || c.Spotify.FeaturesBatchSize > 100 {
		return fmt.Errorf("SPOTIFY_FEATURES_BATCH_SIZE must be between 1 and 100")
	}
	return nil
}

// validateRetry validates the shared backoff policy
func (c *Config) validateRetry() error {
	if c.Retry.MaxRetries < 1 {
		return fmt.Errorf("RETRY_MAX_RETRIES must be at least 1")
	}
	if c.Retry.InitialBackoff <= 0 {
		return fmt.Errorf("RETRY_INITIAL_BACKOFF must be positive")
	}
	if c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		return fmt.Errorf("RETRY_MAX_BACKOFF must not be less than RETRY_INITIAL_BACKOFF")
	}
	return nil
}

// validateBreaker validates circuit breaker settings
func (c *Config) validateBreaker() error {
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive")
	}
	return nil
}

// validateCache validates cache settings
func (c *Config) validateCache() error {
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Cache.MaxSize < 1 {
		return fmt.Errorf("CACHE_MAX_SIZE must be at least 1")
	}
	return nil
}

// validateRecommend defers to the pipeline's own checks
func (c *Config) validateRecommend() error {
	if err := c.Pipeline().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_API_KEY",
	"YOUR_KEY",
	"PLACEHOLDER",
	"XXX",
}

// containsPlaceholder checks if a value contains common placeholder patterns.
func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
