// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"fmt"
	"time"
)

// Config contains the tuning knobs of the recommendation pipeline.
type Config struct {
	// SimilarLimit is how many similar artists to request per seed artist.
	// Default: 10.
	SimilarLimit int `json:"similar_limit"`

	// TopTracksLimit is how many top tracks to take per candidate artist.
	// Default: 3.
	TopTracksLimit int `json:"top_tracks_limit"`

	// HarvestWorkers is the width of the harvesting worker pool.
	// Default: 5.
	HarvestWorkers int `json:"harvest_workers"`

	// HarvestTarget is the number of candidates after which harvesting stops.
	// Default: 50.
	HarvestTarget int `json:"harvest_target"`

	// MaxResults is the number of distinct tracks returned.
	// Default: 10.
	MaxResults int `json:"max_results"`

	// FamiliarCap bounds how many seed artists are mixed back into the
	// discovered pool. One seed artist is re-admitted per five seeds.
	// Default: 10.
	FamiliarCap int `json:"familiar_cap"`

	// RerankEnabled orders results by acoustic similarity to the seeds.
	// When false, results keep resolution order.
	// Default: true.
	RerankEnabled bool `json:"rerank_enabled"`

	// MemoEnabled serves repeated seed sets from an in-memory memo.
	// Default: true.
	MemoEnabled bool `json:"memo_enabled"`

	// MemoTTL is how long a memoized result is served.
	// Default: 15m.
	MemoTTL time.Duration `json:"memo_ttl"`

	// MemoSize bounds the number of memoized results.
	// Default: 256.
	MemoSize int `json:"memo_size"`

	// Seed seeds the shuffle in artist discovery. Zero uses the clock.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		SimilarLimit:   10,
		TopTracksLimit: 3,
		HarvestWorkers: 5,
		HarvestTarget:  50,
		MaxResults:     10,
		FamiliarCap:    10,
		RerankEnabled:  true,
		MemoEnabled:    true,
		MemoTTL:        15 * time.Minute,
		MemoSize:       256,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.SimilarLimit < 1 {
		return fmt.Errorf("similar_limit must be positive, got %d", c.SimilarLimit)
	}
	if c.TopTracksLimit < 1 {
		return fmt.Errorf("top_tracks_limit must be positive, got %d", c.TopTracksLimit)
	}
	if c.HarvestWorkers < 1 {
		return fmt.Errorf("harvest_workers must be positive, got %d", c.HarvestWorkers)
	}
	if c.HarvestTarget < 1 {
		return fmt.Errorf("harvest_target must be positive, got %d", c.HarvestTarget)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.FamiliarCap < 0 {
		return fmt.Errorf("familiar_cap must be non-negative, got %d", c.FamiliarCap)
	}
	if c.MemoEnabled {
		if c.MemoTTL <= 0 {
			return fmt.Errorf("memo_ttl must be positive when memo is enabled, got %v", c.MemoTTL)
		}
		if c.MemoSize < 1 {
			return fmt.Errorf("memo_size must be positive when memo is enabled, got %d", c.MemoSize)
		}
	}
	return nil
}
