// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package api

import (
	"context"
	"time"

	"github.com/tomtom215/resonance/internal/recommend"
)

// Recommender is the pipeline contract the recommendation handlers use.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error)
	RecommendFromTopTracks(ctx context.Context, token, timeRange string) (*recommend.Result, error)
}

// TasteStats is the stats contract the stats handler uses.
type TasteStats interface {
	GenreBreakdown(ctx context.Context, token, timeRange string) (*recommend.TasteStats, error)
}

// BreakerReporter exposes a provider's circuit breaker for readiness checks.
type BreakerReporter interface {
	Name() string
	BreakerState() string
}

// Handler holds the dependencies shared by all endpoints.
type Handler struct {
	recommender    Recommender
	stats          TasteStats
	providers      []BreakerReporter
	requestTimeout time.Duration
	startTime      time.Time
	version        string
}

// HandlerConfig configures NewHandler.
type HandlerConfig struct {
	Recommender Recommender
	Stats       TasteStats
	Providers   []BreakerReporter

	// RequestTimeout bounds one recommendation or stats request, including
	// every provider call it makes. Zero means no extra deadline.
	RequestTimeout time.Duration

	Version string
}

// NewHandler creates a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	return &Handler{
		recommender:    cfg.Recommender,
		stats:          cfg.Stats,
		providers:      cfg.Providers,
		requestTimeout: cfg.RequestTimeout,
		startTime:      time.Now(),
		version:        version,
	}
}

// withTimeout applies the configured request deadline.
func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.requestTimeout)
}
