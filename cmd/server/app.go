// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/resonance/internal/api"
	"github.com/tomtom215/resonance/internal/config"
	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/provider"
	"github.com/tomtom215/resonance/internal/provider/lastfm"
	"github.com/tomtom215/resonance/internal/provider/spotify"
	"github.com/tomtom215/resonance/internal/ratelimit"
	"github.com/tomtom215/resonance/internal/recommend"
	"github.com/tomtom215/resonance/internal/supervisor"
	"github.com/tomtom215/resonance/internal/supervisor/services"
)

// cacheStatsInterval is how often cache sizes are published to Prometheus.
const cacheStatsInterval = 30 * time.Second

// app holds the wired components. Nothing is running until tree is served.
type app struct {
	pipeline *recommend.Pipeline
	router   *api.Router
	server   *http.Server
	tree     *supervisor.SupervisorTree
}

// newApp builds every component from cfg without starting any of them.
func newApp(cfg *config.Config) (*app, error) {
	lastfmLimiter, err := ratelimit.New("lastfm", cfg.LastFM.CallsPerSecond)
	if err != nil {
		return nil, fmt.Errorf("lastfm rate limiter: %w", err)
	}
	spotifyLimiter, err := ratelimit.New("spotify", cfg.Spotify.CallsPerSecond)
	if err != nil {
		return nil, fmt.Errorf("spotify rate limiter: %w", err)
	}

	lastfmHTTP := provider.NewClient(cfg.LastFMClient(), lastfmLimiter,
		provider.WithLogger(logging.WithComponent("provider")))
	spotifyHTTP := provider.NewClient(cfg.SpotifyClient(), spotifyLimiter,
		provider.WithLogger(logging.WithComponent("provider")))

	similarity, err := lastfm.New(lastfmHTTP, cfg.LastFM.APIKey)
	if err != nil {
		return nil, fmt.Errorf("lastfm client: %w", err)
	}
	catalog := spotify.NewCatalog(spotify.New(spotifyHTTP, cfg.SpotifyOptions()))

	caches := recommend.NewCaches(cfg.Cache.TTL, cfg.Cache.MaxSize)
	pipeline, err := recommend.NewPipeline(cfg.Pipeline(), recommend.Dependencies{
		Similarity: similarity,
		Catalog:    catalog,
		Caches:     caches,
	})
	if err != nil {
		return nil, fmt.Errorf("recommendation pipeline: %w", err)
	}

	handler := api.NewHandler(api.HandlerConfig{
		Recommender:    pipeline,
		Stats:          recommend.NewStatsService(catalog),
		Providers:      []api.BreakerReporter{lastfmHTTP, spotifyHTTP},
		RequestTimeout: cfg.Server.RequestTimeout,
		Version:        version,
	})
	router := api.NewRouter(handler, middlewareConfig(cfg))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Leave room to write the response after the request deadline fires.
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout + 5*time.Second
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.WithComponent("supervisor")), treeCfg)
	if err != nil {
		return nil, fmt.Errorf("supervisor tree: %w", err)
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddBackgroundService(services.NewCacheStatsService(cacheSources(caches, pipeline), cacheStatsInterval))

	return &app{
		pipeline: pipeline,
		router:   router,
		server:   server,
		tree:     tree,
	}, nil
}

// middlewareConfig maps the server section onto the chi middleware settings.
func middlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	mc := api.DefaultChiMiddlewareConfig()
	mc.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mc.RateLimitRequests = cfg.Server.RateLimitReqs
	mc.RateLimitWindow = cfg.Server.RateLimitWindow
	mc.RateLimitDisabled = cfg.Server.RateLimitDisabled
	return mc
}

// cacheSources lists the stage caches and the result memo for the reporter.
func cacheSources(caches recommend.Caches, pipeline *recommend.Pipeline) []services.CacheSource {
	all := caches.All()
	out := make([]services.CacheSource, 0, len(all)+1)
	for _, c := range all {
		out = append(out, c)
	}
	return append(out, pipeline.Memo())
}
