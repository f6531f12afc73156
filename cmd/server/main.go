// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

// Package main is the entry point for the Resonance server.
//
// Resonance turns a handful of seed tracks into a ranked list of catalog
// track IDs. Similar artists come from Last.fm. Track resolution, audio
// features and listener history come from Spotify.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, then environment (Koanf v2)
//  2. Logging: zerolog with the configured level and format
//  3. Providers: one rate limiter, retrying client and circuit breaker per provider
//  4. Pipeline: stage caches, recommendation pipeline and taste statistics
//  5. HTTP Server: chi router with CORS, rate limiting and Prometheus metrics
//  6. Supervisor: suture tree running the HTTP server and cache reporter
//
// # Configuration
//
// LASTFM_API_KEY is the only required setting. Listener tokens for Spotify
// arrive per request in the Authorization header.
//
//	export LASTFM_API_KEY=...
//	export LOG_FORMAT=console
//	./resonance
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests for up to SHUTDOWN_TIMEOUT.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/resonance/internal/config"
	"github.com/tomtom215/resonance/internal/logging"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.LoggingSettings())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Supervisor tree error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run wires the application and blocks until ctx is canceled or the
// supervisor tree stops on its own.
func run(ctx context.Context, cfg *config.Config) error {
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Bool("rerank", cfg.Recommend.RerankEnabled).
		Bool("memo", cfg.Recommend.MemoEnabled).
		Msg("Starting Resonance with supervisor tree")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin in production; set CORS_ORIGINS")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	logging.Info().Str("addr", a.server.Addr).Msg("Starting supervisor tree...")
	errCh := a.tree.ServeBackground(ctx)

	// The channel receives exactly one value and is never closed.
	serveErr := <-errCh
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}

	unstopped, _ := a.tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return serveErr
}
