// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

// Package logging provides zerolog-based structured logging for Resonance.
//
// JSON output is the default; console output is available for local runs.
// The global logger is configured once from main:
//
//	logging.Init(cfg.LoggingSettings())
//	logging.Info().Int("port", 8080).Msg("Server starting")
//
// # Context
//
// HTTP middleware stores a request ID, and the pipeline stores a logger
// carrying the seed fingerprint. Ctx assembles both:
//
//	logging.Ctx(ctx).Warn().Err(err).Str("artist", name).Msg("Similar artists lookup failed")
//
// # Components
//
//	log := logging.WithComponent("provider")
//
// # Redaction
//
// Provider URLs carry the Last.fm API key as a query parameter and Spotify
// calls carry a bearer token. RedactURL and SanitizeToken mask them before
// they reach logs or error messages.
//
// # slog
//
// NewSlogLogger adapts a zerolog logger to log/slog for sutureslog.
package logging
