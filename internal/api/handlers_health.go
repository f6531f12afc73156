// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    float64           `json:"uptime_seconds"`
	Providers map[string]string `json:"providers,omitempty"`
}

// HealthLive handles GET /api/v1/health/live. It reports only that the
// process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /api/v1/health/ready. It returns 503 while any
// provider circuit breaker is open, so a load balancer can drain traffic
// that would fail fast anyway.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := HealthStatus{
		Status:    "ready",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Seconds(),
		Providers: make(map[string]string, len(h.providers)),
	}

	ready := true
	for _, p := range h.providers {
		state := p.BreakerState()
		status.Providers[p.Name()] = state
		if state == "open" {
			ready = false
		}
	}

	if !ready {
		status.Status = "degraded"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"A provider circuit breaker is open", status)
		return
	}

	rw.Success(status)
}
