// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package api

import (
	"net/http"

	"github.com/tomtom215/resonance/internal/recommend"
	"github.com/tomtom215/resonance/internal/validation"
)

// Stats handles GET /api/v1/stats?time_range=. It returns the genre
// breakdown of the listener's top tracks.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	token, err := bearerToken(r)
	if err != nil {
		rw.Unauthorized("A catalog bearer token is required")
		return
	}

	req := TimeRangeRequest{TimeRange: r.URL.Query().Get("time_range")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	stats, err := h.stats.GenreBreakdown(ctx, token, recommend.NormalizeTimeRange(req.TimeRange))
	if err != nil {
		respondPipelineError(rw, r, err)
		return
	}

	rw.Success(stats)
}
