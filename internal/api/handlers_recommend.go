// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package api

import (
	"net/http"

	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/recommend"
	"github.com/tomtom215/resonance/internal/validation"
)

// RecommendationResponse is the data payload of a recommendation.
type RecommendationResponse struct {
	TrackIDs         []string           `json:"track_ids"`
	Scores           map[string]float64 `json:"scores"`
	SeedArtists      int                `json:"seed_artists"`
	CandidateArtists int                `json:"candidate_artists"`
	Fingerprint      string             `json:"fingerprint"`
	Cached           bool               `json:"cached"`
	DurationMs       int64              `json:"duration_ms"`
}

func newRecommendationResponse(res *recommend.Result) RecommendationResponse {
	ids := res.TrackIDs
	if ids == nil {
		ids = []string{}
	}
	scores := res.Scores
	if scores == nil {
		scores = map[string]float64{}
	}
	return RecommendationResponse{
		TrackIDs:         ids,
		Scores:           scores,
		SeedArtists:      res.SeedArtists,
		CandidateArtists: res.CandidateArtists,
		Fingerprint:      res.Fingerprint,
		Cached:           res.Cached,
		DurationMs:       res.Duration.Milliseconds(),
	}
}

// Recommend handles POST /api/v1/recommendations.
//
// Body: {"seed_track_ids": ["..."]}, with the listener's catalog token in
// "Authorization: Bearer <token>".
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	token, err := bearerToken(r)
	if err != nil {
		rw.Unauthorized("A catalog bearer token is required")
		return
	}

	var req RecommendationRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.ValidationError("Invalid request body: "+err.Error(), nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	res, err := h.recommender.Recommend(ctx, recommend.Request{
		SeedTrackIDs: req.SeedTrackIDs,
		Token:        token,
	})
	if err != nil {
		respondPipelineError(rw, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Int("seeds", len(req.SeedTrackIDs)).
		Int("results", len(res.TrackIDs)).
		Bool("cached", res.Cached).
		Msg("Recommendation served")

	rw.Success(newRecommendationResponse(res))
}

// RecommendFromTopTracks handles GET /api/v1/recommendations. The listener's
// top tracks for ?time_range= are the seeds.
func (h *Handler) RecommendFromTopTracks(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.recommender.RecommendFromTopTracks(ctx, token, recommend.NormalizeTimeRange(req.TimeRange))
	if err != nil {
		respondPipelineError(rw, r, err)
		return
	}

	rw.Success(newRecommendationResponse(res))
}
