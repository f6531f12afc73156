// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// maxRequestBody bounds the recommendation request body.
const maxRequestBody = 64 << 10

// RecommendationRequest is the body of POST /api/v1/recommendations.
type RecommendationRequest struct {
	SeedTrackIDs []string `json:"seed_track_ids" validate:"required,min=1,max=50,dive,required,catalogid"`
}

// TimeRangeRequest holds the time_range query parameter of the top-track
// endpoints. Empty means long_term.
type TimeRangeRequest struct {
	TimeRange string `json:"time_range" validate:"omitempty,oneof=short_term medium_term long_term"`
}

// errNoBearer is returned when the Authorization header carries no bearer token.
var errNoBearer = errors.New("bearer token required")

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errNoBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errNoBearer
	}
	return token, nil
}

// decodeJSON decodes a bounded JSON body into v, rejecting unknown fields
// and trailing data.
func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxRequestBody {
		return fmt.Errorf("body exceeds %d bytes", maxRequestBody)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("body is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}
