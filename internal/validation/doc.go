// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

// Package validation validates inbound API requests with
// go-playground/validator v10.
//
// A single validator instance is built once and reused; it caches struct
// metadata and is safe for concurrent use. Field names in errors come from
// json tags, and the custom "catalogid" tag checks catalog track IDs.
//
//	type RecommendationRequest struct {
//	    SeedTrackIDs []string `json:"seed_track_ids" validate:"required,min=1,max=50,dive,required,catalogid"`
//	}
//
// Failures convert to the API error shape with code VALIDATION_FAILED:
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
package validation
