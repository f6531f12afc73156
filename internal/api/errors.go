// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/provider"
	"github.com/tomtom215/resonance/internal/recommend"
)

// respondPipelineError maps a pipeline or stats error onto the API error
// codes. Provider error text stays in the log.
func respondPipelineError(rw *ResponseWriter, r *http.Request, err error) {
	var (
		stageErr    *recommend.StageError
		externalErr *recommend.ExternalError
	)

	switch {
	case errors.Is(err, recommend.ErrMissingCredential):
		rw.Unauthorized("A catalog bearer token is required")

	case errors.Is(err, provider.ErrUnauthorized):
		logging.Ctx(r.Context()).Info().Err(err).Msg("Catalog rejected the credential")
		rw.Unauthorized("The catalog rejected the bearer token")

	case errors.Is(err, recommend.ErrNoSeeds):
		rw.ValidationError(err.Error(), map[string]interface{}{"field": "seed_track_ids"})

	case errors.As(err, &stageErr):
		rw.ErrorWithDetails(http.StatusUnprocessableEntity, ErrCodeStageFailed, stageErr.Error(),
			map[string]interface{}{"stage": string(stageErr.Stage)})

	case errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Request deadline exceeded")
		rw.Error(http.StatusGatewayTimeout, ErrCodeGatewayTimeout, "The request took too long, try fewer seeds")

	case errors.Is(err, context.Canceled):
		logging.Ctx(r.Context()).Debug().Msg("Client went away")
		rw.ServiceUnavailable("Request canceled")

	case errors.As(err, &externalErr):
		rw.ExternalServiceError(externalErr.Op, err)

	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Unexpected pipeline error")
		rw.InternalError("Failed to generate recommendations")
	}
}
