// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"errors"
	"fmt"
)

// Stage names a pipeline step that can end an invocation with no result.
type Stage string

// Pipeline stages that report terminal empty results.
const (
	StageSeedArtists    Stage = "seed_artists"
	StageSimilarArtists Stage = "similar_artists"
	StageCandidates     Stage = "candidates"
	StageResolve        Stage = "resolve"
)

var (
	// ErrMissingCredential is returned before any external call when the
	// request carries no catalog token.
	ErrMissingCredential = errors.New("catalog credential is required")

	// ErrNoSeeds is returned when no usable seed track IDs remain.
	ErrNoSeeds = errors.New("at least one seed track id is required")

	// Stage sentinels. Their messages are shown to users.
	ErrNoSeedArtists    = errors.New("no valid artists found from seed tracks")
	ErrNoSimilarArtists = errors.New("no similar artists found")
	ErrNoCandidates     = errors.New("no candidate tracks found from similar artists")
	ErrNoCatalogTracks  = errors.New("no valid catalog tracks found from candidates")
)

// StageError reports the stage at which an invocation produced nothing.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ExternalError reports a provider failure that left the pipeline without the
// data it needs to continue.
type ExternalError struct {
	Op  string
	Err error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage) error {
	var sentinel error
	switch stage {
	case StageSeedArtists:
		sentinel = ErrNoSeedArtists
	case StageSimilarArtists:
		sentinel = ErrNoSimilarArtists
	case StageCandidates:
		sentinel = ErrNoCandidates
	default:
		sentinel = ErrNoCatalogTracks
	}
	return &StageError{Stage: stage, Err: sentinel}
}
