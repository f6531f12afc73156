// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"context"
	"time"
)

// FeatureDims is the length of a track's acoustic feature vector.
const FeatureDims = 9

// Features is an acoustic feature vector in a fixed order: danceability,
// energy, loudness, speechiness, acousticness, instrumentalness, liveness,
// valence, tempo.
type Features [FeatureDims]float64

// Time ranges for a listener's top tracks.
const (
	ShortTerm  = "short_term"
	MediumTerm = "medium_term"
	LongTerm   = "long_term"
)

// CatalogArtist is an artist as the catalog reports it. Genres are only
// populated by CatalogProvider.Artists.
type CatalogArtist struct {
	ID     string
	Name   string
	Genres []string
}

// CatalogTrack is a track as the catalog reports it.
type CatalogTrack struct {
	ID      string
	Name    string
	Artists []CatalogArtist
}

// PrimaryArtist returns the first listed artist name, or "".
func (t *CatalogTrack) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// Track is a catalog track. Features is nil until fetched, and stays nil when
// the catalog has no analysis for the track.
type Track struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Artist   string    `json:"artist"`
	Features *Features `json:"features,omitempty"`
}

// Candidate is an unresolved (track name, artist name) pair produced by the
// harvester.
type Candidate struct {
	TrackName  string `json:"track_name"`
	ArtistName string `json:"artist_name"`
}

// Scored is a track with its cosine similarity to the taste embedding.
type Scored struct {
	Track Track   `json:"track"`
	Score float64 `json:"score"`
}

// Request is one recommendation invocation.
type Request struct {
	// SeedTrackIDs are catalog IDs representing known preference.
	SeedTrackIDs []string `json:"seed_track_ids"`

	// Token is the caller's catalog bearer credential. It is passed through
	// to the catalog provider and never stored.
	Token string `json:"-"`
}

// Result is the outcome of a successful invocation.
type Result struct {
	// TrackIDs are the recommended catalog IDs, best first.
	TrackIDs []string `json:"track_ids"`

	// Scores holds the similarity score of every ranked track. Tracks that
	// could not be scored are absent.
	Scores map[string]float64 `json:"scores"`

	// SeedArtists is the number of distinct artists found for the seeds.
	SeedArtists int `json:"seed_artists"`

	// CandidateArtists is the size of the discovered artist pool.
	CandidateArtists int `json:"candidate_artists"`

	// Fingerprint identifies the seed set. Equal seed sets share it.
	Fingerprint string `json:"fingerprint"`

	// Cached is true when the result was served from the memo.
	Cached bool `json:"cached"`

	// Duration is how long the computation took.
	Duration time.Duration `json:"duration_ns"`
}

// clone returns a deep copy so memoized results are never shared.
func (r *Result) clone() *Result {
	out := *r
	out.TrackIDs = append([]string(nil), r.TrackIDs...)
	out.Scores = make(map[string]float64, len(r.Scores))
	for id, s := range r.Scores {
		out.Scores[id] = s
	}
	return &out
}

// SimilarityProvider finds related artists and an artist's popular tracks.
type SimilarityProvider interface {
	SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error)
	TopTracks(ctx context.Context, artist string, limit int) ([]string, error)
}

// CatalogProvider is the canonical track catalog. Every call carries the
// listener's bearer token. SearchTrack returns nil when nothing matches, and
// AudioFeatures omits tracks the catalog has not analyzed.
type CatalogProvider interface {
	SearchTrack(ctx context.Context, token, name, artist string) (*CatalogTrack, error)
	GetTracks(ctx context.Context, token string, ids []string) ([]CatalogTrack, error)
	AudioFeatures(ctx context.Context, token string, ids []string) (map[string]Features, error)
	TopTracks(ctx context.Context, token, timeRange string) ([]CatalogTrack, error)
	Artists(ctx context.Context, token string, ids []string) ([]CatalogArtist, error)
}
