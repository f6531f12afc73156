// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

// Package spotify adapts the Spotify Web API to the catalog provider
// contract. Every call carries the caller's bearer token; the adapter never
// obtains or refreshes tokens itself.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/provider"
)

// DefaultBaseURL is the public Spotify Web API endpoint.
const DefaultBaseURL = "https://api.spotify.com/v1"

// Batch limits imposed by the Web API.
const (
	DefaultTracksBatch   = 50
	DefaultFeaturesBatch = 100
	ArtistsBatch         = 50
	TopTracksLimit       = 50
)

// Time ranges accepted by /me/top/tracks.
const (
	ShortTerm  = "short_term"
	MediumTerm = "medium_term"
	LongTerm   = "long_term"
)

// ErrMissingToken is returned when a call is made without a bearer token.
var ErrMissingToken = errors.New("spotify: bearer token is required")

// Artist is a catalog artist. Genres are only populated by Artists.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres,omitempty"`
}

// Track is a catalog track.
type Track struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
}

// PrimaryArtist returns the first listed artist name, or "".
func (t *Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// AudioFeatures holds the acoustic attributes used for ranking.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Loudness         float64 `json:"loudness"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
}

// Options tunes batch sizes.
type Options struct {
	TracksBatch   int
	FeaturesBatch int
}

// Client queries the Spotify Web API through a resilient provider client.
type Client struct {
	http          *provider.Client
	tracksBatch   int
	featuresBatch int
}

// New creates a Spotify adapter.
func New(httpClient *provider.Client, opts Options) *Client {
	c := &Client{
		http:          httpClient,
		tracksBatch:   opts.TracksBatch,
		featuresBatch: opts.FeaturesBatch,
	}
	if c.tracksBatch <= 0 || c.tracksBatch > DefaultTracksBatch {
		c.tracksBatch = DefaultTracksBatch
	}
	if c.featuresBatch <= 0 || c.featuresBatch > DefaultFeaturesBatch {
		c.featuresBatch = DefaultFeaturesBatch
	}
	return c
}

// SearchTrack returns the best catalog match for a track name and artist, or
// nil when the search has no results.
func (c *Client) SearchTrack(ctx context.Context, token, name, artist string) (*Track, error) {
	var resp struct {
		Tracks *struct {
			Items []*Track `json:"items"`
		} `json:"tracks"`
	}

	query := url.Values{
		"q":     {fmt.Sprintf("track:%s artist:%s", name, artist)},
		"type":  {"track"},
		"limit": {"1"},
	}
	if err := c.get(ctx, token, "/search", query, &resp); err != nil {
		return nil, fmt.Errorf("spotify search %q by %q: %w", name, artist, err)
	}

	if resp.Tracks == nil || len(resp.Tracks.Items) == 0 || resp.Tracks.Items[0] == nil || resp.Tracks.Items[0].ID == "" {
		return nil, nil
	}
	return resp.Tracks.Items[0], nil
}

// GetTracks fetches tracks by ID. Unknown IDs are omitted from the result.
//
// The Web API rejects a whole batch with 400 when any ID in it is malformed.
// Such a batch is retried one ID at a time so the valid IDs still resolve.
func (c *Client) GetTracks(ctx context.Context, token string, ids []string) ([]Track, error) {
	return collect(ctx, "tracks", ids, c.tracksBatch, func(batch []string) ([]Track, error) {
		var resp struct {
			Tracks []*Track `json:"tracks"`
		}
		err := c.get(ctx, token, "/tracks", url.Values{"ids": {strings.Join(batch, ",")}}, &resp)
		if err == nil {
			return present(resp.Tracks), nil
		}
		if len(batch) > 1 && isBadRequest(err) {
			return c.tracksOneByOne(ctx, token, batch)
		}
		return nil, err
	})
}

// tracksOneByOne fetches each ID through /tracks/{id}, skipping IDs the API
// rejects or does not know.
func (c *Client) tracksOneByOne(ctx context.Context, token string, ids []string) ([]Track, error) {
	logger := logging.Ctx(ctx)
	logger.Debug().Int("batch_size", len(ids)).Msg("Track batch rejected, fetching individually")

	out := make([]Track, 0, len(ids))
	for _, id := range ids {
		var t Track
		if err := c.get(ctx, token, "/tracks/"+url.PathEscape(id), nil, &t); err != nil {
			if !provider.IsRecoverable(err) {
				return nil, err
			}
			logger.Warn().Err(err).Str("track_id", id).Msg("Skipping unresolvable track")
			continue
		}
		if t.ID != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

func isBadRequest(err error) bool {
	var statusErr *provider.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest
}

// AudioFeatures fetches audio features keyed by track ID. Tracks without
// analysis are omitted.
func (c *Client) AudioFeatures(ctx context.Context, token string, ids []string) (map[string]AudioFeatures, error) {
	list, err := collect(ctx, "audio-features", ids, c.featuresBatch, func(batch []string) ([]AudioFeatures, error) {
		var resp struct {
			AudioFeatures []*AudioFeatures `json:"audio_features"`
		}
		if err := c.get(ctx, token, "/audio-features", url.Values{"ids": {strings.Join(batch, ",")}}, &resp); err != nil {
			return nil, err
		}
		return present(resp.AudioFeatures), nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]AudioFeatures, len(list))
	for _, f := range list {
		if f.ID != "" {
			out[f.ID] = f
		}
	}
	return out, nil
}

// TopTracks returns the listener's top tracks for a time range. An unknown
// range falls back to long_term.
func (c *Client) TopTracks(ctx context.Context, token, timeRange string) ([]Track, error) {
	switch timeRange {
	case ShortTerm, MediumTerm, LongTerm:
	default:
		timeRange = LongTerm
	}

	var resp struct {
		Items []*Track `json:"items"`
	}
	query := url.Values{
		"limit":      {strconv.Itoa(TopTracksLimit)},
		"time_range": {timeRange},
	}
	if err := c.get(ctx, token, "/me/top/tracks", query, &resp); err != nil {
		return nil, fmt.Errorf("spotify top tracks: %w", err)
	}
	return present(resp.Items), nil
}

// Artists fetches artists, with genres, by ID.
func (c *Client) Artists(ctx context.Context, token string, ids []string) ([]Artist, error) {
	return collect(ctx, "artists", ids, ArtistsBatch, func(batch []string) ([]Artist, error) {
		var resp struct {
			Artists []*Artist `json:"artists"`
		}
		if err := c.get(ctx, token, "/artists", url.Values{"ids": {strings.Join(batch, ",")}}, &resp); err != nil {
			return nil, err
		}
		return present(resp.Artists), nil
	})
}

func (c *Client) get(ctx context.Context, token, path string, query url.Values, out interface{}) error {
	if token == "" {
		return ErrMissingToken
	}
	return c.http.GetJSON(ctx, provider.Request{
		Path:   path,
		Query:  query,
		Header: http.Header{"Authorization": {"Bearer " + token}},
	}, out)
}

// collect runs fetch over fixed-size batches of ids. A batch that fails with a
// recoverable error is logged and skipped; an unrecoverable error, or every
// batch failing, is returned.
func collect[T any](ctx context.Context, what string, ids []string, size int, fetch func(batch []string) ([]T, error)) ([]T, error) {
	batches := chunk(ids, size)
	if len(batches) == 0 {
		return nil, nil
	}

	var (
		out     []T
		lastErr error
		failed  int
	)
	for i, batch := range batches {
		items, err := fetch(batch)
		if err != nil {
			if !provider.IsRecoverable(err) {
				return nil, fmt.Errorf("spotify %s: %w", what, err)
			}
			failed++
			lastErr = err
			logging.Ctx(ctx).Warn().Err(err).
				Str("resource", what).
				Int("batch", i).
				Int("batch_size", len(batch)).
				Msg("Skipping failed catalog batch")
			continue
		}
		out = append(out, items...)
	}

	if failed == len(batches) {
		return nil, fmt.Errorf("spotify %s: all %d batches failed: %w", what, failed, lastErr)
	}
	return out, nil
}

// chunk splits ids into batches of at most size, dropping empty IDs.
func chunk(ids []string, size int) [][]string {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}

	var out [][]string
	for start := 0; start < len(clean); start += size {
		end := start + size
		if end > len(clean) {
			end = len(clean)
		}
		out = append(out, clean[start:end])
	}
	return out
}

// present dereferences non-null entries of a Web API list.
func present[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}
