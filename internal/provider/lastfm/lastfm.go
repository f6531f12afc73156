// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

// Package lastfm adapts the Last.fm web service to the similarity provider
// contract: similar artists for an artist, and an artist's top tracks.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/resonance/internal/provider"
)

// DefaultBaseURL is the public Last.fm endpoint.
const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Last.fm error codes that change how a response is interpreted.
const (
	codeInvalidParameters = 6  // "artist not found" is reported this way
	codeRateLimited       = 29 // rate limit exceeded
)

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("lastfm: api key is required")

// APIError is a Last.fm error payload other than "not found".
type APIError struct {
	Code    int    `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lastfm: error %d: %s", e.Code, e.Message)
}

// Client queries Last.fm through a resilient provider client.
type Client struct {
	http   *provider.Client
	apiKey string
}

// New creates a Last.fm adapter.
func New(httpClient *provider.Client, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{http: httpClient, apiKey: apiKey}, nil
}

type similarResponse struct {
	APIError
	SimilarArtists *struct {
		Artist list[namedItem] `json:"artist"`
	} `json:"similarartists"`
}

type topTracksResponse struct {
	APIError
	TopTracks *struct {
		Track list[namedItem] `json:"track"`
	} `json:"toptracks"`
}

type namedItem struct {
	Name string `json:"name"`
}

// SimilarArtists returns the names of artists similar to artist, most similar
// first. Unknown artists and responses without the expected fields yield an
// empty slice.
func (c *Client) SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error) {
	var resp similarResponse
	found, err := c.call(ctx, "artist.getsimilar", artist, limit, &resp)
	if err != nil || !found {
		return nil, err
	}
	if resp.SimilarArtists == nil {
		return nil, nil
	}
	return names(resp.SimilarArtists.Artist), nil
}

// TopTracks returns the names of an artist's most popular tracks.
func (c *Client) TopTracks(ctx context.Context, artist string, limit int) ([]string, error) {
	var resp topTracksResponse
	found, err := c.call(ctx, "artist.gettoptracks", artist, limit, &resp)
	if err != nil || !found {
		return nil, err
	}
	if resp.TopTracks == nil {
		return nil, nil
	}
	return names(resp.TopTracks.Track), nil
}

// call issues one method call. It reports found=false when Last.fm says the
// artist does not exist.
func (c *Client) call(ctx context.Context, method, artist string, limit int, out interface{ apiError() *APIError }) (bool, error) {
	query := url.Values{
		"method":      {method},
		"artist":      {artist},
		"api_key":     {c.apiKey},
		"format":      {"json"},
		"autocorrect": {"1"},
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	err := c.http.GetJSON(ctx, provider.Request{
		Path:      "/",
		Query:     query,
		Throttled: isThrottled,
	}, out)
	if err != nil {
		var statusErr *provider.StatusError
		if errors.As(err, &statusErr) && errorCode([]byte(statusErr.Body)) == codeInvalidParameters {
			return false, nil
		}
		return false, fmt.Errorf("lastfm %s %q: %w", method, artist, err)
	}

	apiErr := out.apiError()
	switch apiErr.Code {
	case 0:
		return true, nil
	case codeInvalidParameters:
		return false, nil
	default:
		return false, apiErr
	}
}

func (r *similarResponse) apiError() *APIError   { return &r.APIError }
func (r *topTracksResponse) apiError() *APIError { return &r.APIError }

// isThrottled recognizes the in-band rate limit error.
func isThrottled(_ int, body []byte) bool {
	return errorCode(body) == codeRateLimited
}

// errorCode extracts the Last.fm error code from a payload, or 0.
func errorCode(body []byte) int {
	if len(body) == 0 || body[0] != '{' {
		return 0
	}
	var payload struct {
		Error int `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0
	}
	return payload.Error
}

func names(items list[namedItem]) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Name != "" {
			out = append(out, item.Name)
		}
	}
	return out
}

// list decodes a JSON array, or a single object where Last.fm collapses a
// one-element list.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	if data[0] == '{' {
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return err
		}
		*l = []T{item}
		return nil
	}
	// Empty results come back as "" or "\n" in some methods.
	*l = nil
	return nil
}
