// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package lastfm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/resonance/internal/provider"
)

type noopLimiter struct{ calls atomic.Int32 }

func (l *noopLimiter) Acquire(ctx context.Context) error {
	l.calls.Add(1)
	return ctx.Err()
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *noopLimiter) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	limiter := &noopLimiter{}
	pc := provider.NewClient(provider.Config{Name: "lastfm-test", BaseURL: server.URL}, limiter, provider.WithSleeper(noSleep))
	c, err := New(pc, "test-key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, limiter
}

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(nil, ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("New without key = %v, want ErrMissingAPIKey", err)
	}
}

func TestSimilarArtists(t *testing.T) {
	var gotQuery map[string]string
	c, limiter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"method":  q.Get("method"),
			"artist":  q.Get("artist"),
			"limit":   q.Get("limit"),
			"api_key": q.Get("api_key"),
			"format":  q.Get("format"),
		}
		_, _ = w.Write([]byte(`{"similarartists":{"artist":[{"name":"Portishead","match":"1"},{"name":"Massive Attack"},{"name":""}],"@attr":{"artist":"Radiohead"}}}`))
	})

	got, err := c.SimilarArtists(context.Background(), "Radiohead", 10)
	if err != nil {
		t.Fatalf("SimilarArtists: %v", err)
	}

	want := []string{"Portishead", "Massive Attack"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SimilarArtists = %v, want %v", got, want)
	}

	wantQuery := map[string]string{
		"method":  "artist.getsimilar",
		"artist":  "Radiohead",
		"limit":   "10",
		"api_key": "test-key",
		"format":  "json",
	}
	if !reflect.DeepEqual(gotQuery, wantQuery) {
		t.Errorf("query = %v, want %v", gotQuery, wantQuery)
	}
	if limiter.calls.Load() != 1 {
		t.Errorf("limiter calls = %d, want 1", limiter.calls.Load())
	}
}

func TestTopTracks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "array",
			body: `{"toptracks":{"track":[{"name":"Creep"},{"name":"Karma Police"}]}}`,
			want: []string{"Creep", "Karma Police"},
		},
		{
			name: "single object",
			body: `{"toptracks":{"track":{"name":"Only Song"}}}`,
			want: []string{"Only Song"},
		},
		{
			name: "missing field",
			body: `{"something":"else"}`,
			want: nil,
		},
		{
			name: "empty string list",
			body: `{"toptracks":{"track":""}}`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("method") != "artist.gettoptracks" {
					t.Errorf("method = %q", r.URL.Query().Get("method"))
				}
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.TopTracks(context.Background(), "Radiohead", 3)
			if err != nil {
				t.Fatalf("TopTracks: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("TopTracks = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("TopTracks[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestArtistNotFoundIsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"in-band", http.StatusOK},
		{"http error", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":6,"message":"The artist you supplied could not be found"}`))
			})

			got, err := c.SimilarArtists(context.Background(), "Nobody", 10)
			if err != nil {
				t.Fatalf("SimilarArtists: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("SimilarArtists = %v, want empty", got)
			}
		})
	}
}

func TestOtherAPIErrorIsReturned(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":10,"message":"Invalid API key"}`))
	})

	_, err := c.SimilarArtists(context.Background(), "Radiohead", 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 10 {
		t.Errorf("error = %v, want APIError code 10", err)
	}
}

func TestThrottledIsRetried(t *testing.T) {
	var hits atomic.Int32
	c, limiter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"error":29,"message":"Rate limit exceeded"}`))
			return
		}
		_, _ = w.Write([]byte(`{"similarartists":{"artist":[{"name":"Blur"}]}}`))
	})

	got, err := c.SimilarArtists(context.Background(), "Oasis", 5)
	if err != nil {
		t.Fatalf("SimilarArtists: %v", err)
	}
	if len(got) != 1 || got[0] != "Blur" {
		t.Errorf("SimilarArtists = %v", got)
	}
	if limiter.calls.Load() != 2 {
		t.Errorf("limiter calls = %d, want 2", limiter.calls.Load())
	}
}

func TestThrottledExhaustionIsRecoverable(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":29,"message":"Rate limit exceeded"}`))
	})

	_, err := c.TopTracks(context.Background(), "Oasis", 3)
	var exhausted *provider.RateLimitExceededError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error = %v, want RateLimitExceededError", err)
	}
	if !provider.IsRecoverable(err) {
		t.Error("exhaustion should be recoverable")
	}
}
