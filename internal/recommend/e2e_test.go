// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/resonance/internal/provider"
	"github.com/tomtom215/resonance/internal/provider/lastfm"
	"github.com/tomtom215/resonance/internal/provider/spotify"
	"github.com/tomtom215/resonance/internal/ratelimit"
	"github.com/tomtom215/resonance/internal/recommend"
)

const e2eSeeds = 5

// fakeLastFM serves artist.getsimilar and artist.gettoptracks for artists
// A1..A5 and their similar artists Bik. The first similar-artists request
// for A1 is throttled with the in-band rate limit code.
func fakeLastFM(t *testing.T) *httptest.Server {
	t.Helper()
	var throttled atomic.Bool

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":10,"message":"Invalid API key"}`))
			return
		}
		artist := q.Get("artist")
		w.Header().Set("Content-Type", "application/json")

		switch q.Get("method") {
		case "artist.getsimilar":
			if artist == "A1" && throttled.CompareAndSwap(false, true) {
				_, _ = w.Write([]byte(`{"error":29,"message":"Rate Limit Exceeded"}`))
				return
			}
			if !strings.HasPrefix(artist, "A") {
				_, _ = w.Write([]byte(`{"error":6,"message":"The artist you supplied could not be found"}`))
				return
			}
			i := strings.TrimPrefix(artist, "A")
			_, _ = fmt.Fprintf(w, `{"similarartists":{"artist":[{"name":"B%s1"},{"name":"B%s2"}]}}`, i, i)
		case "artist.gettoptracks":
			var names []string
			if strings.HasPrefix(artist, "A") {
				// Seed artists only offer their seed song, which must never be recommended.
				names = []string{"Seed " + strings.TrimPrefix(artist, "A")}
			} else {
				for j := 1; j <= 3; j++ {
					names = append(names, fmt.Sprintf("%s song %d", artist, j))
				}
			}
			items := make([]map[string]string, len(names))
			for k, n := range names {
				items[k] = map[string]string{"name": n}
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"toptracks": map[string]interface{}{"track": items},
			})
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":3,"message":"Invalid Method"}`))
		}
	}))
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
}

// catalogID maps a track name by an artist to a stable catalog ID.
func catalogID(name, artist string) string {
	if strings.HasPrefix(name, "Seed ") {
		return "s" + strings.TrimPrefix(name, "Seed ")
	}
	return "c-" + strings.ReplaceAll(name, " ", "-") + "-" + artist
}

// energyOf gives candidate "... song j" an energy of j, so lower j ranks higher
// against seeds that have zero energy.
func energyOf(id string) float64 {
	for j := 1; j <= 3; j++ {
		if strings.Contains(id, fmt.Sprintf("song-%d-", j)) {
			return float64(j)
		}
	}
	return 0
}

func fakeSpotify(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer user-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		ids := strings.Split(r.URL.Query().Get("ids"), ",")

		seedTrack := func(id string) *spotifyTrack {
			i := strings.TrimPrefix(id, "s")
			return &spotifyTrack{ID: id, Name: "Seed " + i, Artists: []spotifyArtist{{ID: "a" + i, Name: "A" + i}}}
		}

		switch {
		case r.URL.Path == "/tracks":
			// A malformed ID rejects the whole batch.
			tracks := make([]*spotifyTrack, len(ids))
			for k, id := range ids {
				if !strings.HasPrefix(id, "s") {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				tracks[k] = seedTrack(id)
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"tracks": tracks})
		case strings.HasPrefix(r.URL.Path, "/tracks/"):
			id := strings.TrimPrefix(r.URL.Path, "/tracks/")
			if !strings.HasPrefix(id, "s") {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(seedTrack(id))
		case r.URL.Path == "/search":
			var name, artist string
			parts := strings.SplitN(strings.TrimPrefix(r.URL.Query().Get("q"), "track:"), " artist:", 2)
			if len(parts) == 2 {
				name, artist = parts[0], parts[1]
			}
			items := []spotifyTrack{}
			if name != "" {
				items = append(items, spotifyTrack{ID: catalogID(name, artist), Name: name, Artists: []spotifyArtist{{Name: artist}}})
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"tracks": map[string]interface{}{"items": items}})
		case r.URL.Path == "/audio-features":
			features := make([]map[string]interface{}, 0, len(ids))
			for _, id := range ids {
				features = append(features, map[string]interface{}{
					"id":           id,
					"danceability": 1.0,
					"energy":       energyOf(id),
				})
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"audio_features": features})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func noSleep(context.Context, time.Duration) error { return nil }

func newLimiter(t *testing.T, name string) *ratelimit.Limiter {
	t.Helper()
	l, err := ratelimit.New(name, 1000)
	if err != nil {
		t.Fatalf("ratelimit.New: %v", err)
	}
	return l
}

func TestRecommend_EndToEnd(t *testing.T) {
	lfm := fakeLastFM(t)
	defer lfm.Close()
	sp := fakeSpotify(t)
	defer sp.Close()

	retry := provider.RetryPolicy{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

	lastfmHTTP := provider.NewClient(provider.Config{Name: "lastfm", BaseURL: lfm.URL, Retry: retry},
		newLimiter(t, "lastfm"), provider.WithSleeper(noSleep))
	similarity, err := lastfm.New(lastfmHTTP, "test-key")
	if err != nil {
		t.Fatalf("lastfm.New: %v", err)
	}
	spotifyHTTP := provider.NewClient(provider.Config{Name: "spotify", BaseURL: sp.URL, Retry: retry},
		newLimiter(t, "spotify"), provider.WithSleeper(noSleep))
	catalog := spotify.NewCatalog(spotify.New(spotifyHTTP, spotify.Options{}))

	pipeline, err := recommend.NewPipeline(recommend.DefaultConfig(), recommend.Dependencies{
		Similarity: similarity,
		Catalog:    catalog,
		Caches:     recommend.NewCaches(time.Hour, 1000),
		Rand:       rand.New(rand.NewSource(7)),
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	seeds := make([]string, e2eSeeds)
	for i := range seeds {
		seeds[i] = fmt.Sprintf("s%d", i+1)
	}

	res, err := pipeline.Recommend(context.Background(), recommend.Request{SeedTrackIDs: seeds, Token: "user-token"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(res.TrackIDs) == 0 || len(res.TrackIDs) > 10 {
		t.Fatalf("got %d tracks, want 1..10: %v", len(res.TrackIDs), res.TrackIDs)
	}
	seen := make(map[string]bool)
	for _, id := range res.TrackIDs {
		if seen[id] {
			t.Errorf("duplicate track %s", id)
		}
		seen[id] = true
		if strings.HasPrefix(id, "s") {
			t.Errorf("seed track %s recommended", id)
		}
	}
	for i := 1; i < len(res.TrackIDs); i++ {
		prev, cur := res.Scores[res.TrackIDs[i-1]], res.Scores[res.TrackIDs[i]]
		if cur > prev {
			t.Errorf("track %d score %v exceeds previous %v", i, cur, prev)
		}
	}
	if res.SeedArtists != e2eSeeds {
		t.Errorf("seed artists = %d, want %d", res.SeedArtists, e2eSeeds)
	}

	again, err := pipeline.Recommend(context.Background(), recommend.Request{SeedTrackIDs: seeds, Token: "user-token"})
	if err != nil {
		t.Fatalf("second Recommend: %v", err)
	}
	if !again.Cached {
		t.Error("repeated seed set was not served from the memo")
	}
}

func TestRecommend_EndToEndUnauthorized(t *testing.T) {
	lfm := fakeLastFM(t)
	defer lfm.Close()
	sp := fakeSpotify(t)
	defer sp.Close()

	lastfmHTTP := provider.NewClient(provider.Config{Name: "lastfm", BaseURL: lfm.URL}, newLimiter(t, "lastfm"))
	similarity, err := lastfm.New(lastfmHTTP, "test-key")
	if err != nil {
		t.Fatalf("lastfm.New: %v", err)
	}
	spotifyHTTP := provider.NewClient(provider.Config{Name: "spotify", BaseURL: sp.URL}, newLimiter(t, "spotify"))

	pipeline, err := recommend.NewPipeline(recommend.DefaultConfig(), recommend.Dependencies{
		Similarity: similarity,
		Catalog:    spotify.NewCatalog(spotify.New(spotifyHTTP, spotify.Options{})),
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, err = pipeline.Recommend(context.Background(), recommend.Request{SeedTrackIDs: []string{"s1"}, Token: "expired"})
	var ext *recommend.ExternalError
	if !errors.As(err, &ext) {
		t.Fatalf("error = %v, want *ExternalError", err)
	}
	if !errors.Is(err, provider.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized in chain", err)
	}
}

func newE2EPipeline(t *testing.T, lastfmURL, spotifyURL string) *recommend.Pipeline {
	t.Helper()
	lastfmHTTP := provider.NewClient(provider.Config{Name: "lastfm", BaseURL: lastfmURL}, newLimiter(t, "lastfm"), provider.WithSleeper(noSleep))
	similarity, err := lastfm.New(lastfmHTTP, "test-key")
	if err != nil {
		t.Fatalf("lastfm.New: %v", err)
	}
	spotifyHTTP := provider.NewClient(provider.Config{Name: "spotify", BaseURL: spotifyURL}, newLimiter(t, "spotify"), provider.WithSleeper(noSleep))

	pipeline, err := recommend.NewPipeline(recommend.DefaultConfig(), recommend.Dependencies{
		Similarity: similarity,
		Catalog:    spotify.NewCatalog(spotify.New(spotifyHTTP, spotify.Options{})),
		Caches:     recommend.NewCaches(time.Hour, 1000),
		Rand:       rand.New(rand.NewSource(7)),
	})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return pipeline
}

func TestRecommend_EndToEndMalformedSeed(t *testing.T) {
	lfm := fakeLastFM(t)
	defer lfm.Close()
	sp := fakeSpotify(t)
	defer sp.Close()

	pipeline := newE2EPipeline(t, lfm.URL, sp.URL)

	seeds := []string{"s1", "s2", "s3", "s4", "s5", "bogus0000"}
	res, err := pipeline.Recommend(context.Background(), recommend.Request{SeedTrackIDs: seeds, Token: "user-token"})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if res.SeedArtists != e2eSeeds {
		t.Errorf("seed artists = %d, want %d", res.SeedArtists, e2eSeeds)
	}
	if len(res.TrackIDs) == 0 {
		t.Error("no recommendations for the valid seeds")
	}
}

func TestRecommend_EndToEndMemoRevokedToken(t *testing.T) {
	lfm := fakeLastFM(t)
	defer lfm.Close()
	sp := fakeSpotify(t)
	defer sp.Close()

	pipeline := newE2EPipeline(t, lfm.URL, sp.URL)
	seeds := []string{"s1", "s2"}

	if _, err := pipeline.Recommend(context.Background(), recommend.Request{SeedTrackIDs: seeds, Token: "user-token"}); err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	_, err := pipeline.Recommend(context.Background(), recommend.Request{SeedTrackIDs: seeds, Token: "revoked"})
	if !errors.Is(err, provider.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized for a memoized seed set", err)
	}
}
