// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// fakeSimilarity is an in-memory SimilarityProvider.
type fakeSimilarity struct {
	mu         sync.Mutex
	similar    map[string][]string
	top        map[string][]string
	similarErr map[string]error
	topErr     map[string]error
	delay      time.Duration

	similarCalls atomic.Int32
	similarLimit atomic.Int32
	topCalls     atomic.Int32
	inFlight     atomic.Int32
	maxInFlight  atomic.Int32
}

func newFakeSimilarity() *fakeSimilarity {
	return &fakeSimilarity{
		similar:    make(map[string][]string),
		top:        make(map[string][]string),
		similarErr: make(map[string]error),
		topErr:     make(map[string]error),
	}
}

func (f *fakeSimilarity) SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error) {
	f.similarCalls.Add(1)
	f.similarLimit.Store(int32(limit))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.similarErr[artist]; err != nil {
		return nil, err
	}
	return append([]string(nil), f.similar[artist]...), nil
}

func (f *fakeSimilarity) TopTracks(ctx context.Context, artist string, limit int) ([]string, error) {
	f.topCalls.Add(1)

	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.topErr[artist]; err != nil {
		return nil, err
	}
	tracks := f.top[artist]
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return append([]string(nil), tracks...), nil
}

// fakeCatalog is an in-memory CatalogProvider.
type fakeCatalog struct {
	mu       sync.Mutex
	tracks   map[string]CatalogTrack
	search   map[string]string // "track|artist" -> id
	features map[string]Features
	artists  map[string]CatalogArtist
	top      []CatalogTrack

	getTracksErr error
	searchErr    error
	featuresErr  error

	calls         atomic.Int32
	searchCalls   atomic.Int32
	featuresCalls atomic.Int32
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tracks:   make(map[string]CatalogTrack),
		search:   make(map[string]string),
		features: make(map[string]Features),
		artists:  make(map[string]CatalogArtist),
	}
}

func (f *fakeCatalog) addTrack(id, name, artist string) {
	f.tracks[id] = CatalogTrack{ID: id, Name: name, Artists: []CatalogArtist{{ID: "id-" + artist, Name: artist}}}
}

func (f *fakeCatalog) setFeatures(id string, v Features) {
	f.features[id] = v
}

func (f *fakeCatalog) SearchTrack(ctx context.Context, _, name, artist string) (*CatalogTrack, error) {
	f.calls.Add(1)
	f.searchCalls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.search[name+"|"+artist]
	if !ok {
		return nil, nil
	}
	return &CatalogTrack{ID: id, Name: name, Artists: []CatalogArtist{{Name: artist}}}, nil
}

func (f *fakeCatalog) GetTracks(_ context.Context, _ string, ids []string) ([]CatalogTrack, error) {
	f.calls.Add(1)
	if f.getTracksErr != nil {
		return nil, f.getTracksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []CatalogTrack
	for _, id := range ids {
		if t, ok := f.tracks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeCatalog) AudioFeatures(_ context.Context, _ string, ids []string) (map[string]Features, error) {
	f.calls.Add(1)
	f.featuresCalls.Add(1)
	if f.featuresErr != nil {
		return nil, f.featuresErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]Features)
	for _, id := range ids {
		if v, ok := f.features[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (f *fakeCatalog) TopTracks(_ context.Context, _, _ string) ([]CatalogTrack, error) {
	f.calls.Add(1)
	return f.top, nil
}

func (f *fakeCatalog) Artists(_ context.Context, _ string, ids []string) ([]CatalogArtist, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []CatalogArtist
	for _, id := range ids {
		if a, ok := f.artists[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func vec(values ...float64) *Features {
	var f Features
	copy(f[:], values)
	return &f
}
