// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"context"
	"errors"
	"testing"
)

func TestGenreBreakdown(t *testing.T) {
	cat := newFakeCatalog()
	cat.top = []CatalogTrack{
		{ID: "t1", Name: "Creep", Artists: []CatalogArtist{{ID: "rh", Name: "Radiohead"}}},
		{ID: "t2", Name: "Glory Box", Artists: []CatalogArtist{{ID: "ph", Name: "Portishead"}}},
		{ID: "t3", Name: "No Surprises", Artists: []CatalogArtist{{ID: "rh", Name: "Radiohead"}}},
	}
	cat.artists["rh"] = CatalogArtist{ID: "rh", Genres: []string{"art rock", "alternative rock"}}
	cat.artists["ph"] = CatalogArtist{ID: "ph", Genres: []string{"trip hop", "art rock"}}

	stats, err := NewStatsService(cat).GenreBreakdown(context.Background(), "tok", "")
	if err != nil {
		t.Fatalf("GenreBreakdown: %v", err)
	}

	// art rock: 2 (rh twice) + 1 (ph) = 3; alternative rock: 2; trip hop: 1; total 6.
	want := []GenreShare{
		{Genre: "art rock", Count: 3, Percent: 50},
		{Genre: "alternative rock", Count: 2, Percent: 33.33},
		{Genre: "trip hop", Count: 1, Percent: 16.67},
	}
	if len(stats.Genres) != len(want) {
		t.Fatalf("Genres = %+v, want %+v", stats.Genres, want)
	}
	for i := range want {
		if stats.Genres[i] != want[i] {
			t.Errorf("Genres[%d] = %+v, want %+v", i, stats.Genres[i], want[i])
		}
	}
	if stats.TopGenre != "art rock" {
		t.Errorf("TopGenre = %q", stats.TopGenre)
	}
	if stats.TimeRange != LongTerm {
		t.Errorf("TimeRange = %q, want long_term default", stats.TimeRange)
	}
	if len(stats.TopTracks) != 3 || stats.TopTracks[0] != "Creep" {
		t.Errorf("TopTracks = %v", stats.TopTracks)
	}
}

func TestGenreBreakdown_NoGenres(t *testing.T) {
	cat := newFakeCatalog()
	cat.top = []CatalogTrack{{ID: "t1", Name: "X", Artists: []CatalogArtist{{ID: "a"}}}}

	stats, err := NewStatsService(cat).GenreBreakdown(context.Background(), "tok", ShortTerm)
	if err != nil {
		t.Fatalf("GenreBreakdown: %v", err)
	}
	if len(stats.Genres) != 0 || stats.TopGenre != "" {
		t.Errorf("stats = %+v, want no genres", stats)
	}
	if stats.TimeRange != ShortTerm {
		t.Errorf("TimeRange = %q", stats.TimeRange)
	}
}

func TestGenreBreakdown_MissingCredential(t *testing.T) {
	cat := newFakeCatalog()
	if _, err := NewStatsService(cat).GenreBreakdown(context.Background(), "", ""); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("error = %v, want ErrMissingCredential", err)
	}
	if cat.calls.Load() != 0 {
		t.Error("catalog called without credential")
	}
}

func TestNormalizeTimeRange(t *testing.T) {
	tests := map[string]string{
		"":            LongTerm,
		"bogus":       LongTerm,
		"short_term":  ShortTerm,
		"medium_term": MediumTerm,
		"long_term":   LongTerm,
	}
	for in, want := range tests {
		if got := NormalizeTimeRange(in); got != want {
			t.Errorf("NormalizeTimeRange(%q) = %q, want %q", in, got, want)
		}
	}
}
