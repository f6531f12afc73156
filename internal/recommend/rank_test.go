// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"math"
	"testing"
)

func ids(scored []Scored) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Track.ID
	}
	return out
}

func TestRank_OrdersBySimilarity(t *testing.T) {
	seeds := []Track{{ID: "s1", Features: vec(1, 0)}}
	candidates := []Track{
		{ID: "orthogonal", Features: vec(0, 1)},
		{ID: "aligned", Features: vec(1, 0)},
		{ID: "between", Features: vec(1, 1)},
	}

	got := Rank(seeds, candidates)
	want := []string{"aligned", "between", "orthogonal"}
	if len(got) != len(want) {
		t.Fatalf("Rank = %v, want %v", ids(got), want)
	}
	for i := range want {
		if got[i].Track.ID != want[i] {
			t.Errorf("Rank[%d] = %s, want %s", i, got[i].Track.ID, want[i])
		}
	}
	if math.Abs(got[0].Score-1) > 1e-9 {
		t.Errorf("aligned score = %v, want 1", got[0].Score)
	}
	if math.Abs(got[1].Score-1/math.Sqrt2) > 1e-9 {
		t.Errorf("between score = %v, want 1/sqrt(2)", got[1].Score)
	}
	if math.Abs(got[2].Score) > 1e-9 {
		t.Errorf("orthogonal score = %v, want 0", got[2].Score)
	}
}

func TestRank_TiesAreStable(t *testing.T) {
	seeds := []Track{{ID: "s", Features: vec(1, 0.5, 0.2)}}
	candidates := []Track{
		{ID: "first", Features: vec(0.3, 0.9, 0.1)},
		{ID: "second", Features: vec(0.3, 0.9, 0.1)},
		{ID: "third", Features: vec(0.3, 0.9, 0.1)},
	}

	got := ids(Rank(seeds, candidates))
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Rank = %v, want stable order %v", got, want)
			break
		}
	}
}

func TestRank_ExcludesFeaturelessTracks(t *testing.T) {
	seeds := []Track{
		{ID: "s1", Features: vec(1, 0)},
		{ID: "s2"}, // no features: does not shift the embedding
		{ID: "s3", Features: vec(0, 0)},
	}
	candidates := []Track{
		{ID: "none"},
		{ID: "zero", Features: vec(0, 0, 0)},
		{ID: "ok", Features: vec(1, 0)},
	}

	got := Rank(seeds, candidates)
	if len(got) != 1 || got[0].Track.ID != "ok" {
		t.Fatalf("Rank = %v, want only [ok]", ids(got))
	}
	if math.Abs(got[0].Score-1) > 1e-9 {
		t.Errorf("score = %v, want 1 (featureless seeds ignored)", got[0].Score)
	}
}

func TestRank_NoSeedFeatures(t *testing.T) {
	got := Rank([]Track{{ID: "s"}}, []Track{{ID: "c", Features: vec(1)}})
	if len(got) != 0 {
		t.Errorf("Rank = %v, want empty", ids(got))
	}
}

func TestRank_EmbeddingIsMeanOfUnitVectors(t *testing.T) {
	// Magnitudes differ but unit normalization makes both seeds count equally,
	// so the embedding points along (1,1).
	seeds := []Track{
		{ID: "a", Features: vec(100, 0)},
		{ID: "b", Features: vec(0, 1)},
	}
	candidates := []Track{
		{ID: "x-heavy", Features: vec(1, 0)},
		{ID: "diagonal", Features: vec(3, 3)},
	}

	got := Rank(seeds, candidates)
	if got[0].Track.ID != "diagonal" {
		t.Errorf("Rank = %v, want diagonal first", ids(got))
	}
}

func TestUnitAndCosine(t *testing.T) {
	u, ok := unit(vec(3, 4))
	if !ok || math.Abs(u[0]-0.6) > 1e-9 || math.Abs(u[1]-0.8) > 1e-9 {
		t.Errorf("unit(3,4) = %v, %v", u, ok)
	}
	if _, ok := unit(nil); ok {
		t.Error("unit(nil) should be missing")
	}
	if c := cosine(Features{}, Features{1}); c != 0 {
		t.Errorf("cosine with zero vector = %v, want 0", c)
	}
}

func TestVecNorm(t *testing.T) {
	tests := []struct {
		name string
		in   Features
		want float64
	}{
		{"zero", Features{}, 0},
		{"pythagorean", Features{3, 4}, 5},
		{"all ones", Features{1, 1, 1, 1, 1, 1, 1, 1, 1}, 3},
		{"negative", Features{0, -6, 0, 0, 0, 0, 0, 0, 8}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vecNorm(tt.in); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("vecNorm(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	// The package's Unicode normalization must still resolve alongside it.
	if NormalizeName("Cafe\u0301") != NormalizeName("Caf\u00e9") {
		t.Error("decomposed and composed names should normalize alike")
	}
}
