// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"math"
	"sort"
)

// Rank scores candidates by cosine similarity to the mean of the seeds'
// unit-normalized feature vectors and returns them best first.
//
// Tracks without features, or with an all-zero vector, take no part: seeds
// without features do not shape the embedding and such candidates are left
// out of the result. Equal scores keep candidate order. If no seed has
// features the result is empty.
func Rank(seeds, candidates []Track) []Scored {
	embedding, ok := tasteEmbedding(seeds)
	if !ok {
		return nil
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		v, ok := unit(c.Features)
		if !ok {
			continue
		}
		scored = append(scored, Scored{Track: c, Score: cosine(embedding, v)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// tasteEmbedding is the arithmetic mean of the seeds' unit vectors.
func tasteEmbedding(seeds []Track) (Features, bool) {
	var (
		sum Features
		n   int
	)
	for _, s := range seeds {
		v, ok := unit(s.Features)
		if !ok {
			continue
		}
		for i := range sum {
			sum[i] += v[i]
		}
		n++
	}
	if n == 0 {
		return Features{}, false
	}
	for i := range sum {
		sum[i] /= float64(n)
	}
	return sum, true
}

// unit divides f by its Euclidean norm. A nil or zero vector is missing.
func unit(f *Features) (Features, bool) {
	if f == nil {
		return Features{}, false
	}
	n := vecNorm(*f)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Features{}, false
	}
	var out Features
	for i, x := range f {
		out[i] = x / n
	}
	return out, true
}

func cosine(a, b Features) float64 {
	na, nb := vecNorm(a), vecNorm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (na * nb)
}

func vecNorm(f Features) float64 {
	var sum float64
	for _, x := range f {
		sum += x * x
	}
	return math.Sqrt(sum)
}
