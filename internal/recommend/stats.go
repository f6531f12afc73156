// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"context"
	"math"
	"sort"
	"strings"
)

// GenreShare is one genre's share of the listener's top tracks.
type GenreShare struct {
	Genre   string  `json:"genre"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// TasteStats summarizes the genres behind a listener's top tracks.
type TasteStats struct {
	TimeRange string       `json:"time_range"`
	Genres    []GenreShare `json:"genres"`
	TopGenre  string       `json:"top_genre,omitempty"`
	TopTracks []string     `json:"top_tracks"`
}

// topTrackNames bounds the track names echoed back in TasteStats.
const topTrackNames = 10

// StatsService computes taste statistics from the catalog.
type StatsService struct {
	catalog CatalogProvider
}

// NewStatsService creates a StatsService.
func NewStatsService(catalog CatalogProvider) *StatsService {
	return &StatsService{catalog: catalog}
}

// GenreBreakdown counts the genres of every artist on the listener's top
// tracks and returns their shares, largest first. Ties are ordered by name.
func (s *StatsService) GenreBreakdown(ctx context.Context, token, timeRange string) (*TasteStats, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingCredential
	}

	timeRange = NormalizeTimeRange(timeRange)
	tracks, err := s.catalog.TopTracks(ctx, token, timeRange)
	if err != nil {
		return nil, &ExternalError{Op: "fetch top tracks", Err: err}
	}

	stats := &TasteStats{TimeRange: timeRange, Genres: []GenreShare{}, TopTracks: []string{}}

	var artistIDs []string
	seen := make(map[string]struct{})
	for i := range tracks {
		if len(stats.TopTracks) < topTrackNames {
			stats.TopTracks = append(stats.TopTracks, tracks[i].Name)
		}
		for _, a := range tracks[i].Artists {
			if a.ID == "" {
				continue
			}
			if _, dup := seen[a.ID]; !dup {
				seen[a.ID] = struct{}{}
				artistIDs = append(artistIDs, a.ID)
			}
		}
	}
	if len(artistIDs) == 0 {
		return stats, nil
	}

	artists, err := s.catalog.Artists(ctx, token, artistIDs)
	if err != nil {
		return nil, &ExternalError{Op: "fetch artists", Err: err}
	}
	genresByArtist := make(map[string][]string, len(artists))
	for _, a := range artists {
		genresByArtist[a.ID] = a.Genres
	}

	counts := make(map[string]int)
	total := 0
	for i := range tracks {
		for _, a := range tracks[i].Artists {
			for _, g := range genresByArtist[a.ID] {
				counts[g]++
				total++
			}
		}
	}
	if total == 0 {
		return stats, nil
	}

	for g, n := range counts {
		stats.Genres = append(stats.Genres, GenreShare{
			Genre:   g,
			Count:   n,
			Percent: math.Round(float64(n)/float64(total)*10000) / 100,
		})
	}
	sort.Slice(stats.Genres, func(i, j int) bool {
		if stats.Genres[i].Count != stats.Genres[j].Count {
			return stats.Genres[i].Count > stats.Genres[j].Count
		}
		return stats.Genres[i].Genre < stats.Genres[j].Genre
	})
	stats.TopGenre = stats.Genres[0].Genre

	return stats, nil
}

// NormalizeTimeRange maps unknown or empty ranges to long_term.
func NormalizeTimeRange(timeRange string) string {
	switch timeRange {
	case ShortTerm, MediumTerm, LongTerm:
		return timeRange
	default:
		return LongTerm
	}
}
