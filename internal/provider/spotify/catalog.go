// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package spotify

import (
	"context"

	"github.com/tomtom215/resonance/internal/recommend"
)

// Catalog exposes a Client as a recommend.CatalogProvider, mapping Web API
// payloads onto the recommendation domain types.
type Catalog struct {
	client *Client
}

var _ recommend.CatalogProvider = (*Catalog)(nil)

// NewCatalog wraps c.
func NewCatalog(c *Client) *Catalog {
	return &Catalog{client: c}
}

// SearchTrack implements recommend.CatalogProvider.
func (c *Catalog) SearchTrack(ctx context.Context, token, name, artist string) (*recommend.CatalogTrack, error) {
	t, err := c.client.SearchTrack(ctx, token, name, artist)
	if err != nil || t == nil {
		return nil, err
	}
	out := t.toCatalog()
	return &out, nil
}

// GetTracks implements recommend.CatalogProvider.
func (c *Catalog) GetTracks(ctx context.Context, token string, ids []string) ([]recommend.CatalogTrack, error) {
	tracks, err := c.client.GetTracks(ctx, token, ids)
	if err != nil {
		return nil, err
	}
	return toCatalogTracks(tracks), nil
}

// AudioFeatures implements recommend.CatalogProvider.
func (c *Catalog) AudioFeatures(ctx context.Context, token string, ids []string) (map[string]recommend.Features, error) {
	features, err := c.client.AudioFeatures(ctx, token, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]recommend.Features, len(features))
	for id := range features {
		af := features[id]
		out[id] = af.Vector()
	}
	return out, nil
}

// TopTracks implements recommend.CatalogProvider.
func (c *Catalog) TopTracks(ctx context.Context, token, timeRange string) ([]recommend.CatalogTrack, error) {
	tracks, err := c.client.TopTracks(ctx, token, timeRange)
	if err != nil {
		return nil, err
	}
	return toCatalogTracks(tracks), nil
}

// Artists implements recommend.CatalogProvider.
func (c *Catalog) Artists(ctx context.Context, token string, ids []string) ([]recommend.CatalogArtist, error) {
	artists, err := c.client.Artists(ctx, token, ids)
	if err != nil {
		return nil, err
	}
	out := make([]recommend.CatalogArtist, 0, len(artists))
	for _, a := range artists {
		out = append(out, a.toCatalog())
	}
	return out, nil
}

// Vector returns the features in recommend.Features order.
func (af *AudioFeatures) Vector() recommend.Features {
	return recommend.Features{
		af.Danceability,
		af.Energy,
		af.Loudness,
		af.Speechiness,
		af.Acousticness,
		af.Instrumentalness,
		af.Liveness,
		af.Valence,
		af.Tempo,
	}
}

func (a Artist) toCatalog() recommend.CatalogArtist {
	return recommend.CatalogArtist{ID: a.ID, Name: a.Name, Genres: a.Genres}
}

func (t *Track) toCatalog() recommend.CatalogTrack {
	out := recommend.CatalogTrack{ID: t.ID, Name: t.Name, Artists: make([]recommend.CatalogArtist, 0, len(t.Artists))}
	for _, a := range t.Artists {
		out.Artists = append(out.Artists, a.toCatalog())
	}
	return out
}

func toCatalogTracks(tracks []Track) []recommend.CatalogTrack {
	out := make([]recommend.CatalogTrack, 0, len(tracks))
	for i := range tracks {
		out = append(out, tracks[i].toCatalog())
	}
	return out
}
