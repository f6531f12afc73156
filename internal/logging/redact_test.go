// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package logging

import (
	"strings"
	"testing"
)

func TestSanitizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"short", "***"},
		{"exactlytwelv", "***"},
		{"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "eyJh...VCJ9"},
		{"1234567890123456", "1234...3456"},
	}

	for _, tt := range tests {
		result := SanitizeToken(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestSanitizeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key      string
		value    string
		expected string
	}{
		{"artist", "Radiohead", "Radiohead"},
		{"token", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "eyJh...VCJ9"},
		{"password", "secret123", "***"},
		{"Access_Token", "token-value-12345", "toke...2345"},
		{"api_key", "key-12345678901234", "key-...1234"},
	}

	for _, tt := range tests {
		result := SanitizeValue(tt.key, tt.value)
		if result != tt.expected {
			t.Errorf("SanitizeValue(%q, %q) = %q, want %q", tt.key, tt.value, result, tt.expected)
		}
	}
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "api key masked",
			input:    "https://ws.audioscrobbler.com/2.0/?api_key=0123456789abcdef&artist=Radiohead&method=artist.getsimilar",
			contains: []string{"api_key=0123...cdef", "artist=Radiohead", "method=artist.getsimilar"},
			absent:   []string{"0123456789abcdef"},
		},
		{
			name:     "no query untouched",
			input:    "https://api.spotify.com/v1/tracks",
			contains: []string{"https://api.spotify.com/v1/tracks"},
		},
		{
			name:     "harmless query untouched",
			input:    "https://api.spotify.com/v1/tracks?ids=a,b",
			contains: []string{"ids=a,b"},
		},
	}

	for _, tt := range tests {
		got := RedactURL(tt.input)
		for _, want := range tt.contains {
			if !strings.Contains(got, want) {
				t.Errorf("%s: RedactURL = %q, missing %q", tt.name, got, want)
			}
		}
		for _, bad := range tt.absent {
			if strings.Contains(got, bad) {
				t.Errorf("%s: RedactURL = %q, leaks %q", tt.name, got, bad)
			}
		}
	}

	if got := RedactURL("http://[::1"); got != "***" {
		t.Errorf("RedactURL(unparseable) = %q, want ***", got)
	}
}
