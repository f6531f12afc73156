// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package logging

import (
	"net/url"
	"strings"
)

// sensitiveKeys are query parameter and field names whose values must never
// reach a log line in full.
var sensitiveKeys = map[string]bool{
	"access_token":  true,
	"refresh_token": true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"authorization": true,
	"bearer":        true,
	"secret":        true,
	"password":      true,
}

// IsSensitiveKey reports whether values under key are credentials.
func IsSensitiveKey(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "BQDx3f9aKq0...Zt1w" -> "BQDx...Zt1w"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	if IsSensitiveKey(key) {
		return SanitizeToken(value)
	}
	return value
}

// RedactURL masks credential query parameters in rawURL. Transport errors
// from net/http embed the full request URL, which for Last.fm carries the
// API key. Unparseable input is returned fully masked.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "***"
	}
	if u.RawQuery == "" {
		return rawURL
	}

	q := u.Query()
	changed := false
	for key, values := range q {
		if !IsSensitiveKey(key) {
			continue
		}
		for i := range values {
			values[i] = SanitizeToken(values[i])
		}
		changed = true
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}
