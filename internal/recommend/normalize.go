// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a display name into a comparison key: NFKC, Unicode
// case folding, and collapsed whitespace. "  Sigur  Rós " and "sigur rós"
// produce the same key.
func NormalizeName(s string) string {
	folded := cases.Fold().String(norm.NFKC.String(s))
	return strings.Join(strings.Fields(folded), " ")
}

// candidateKey is the resolver cache key for a candidate.
func candidateKey(c Candidate) string {
	return NormalizeName(c.TrackName) + "\x1f" + NormalizeName(c.ArtistName)
}

// normalizeSeeds trims IDs, drops empties, and removes duplicates while
// keeping first-seen order.
func normalizeSeeds(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Fingerprint is the hex SHA-256 of the sorted, de-duplicated seed IDs.
// Order and repetition in the input do not change it.
func Fingerprint(seedIDs []string) string {
	ids := normalizeSeeds(seedIDs)
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// uniqueNames de-duplicates display names by normalized key, keeping the
// first spelling seen.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := NormalizeName(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
