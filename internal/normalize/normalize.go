// Package normalize canonicalizes item names for comparison and scores
// how alike two names are.
//
// Normalized names are used only for matching, never for storage or
// display: "Leite (Integral)" and "leite integral" both canonicalize to
// "leiteintegral" and compare equal.
package normalize

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, removes combining marks, and recomposes,
// so "maçã" becomes "maca".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name canonicalizes a display name into a comparison key: lowercase,
// diacritics stripped, every rune outside [a-z0-9] removed. Idempotent.
func Name(s string) string {
	s = strings.ToLower(s)

	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity computes a normalized edit-distance similarity in [0,1]
// between two names. Both inputs are canonicalized first. Identical names
// score 1, completely dissimilar names score 0, and partial credit is
// proportional to shared characters and order: tolerant of pluralization,
// extra qualifying words and minor typos, but not of different words.
func Similarity(a, b string) float64 {
	na := Name(a)
	nb := Name(b)

	if na == "" && nb == "" {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}

	d := levenshtein.ComputeDistance(na, nb)
	return float64(longest-d) / float64(longest)
}
