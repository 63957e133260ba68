// Package similarity provides the distance and similarity measures the
// dedup engine compares fingerprints and text with: Hamming distance over
// SimHash fingerprints, Jaccard similarity over token sets, and
// Levenshtein-based title similarity for batch pre-filtering.
package similarity

import (
	"fmt"
	"math/bits"
	"regexp"
	"strconv"
	"strings"

	"github.com/atlasfeed/atlasfeed/internal/fingerprint"
)

// DefaultSimilarThreshold is the Hamming cutoff below which two contents
// are considered the same resource (roughly >95% similar).
const DefaultSimilarThreshold = 3

var hexRe = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// Hamming counts differing bit positions between two 64-bit fingerprints.
func Hamming(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// ParseFingerprint decodes a stored SimHash string. Fingerprints short
// enough to be a 64-bit hex value (at most 16 hex digits) are read as hex;
// anything else is read as decimal. This mirrors how fingerprints were
// historically persisted in both encodings.
func ParseFingerprint(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty fingerprint")
	}
	if len(s) <= 16 && hexRe.MatchString(s) {
		v, err := strconv.ParseUint(s, 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex fingerprint %q: %w", s, err)
		}
		return v, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fingerprint %q: %w", s, err)
	}
	return v, nil
}

// HammingStrings computes the Hamming distance between two stored SimHash
// strings, padding both to 64 bits.
func HammingStrings(a, b string) (int, error) {
	fa, err := ParseFingerprint(a)
	if err != nil {
		return 0, err
	}
	fb, err := ParseFingerprint(b)
	if err != nil {
		return 0, err
	}
	return Hamming(fa, fb), nil
}

// Jaccard computes the Jaccard similarity of the whitespace token sets of
// two strings, case-insensitive, duplicates collapsed. Either input being
// empty yields 0.
func Jaccard(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(s)) {
		set[token] = true
	}
	return set
}

// SimilarContent reports whether two contents SimHash within threshold bits
// of each other. A threshold ≤0 falls back to DefaultSimilarThreshold.
func SimilarContent(a, b string, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultSimilarThreshold
	}
	return Hamming(fingerprint.SimHash(a), fingerprint.SimHash(b)) <= threshold
}
