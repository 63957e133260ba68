// Package fingerprint computes the content digests used for exact and
// near-duplicate detection. Two flavors exist and are deliberately kept
// separate: the 64-bit SimHash over raw content (near-duplicate clustering)
// and the short order-insensitive content fingerprint (paraphrase-tolerant
// exact lookup).
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// SimHashWidth is the bit width of all SimHash fingerprints.
	SimHashWidth = 64

	// minContentRunes gates the short content fingerprint; anything
	// shorter is too little signal to fingerprint safely.
	minContentRunes = 50

	// minTitleRunes gates the title fingerprint.
	minTitleRunes = 5

	// maxFingerprintTokens bounds the canonical token string so very long
	// documents with a common prefix vocabulary still collide.
	maxFingerprintTokens = 100
)

var (
	simhashTokenRe = regexp.MustCompile(`[^a-z0-9\s]`)

	// Word characters plus CJK unified ideographs survive; everything
	// else is punctuation for fingerprinting purposes.
	punctRe = regexp.MustCompile(`[^\w\s\x{4e00}-\x{9fa5}]`)
)

// ContentHash returns the SHA-256 digest of the exact string, hex-encoded.
// Equal digests mean byte-identical input; any formatting difference yields
// a completely different hash.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// SimHash computes a 64-bit locality-sensitive fingerprint of the content.
// Similar inputs produce fingerprints with small Hamming distance. Empty
// input (after tokenization) returns 0.
//
// The bit-accumulation convention follows the original service: a counter
// is incremented when a token hash bit is 1 and left alone when it is 0,
// with the final bit set when the counter reaches half the token count.
// This differs from textbook SimHash (which decrements on 0 bits) but all
// Hamming thresholds in this engine are calibrated against it, so every
// comparison stays internally consistent.
func SimHash(content string) uint64 {
	tokens := simhashTokens(content)
	if len(tokens) == 0 {
		return 0
	}

	var counters [SimHashWidth]int
	for _, token := range tokens {
		sum := sha256.Sum256([]byte(token))
		word := binary.BigEndian.Uint64(sum[:8])
		for i := 0; i < SimHashWidth; i++ {
			// Bit i counted MSB-first across the digest.
			if word&(1<<(SimHashWidth-1-i)) != 0 {
				counters[i]++
			}
		}
	}

	threshold := float64(len(tokens)) / 2
	var result uint64
	for i := 0; i < SimHashWidth; i++ {
		if float64(counters[i]) >= threshold {
			result |= 1 << (SimHashWidth - 1 - i)
		}
	}
	return result
}

func simhashTokens(content string) []string {
	cleaned := simhashTokenRe.ReplaceAllString(strings.ToLower(content), "")
	return strings.Fields(cleaned)
}

// ContentFingerprint computes the short, order-insensitive fingerprint of
// a document body: 32 hex characters, or "" for content under 50 runes.
//
// Tokens are lowercased, stripped of punctuation (CJK text survives),
// filtered to length >2, sorted, capped at the first 100, and joined before
// hashing. Reordered or re-punctuated restatements of the same text
// therefore fingerprint identically.
func ContentFingerprint(content string) string {
	if utf8.RuneCountInString(content) < minContentRunes {
		return ""
	}

	cleaned := punctRe.ReplaceAllString(strings.ToLower(content), " ")
	words := strings.Fields(cleaned)

	tokens := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) > 2 {
			tokens = append(tokens, w)
		}
	}
	sort.Strings(tokens)
	if len(tokens) > maxFingerprintTokens {
		tokens = tokens[:maxFingerprintTokens]
	}

	sum := sha256.Sum256([]byte(strings.Join(tokens, " ")))
	return hex.EncodeToString(sum[:])[:32]
}

// TitleFingerprint computes the short title digest: 16 hex characters, or
// "" for titles under 5 runes. Word order is preserved; only punctuation
// and case differences collapse.
func TitleFingerprint(title string) string {
	if utf8.RuneCountInString(title) < minTitleRunes {
		return ""
	}

	normalized := strings.TrimSpace(punctRe.ReplaceAllString(strings.ToLower(title), ""))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}
