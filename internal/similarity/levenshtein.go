package similarity

import (
	"regexp"
	"strings"
)

// DefaultBatchTitleThreshold is the recall-oriented title similarity cutoff
// used for in-batch duplicate detection. It is looser than the 0.85 live
// threshold because a crawl batch tends to restate the same headline.
const DefaultBatchTitleThreshold = 0.75

var multiWhitespaceRe = regexp.MustCompile(`\s+`)

// Levenshtein returns the edit distance between two strings, computed over
// runes.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = min3(prev[j-1], prev[j], curr[j-1]) + 1
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// TitleSimilarity scores two titles in [0,1] by normalized edit distance,
// case-insensitive. Identical titles score 1.
func TitleSimilarity(a, b string) float64 {
	sa := strings.ToLower(strings.TrimSpace(a))
	sb := strings.ToLower(strings.TrimSpace(b))

	if sa == sb {
		return 1.0
	}

	maxLen := len([]rune(sa))
	if n := len([]rune(sb)); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	return 1 - float64(Levenshtein(sa, sb))/float64(maxLen)
}

// SimilarTitles reports whether two titles meet the similarity threshold.
// A threshold ≤0 falls back to DefaultBatchTitleThreshold.
func SimilarTitles(a, b string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultBatchTitleThreshold
	}
	return TitleSimilarity(a, b) >= threshold
}

// CleanText collapses runs of whitespace (including newlines) into single
// spaces and trims the result.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(multiWhitespaceRe.ReplaceAllString(text, " "))
}
