package dedup

import (
	"log/slog"
	"sort"

	"github.com/atlasfeed/atlasfeed/internal/similarity"
	"github.com/atlasfeed/atlasfeed/internal/urlnorm"
)

// DefaultNearDuplicateThreshold is the Hamming cutoff for a near-duplicate
// edge in a report (roughly 85% similarity).
const DefaultNearDuplicateThreshold = 7

const (
	labelVeryHigh = "Very High (>95%)"
	labelHigh     = "High (85-95%)"
)

// ReportCandidate is one row of a report run: whatever fingerprints were
// persisted for the resource. Absent fields are skipped by the relevant
// passes.
type ReportCandidate struct {
	ID          string `json:"id"`
	URL         string `json:"url,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`
	SimHash     string `json:"sim_hash,omitempty"`
	Source      string `json:"source"`
}

// SimilarMatch is a near-duplicate edge between two candidates.
type SimilarMatch struct {
	CandidateA      string `json:"candidate_a"`
	CandidateB      string `json:"candidate_b"`
	HammingDistance int    `json:"hamming_distance"`
	Similarity      string `json:"similarity"`
}

// Report is the audit output over a candidate set. ExactMatches keeps
// singleton buckets; callers filter them as needed.
type Report struct {
	TotalCandidates   int                 `json:"total_candidates"`
	ExactMatches      map[string][]string `json:"exact_matches"`
	SimilarMatches    []SimilarMatch      `json:"similar_matches"`
	URLNormalizations map[string]string   `json:"url_normalizations"`
}

// ReportGenerator clusters a candidate set into exact-match and
// near-duplicate groups for offline auditing. It is a one-shot computation
// over an in-memory list, safe to run concurrently with anything else.
type ReportGenerator struct {
	threshold int
	logger    *slog.Logger
}

// NewReportGenerator creates a generator. A threshold ≤0 falls back to
// DefaultNearDuplicateThreshold.
func NewReportGenerator(threshold int, logger *slog.Logger) *ReportGenerator {
	if threshold <= 0 {
		threshold = DefaultNearDuplicateThreshold
	}
	return &ReportGenerator{
		threshold: threshold,
		logger:    logger,
	}
}

// Generate builds the report. Exact matches bucket by content hash in one
// pass; near-duplicate pairs come from a banded SimHash scan. An empty
// candidate list produces empty structures, not an error.
func (g *ReportGenerator) Generate(candidates []ReportCandidate) Report {
	report := Report{
		TotalCandidates:   len(candidates),
		ExactMatches:      make(map[string][]string),
		SimilarMatches:    []SimilarMatch{},
		URLNormalizations: make(map[string]string),
	}

	for _, candidate := range candidates {
		if candidate.ContentHash != "" {
			report.ExactMatches[candidate.ContentHash] = append(
				report.ExactMatches[candidate.ContentHash], candidate.ID)
		}
		if candidate.URL != "" {
			report.URLNormalizations[candidate.URL] = urlnorm.Normalize(candidate.URL)
		}
	}

	report.SimilarMatches = g.similarPairs(candidates)

	return report
}

// similarPairs finds all candidate pairs within the Hamming threshold.
//
// Fingerprints are split into 8 bands of 8 bits; two fingerprints within
// distance 7 must agree on at least one band, so only bucket-mates are
// compared. That keeps expected work near-linear while producing exactly
// the pairs a full quadratic scan would. Thresholds of 8 or more void the
// banding guarantee, so those fall back to the exhaustive scan.
func (g *ReportGenerator) similarPairs(candidates []ReportCandidate) []SimilarMatch {
	type entry struct {
		index int
		hash  uint64
	}

	entries := make([]entry, 0, len(candidates))
	for i, candidate := range candidates {
		if candidate.SimHash == "" {
			continue
		}
		hash, err := similarity.ParseFingerprint(candidate.SimHash)
		if err != nil {
			g.logger.Warn("skipping candidate with bad simhash",
				"candidate_id", candidate.ID,
				"error", err,
			)
			continue
		}
		entries = append(entries, entry{index: i, hash: hash})
	}

	type pairKey struct{ a, b int }
	pairs := make(map[pairKey]int)

	compare := func(a, b entry) {
		distance := similarity.Hamming(a.hash, b.hash)
		if distance <= g.threshold {
			pairs[pairKey{a.index, b.index}] = distance
		}
	}

	if g.threshold >= 8 {
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				compare(entries[i], entries[j])
			}
		}
	} else {
		const bands = 8
		buckets := make(map[uint64][]int) // band|bandBits -> entry indexes
		for e, ent := range entries {
			for band := uint64(0); band < bands; band++ {
				bits := (ent.hash >> (band * 8)) & 0xff
				key := band<<8 | bits
				buckets[key] = append(buckets[key], e)
			}
		}
		for _, bucket := range buckets {
			for x := 0; x < len(bucket); x++ {
				for y := x + 1; y < len(bucket); y++ {
					compare(entries[bucket[x]], entries[bucket[y]])
				}
			}
		}
	}

	keys := make([]pairKey, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})

	matches := make([]SimilarMatch, 0, len(keys))
	for _, key := range keys {
		distance := pairs[key]
		label := labelHigh
		if distance <= 3 {
			label = labelVeryHigh
		}
		matches = append(matches, SimilarMatch{
			CandidateA:      candidates[key.a].ID,
			CandidateB:      candidates[key.b].ID,
			HammingDistance: distance,
			Similarity:      label,
		})
	}

	return matches
}
