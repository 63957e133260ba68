// Package quality scores candidate resources on source credibility,
// content completeness, and freshness. Scores are derived on every call
// and never cached: the freshness input changes continuously.
package quality

import (
	"math"
	"strings"
	"time"

	"github.com/atlasfeed/atlasfeed/internal/models"
)

// Assessor computes quality assessments for candidate resources.
type Assessor struct {
	credibility map[string]int
	weights     Weights
}

// Weights controls how the component scores combine into the overall score.
type Weights struct {
	SourceCredibility   float64
	ContentCompleteness float64
	Freshness           float64
	Citations           float64
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		SourceCredibility:   0.3,
		ContentCompleteness: 0.3,
		Freshness:           0.2,
		Citations:           0.2,
	}
}

// DefaultCredibilityTable returns the per-source credibility scores used
// when none are configured.
func DefaultCredibilityTable() map[string]int {
	return map[string]int{
		"arxiv":            95,
		"semantic_scholar": 90,
		"github":           85,
		"ieee":             90,
		"acm":              90,
		"hackernews":       70,
		"techcrunch":       75,
		"medium":           60,
		"devto":            60,
		"blog":             50,
		"rss":              55,
	}
}

// unknownSourceCredibility is assigned to sources absent from the table.
const unknownSourceCredibility = 30

// NewAssessor creates an assessor. A nil table or zero weights fall back to
// the defaults.
func NewAssessor(credibility map[string]int, weights Weights) *Assessor {
	if credibility == nil {
		credibility = DefaultCredibilityTable()
	}
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Assessor{
		credibility: credibility,
		weights:     weights,
	}
}

// Assess scores a resource. Pure function of the resource and the current
// time; performs no I/O.
func (a *Assessor) Assess(resource models.Resource) models.QualityAssessment {
	credibility, ok := a.credibility[strings.ToLower(resource.Source)]
	if !ok {
		credibility = unknownSourceCredibility
	}

	completeness := contentCompleteness(resource)
	freshness := freshnessScore(resource.PublishedAt, time.Now())

	citations := resource.CitationCount
	if citations < 0 {
		citations = 0
	}
	citationScore := math.Min(float64(citations)/10, 100)

	overall := math.Round(
		float64(credibility)*a.weights.SourceCredibility +
			float64(completeness)*a.weights.ContentCompleteness +
			float64(freshness)*a.weights.Freshness +
			citationScore*a.weights.Citations,
	)

	return models.QualityAssessment{
		SourceCredibility:   credibility,
		ContentCompleteness: completeness,
		FreshnessScore:      freshness,
		CitationCount:       citations,
		OverallScore:        int(overall),
	}
}

// contentCompleteness rewards substantive abstracts, bodies, and author
// attribution, capped at 100.
func contentCompleteness(resource models.Resource) int {
	score := 0

	if len(resource.Abstract) > 50 {
		score += 25
	}
	if len(resource.Abstract) > 200 {
		score += 10
	}
	if len(resource.Content) > 500 {
		score += 25
	}
	if len(resource.Content) > 2000 {
		score += 15
	}
	if len(resource.Authors) > 0 {
		score += 15
	}

	if score > 100 {
		score = 100
	}
	return score
}

// freshnessScore buckets the age of the resource. Unknown publish dates
// score a neutral 50.
func freshnessScore(publishedAt *time.Time, now time.Time) int {
	if publishedAt == nil {
		return 50
	}

	days := now.Sub(*publishedAt).Hours() / 24
	switch {
	case days <= 7:
		return 100
	case days <= 30:
		return 90
	case days <= 90:
		return 75
	case days <= 365:
		return 50
	default:
		return 30
	}
}
