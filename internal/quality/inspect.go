package quality

import (
	"github.com/atlasfeed/atlasfeed/internal/models"
)

// Severity ranks how badly an issue degrades a resource.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Issue flags a structural defect found during inspection.
type Issue struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Inspection is the result of a structural quality check: a field-presence
// completeness score plus the list of detected issues.
type Inspection struct {
	CompletenessScore int     `json:"completeness_score"` // 0-100
	Issues            []Issue `json:"issues"`
}

// Inspect checks a stored resource for structural defects. Unlike Assess,
// this looks only at field presence, independent of source or age.
func Inspect(resource models.Resource) Inspection {
	hasTitle := resource.Title != ""
	hasContent := resource.Content != "" || resource.Abstract != ""
	hasAuthors := len(resource.Authors) > 0
	hasPublishDate := resource.PublishedAt != nil

	score := 0
	if hasTitle {
		score += 25
	}
	if hasContent {
		score += 35
	}
	if hasAuthors {
		score += 25
	}
	if hasPublishDate {
		score += 15
	}

	var issues []Issue
	if !hasTitle {
		issues = append(issues, Issue{
			Type:     "MISSING_TITLE",
			Severity: SeverityHigh,
			Message:  "resource is missing a title",
		})
	}
	if !hasContent {
		issues = append(issues, Issue{
			Type:     "MISSING_CONTENT",
			Severity: SeverityHigh,
			Message:  "resource has no content or abstract",
		})
	}
	if !hasAuthors {
		issues = append(issues, Issue{
			Type:     "MISSING_AUTHOR",
			Severity: SeverityMedium,
			Message:  "no author information available",
		})
	}
	if hasTitle && len(resource.Title) < 10 {
		issues = append(issues, Issue{
			Type:     "SHORT_TITLE",
			Severity: SeverityLow,
			Message:  "title is too short",
		})
	}

	return Inspection{
		CompletenessScore: score,
		Issues:            issues,
	}
}
