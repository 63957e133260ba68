package models

import (
	"time"
)

// Action describes what the caller should do with a candidate after a
// duplicate check.
type Action string

const (
	ActionCreated Action = "created" // no duplicate found, store as new
	ActionMerged  Action = "merged"  // duplicate found, merge fields into it
	ActionSkipped Action = "skipped" // exact duplicate, discard the candidate
)

// MatchReason identifies which stage of the cascade produced a match.
type MatchReason string

const (
	ReasonExactURL           MatchReason = "exact_url"
	ReasonTitleSimilarity    MatchReason = "title_similarity"
	ReasonContentFingerprint MatchReason = "content_fingerprint"
)

// DeduplicationDecision is the output of the duplicate resolution pipeline.
type DeduplicationDecision struct {
	IsDuplicate       bool        `json:"is_duplicate"`
	MatchedResourceID string      `json:"matched_resource_id,omitempty"`
	Similarity        float64     `json:"similarity,omitempty"` // 0..1
	Action            Action      `json:"action"`
	Reason            MatchReason `json:"reason,omitempty"`
}

// DeduplicationRecord is the immutable audit row written after a decision
// has been acted on. The hashes allow forensic report generation without
// retaining the original payload.
type DeduplicationRecord struct {
	ID                 string      `json:"id"`
	TaskID             string      `json:"task_id,omitempty"`
	ResourceID         string      `json:"resource_id,omitempty"`
	DuplicateOfID      string      `json:"duplicate_of_id,omitempty"`
	Method             MatchReason `json:"method,omitempty"`
	Similarity         float64     `json:"similarity"`
	Decision           Action      `json:"decision"`
	URLHash            string      `json:"url_hash"`
	TitleHash          string      `json:"title_hash,omitempty"`
	ContentFingerprint string      `json:"content_fingerprint,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}

// RecordFilter narrows audit record counts.
type RecordFilter struct {
	Since *time.Time
}

// DeduplicationStats summarizes audit record volume.
type DeduplicationStats struct {
	TotalRecords int `json:"total_records"`
	Last24h      int `json:"last_24h"`
}

// QualityAssessment is the derived quality score for a candidate resource.
// Recomputed on every evaluation; freshness depends on the current time.
type QualityAssessment struct {
	SourceCredibility   int `json:"source_credibility"`   // 0-100
	ContentCompleteness int `json:"content_completeness"` // 0-100
	FreshnessScore      int `json:"freshness_score"`      // 0-100
	CitationCount       int `json:"citation_count"`
	OverallScore        int `json:"overall_score"` // 0-100
}
