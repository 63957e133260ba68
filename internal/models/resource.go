package models

import (
	"time"
)

// Resource represents an ingested document (paper, blog post, video, news
// item) as stored by the resource store. Only the fields the dedup engine
// reads or writes are modeled here.
type Resource struct {
	ID                 string     `json:"id"`
	Source             string     `json:"source"` // e.g. arxiv, github, hackernews
	URL                string     `json:"url"`
	CanonicalURL       string     `json:"canonical_url,omitempty"`
	Title              string     `json:"title,omitempty"`
	Abstract           string     `json:"abstract,omitempty"`
	Content            string     `json:"content,omitempty"`
	AISummary          string     `json:"ai_summary,omitempty"`
	Authors            []string   `json:"authors,omitempty"`
	CitationCount      int        `json:"citation_count,omitempty"`
	ContentFingerprint string     `json:"content_fingerprint,omitempty"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ResourceFields carries the candidate values considered during a merge.
// Empty strings mean "not supplied".
type ResourceFields struct {
	Title     string `json:"title,omitempty"`
	Abstract  string `json:"abstract,omitempty"`
	Content   string `json:"content,omitempty"`
	AISummary string `json:"ai_summary,omitempty"`
}
