package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/atlasfeed/atlasfeed/internal/fingerprint"
	"github.com/atlasfeed/atlasfeed/internal/models"
	"github.com/atlasfeed/atlasfeed/internal/urlnorm"
)

// Recorder writes the immutable audit trail of deduplication decisions.
// Records carry hashes of the involved url/title/content rather than the
// payloads themselves, which is what forensic report generation consumes
// later.
type Recorder struct {
	audit AuditStore
}

// NewRecorder creates a recorder backed by the given audit store.
func NewRecorder(audit AuditStore) *Recorder {
	return &Recorder{audit: audit}
}

// RecordParams describes one acted-on decision.
type RecordParams struct {
	TaskID        string
	ResourceID    string
	DuplicateOfID string
	Decision      models.DeduplicationDecision
	URL           string
	Title         string
	Content       string
}

// Record persists one audit row for a decision. The row is created once
// and never mutated afterward.
func (r *Recorder) Record(ctx context.Context, params RecordParams) error {
	record := models.DeduplicationRecord{
		ID:            uuid.NewString(),
		TaskID:        params.TaskID,
		ResourceID:    params.ResourceID,
		DuplicateOfID: params.DuplicateOfID,
		Method:        params.Decision.Reason,
		Similarity:    params.Decision.Similarity,
		Decision:      params.Decision.Action,
		URLHash:       urlnorm.Hash(params.URL),
		CreatedAt:     time.Now(),
	}

	if params.Title != "" {
		record.TitleHash = fingerprint.TitleFingerprint(params.Title)
	}
	if params.Content != "" {
		record.ContentFingerprint = fingerprint.ContentFingerprint(params.Content)
	}

	if err := r.audit.CreateRecord(ctx, record); err != nil {
		return fmt.Errorf("create dedup record: %w", err)
	}
	return nil
}

// Stats returns audit record volume, total and over the trailing 24 hours.
func (r *Recorder) Stats(ctx context.Context) (models.DeduplicationStats, error) {
	total, err := r.audit.Count(ctx, models.RecordFilter{})
	if err != nil {
		return models.DeduplicationStats{}, fmt.Errorf("count records: %w", err)
	}

	since := time.Now().Add(-24 * time.Hour)
	recent, err := r.audit.Count(ctx, models.RecordFilter{Since: &since})
	if err != nil {
		return models.DeduplicationStats{}, fmt.Errorf("count recent records: %w", err)
	}

	return models.DeduplicationStats{
		TotalRecords: total,
		Last24h:      recent,
	}, nil
}
