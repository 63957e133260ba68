package dedup

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/atlasfeed/atlasfeed/internal/models"
)

func TestRecorderRecord(t *testing.T) {
	audit := NewMemoryAuditStore()
	recorder := NewRecorder(audit)

	err := recorder.Record(context.Background(), RecordParams{
		TaskID:        "task-1",
		ResourceID:    "res-1",
		DuplicateOfID: "res-0",
		Decision: models.DeduplicationDecision{
			IsDuplicate:       true,
			MatchedResourceID: "res-0",
			Similarity:        0.95,
			Action:            models.ActionMerged,
			Reason:            models.ReasonContentFingerprint,
		},
		URL:     "https://example.com/article",
		Title:   "An Article Title",
		Content: strings.Repeat("enough content to clear the fingerprint length gate ", 2),
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	records := audit.Records()
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	record := records[0]
	if record.ID == "" {
		t.Error("record ID should be assigned")
	}
	if record.Method != models.ReasonContentFingerprint {
		t.Errorf("Method = %q, want content_fingerprint", record.Method)
	}
	if record.Decision != models.ActionMerged {
		t.Errorf("Decision = %q, want merged", record.Decision)
	}
	if len(record.URLHash) != 16 {
		t.Errorf("URLHash length = %d, want 16", len(record.URLHash))
	}
	if len(record.TitleHash) != 16 {
		t.Errorf("TitleHash length = %d, want 16", len(record.TitleHash))
	}
	if len(record.ContentFingerprint) != 32 {
		t.Errorf("ContentFingerprint length = %d, want 32", len(record.ContentFingerprint))
	}
	if record.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestRecorderOmitsAbsentHashes(t *testing.T) {
	audit := NewMemoryAuditStore()
	recorder := NewRecorder(audit)

	err := recorder.Record(context.Background(), RecordParams{
		ResourceID: "res-1",
		Decision:   models.DeduplicationDecision{Action: models.ActionCreated},
		URL:        "https://example.com/bare",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	record := audit.Records()[0]
	if record.TitleHash != "" {
		t.Errorf("TitleHash = %q, want empty without a title", record.TitleHash)
	}
	if record.ContentFingerprint != "" {
		t.Errorf("ContentFingerprint = %q, want empty without content", record.ContentFingerprint)
	}
}

func TestRecorderStats(t *testing.T) {
	audit := NewMemoryAuditStore()

	old := time.Now().Add(-48 * time.Hour)
	audit.CreateRecord(context.Background(), models.DeduplicationRecord{ID: "a", CreatedAt: old})
	audit.CreateRecord(context.Background(), models.DeduplicationRecord{ID: "b", CreatedAt: time.Now()})
	audit.CreateRecord(context.Background(), models.DeduplicationRecord{ID: "c", CreatedAt: time.Now()})

	recorder := NewRecorder(audit)
	stats, err := recorder.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	if stats.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", stats.TotalRecords)
	}
	if stats.Last24h != 2 {
		t.Errorf("Last24h = %d, want 2", stats.Last24h)
	}
}
