package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atlasfeed/atlasfeed/internal/dedup"
	"github.com/atlasfeed/atlasfeed/internal/models"
	"github.com/atlasfeed/atlasfeed/internal/quality"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// creatorStore wraps MemoryResourceStore with resource creation for the
// import flow.
type creatorStore struct {
	*dedup.MemoryResourceStore
	nextID int
}

func (s *creatorStore) Create(ctx context.Context, resource models.Resource) (string, error) {
	s.nextID++
	resource.ID = fmt.Sprintf("res-%d", s.nextID)
	s.MemoryResourceStore.Add(resource)
	return resource.ID, nil
}

func newTestEnv() (Engine, *creatorStore, *dedup.MemoryAuditStore) {
	store := &creatorStore{MemoryResourceStore: dedup.NewMemoryResourceStore()}
	audit := dedup.NewMemoryAuditStore()
	logger := testLogger()

	engine := Engine{
		Checker:  dedup.NewChecker(store, logger, dedup.DefaultConfig()),
		Merger:   dedup.NewMerger(store, logger),
		Recorder: dedup.NewRecorder(audit),
		Reporter: dedup.NewReportGenerator(0, logger),
		Detector: dedup.NewBatchDetector(0, logger),
		Assessor: quality.NewAssessor(nil, quality.Weights{}),
	}
	return engine, store, audit
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCheckEndpoint(t *testing.T) {
	engine, store, _ := newTestEnv()
	store.Add(models.Resource{
		ID:           "existing",
		URL:          "https://example.com/article",
		CanonicalURL: "https://example.com/article",
		Title:        "An Existing Article",
	})

	handler := NewDedupHandler(engine, store, nil, testLogger())

	rec := postJSON(t, handler.Check, "/api/dedup/check", CheckRequest{
		URL:   "http://www.example.com/article/?utm_source=x",
		Title: "An Existing Article",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var decision models.DeduplicationDecision
	if err := json.NewDecoder(rec.Body).Decode(&decision); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !decision.IsDuplicate || decision.Reason != models.ReasonExactURL {
		t.Errorf("decision = %+v, want exact URL duplicate", decision)
	}
}

func TestCheckEndpointValidation(t *testing.T) {
	engine, store, _ := newTestEnv()
	handler := NewDedupHandler(engine, store, nil, testLogger())

	rec := postJSON(t, handler.Check, "/api/dedup/check", CheckRequest{Title: "no url"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 when url is missing", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dedup/check", nil)
	rec2 := httptest.NewRecorder()
	handler.Check(rec2, req)
	if rec2.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405 for GET", rec2.Code)
	}
}

func TestImportEndpointCreatesAndSkips(t *testing.T) {
	engine, store, audit := newTestEnv()
	handler := NewDedupHandler(engine, store, nil, testLogger())

	payload := map[string]interface{}{
		"items": []ImportItem{
			{
				Source:  "blog",
				URL:     "https://example.com/first",
				Title:   "The First Imported Article",
				Content: strings.Repeat("a genuinely substantial body of content for this post ", 4),
			},
			{
				Source: "rss",
				URL:    "https://example.com/first?utm_source=feed",
				Title:  "The First Imported Article",
			},
		},
	}

	rec := postJSON(t, handler.Import, "/api/resources/import", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Results []ImportResult `json:"results"`
		Count   int            `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.Results[0].Decision.Action != models.ActionCreated {
		t.Errorf("first item action = %q, want created", resp.Results[0].Decision.Action)
	}
	if resp.Results[0].ResourceID == "" {
		t.Error("created item should carry the new resource ID")
	}
	if resp.Results[1].Decision.Action != models.ActionSkipped {
		t.Errorf("second item action = %q, want skipped", resp.Results[1].Decision.Action)
	}
	if resp.Results[1].ResourceID != resp.Results[0].ResourceID {
		t.Error("skipped item should point at the surviving resource")
	}

	if len(audit.Records()) != 2 {
		t.Errorf("audit records = %d, want one per item", len(audit.Records()))
	}
}

func TestImportEndpointMerges(t *testing.T) {
	engine, store, _ := newTestEnv()
	store.Add(models.Resource{
		ID:    "existing",
		URL:   "https://siteone.com/post",
		Title: "Understanding Distributed Consensus in Practice",
	})

	handler := NewDedupHandler(engine, store, nil, testLogger())

	rec := postJSON(t, handler.Import, "/api/resources/import", map[string]interface{}{
		"items": []ImportItem{{
			Source:  "medium",
			URL:     "https://sitetwo.com/mirror",
			Title:   "Understanding Distributed Consensus in Practice",
			Content: "a body the original never had, long enough to be worth keeping around",
		}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Results []ImportResult `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	result := resp.Results[0]
	if result.Decision.Action != models.ActionMerged {
		t.Fatalf("action = %q, want merged", result.Decision.Action)
	}
	if !result.Merged {
		t.Error("merge should have applied the longer content field")
	}

	got, _ := store.FindByID(context.Background(), "existing")
	if got.Content == "" {
		t.Error("existing resource should have gained the imported content")
	}
}

func TestCompareEndpoint(t *testing.T) {
	engine, store, _ := newTestEnv()
	handler := NewDedupHandler(engine, store, nil, testLogger())

	content := "the quick brown fox jumps over the lazy dog near the river"
	rec := postJSON(t, handler.Compare, "/api/dedup/compare", map[string]string{
		"content_a": content,
		"content_b": content,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		HammingDistance int  `json:"hamming_distance"`
		Similar         bool `json:"similar"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.HammingDistance != 0 || !resp.Similar {
		t.Errorf("response = %+v, want identical contents to compare equal", resp)
	}
}

func TestBatchEndpoint(t *testing.T) {
	engine, store, _ := newTestEnv()
	handler := NewDedupHandler(engine, store, nil, testLogger())

	rec := postJSON(t, handler.DetectBatch, "/api/dedup/batch", map[string]interface{}{
		"items": []dedup.BatchItem{
			{URL: "https://example.com/a", Title: "first unique headline today"},
			{URL: "https://www.example.com/a/", Title: "completely different words here"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		DuplicateIndexes []int `json:"duplicate_indexes"`
		Total            int   `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.DuplicateIndexes) != 1 || resp.DuplicateIndexes[0] != 1 {
		t.Errorf("duplicate_indexes = %v, want [1]", resp.DuplicateIndexes)
	}
}

func TestReportEndpoint(t *testing.T) {
	engine, store, _ := newTestEnv()
	handler := NewDedupHandler(engine, store, nil, testLogger())

	rec := postJSON(t, handler.GenerateReport, "/api/dedup/report", map[string]interface{}{
		"candidates": []dedup.ReportCandidate{
			{ID: "a", ContentHash: "h1", Source: "blog"},
			{ID: "b", ContentHash: "h1", Source: "rss"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var report dedup.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.TotalCandidates != 2 {
		t.Errorf("total_candidates = %d, want 2", report.TotalCandidates)
	}
	if len(report.ExactMatches["h1"]) != 2 {
		t.Errorf("exact_matches[h1] = %v, want both candidates", report.ExactMatches["h1"])
	}
}

func TestStatsEndpoint(t *testing.T) {
	engine, store, audit := newTestEnv()
	audit.CreateRecord(context.Background(), models.DeduplicationRecord{ID: "r1"})

	handler := NewDedupHandler(engine, store, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/dedup/stats", nil)
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var stats models.DeduplicationStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.TotalRecords != 1 {
		t.Errorf("total_records = %d, want 1", stats.TotalRecords)
	}
}

func TestQualityAssessEndpoint(t *testing.T) {
	handler := NewQualityHandler(quality.NewAssessor(nil, quality.Weights{}), testLogger())

	rec := postJSON(t, handler.Assess, "/api/quality/assess", models.Resource{
		Source: "arxiv",
		Title:  "A Complete Paper Title",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Assessment models.QualityAssessment `json:"assessment"`
		Inspection quality.Inspection       `json:"inspection"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Assessment.SourceCredibility != 95 {
		t.Errorf("source credibility = %d, want 95", resp.Assessment.SourceCredibility)
	}
	if len(resp.Inspection.Issues) == 0 {
		t.Error("inspection should flag the missing content and authors")
	}
}
