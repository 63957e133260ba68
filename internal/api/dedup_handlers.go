package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/atlasfeed/atlasfeed/internal/dedup"
	"github.com/atlasfeed/atlasfeed/internal/fingerprint"
	"github.com/atlasfeed/atlasfeed/internal/metrics"
	"github.com/atlasfeed/atlasfeed/internal/models"
	"github.com/atlasfeed/atlasfeed/internal/similarity"
	"github.com/atlasfeed/atlasfeed/internal/urlnorm"
)

// ResourceCreator persists new resources after a "created" decision. Kept
// separate from the engine-facing store interface: the engine itself never
// creates resources.
type ResourceCreator interface {
	Create(ctx context.Context, resource models.Resource) (string, error)
}

// DedupHandler serves the duplicate check, bulk import, batch detection,
// report, and stats endpoints.
type DedupHandler struct {
	engine    Engine
	resources ResourceCreator
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewDedupHandler creates the dedup endpoint handler.
func NewDedupHandler(engine Engine, resources ResourceCreator, collector *metrics.Collector, logger *slog.Logger) *DedupHandler {
	return &DedupHandler{
		engine:    engine,
		resources: resources,
		collector: collector,
		logger:    logger,
	}
}

// CheckRequest is the payload for POST /api/dedup/check.
type CheckRequest struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

// Check handles POST /api/dedup/check: runs the cascade without side
// effects.
func (h *DedupHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	decision, err := h.engine.Checker.Check(r.Context(), req.URL, req.Title, req.Content)
	if err != nil {
		h.logger.Error("duplicate check failed", "url", req.URL, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if h.collector != nil {
		h.collector.RecordDecision(string(decision.Action), string(decision.Reason))
	}

	writeJSON(w, http.StatusOK, decision)
}

// Compare handles POST /api/dedup/compare: SimHash distance between two
// raw contents, no storage involved.
func (h *DedupHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ContentA string `json:"content_a"`
		ContentB string `json:"content_b"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	distance := similarity.Hamming(
		fingerprint.SimHash(req.ContentA),
		fingerprint.SimHash(req.ContentB),
	)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hamming_distance": distance,
		"similar":          similarity.SimilarContent(req.ContentA, req.ContentB, h.engine.SimilarContentBits),
	})
}

// ImportItem is one candidate in a bulk import request.
type ImportItem struct {
	Source        string     `json:"source"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Abstract      string     `json:"abstract,omitempty"`
	Content       string     `json:"content,omitempty"`
	Authors       []string   `json:"authors,omitempty"`
	CitationCount int        `json:"citation_count,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	TaskID        string     `json:"task_id,omitempty"`
}

// ImportResult reports what happened to one imported candidate.
type ImportResult struct {
	URL        string                       `json:"url"`
	ResourceID string                       `json:"resource_id,omitempty"`
	Decision   models.DeduplicationDecision `json:"decision"`
	Merged     bool                         `json:"merged,omitempty"`
	Error      string                       `json:"error,omitempty"`
}

// Import handles POST /api/resources/import: for each item, check →
// create/merge → audit record.
func (h *DedupHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Items []ImportItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	results := make([]ImportResult, 0, len(req.Items))
	for _, item := range req.Items {
		results = append(results, h.importOne(r.Context(), item))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

func (h *DedupHandler) importOne(ctx context.Context, item ImportItem) ImportResult {
	result := ImportResult{URL: item.URL}

	decision, err := h.engine.Checker.Check(ctx, item.URL, item.Title, item.Content)
	if err != nil {
		h.logger.Error("import check failed", "url", item.URL, "error", err)
		result.Error = "duplicate check failed"
		return result
	}
	result.Decision = decision

	if h.collector != nil {
		h.collector.RecordDecision(string(decision.Action), string(decision.Reason))
	}

	switch decision.Action {
	case models.ActionCreated:
		id, err := h.resources.Create(ctx, models.Resource{
			Source:             item.Source,
			URL:                item.URL,
			CanonicalURL:       urlnorm.Normalize(item.URL),
			Title:              item.Title,
			Abstract:           item.Abstract,
			Content:            item.Content,
			Authors:            item.Authors,
			CitationCount:      item.CitationCount,
			ContentFingerprint: fingerprint.ContentFingerprint(item.Content),
			PublishedAt:        item.PublishedAt,
		})
		if err != nil {
			h.logger.Error("resource create failed", "url", item.URL, "error", err)
			result.Error = "resource create failed"
			return result
		}
		result.ResourceID = id

	case models.ActionMerged:
		merged, err := h.engine.Merger.Merge(ctx, decision.MatchedResourceID, models.ResourceFields{
			Title:    item.Title,
			Abstract: item.Abstract,
			Content:  item.Content,
		})
		if err != nil {
			h.logger.Error("resource merge failed",
				"url", item.URL,
				"resource_id", decision.MatchedResourceID,
				"error", err,
			)
			result.Error = "resource merge failed"
			return result
		}
		result.Merged = merged
		result.ResourceID = decision.MatchedResourceID

	case models.ActionSkipped:
		result.ResourceID = decision.MatchedResourceID
	}

	if err := h.engine.Recorder.Record(ctx, dedup.RecordParams{
		TaskID:        item.TaskID,
		ResourceID:    result.ResourceID,
		DuplicateOfID: decision.MatchedResourceID,
		Decision:      decision,
		URL:           item.URL,
		Title:         item.Title,
		Content:       item.Content,
	}); err != nil {
		h.logger.Error("audit record failed", "url", item.URL, "error", err)
	}

	return result
}

// DetectBatch handles POST /api/dedup/batch: in-batch duplicate indexes.
func (h *DedupHandler) DetectBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Items []dedup.BatchItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"duplicate_indexes": h.engine.Detector.DetectIndexes(req.Items),
		"total":             len(req.Items),
	})
}

// GenerateReport handles POST /api/dedup/report.
func (h *DedupHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Candidates []dedup.ReportCandidate `json:"candidates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.engine.Reporter.Generate(req.Candidates))
}

// Stats handles GET /api/dedup/stats.
func (h *DedupHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.engine.Recorder.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to load dedup stats", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
