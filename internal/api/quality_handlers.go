package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/atlasfeed/atlasfeed/internal/models"
	"github.com/atlasfeed/atlasfeed/internal/quality"
)

// QualityHandler serves quality scoring and inspection endpoints.
type QualityHandler struct {
	assessor *quality.Assessor
	logger   *slog.Logger
}

// NewQualityHandler creates the quality endpoint handler.
func NewQualityHandler(assessor *quality.Assessor, logger *slog.Logger) *QualityHandler {
	return &QualityHandler{assessor: assessor, logger: logger}
}

// Assess handles POST /api/quality/assess: scores a resource and reports
// completeness issues.
func (h *QualityHandler) Assess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var resource models.Resource
	if err := json.NewDecoder(r.Body).Decode(&resource); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assessment": h.assessor.Assess(resource),
		"inspection": quality.Inspect(resource),
	})
}
