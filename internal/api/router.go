// Package api exposes the engine over HTTP. Handlers are thin wrappers:
// decode, call the engine, persist the verdict, encode. All business logic
// lives in the engine packages.
package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/atlasfeed/atlasfeed/internal/dedup"
	"github.com/atlasfeed/atlasfeed/internal/metrics"
	"github.com/atlasfeed/atlasfeed/internal/quality"
)

// Engine bundles the engine components the HTTP layer dispatches to.
type Engine struct {
	Checker  *dedup.Checker
	Merger   *dedup.Merger
	Recorder *dedup.Recorder
	Reporter *dedup.ReportGenerator
	Detector *dedup.BatchDetector
	Assessor *quality.Assessor

	// SimilarContentBits is the Hamming cutoff for the compare endpoint;
	// ≤0 uses the engine default.
	SimilarContentBits int
}

// SetupRoutes configures all API routes.
func SetupRoutes(mux *http.ServeMux, engine Engine, resources ResourceCreator, db *sql.DB, collector *metrics.Collector, logger *slog.Logger) {
	dedupHandler := NewDedupHandler(engine, resources, collector, logger)
	qualityHandler := NewQualityHandler(engine.Assessor, logger)
	healthHandler := NewHealthHandler(db, logger)

	mux.HandleFunc("/api/dedup/check", dedupHandler.Check)
	mux.HandleFunc("/api/dedup/compare", dedupHandler.Compare)
	mux.HandleFunc("/api/dedup/batch", dedupHandler.DetectBatch)
	mux.HandleFunc("/api/dedup/report", dedupHandler.GenerateReport)
	mux.HandleFunc("/api/dedup/stats", dedupHandler.Stats)
	mux.HandleFunc("/api/resources/import", dedupHandler.Import)
	mux.HandleFunc("/api/quality/assess", qualityHandler.Assess)
	mux.HandleFunc("/healthz", healthHandler.Healthz)

	if collector != nil {
		mux.Handle("/metrics", collector.Handler())
	}
}
