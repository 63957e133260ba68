package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/atlasfeed/atlasfeed/internal/api"
	"github.com/atlasfeed/atlasfeed/internal/config"
	"github.com/atlasfeed/atlasfeed/internal/database"
	"github.com/atlasfeed/atlasfeed/internal/dedup"
	"github.com/atlasfeed/atlasfeed/internal/logging"
	"github.com/atlasfeed/atlasfeed/internal/metrics"
	"github.com/atlasfeed/atlasfeed/internal/quality"
	"github.com/atlasfeed/atlasfeed/internal/server"
)

func main() {
	// Local development convenience; the file is absent in production.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Bootstrap().Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		logging.Bootstrap().Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting atlasfeed")

	ctx := context.Background()

	logger.Info("connecting to database")
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	if err := database.RunMigrations(ctx, db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	resourceStore := database.NewPostgresResourceStore(db)
	auditStore := database.NewPostgresAuditStore(db)

	engine := api.Engine{
		Checker: dedup.NewChecker(resourceStore, logging.ForComponent(logger, "checker"), dedup.Config{
			TitleThreshold:        cfg.Dedup.TitleThreshold,
			TitleCandidateLimit:   cfg.Dedup.TitleCandidateLimit,
			FingerprintSimilarity: cfg.Dedup.FingerprintSimilarity,
		}),
		Merger:   dedup.NewMerger(resourceStore, logging.ForComponent(logger, "merger")),
		Recorder: dedup.NewRecorder(auditStore),
		Reporter: dedup.NewReportGenerator(cfg.Dedup.NearDuplicateBits, logging.ForComponent(logger, "report")),
		Detector: dedup.NewBatchDetector(cfg.Dedup.BatchTitleThreshold, logging.ForComponent(logger, "batch")),
		Assessor: quality.NewAssessor(quality.DefaultCredibilityTable(), quality.Weights{}),

		SimilarContentBits: cfg.Dedup.SimilarContentBits,
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	api.SetupRoutes(mux, engine, resourceStore, db, collector, logger)

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("atlasfeed started", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
