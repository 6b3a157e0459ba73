// worker runs background analysis tasks: it consumes analyze:file tasks
// from the queue, analyzes the stored source file and persists the
// results and rendered report.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
	"github.com/rcastellanos/csv-insight-service/internal/core/services/analysis"
	"github.com/rcastellanos/csv-insight-service/internal/core/services/ingestion"
	"github.com/rcastellanos/csv-insight-service/internal/core/services/report"
	"github.com/rcastellanos/csv-insight-service/internal/infrastructure/cache"
	"github.com/rcastellanos/csv-insight-service/internal/infrastructure/database"
	"github.com/rcastellanos/csv-insight-service/internal/infrastructure/database/repositories"
	"github.com/rcastellanos/csv-insight-service/internal/infrastructure/queue"
	"github.com/rcastellanos/csv-insight-service/internal/infrastructure/storage"
	"github.com/rcastellanos/csv-insight-service/internal/pkg/config"
	"github.com/rcastellanos/csv-insight-service/internal/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Initialize(cfg.Environment)

	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AutoMigrate(&domain.IngestionRun{}, &domain.ColumnProfile{}); err != nil {
		return err
	}

	redisCache, err := cache.NewRedisCache(&cfg.Cache, log)
	if err != nil {
		return err
	}
	defer redisCache.Close()

	store, err := storage.NewLocalStorage(&cfg.Storage, log)
	if err != nil {
		return err
	}

	runs := repositories.NewRunRepository(db.DB, log)
	svc := analysis.NewService(runs, redisCache, log)
	registry := report.NewRegistry()

	server, err := queue.NewAsynqServer(&cfg.Queue, log)
	if err != nil {
		return err
	}

	handler := &analyzeHandler{
		svc:      svc,
		store:    store,
		registry: registry,
		opts:     ingestion.OptionsFromConfig(cfg.Ingest),
		logger:   logger.NewServiceLogger("worker"),
	}
	server.HandleFunc(queue.TaskTypeAnalyzeFile, handler.handle)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("shutting down", slog.String("signal", sig.String()))
		server.Shutdown()
		return nil
	case err := <-errCh:
		return err
	}
}

type analyzeHandler struct {
	svc      *analysis.Service
	store    *storage.LocalStorage
	registry *report.Registry
	opts     ingestion.Options
	logger   *slog.Logger
}

func (h *analyzeHandler) handle(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseAnalyzeFilePayload(task)
	if err != nil {
		return err
	}

	runID, err := uuid.Parse(payload.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", payload.RunID, err)
	}

	h.logger.Info("processing analysis task",
		slog.String("run_id", payload.RunID),
		slog.String("file", payload.FilePath))

	result, err := h.svc.AnalyzeFile(ctx, analysis.Request{
		RunID:    runID,
		FilePath: payload.FilePath,
		FileName: filepath.Base(payload.FilePath),
		FileHash: payload.FileHash,
		Options:  h.opts,
	})
	if err != nil {
		return err
	}

	format := payload.Format
	if format == "" {
		format = "json"
	}
	renderer, err := h.registry.Get(format)
	if err != nil {
		return err
	}

	rep := &report.Report{
		RunID:       result.RunID.String(),
		FileName:    result.FileName,
		GeneratedAt: time.Now(),
		Summary:     result.Summary,
	}
	if result.Validation != nil {
		rep.Errors = result.Validation.Errors
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, rep); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	reportName := "report" + renderer.Extension()
	if _, err := h.store.SaveReport(ctx, payload.RunID, reportName, buf.Bytes()); err != nil {
		return err
	}

	h.logger.Info("analysis task completed",
		slog.String("run_id", payload.RunID),
		slog.Int("total_rows", result.Summary.TotalRows),
		slog.Bool("from_cache", result.FromCache))

	return nil
}
