package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
)

// RunRepository persists ingestion runs and their column profiles using GORM
type RunRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewRunRepository creates a new repository instance
func NewRunRepository(db *gorm.DB, logger *slog.Logger) *RunRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// Save inserts a new run
func (r *RunRepository) Save(ctx context.Context, run *domain.IngestionRun) error {
	err := r.db.WithContext(ctx).Create(run).Error
	if err != nil {
		r.logger.Error("failed to save run",
			slog.String("file", run.FileName),
			slog.Any("error", err))
		return fmt.Errorf("failed to insert run: %w", err)
	}

	r.logger.Info("run saved",
		slog.String("run_id", run.ID.String()),
		slog.String("file", run.FileName))

	return nil
}

// GetByID loads a run with its column profiles
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IngestionRun, error) {
	var run domain.IngestionRun

	err := r.db.WithContext(ctx).
		Preload("ColumnProfiles").
		First(&run, "id = ?", id).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to load run",
			slog.String("run_id", id.String()),
			slog.Any("error", err))
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return &run, nil
}

// GetByFileHash returns the most recent completed run for a file hash,
// or nil when the file has never been analyzed
func (r *RunRepository) GetByFileHash(ctx context.Context, hash string) (*domain.IngestionRun, error) {
	var run domain.IngestionRun

	err := r.db.WithContext(ctx).
		Preload("ColumnProfiles").
		Where("file_hash = ? AND status = ?", hash, domain.RunStatusCompleted).
		Order("created_at DESC").
		First(&run).
		Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to look up run by hash",
			slog.String("file_hash", hash),
			slog.Any("error", err))
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return &run, nil
}

// UpdateStatus transitions a run to a new status. Failed runs carry the
// error message; completed runs get a completion timestamp.
func (r *RunRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage string) error {
	if !domain.IsValidRunStatus(status) {
		return fmt.Errorf("invalid run status: %s", status)
	}

	updates := map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
	}
	if status == domain.RunStatusCompleted || status == domain.RunStatusFailed {
		now := time.Now().UTC()
		updates["completed_at"] = &now
	}

	err := r.db.WithContext(ctx).
		Model(&domain.IngestionRun{}).
		Where("id = ?", id).
		Updates(updates).
		Error

	if err != nil {
		r.logger.Error("failed to update run status",
			slog.String("run_id", id.String()),
			slog.String("status", status),
			slog.Any("error", err))
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

// SaveResults records the outcome of a completed analysis: row counts,
// timing and one profile per column, inserted in batches
func (r *RunRepository) SaveResults(ctx context.Context, run *domain.IngestionRun, profiles []domain.ColumnProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.IngestionRun{}).
			Where("id = ?", run.ID).
			Updates(map[string]interface{}{
				"status":             run.Status,
				"total_rows":         run.TotalRows,
				"valid_rows":         run.ValidRows,
				"invalid_rows":       run.InvalidRows,
				"error_count":        run.ErrorCount,
				"processing_time_ms": run.ProcessingTimeMs,
				"completed_at":       run.CompletedAt,
			}).
			Error
		if err != nil {
			return fmt.Errorf("failed to update run results: %w", err)
		}

		if len(profiles) == 0 {
			return nil
		}

		for i := range profiles {
			profiles[i].RunID = run.ID
		}
		if err := tx.CreateInBatches(profiles, 100).Error; err != nil {
			return fmt.Errorf("failed to insert column profiles: %w", err)
		}

		r.logger.Info("run results saved",
			slog.String("run_id", run.ID.String()),
			slog.Int("profiles", len(profiles)))

		return nil
	})
}

// ListRecent returns the most recent runs, newest first
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]domain.IngestionRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []domain.IngestionRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).
		Error

	if err != nil {
		r.logger.Error("failed to list runs", slog.Any("error", err))
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return runs, nil
}
