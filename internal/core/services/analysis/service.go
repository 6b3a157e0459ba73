package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
	"github.com/rcastellanos/csv-insight-service/internal/core/services/ingestion"
	"github.com/rcastellanos/csv-insight-service/internal/core/services/statistics"
	"github.com/rcastellanos/csv-insight-service/internal/core/services/validation"
)

// RunStore persists ingestion runs and their results
type RunStore interface {
	Save(ctx context.Context, run *domain.IngestionRun) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage string) error
	SaveResults(ctx context.Context, run *domain.IngestionRun, profiles []domain.ColumnProfile) error
}

// SummaryCache caches computed summaries by file content hash
type SummaryCache interface {
	GetSummary(ctx context.Context, fileHash string) (*domain.DataSummary, error)
	CacheSummary(ctx context.Context, fileHash string, summary *domain.DataSummary) error
}

// Request describes one analysis run
type Request struct {
	RunID    uuid.UUID
	FilePath string
	FileName string
	FileHash string
	Rules    domain.RuleSet
	Options  ingestion.Options
}

// RunReport is the outcome of one analysis run
type RunReport struct {
	RunID      uuid.UUID
	FileName   string
	Summary    *domain.DataSummary
	Validation *domain.ValidationResult
	FromCache  bool
}

// Service orchestrates a full analysis: ingest the file, validate it
// against the rule set, compute statistics, then persist and cache the
// outcome. Store and cache are optional; a nil store runs the analysis
// without history, a nil cache disables summary reuse.
type Service struct {
	validator *validation.Engine
	stats     *statistics.Engine
	runs      RunStore
	cache     SummaryCache
	logger    *slog.Logger
}

// NewService creates an analysis service
func NewService(runs RunStore, cache SummaryCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		validator: validation.NewEngine(logger),
		stats:     statistics.NewEngine(logger),
		runs:      runs,
		cache:     cache,
		logger:    logger,
	}
}

// AnalyzeFile runs a complete analysis for the request. When the request
// carries a file hash, has no rules, and the cache holds a summary for
// that hash, the cached summary is returned without re-reading the file.
func (s *Service) AnalyzeFile(ctx context.Context, req Request) (*RunReport, error) {
	start := time.Now()

	if req.RunID == uuid.Nil {
		req.RunID = uuid.New()
	}

	if cached := s.cachedReport(ctx, req); cached != nil {
		return cached, nil
	}

	if s.runs != nil {
		run := &domain.IngestionRun{
			ID:       req.RunID,
			FileName: req.FileName,
			FilePath: req.FilePath,
			FileHash: req.FileHash,
			Status:   domain.RunStatusAnalyzing,
		}
		if err := s.runs.Save(ctx, run); err != nil {
			return nil, err
		}
	}

	report, err := s.analyze(ctx, req, start)
	if err != nil {
		if s.runs != nil {
			if updateErr := s.runs.UpdateStatus(ctx, req.RunID, domain.RunStatusFailed, err.Error()); updateErr != nil {
				s.logger.Error("failed to record run failure",
					slog.String("run_id", req.RunID.String()),
					slog.Any("error", updateErr))
			}
		}
		return nil, err
	}

	return report, nil
}

func (s *Service) cachedReport(ctx context.Context, req Request) *RunReport {
	if s.cache == nil || req.FileHash == "" || len(req.Rules) > 0 {
		return nil
	}

	summary, err := s.cache.GetSummary(ctx, req.FileHash)
	if err != nil {
		s.logger.Warn("summary cache lookup failed",
			slog.String("file_hash", req.FileHash),
			slog.Any("error", err))
		return nil
	}
	if summary == nil {
		return nil
	}

	s.logger.Info("summary served from cache",
		slog.String("file_hash", req.FileHash),
		slog.String("file", req.FileName))

	return &RunReport{
		RunID:     req.RunID,
		FileName:  req.FileName,
		Summary:   summary,
		FromCache: true,
	}
}

func (s *Service) analyze(ctx context.Context, req Request, start time.Time) (*RunReport, error) {
	reader := ingestion.NewReader(req.Options, s.logger)

	data, err := reader.ReadFile(ctx, req.FilePath)
	if err != nil {
		return nil, err
	}

	var result *domain.ValidationResult
	if len(req.Rules) > 0 {
		result, err = s.validator.ValidateData(data, req.Rules)
		if err != nil {
			return nil, err
		}
	}

	summary := s.stats.SummarizeWithValidation(data, result)
	summary.ProcessingTime = time.Since(start)

	if s.runs != nil {
		if err := s.persistResults(ctx, req, data, summary, result); err != nil {
			return nil, err
		}
	}

	if s.cache != nil && req.FileHash != "" {
		if err := s.cache.CacheSummary(ctx, req.FileHash, summary); err != nil {
			// Caching is best effort
			s.logger.Warn("failed to cache summary",
				slog.String("file_hash", req.FileHash),
				slog.Any("error", err))
		}
	}

	s.logger.Info("analysis completed",
		slog.String("run_id", req.RunID.String()),
		slog.String("file", req.FileName),
		slog.Int("total_rows", summary.TotalRows),
		slog.Int("invalid_rows", summary.InvalidRows),
		slog.Duration("elapsed", summary.ProcessingTime))

	return &RunReport{
		RunID:      req.RunID,
		FileName:   req.FileName,
		Summary:    summary,
		Validation: result,
	}, nil
}

func (s *Service) persistResults(ctx context.Context, req Request, data *domain.CSVData, summary *domain.DataSummary, result *domain.ValidationResult) error {
	now := time.Now().UTC()
	run := &domain.IngestionRun{
		ID:               req.RunID,
		Status:           domain.RunStatusCompleted,
		TotalRows:        summary.TotalRows,
		ValidRows:        summary.ValidRows,
		InvalidRows:      summary.InvalidRows,
		ProcessingTimeMs: summary.ProcessingTime.Milliseconds(),
		CompletedAt:      &now,
	}
	if result != nil {
		run.ErrorCount = len(result.Errors)
	}

	profiles := make([]domain.ColumnProfile, 0, len(summary.ColumnStatistics))
	for i, col := range summary.ColumnStatistics {
		stats := make(domain.JSONB, len(col.Statistics))
		for name, value := range col.Statistics {
			stats[string(name)] = value
		}

		dataType := ""
		if i < len(data.Headers) {
			dataType = string(data.Headers[i].DataType)
		}

		profiles = append(profiles, domain.ColumnProfile{
			RunID:        req.RunID,
			ColumnName:   col.ColumnName,
			ColumnIndex:  i,
			DataType:     dataType,
			Statistics:   stats,
			UniqueValues: col.UniqueValues,
			NullCount:    col.NullCount,
			MissingCount: col.MissingCount,
		})
	}

	return s.runs.SaveResults(ctx, run, profiles)
}
