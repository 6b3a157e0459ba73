package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rcastellanos/csv-insight-service/internal/pkg/config"
	apperrors "github.com/rcastellanos/csv-insight-service/internal/pkg/errors"
)

// LocalStorage keeps source files and rendered reports on the local
// filesystem, one directory per run
type LocalStorage struct {
	basePath    string
	maxFileSize int64
	logger      *slog.Logger
}

// FileMetadata contains information about a stored source file
type FileMetadata struct {
	RunID        string
	OriginalName string
	StoredPath   string
	Size         int64
	Hash         string
	CreatedAt    time.Time
}

// NewLocalStorage creates a local storage instance, creating the base
// directory if needed
func NewLocalStorage(cfg *config.StorageConfig, logger *slog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &LocalStorage{
		basePath:    cfg.BasePath,
		maxFileSize: cfg.MaxFileSize,
		logger:      logger,
	}, nil
}

// SaveSource stores the source file for a run, hashing it while copying.
// The SHA-256 hash in the returned metadata is the cache and idempotency
// key for the file's content.
func (s *LocalStorage) SaveSource(ctx context.Context, runID string, filename string, reader io.Reader) (*FileMetadata, error) {
	sourceDir := filepath.Join(s.basePath, "sources", runID)
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		return nil, apperrors.StorageError(err, "failed to create source directory")
	}

	safeName := filepath.Base(filename)
	destPath := filepath.Join(sourceDir, safeName)

	destFile, err := os.Create(destPath)
	if err != nil {
		return nil, apperrors.StorageError(err, "failed to create destination file")
	}
	defer destFile.Close()

	hash := sha256.New()
	limited := io.Reader(reader)
	if s.maxFileSize > 0 {
		limited = io.LimitReader(reader, s.maxFileSize+1)
	}

	size, err := io.Copy(io.MultiWriter(destFile, hash), limited)
	if err != nil {
		os.Remove(destPath)
		return nil, apperrors.StorageError(err, "failed to copy file")
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		os.Remove(destPath)
		return nil, apperrors.FileTooLarge(size, s.maxFileSize)
	}

	fileHash := hex.EncodeToString(hash.Sum(nil))

	metadata := &FileMetadata{
		RunID:        runID,
		OriginalName: filename,
		StoredPath:   destPath,
		Size:         size,
		Hash:         fileHash,
		CreatedAt:    time.Now(),
	}

	s.logger.Info("source file stored",
		slog.String("run_id", runID),
		slog.String("filename", safeName),
		slog.Int64("size", size),
		slog.String("hash", fileHash))

	return metadata, nil
}

// OpenSource opens the stored source file of a run
func (s *LocalStorage) OpenSource(ctx context.Context, runID string, filename string) (io.ReadCloser, error) {
	filePath := filepath.Join(s.basePath, "sources", runID, filepath.Base(filename))

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.StorageError(err, fmt.Sprintf("source not found for run: %s", runID))
		}
		return nil, apperrors.StorageError(err, "failed to open source file")
	}

	return file, nil
}

// SaveReport stores a rendered report for a run and returns its path
func (s *LocalStorage) SaveReport(ctx context.Context, runID string, filename string, data []byte) (string, error) {
	reportDir := filepath.Join(s.basePath, "reports", runID)
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return "", apperrors.StorageError(err, "failed to create report directory")
	}

	filePath := filepath.Join(reportDir, filepath.Base(filename))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", apperrors.StorageError(err, "failed to write report")
	}

	s.logger.Info("report stored",
		slog.String("run_id", runID),
		slog.String("filename", filepath.Base(filename)),
		slog.Int("size", len(data)))

	return filePath, nil
}

// ReadReport reads back a stored report
func (s *LocalStorage) ReadReport(ctx context.Context, runID string, filename string) ([]byte, error) {
	filePath := filepath.Join(s.basePath, "reports", runID, filepath.Base(filename))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.StorageError(err, fmt.Sprintf("report not found: %s/%s", runID, filename))
		}
		return nil, apperrors.StorageError(err, "failed to read report")
	}

	return data, nil
}

// DeleteRun removes all stored files of a run
func (s *LocalStorage) DeleteRun(ctx context.Context, runID string) error {
	for _, sub := range []string{"sources", "reports"} {
		dir := filepath.Join(s.basePath, sub, runID)
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			return apperrors.StorageError(err, fmt.Sprintf("failed to delete %s directory", sub))
		}
	}

	s.logger.Info("run files deleted", slog.String("run_id", runID))
	return nil
}

// CleanupOldFiles removes run directories older than the given duration
func (s *LocalStorage) CleanupOldFiles(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)

	for _, sub := range []string{"sources", "reports"} {
		if err := s.cleanupDirectory(filepath.Join(s.basePath, sub), cutoff); err != nil {
			return apperrors.StorageError(err, fmt.Sprintf("failed to clean up %s", sub))
		}
	}

	s.logger.Info("cleanup completed", slog.Duration("older_than", olderThan))
	return nil
}

func (s *LocalStorage) cleanupDirectory(dir string, cutoff time.Time) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dirPath := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("failed to get file info",
				slog.String("path", dirPath),
				slog.Any("error", err))
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(dirPath); err != nil {
				s.logger.Warn("failed to remove directory",
					slog.String("path", dirPath),
					slog.Any("error", err))
			} else {
				s.logger.Debug("removed old directory",
					slog.String("path", dirPath),
					slog.Time("mod_time", info.ModTime()))
			}
		}
	}

	return nil
}
