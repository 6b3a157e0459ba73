package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcastellanos/csv-insight-service/internal/pkg/config"
	apperrors "github.com/rcastellanos/csv-insight-service/internal/pkg/errors"
)

func setupTestStorage(t *testing.T, maxFileSize int64) (*LocalStorage, string) {
	tempDir := t.TempDir()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	storage, err := NewLocalStorage(&config.StorageConfig{
		BasePath:    tempDir,
		MaxFileSize: maxFileSize,
	}, logger)
	require.NoError(t, err)

	return storage, tempDir
}

func TestLocalStorage_SaveSource(t *testing.T) {
	storage, _ := setupTestStorage(t, 0)
	ctx := context.Background()

	runID := "run-123"
	filename := "test.csv"
	content := []byte("column1,column2\nvalue1,value2\n")

	metadata, err := storage.SaveSource(ctx, runID, filename, bytes.NewReader(content))
	require.NoError(t, err)
	require.NotNil(t, metadata)

	assert.Equal(t, runID, metadata.RunID)
	assert.Equal(t, filename, metadata.OriginalName)
	assert.Equal(t, int64(len(content)), metadata.Size)
	assert.NotZero(t, metadata.CreatedAt)

	expectedHash := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(expectedHash[:]), metadata.Hash)

	_, err = os.Stat(metadata.StoredPath)
	assert.NoError(t, err)
}

func TestLocalStorage_SaveSource_TooLarge(t *testing.T) {
	storage, _ := setupTestStorage(t, 10)
	ctx := context.Background()

	content := []byte("this content is longer than ten bytes")
	_, err := storage.SaveSource(ctx, "run-big", "big.csv", bytes.NewReader(content))

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeFileTooLarge))
}

func TestLocalStorage_OpenSource(t *testing.T) {
	storage, _ := setupTestStorage(t, 0)
	ctx := context.Background()

	runID := "run-456"
	filename := "data.csv"
	content := []byte("a,b\n1,2\n")

	_, err := storage.SaveSource(ctx, runID, filename, bytes.NewReader(content))
	require.NoError(t, err)

	reader, err := storage.OpenSource(ctx, runID, filename)
	require.NoError(t, err)
	defer reader.Close()

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(reader)
	require.NoError(t, err)
	assert.Equal(t, content, buf.Bytes())
}

func TestLocalStorage_OpenSource_NotFound(t *testing.T) {
	storage, _ := setupTestStorage(t, 0)

	_, err := storage.OpenSource(context.Background(), "no-such-run", "x.csv")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeStorageError))
}

func TestLocalStorage_SaveAndReadReport(t *testing.T) {
	storage, _ := setupTestStorage(t, 0)
	ctx := context.Background()

	runID := "run-789"
	data := []byte(`{"total_rows": 3}`)

	path, err := storage.SaveReport(ctx, runID, "report.json", data)
	require.NoError(t, err)
	assert.NotEmpty(t, path)

	readBack, err := storage.ReadReport(ctx, runID, "report.json")
	require.NoError(t, err)
	assert.Equal(t, data, readBack)
}

func TestLocalStorage_DeleteRun(t *testing.T) {
	storage, basePath := setupTestStorage(t, 0)
	ctx := context.Background()

	runID := "delete-test"

	_, err := storage.SaveSource(ctx, runID, "test.csv", bytes.NewReader([]byte("a\n1\n")))
	require.NoError(t, err)
	_, err = storage.SaveReport(ctx, runID, "report.html", []byte("<html></html>"))
	require.NoError(t, err)

	sourceDir := filepath.Join(basePath, "sources", runID)
	reportDir := filepath.Join(basePath, "reports", runID)

	_, err = os.Stat(sourceDir)
	assert.NoError(t, err)
	_, err = os.Stat(reportDir)
	assert.NoError(t, err)

	require.NoError(t, storage.DeleteRun(ctx, runID))

	_, err = os.Stat(sourceDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(reportDir)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_CleanupOldFiles(t *testing.T) {
	storage, basePath := setupTestStorage(t, 0)
	ctx := context.Background()

	oldDir := filepath.Join(basePath, "sources", "old-run")
	require.NoError(t, os.MkdirAll(oldDir, 0755))
	twoHoursAgo := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(oldDir, twoHoursAgo, twoHoursAgo))

	recentDir := filepath.Join(basePath, "sources", "recent-run")
	require.NoError(t, os.MkdirAll(recentDir, 0755))

	require.NoError(t, storage.CleanupOldFiles(ctx, 1*time.Hour))

	_, err := os.Stat(oldDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(recentDir)
	assert.NoError(t, err)
}

func TestLocalStorage_HashConsistency(t *testing.T) {
	storage, _ := setupTestStorage(t, 0)
	ctx := context.Background()

	content := []byte("name,score\nalice,10\n")

	meta1, err := storage.SaveSource(ctx, "run-1", "test.csv", bytes.NewReader(content))
	require.NoError(t, err)

	meta2, err := storage.SaveSource(ctx, "run-2", "test.csv", bytes.NewReader(content))
	require.NoError(t, err)

	// Same content yields the same idempotency key regardless of run
	assert.Equal(t, meta1.Hash, meta2.Hash)
}
