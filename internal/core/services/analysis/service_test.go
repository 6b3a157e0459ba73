package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
	"github.com/rcastellanos/csv-insight-service/internal/core/services/ingestion"
)

type fakeRunStore struct {
	saved    []*domain.IngestionRun
	statuses []string
	results  *domain.IngestionRun
	profiles []domain.ColumnProfile
}

func (f *fakeRunStore) Save(_ context.Context, run *domain.IngestionRun) error {
	f.saved = append(f.saved, run)
	return nil
}

func (f *fakeRunStore) UpdateStatus(_ context.Context, _ uuid.UUID, status string, _ string) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeRunStore) SaveResults(_ context.Context, run *domain.IngestionRun, profiles []domain.ColumnProfile) error {
	f.results = run
	f.profiles = profiles
	return nil
}

type fakeCache struct {
	entries map[string]*domain.DataSummary
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*domain.DataSummary)}
}

func (f *fakeCache) GetSummary(_ context.Context, fileHash string) (*domain.DataSummary, error) {
	return f.entries[fileHash], nil
}

func (f *fakeCache) CacheSummary(_ context.Context, fileHash string, summary *domain.DataSummary) error {
	f.entries[fileHash] = summary
	return nil
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAnalyzeFile_EndToEnd(t *testing.T) {
	path := writeTempCSV(t, "name,age\nAlice,30\nBob,25\n,17\n")

	store := &fakeRunStore{}
	cache := newFakeCache()
	svc := NewService(store, cache, nil)

	report, err := svc.AnalyzeFile(context.Background(), Request{
		FilePath: path,
		FileName: "input.csv",
		FileHash: "hash-1",
		Rules: domain.RuleSet{
			"name": {domain.Required()},
			"age":  {domain.Range(18, 120)},
		},
		Options: ingestion.DefaultOptions(),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, report.RunID)
	assert.False(t, report.FromCache)
	assert.Equal(t, 3, report.Summary.TotalRows)
	assert.Equal(t, 2, report.Summary.ValidRows)
	assert.Equal(t, 1, report.Summary.InvalidRows)

	require.NotNil(t, report.Validation)
	// Row 3 fails both Required on name and Range on age
	assert.Len(t, report.Validation.Errors, 2)

	// Run persisted as analyzing, then completed with results
	require.Len(t, store.saved, 1)
	assert.Equal(t, domain.RunStatusAnalyzing, store.saved[0].Status)
	require.NotNil(t, store.results)
	assert.Equal(t, domain.RunStatusCompleted, store.results.Status)
	assert.Equal(t, 3, store.results.TotalRows)
	assert.Equal(t, 2, store.results.ErrorCount)

	require.Len(t, store.profiles, 2)
	assert.Equal(t, "name", store.profiles[0].ColumnName)
	assert.Equal(t, string(domain.TypeNumber), store.profiles[1].DataType)

	// Summary cached under the file hash
	assert.NotNil(t, cache.entries["hash-1"])
}

func TestAnalyzeFile_CacheHit(t *testing.T) {
	cache := newFakeCache()
	cache.entries["known-hash"] = &domain.DataSummary{TotalRows: 42, ValidRows: 42}

	svc := NewService(nil, cache, nil)

	// The file does not exist; a cache hit must short-circuit the read
	report, err := svc.AnalyzeFile(context.Background(), Request{
		FilePath: "/nonexistent/file.csv",
		FileName: "file.csv",
		FileHash: "known-hash",
		Options:  ingestion.DefaultOptions(),
	})
	require.NoError(t, err)

	assert.True(t, report.FromCache)
	assert.Equal(t, 42, report.Summary.TotalRows)
}

func TestAnalyzeFile_RulesBypassCache(t *testing.T) {
	path := writeTempCSV(t, "n\n1\n")

	cache := newFakeCache()
	cache.entries["h"] = &domain.DataSummary{TotalRows: 99}

	svc := NewService(nil, cache, nil)

	// With rules present the cached summary cannot stand in for a
	// validated run
	report, err := svc.AnalyzeFile(context.Background(), Request{
		FilePath: path,
		FileName: "input.csv",
		FileHash: "h",
		Rules:    domain.RuleSet{"n": {domain.Required()}},
		Options:  ingestion.DefaultOptions(),
	})
	require.NoError(t, err)

	assert.False(t, report.FromCache)
	assert.Equal(t, 1, report.Summary.TotalRows)
}

func TestAnalyzeFile_FailureMarksRun(t *testing.T) {
	store := &fakeRunStore{}
	svc := NewService(store, nil, nil)

	_, err := svc.AnalyzeFile(context.Background(), Request{
		FilePath: "/nonexistent/file.csv",
		FileName: "file.csv",
		Options:  ingestion.DefaultOptions(),
	})
	require.Error(t, err)

	require.Len(t, store.statuses, 1)
	assert.Equal(t, domain.RunStatusFailed, store.statuses[0])
}

func TestAnalyzeFile_NoStoreNoCache(t *testing.T) {
	path := writeTempCSV(t, "a,b\n1,x\n2,y\n")

	svc := NewService(nil, nil, nil)

	report, err := svc.AnalyzeFile(context.Background(), Request{
		FilePath: path,
		FileName: "input.csv",
		Options:  ingestion.DefaultOptions(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.TotalRows)
	assert.Nil(t, report.Validation)
}
