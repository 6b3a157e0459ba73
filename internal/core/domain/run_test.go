package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestionRun_TableName(t *testing.T) {
	run := IngestionRun{}
	assert.Equal(t, "ingestion_runs", run.TableName())
}

func TestColumnProfile_TableName(t *testing.T) {
	profile := ColumnProfile{}
	assert.Equal(t, "column_profiles", profile.TableName())
}

func TestIngestionRun_BeforeCreate_AssignsID(t *testing.T) {
	run := &IngestionRun{}
	require.NoError(t, run.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, run.ID)

	// An explicit ID is preserved
	id := uuid.New()
	run = &IngestionRun{ID: id}
	require.NoError(t, run.BeforeCreate(nil))
	assert.Equal(t, id, run.ID)
}

func TestIsValidRunStatus(t *testing.T) {
	for _, status := range ValidRunStatuses() {
		assert.True(t, IsValidRunStatus(status), status)
	}

	assert.False(t, IsValidRunStatus("uploaded"))
	assert.False(t, IsValidRunStatus(""))
}

func TestJSONB_ValueAndScan(t *testing.T) {
	original := JSONB{"delimiter": ",", "batch_size": float64(500)}

	raw, err := original.Value()
	require.NoError(t, err)

	var decoded JSONB
	require.NoError(t, decoded.Scan(raw))
	assert.Equal(t, original, decoded)

	var fromNil JSONB
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)
}
