package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IngestionRun represents one file analysis session persisted for history
// and idempotency lookups
type IngestionRun struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FileName         string     `gorm:"type:varchar(500);not null" json:"file_name"`
	FilePath         string     `gorm:"type:text" json:"file_path"`
	FileHash         string     `gorm:"type:varchar(64);index:idx_runs_file_hash" json:"file_hash"`
	Status           string     `gorm:"type:varchar(50);not null;default:'pending'" json:"status"`
	TotalRows        int        `gorm:"default:0" json:"total_rows"`
	ValidRows        int        `gorm:"default:0" json:"valid_rows"`
	InvalidRows      int        `gorm:"default:0" json:"invalid_rows"`
	ErrorCount       int        `gorm:"default:0" json:"error_count"`
	ProcessingTimeMs int64      `gorm:"default:0" json:"processing_time_ms"`
	Options          JSONB      `gorm:"type:jsonb" json:"options"`
	ErrorMessage     string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`

	// Relations
	ColumnProfiles []ColumnProfile `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"column_profiles,omitempty"`
}

// TableName specifies the table name for GORM
func (IngestionRun) TableName() string {
	return "ingestion_runs"
}

// BeforeCreate GORM hook
func (r *IngestionRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Run statuses
const (
	RunStatusPending   = "pending"
	RunStatusAnalyzing = "analyzing"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ValidRunStatuses returns the list of valid run statuses
func ValidRunStatuses() []string {
	return []string{
		RunStatusPending,
		RunStatusAnalyzing,
		RunStatusCompleted,
		RunStatusFailed,
	}
}

// IsValidRunStatus checks if a status is valid
func IsValidRunStatus(status string) bool {
	for _, s := range ValidRunStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// ColumnProfile persists the per-column statistics of a completed run
type ColumnProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RunID        uuid.UUID `gorm:"type:uuid;not null;index:idx_profiles_run" json:"run_id"`
	ColumnName   string    `gorm:"type:varchar(255);not null" json:"column_name"`
	ColumnIndex  int       `gorm:"not null" json:"column_index"`
	DataType     string    `gorm:"type:varchar(20)" json:"data_type"`
	Statistics   JSONB     `gorm:"type:jsonb" json:"statistics"`
	UniqueValues int       `gorm:"default:0" json:"unique_values"`
	NullCount    int       `gorm:"default:0" json:"null_count"`
	MissingCount int       `gorm:"default:0" json:"missing_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Run *IngestionRun `gorm:"foreignKey:RunID" json:"run,omitempty"`
}

// TableName specifies the table name for GORM
func (ColumnProfile) TableName() string {
	return "column_profiles"
}

// BeforeCreate GORM hook
func (p *ColumnProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// JSONB is a custom type for JSONB columns
type JSONB map[string]interface{}

// Value implements driver.Valuer for JSONB serialization
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for JSONB deserialization
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONB source type %T", value)
	}

	return json.Unmarshal(data, j)
}
