package provenance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IngestRun records one ingestion or resolution batch for auditing.
type IngestRun struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Kind       string         `gorm:"size:32;not null;index" json:"kind"`
	SourceSlug string         `gorm:"size:200;index" json:"source_slug"`
	Stats      datatypes.JSON `json:"stats,omitempty"`
	Error      string         `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time      `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

func (IngestRun) TableName() string { return "ingest_run" }

const (
	RunKindSources = "sources"
	RunKindClaims  = "claims"
	RunKindResolve = "resolve"
)
