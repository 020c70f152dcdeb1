package provenance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pinlore/pinlore-backend/internal/domain/user"
)

// Claim is a single fact asserted by a Source or a User about a catalog
// entity. The ledger is append-only: superseding a claim flips is_active
// on the old row and inserts a new one, nothing else is ever mutated.
//
// ClaimKey is the identity under which claims compete for "currently
// active" status. For scalar fields it equals FieldName; for relationship
// facts it encodes the relationship identity, e.g.
// "credit|person:pat-lawlor|role:design".
type Claim struct {
	ID uint `gorm:"primaryKey" json:"id"`

	SubjectKind EntityKind `gorm:"type:varchar(32);not null;index:idx_claim_subject_field,priority:1;index:idx_claim_subject_key,priority:1;index:uniq_claim_active_source,unique,priority:1;index:uniq_claim_active_author,unique,priority:1" json:"subject_kind"`
	SubjectID   uint       `gorm:"not null;index:idx_claim_subject_field,priority:2;index:idx_claim_subject_key,priority:2;index:uniq_claim_active_source,unique,priority:2;index:uniq_claim_active_author,unique,priority:2" json:"subject_id"`

	// Exactly one of SourceID / AuthorID is set, enforced by a CHECK
	// constraint and re-checked at assertion time.
	SourceID *uint   `gorm:"index:idx_claim_source_subject,priority:1;index:uniq_claim_active_source,unique,priority:3;check:chk_claim_attribution,(source_id IS NULL) != (author_id IS NULL)" json:"source_id,omitempty"`
	Source   *Source `gorm:"constraint:OnDelete:RESTRICT;foreignKey:SourceID;references:ID" json:"source,omitempty"`

	AuthorID *uuid.UUID `gorm:"type:uuid;index:uniq_claim_active_author,unique,priority:3" json:"author_id,omitempty"`
	Author   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:AuthorID;references:ID" json:"author,omitempty"`

	FieldName string `gorm:"size:100;not null;index:idx_claim_subject_field,priority:3;index:idx_claim_field_active,priority:1" json:"field_name"`
	ClaimKey  string `gorm:"size:300;not null;index:idx_claim_subject_key,priority:3;index:uniq_claim_active_source,unique,priority:4,where:is_active;index:uniq_claim_active_author,unique,priority:4,where:is_active" json:"claim_key"`

	Value    datatypes.JSON `gorm:"not null" json:"value"`
	Citation string         `gorm:"type:text" json:"citation"`

	IsActive  bool      `gorm:"not null;index:idx_claim_field_active,priority:2" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Claim) TableName() string { return "claim" }

func (c *Claim) Subject() Subject {
	return Subject{Kind: c.SubjectKind, ID: c.SubjectID}
}
