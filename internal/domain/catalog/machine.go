package catalog

import (
	"time"

	"gorm.io/datatypes"
)

// Machine type codes (technology generation).
const (
	MachineTypeEM = "electromechanical"
	MachineTypeSS = "solid-state"
	MachineTypePM = "pure-mechanical"
)

// Display type codes.
const (
	DisplayScoreReels      = "score-reels"
	DisplayBackglassLights = "backglass-lights"
	DisplayAlphanumeric    = "alphanumeric"
	DisplayDotMatrix       = "dot-matrix"
	DisplayCGA             = "cga"
	DisplayLCD             = "lcd"
)

// Machine is a pinball machine title/design, the resolved, materialized
// view. Every column except ID, Slug and the timestamps is owned by the
// resolution layer: it is derived from active claims and reset to its
// default when no claim survives.
type Machine struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:300;not null;index" json:"name"`
	Slug string `gorm:"size:300;not null;uniqueIndex" json:"slug"`

	// Cross-reference ids. Globally unique when set; the resolution
	// uniqueness guard clears losers instead of violating the index.
	IPDBID    *int64  `gorm:"column:ipdb_id;uniqueIndex" json:"ipdb_id,omitempty"`
	OPDBID    *string `gorm:"column:opdb_id;size:50;uniqueIndex" json:"opdb_id,omitempty"`
	PinsideID *int64  `gorm:"uniqueIndex" json:"pinside_id,omitempty"`

	MachineGroupID *uint         `gorm:"index" json:"machine_group_id,omitempty"`
	MachineGroup   *MachineGroup `gorm:"constraint:OnDelete:SET NULL;foreignKey:MachineGroupID;references:ID" json:"machine_group,omitempty"`

	ManufacturerID *uint         `gorm:"index:idx_machine_manufacturer_year,priority:1" json:"manufacturer_id,omitempty"`
	Manufacturer   *Manufacturer `gorm:"constraint:OnDelete:RESTRICT;foreignKey:ManufacturerID;references:ID" json:"manufacturer,omitempty"`

	Year  *int `gorm:"index:idx_machine_manufacturer_year,priority:2;index:idx_machine_type_year,priority:2" json:"year,omitempty"`
	Month *int `json:"month,omitempty"`

	MachineType string `gorm:"size:20;index:idx_machine_type_year,priority:1" json:"machine_type"`
	DisplayType string `gorm:"size:20;index" json:"display_type"`

	PlayerCount  *int `json:"player_count,omitempty"`
	FlipperCount *int `json:"flipper_count,omitempty"`

	ProductionQuantity string `gorm:"size:100" json:"production_quantity"`
	MPU                string `gorm:"size:200;column:mpu" json:"mpu"`

	IPDBRating    *float64 `gorm:"type:numeric(4,2)" json:"ipdb_rating,omitempty"`
	PinsideRating *float64 `gorm:"type:numeric(4,2)" json:"pinside_rating,omitempty"`

	EducationalText string `gorm:"type:text" json:"educational_text"`
	SourcesNotes    string `gorm:"type:text" json:"sources_notes"`

	// Extra catches resolved winners for fields with no dedicated column.
	Extra datatypes.JSONMap `json:"extra,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Credits []DesignCredit `gorm:"foreignKey:MachineID" json:"credits,omitempty"`
	Themes  []MachineTheme `gorm:"foreignKey:MachineID" json:"themes,omitempty"`
}

func (Machine) TableName() string { return "machine" }
