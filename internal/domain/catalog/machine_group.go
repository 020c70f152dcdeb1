package catalog

import "time"

// MachineGroup is a franchise/title grouping of related machine models.
// OPDB defines groups ("Medieval Madness" spans the 1997 original, the
// 2015 remake, and LE/SE variants). The group itself is direct reference
// data; assignment of machines to groups goes through the claims system.
type MachineGroup struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// OPDBGroupID is the OPDB group identifier, e.g. "G5pe4".
	OPDBGroupID string `gorm:"size:50;not null;uniqueIndex" json:"opdb_group_id"`

	Name string `gorm:"size:300;not null" json:"name"`
	Slug string `gorm:"size:300;not null;uniqueIndex" json:"slug"`

	// ShortName is a common abbreviation, e.g. "MM".
	ShortName string `gorm:"size:50" json:"short_name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MachineGroup) TableName() string { return "machine_group" }
