package catalog

import "time"

// MachineTypeProfile is editorial content for one technology generation:
// a titled, ordered description rendered on the browse surface. Seeded
// from a data file, not resolved from claims.
type MachineTypeProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	MachineType  string    `gorm:"size:20;not null;uniqueIndex" json:"machine_type"`
	Slug         string    `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (MachineTypeProfile) TableName() string { return "machine_type_profile" }

// DisplayTypeProfile is the display technology counterpart of
// MachineTypeProfile.
type DisplayTypeProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DisplayType  string    `gorm:"size:20;not null;uniqueIndex" json:"display_type"`
	Slug         string    `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (DisplayTypeProfile) TableName() string { return "display_type_profile" }
