package catalog

import "time"

// Theme is a controlled-vocabulary row ("Medieval", "Horror", …).
// Reference data, never a claim subject: machines link to themes through
// relationship claims materialized into MachineTheme.
type Theme struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Slug string `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Name string `gorm:"size:200;not null" json:"name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Theme) TableName() string { return "theme" }
