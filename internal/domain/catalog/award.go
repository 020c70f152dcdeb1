package catalog

import (
	"time"

	"gorm.io/datatypes"
)

// Award is a pinball industry award (e.g. "Hall of Fame"). Scalar
// columns are claim-resolved; recipients are relationship claims
// materialized into AwardRecipient rows.
type Award struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:200;not null;index" json:"name"`
	Slug string `gorm:"size:200;not null;uniqueIndex" json:"slug"`

	Description string `gorm:"type:text" json:"description"`

	// ImageURLs is a resolved JSON list of absolute image URLs.
	ImageURLs datatypes.JSON `gorm:"column:image_urls" json:"image_urls,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Recipients []AwardRecipient `gorm:"foreignKey:AwardID" json:"recipients,omitempty"`
}

func (Award) TableName() string { return "award" }
