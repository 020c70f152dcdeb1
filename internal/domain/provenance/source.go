package provenance

import "time"

// Source is a registered data origin (external database, book, editorial
// team). Its priority decides which claim wins when sources disagree;
// editing a priority takes effect on the next resolution pass, never
// retroactively on stored claims.
type Source struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"size:200;not null;uniqueIndex" json:"name"`
	Slug        string `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	SourceType  string `gorm:"size:20;not null;default:'database'" json:"source_type"`
	Priority    int    `gorm:"not null;default:0;index" json:"priority"`
	URL         string `gorm:"size:500" json:"url"`
	Description string `gorm:"type:text" json:"description"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Source) TableName() string { return "source" }

const (
	SourceTypeDatabase  = "database"
	SourceTypeBook      = "book"
	SourceTypeEditorial = "editorial"
	SourceTypeOther     = "other"
)
