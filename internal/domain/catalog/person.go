package catalog

import "time"

// Person is a designer, artist, programmer, or awardee. Scalar columns
// are claim-resolved; identity is the slug.
type Person struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:200;not null;index" json:"name"`
	Slug string `gorm:"size:200;not null;uniqueIndex" json:"slug"`

	Bio string `gorm:"type:text" json:"bio"`

	BirthYear  *int `json:"birth_year,omitempty"`
	BirthMonth *int `json:"birth_month,omitempty"`
	BirthDay   *int `json:"birth_day,omitempty"`
	DeathYear  *int `json:"death_year,omitempty"`
	DeathMonth *int `json:"death_month,omitempty"`
	DeathDay   *int `json:"death_day,omitempty"`

	BirthPlace  string `gorm:"size:200" json:"birth_place"`
	Nationality string `gorm:"size:200" json:"nationality"`
	PhotoURL    string `gorm:"size:500" json:"photo_url"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Credits []DesignCredit `gorm:"foreignKey:PersonID" json:"credits,omitempty"`
}

func (Person) TableName() string { return "person" }
