package catalog

import "time"

// Manufacturer is a pinball machine brand, the user-facing grouping.
// Corporate incarnations are tracked separately in ManufacturerEntity:
// "Gottlieb" is one Manufacturer with several entity records spanning
// ownership eras.
//
// The descriptive columns are claim-resolved; Slug and
// OPDBManufacturerID are reference data maintained by ingestion.
type Manufacturer struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:200;not null;index" json:"name"`
	Slug string `gorm:"size:200;not null;uniqueIndex" json:"slug"`

	// TradeName is the brand name if different from the corporate name
	// (e.g. "Bally" for Midway Manufacturing). Feeds the name fallback
	// of the manufacturer reference lookup.
	TradeName string `gorm:"size:200" json:"trade_name"`

	// OPDBManufacturerID cross-references OPDB's manufacturer_id and
	// backs the opdb-scoped reference lookup during resolution.
	OPDBManufacturerID *int64 `gorm:"uniqueIndex" json:"opdb_manufacturer_id,omitempty"`

	Description   string `gorm:"type:text" json:"description"`
	FoundedYear   *int   `json:"founded_year,omitempty"`
	DissolvedYear *int   `json:"dissolved_year,omitempty"`
	Country       string `gorm:"size:200" json:"country"`
	Headquarters  string `gorm:"size:200" json:"headquarters"`
	LogoURL       string `gorm:"size:500" json:"logo_url"`
	Website       string `gorm:"size:500" json:"website"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Manufacturer) TableName() string { return "manufacturer" }

// ManufacturerEntity is a specific corporate incarnation of a brand.
// IPDB tracks corporate entities (four separate Gottliebs across its
// ownership eras); each maps to one brand-level Manufacturer. Reference
// data only, never a claim subject.
type ManufacturerEntity struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ManufacturerID uint          `gorm:"not null;index" json:"manufacturer_id"`
	Manufacturer   *Manufacturer `gorm:"constraint:OnDelete:CASCADE;foreignKey:ManufacturerID;references:ID" json:"manufacturer,omitempty"`

	// Name is the full corporate name, e.g. "D. Gottlieb & Company".
	Name string `gorm:"size:300;not null" json:"name"`

	// IPDBManufacturerID cross-references IPDB's ManufacturerId and backs
	// the ipdb-scoped reference lookup during resolution.
	IPDBManufacturerID *int64 `gorm:"uniqueIndex" json:"ipdb_manufacturer_id,omitempty"`

	// YearsActive is the operating period, e.g. "1931-1977".
	YearsActive string `gorm:"size:50" json:"years_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ManufacturerEntity) TableName() string { return "manufacturer_entity" }
