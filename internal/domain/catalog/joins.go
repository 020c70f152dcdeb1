package catalog

import "time"

// Credit role codes.
const (
	RoleConcept   = "concept"
	RoleDesign    = "design"
	RoleArt       = "art"
	RoleMechanics = "mechanics"
	RoleMusic     = "music"
	RoleSound     = "sound"
	RoleVoice     = "voice"
	RoleSoftware  = "software"
	RoleAnimation = "animation"
	RoleOther     = "other"
)

// DesignCredit links a person to a machine with a specific role. Rows
// are owned by relationship resolution; handwritten mutation outside the
// resolver is out of contract.
type DesignCredit struct {
	ID uint `gorm:"primaryKey" json:"id"`

	MachineID uint     `gorm:"not null;index:idx_credit_machine_person_role,unique,priority:1" json:"machine_id"`
	Machine   *Machine `gorm:"constraint:OnDelete:CASCADE;foreignKey:MachineID;references:ID" json:"machine,omitempty"`

	PersonID uint    `gorm:"not null;index:idx_credit_machine_person_role,unique,priority:2" json:"person_id"`
	Person   *Person `gorm:"constraint:OnDelete:CASCADE;foreignKey:PersonID;references:ID" json:"person,omitempty"`

	Role string `gorm:"size:20;not null;index:idx_credit_machine_person_role,unique,priority:3" json:"role"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (DesignCredit) TableName() string { return "design_credit" }

// MachineTheme is the materialized view of a theme relationship claim.
type MachineTheme struct {
	ID uint `gorm:"primaryKey" json:"id"`

	MachineID uint     `gorm:"not null;index:idx_machine_theme,unique,priority:1" json:"machine_id"`
	Machine   *Machine `gorm:"constraint:OnDelete:CASCADE;foreignKey:MachineID;references:ID" json:"machine,omitempty"`

	ThemeID uint   `gorm:"not null;index:idx_machine_theme,unique,priority:2" json:"theme_id"`
	Theme   *Theme `gorm:"constraint:OnDelete:CASCADE;foreignKey:ThemeID;references:ID" json:"theme,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MachineTheme) TableName() string { return "machine_theme" }

// AwardRecipient is the materialized view of a recipient relationship
// claim on an Award. Year is null when the award year is unknown.
type AwardRecipient struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AwardID uint   `gorm:"not null;index:idx_award_recipient,unique,priority:1" json:"award_id"`
	Award   *Award `gorm:"constraint:OnDelete:CASCADE;foreignKey:AwardID;references:ID" json:"award,omitempty"`

	PersonID uint    `gorm:"not null;index:idx_award_recipient,unique,priority:2" json:"person_id"`
	Person   *Person `gorm:"constraint:OnDelete:CASCADE;foreignKey:PersonID;references:ID" json:"person,omitempty"`

	Year *int `gorm:"index:idx_award_recipient,unique,priority:3" json:"year,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (AwardRecipient) TableName() string { return "award_recipient" }
