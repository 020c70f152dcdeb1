package db

import (
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Identity + auth
		// =========================
		&types.User{},

		// =========================
		// Catalog reference entities
		// =========================
		&types.Manufacturer{},
		&types.ManufacturerEntity{},
		&types.MachineGroup{},
		&types.Theme{},
		&types.MachineTypeProfile{},
		&types.DisplayTypeProfile{},

		// =========================
		// Catalog claim subjects
		// =========================
		&types.Machine{},
		&types.Person{},
		&types.Award{},

		// =========================
		// Materialized relationships
		// =========================
		&types.DesignCredit{},
		&types.MachineTheme{},
		&types.AwardRecipient{},

		// =========================
		// Provenance ledger
		// =========================
		&types.Source{},
		&types.Claim{},
		&types.IngestRun{},
	)
}
