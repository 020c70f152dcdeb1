package repos

import (
	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/data/repos/catalog"
	"github.com/pinlore/pinlore-backend/internal/data/repos/provenance"
	"github.com/pinlore/pinlore-backend/internal/data/repos/user"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type SourceRepo = provenance.SourceRepo
type ClaimRepo = provenance.ClaimRepo
type IngestRunRepo = provenance.IngestRunRepo

type MachineRepo = catalog.MachineRepo
type MachineFilter = catalog.MachineFilter
type ManufacturerRepo = catalog.ManufacturerRepo
type ManufacturerEntityRepo = catalog.ManufacturerEntityRepo
type MachineGroupRepo = catalog.MachineGroupRepo
type PersonRepo = catalog.PersonRepo
type ThemeRepo = catalog.ThemeRepo
type AwardRepo = catalog.AwardRepo
type TypeProfileRepo = catalog.TypeProfileRepo

type DesignCreditRepo = catalog.DesignCreditRepo
type MachineThemeRepo = catalog.MachineThemeRepo
type AwardRecipientRepo = catalog.AwardRecipientRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return provenance.NewSourceRepo(db, baseLog)
}
func NewClaimRepo(db *gorm.DB, baseLog *logger.Logger) ClaimRepo {
	return provenance.NewClaimRepo(db, baseLog)
}
func NewIngestRunRepo(db *gorm.DB, baseLog *logger.Logger) IngestRunRepo {
	return provenance.NewIngestRunRepo(db, baseLog)
}

func NewMachineRepo(db *gorm.DB, baseLog *logger.Logger) MachineRepo {
	return catalog.NewMachineRepo(db, baseLog)
}
func NewManufacturerRepo(db *gorm.DB, baseLog *logger.Logger) ManufacturerRepo {
	return catalog.NewManufacturerRepo(db, baseLog)
}
func NewManufacturerEntityRepo(db *gorm.DB, baseLog *logger.Logger) ManufacturerEntityRepo {
	return catalog.NewManufacturerEntityRepo(db, baseLog)
}
func NewMachineGroupRepo(db *gorm.DB, baseLog *logger.Logger) MachineGroupRepo {
	return catalog.NewMachineGroupRepo(db, baseLog)
}
func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return catalog.NewPersonRepo(db, baseLog)
}
func NewThemeRepo(db *gorm.DB, baseLog *logger.Logger) ThemeRepo {
	return catalog.NewThemeRepo(db, baseLog)
}
func NewAwardRepo(db *gorm.DB, baseLog *logger.Logger) AwardRepo {
	return catalog.NewAwardRepo(db, baseLog)
}
func NewTypeProfileRepo(db *gorm.DB, baseLog *logger.Logger) TypeProfileRepo {
	return catalog.NewTypeProfileRepo(db, baseLog)
}

func NewDesignCreditRepo(db *gorm.DB, baseLog *logger.Logger) DesignCreditRepo {
	return catalog.NewDesignCreditRepo(db, baseLog)
}
func NewMachineThemeRepo(db *gorm.DB, baseLog *logger.Logger) MachineThemeRepo {
	return catalog.NewMachineThemeRepo(db, baseLog)
}
func NewAwardRecipientRepo(db *gorm.DB, baseLog *logger.Logger) AwardRecipientRepo {
	return catalog.NewAwardRecipientRepo(db, baseLog)
}
