package app

import (
	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/data/repos"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type Repos struct {
	User repos.UserRepo

	Source    repos.SourceRepo
	Claim     repos.ClaimRepo
	IngestRun repos.IngestRunRepo

	Machine            repos.MachineRepo
	Manufacturer       repos.ManufacturerRepo
	ManufacturerEntity repos.ManufacturerEntityRepo
	MachineGroup       repos.MachineGroupRepo
	Person             repos.PersonRepo
	Theme              repos.ThemeRepo
	Award              repos.AwardRepo
	TypeProfile        repos.TypeProfileRepo

	DesignCredit   repos.DesignCreditRepo
	MachineTheme   repos.MachineThemeRepo
	AwardRecipient repos.AwardRecipientRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:               repos.NewUserRepo(db, log),
		Source:             repos.NewSourceRepo(db, log),
		Claim:              repos.NewClaimRepo(db, log),
		IngestRun:          repos.NewIngestRunRepo(db, log),
		Machine:            repos.NewMachineRepo(db, log),
		Manufacturer:       repos.NewManufacturerRepo(db, log),
		ManufacturerEntity: repos.NewManufacturerEntityRepo(db, log),
		MachineGroup:       repos.NewMachineGroupRepo(db, log),
		Person:             repos.NewPersonRepo(db, log),
		Theme:              repos.NewThemeRepo(db, log),
		Award:              repos.NewAwardRepo(db, log),
		TypeProfile:        repos.NewTypeProfileRepo(db, log),
		DesignCredit:       repos.NewDesignCreditRepo(db, log),
		MachineTheme:       repos.NewMachineThemeRepo(db, log),
		AwardRecipient:     repos.NewAwardRecipientRepo(db, log),
	}
}
