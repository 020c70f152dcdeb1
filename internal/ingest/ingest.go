// Package ingest runs the ingestion pipeline: source registration from
// config, entity ensures, enumerated-code mapping and claim dump
// assertion. Adapters that speak third-party formats live outside the
// module and hand over dumps; resolution is a separate, explicit step.
package ingest

import (
	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/data/repos"
	"github.com/pinlore/pinlore-backend/internal/ledger"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type Service interface {
	// SyncSources upserts registered sources from a parsed config.
	SyncSources(dbc dbctx.Context, cfg *SourcesConfig) (*SourceSyncResult, error)
	// IngestClaims runs one claim dump end to end.
	IngestClaims(dbc dbctx.Context, dump *Dump, opts IngestOptions) (*ClaimIngestResult, error)
	// IngestTypeProfiles upserts the editorial machine and display type
	// profiles from a parsed seed file.
	IngestTypeProfiles(dbc dbctx.Context, seed *TypeProfileSeed) (*TypeProfileResult, error)
}

type service struct {
	db  *gorm.DB
	log *logger.Logger

	ledger ledger.Service

	sourceRepo             repos.SourceRepo
	runRepo                repos.IngestRunRepo
	machineRepo            repos.MachineRepo
	manufacturerRepo       repos.ManufacturerRepo
	manufacturerEntityRepo repos.ManufacturerEntityRepo
	machineGroupRepo       repos.MachineGroupRepo
	personRepo             repos.PersonRepo
	awardRepo              repos.AwardRepo
	themeRepo              repos.ThemeRepo
	typeProfileRepo        repos.TypeProfileRepo
}

func NewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ledgerSvc ledger.Service,
	sourceRepo repos.SourceRepo,
	runRepo repos.IngestRunRepo,
	machineRepo repos.MachineRepo,
	manufacturerRepo repos.ManufacturerRepo,
	manufacturerEntityRepo repos.ManufacturerEntityRepo,
	machineGroupRepo repos.MachineGroupRepo,
	personRepo repos.PersonRepo,
	awardRepo repos.AwardRepo,
	themeRepo repos.ThemeRepo,
	typeProfileRepo repos.TypeProfileRepo,
) Service {
	return &service{
		db:                     db,
		log:                    baseLog.With("service", "IngestService"),
		ledger:                 ledgerSvc,
		sourceRepo:             sourceRepo,
		runRepo:                runRepo,
		machineRepo:            machineRepo,
		manufacturerRepo:       manufacturerRepo,
		manufacturerEntityRepo: manufacturerEntityRepo,
		machineGroupRepo:       machineGroupRepo,
		personRepo:             personRepo,
		awardRepo:              awardRepo,
		themeRepo:              themeRepo,
		typeProfileRepo:        typeProfileRepo,
	}
}

func (s *service) ensureDeps() ensureDeps {
	return ensureDeps{
		machines:             s.machineRepo,
		manufacturers:        s.manufacturerRepo,
		manufacturerEntities: s.manufacturerEntityRepo,
		groups:               s.machineGroupRepo,
		persons:              s.personRepo,
		awards:               s.awardRepo,
		themes:               s.themeRepo,
	}
}
