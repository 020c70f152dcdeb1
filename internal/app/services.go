package app

import (
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/ingest"
	"github.com/pinlore/pinlore-backend/internal/invalidation"
	"github.com/pinlore/pinlore-backend/internal/ledger"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
	"github.com/pinlore/pinlore-backend/internal/resolve"
	"github.com/pinlore/pinlore-backend/internal/services"
)

type Services struct {
	Ledger  ledger.Service
	Resolve resolve.Service
	Ingest  ingest.Service

	Auth     services.AuthService
	Catalog  services.CatalogService
	Activity services.ActivityService
	Curation services.CurationService

	Publisher invalidation.Publisher
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	ledgerService := ledger.NewService(db, log, r.Claim)

	resolveService := resolve.NewService(
		db,
		log,
		r.Claim,
		r.Source,
		r.User,
		r.Machine,
		r.Manufacturer,
		r.ManufacturerEntity,
		r.MachineGroup,
		r.Person,
		r.Theme,
		r.Award,
		r.DesignCredit,
		r.MachineTheme,
		r.AwardRecipient,
	)

	ingestService := ingest.NewService(
		db,
		log,
		ledgerService,
		r.Source,
		r.IngestRun,
		r.Machine,
		r.Manufacturer,
		r.ManufacturerEntity,
		r.MachineGroup,
		r.Person,
		r.Award,
		r.Theme,
		r.TypeProfile,
	)

	// Redis is optional; without it invalidation events are dropped.
	publisher := invalidation.Publisher(invalidation.NewNopPublisher())
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		p, err := invalidation.NewRedisPublisher(log)
		if err != nil {
			return Services{}, err
		}
		publisher = p
	} else {
		log.Info("REDIS_ADDR not set, invalidation events disabled")
	}

	authService := services.NewAuthService(db, log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	catalogService := services.NewCatalogService(
		db,
		log,
		r.Machine,
		r.Manufacturer,
		r.ManufacturerEntity,
		r.Person,
		r.Award,
		r.Source,
		r.TypeProfile,
		r.DesignCredit,
		r.AwardRecipient,
	)
	activityService := services.NewActivityService(db, log, r.Claim, r.Source, r.User)
	curationService := services.NewCurationService(
		db,
		log,
		ledgerService,
		resolveService,
		catalogService,
		activityService,
		publisher,
	)

	return Services{
		Ledger:    ledgerService,
		Resolve:   resolveService,
		Ingest:    ingestService,
		Auth:      authService,
		Catalog:   catalogService,
		Activity:  activityService,
		Curation:  curationService,
		Publisher: publisher,
	}, nil
}
