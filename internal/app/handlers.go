package app

import (
	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/http/handlers"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Machine  *handlers.MachineHandler
	Catalog  *handlers.CatalogHandler
	Curation *handlers.CurationHandler
	Health   *handlers.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:     handlers.NewAuthHandler(services.Auth),
		Machine:  handlers.NewMachineHandler(services.Catalog, services.Activity),
		Catalog:  handlers.NewCatalogHandler(services.Catalog),
		Curation: handlers.NewCurationHandler(services.Curation),
		Health:   handlers.NewHealthHandler(db),
	}
}
