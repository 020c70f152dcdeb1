package app

import (
	"github.com/gin-gonic/gin"

	pinhttp "github.com/pinlore/pinlore-backend/internal/http"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return pinhttp.NewRouter(pinhttp.RouterConfig{
		Log:             log,
		AuthHandler:     handlers.Auth,
		AuthMiddleware:  middleware.Auth,
		MachineHandler:  handlers.Machine,
		CatalogHandler:  handlers.Catalog,
		CurationHandler: handlers.Curation,
		HealthHandler:   handlers.Health,
	})
}
