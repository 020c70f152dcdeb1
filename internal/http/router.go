package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/pinlore/pinlore-backend/internal/http/handlers"
	httpMW "github.com/pinlore/pinlore-backend/internal/http/middleware"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	MachineHandler  *httpH.MachineHandler
	CatalogHandler  *httpH.CatalogHandler
	CurationHandler *httpH.CurationHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}

		// Machines
		if cfg.MachineHandler != nil {
			api.GET("/machines", cfg.MachineHandler.List)
			api.GET("/machines/:slug", cfg.MachineHandler.Get)
			api.GET("/machines/:slug/activity", cfg.MachineHandler.Activity)
		}

		// Reference catalog
		if cfg.CatalogHandler != nil {
			api.GET("/manufacturers", cfg.CatalogHandler.ListManufacturers)
			api.GET("/manufacturers/:slug", cfg.CatalogHandler.GetManufacturer)
			api.GET("/people", cfg.CatalogHandler.ListPeople)
			api.GET("/people/:slug", cfg.CatalogHandler.GetPerson)
			api.GET("/awards", cfg.CatalogHandler.ListAwards)
			api.GET("/awards/:slug", cfg.CatalogHandler.GetAward)
			api.GET("/sources", cfg.CatalogHandler.ListSources)
			api.GET("/machine-types", cfg.CatalogHandler.ListMachineTypes)
			api.GET("/machine-types/:slug", cfg.CatalogHandler.GetMachineType)
			api.GET("/display-types", cfg.CatalogHandler.ListDisplayTypes)
			api.GET("/display-types/:slug", cfg.CatalogHandler.GetDisplayType)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Claim edits
		if cfg.CurationHandler != nil {
			protected.PATCH("/:kind/:slug/claims", cfg.CurationHandler.EditClaims)
		}
	}

	return r
}
