package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pinlore/pinlore-backend/internal/http/response"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/services"
)

// CatalogHandler serves the non-machine read endpoints: manufacturers,
// people, awards, sources, and type profiles.
type CatalogHandler struct {
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (ch *CatalogHandler) ListManufacturers(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	manufacturers, err := ch.catalogService.ListManufacturers(dbc)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"manufacturers": manufacturers})
}

func (ch *CatalogHandler) GetManufacturer(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	detail, err := ch.catalogService.GetManufacturer(dbc, c.Param("slug"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

func (ch *CatalogHandler) ListPeople(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	people, total, err := ch.catalogService.ListPeople(dbc, limit, offset)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"people": people,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (ch *CatalogHandler) GetPerson(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	detail, err := ch.catalogService.GetPerson(dbc, c.Param("slug"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

func (ch *CatalogHandler) ListAwards(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	awards, err := ch.catalogService.ListAwards(dbc)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"awards": awards})
}

func (ch *CatalogHandler) GetAward(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	award, err := ch.catalogService.GetAward(dbc, c.Param("slug"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, award)
}

func (ch *CatalogHandler) ListSources(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	sources, err := ch.catalogService.ListSources(dbc)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sources": sources})
}

func (ch *CatalogHandler) ListMachineTypes(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	profiles, err := ch.catalogService.ListMachineTypes(dbc)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"machine_types": profiles})
}

func (ch *CatalogHandler) GetMachineType(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	profile, err := ch.catalogService.GetMachineType(dbc, c.Param("slug"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, profile)
}

func (ch *CatalogHandler) ListDisplayTypes(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	profiles, err := ch.catalogService.ListDisplayTypes(dbc)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"display_types": profiles})
}

func (ch *CatalogHandler) GetDisplayType(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	profile, err := ch.catalogService.GetDisplayType(dbc, c.Param("slug"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, profile)
}
