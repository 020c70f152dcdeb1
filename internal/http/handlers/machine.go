package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pinlore/pinlore-backend/internal/data/repos"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/http/response"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/services"
)

type MachineHandler struct {
	catalogService  services.CatalogService
	activityService services.ActivityService
}

func NewMachineHandler(catalogService services.CatalogService, activityService services.ActivityService) *MachineHandler {
	return &MachineHandler{catalogService: catalogService, activityService: activityService}
}

// GET /machines?manufacturer=&year=&type=&limit=&offset=
func (mh *MachineHandler) List(c *gin.Context) {
	f := repos.MachineFilter{
		ManufacturerSlug: strings.TrimSpace(c.Query("manufacturer")),
		MachineType:      strings.TrimSpace(c.Query("type")),
		Limit:            parseIntQuery(c, "limit", 50),
		Offset:           parseIntQuery(c, "offset", 0),
	}
	if y := strings.TrimSpace(c.Query("year")); y != "" {
		if year, err := strconv.Atoi(y); err == nil {
			f.Year = &year
		}
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	machines, total, err := mh.catalogService.ListMachines(dbc, f)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"machines": machines,
		"total":    total,
		"limit":    f.Limit,
		"offset":   f.Offset,
	})
}

// GET /machines/:slug
func (mh *MachineHandler) Get(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	machine, err := mh.catalogService.GetMachine(dbc, c.Param("slug"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, machine)
}

// GET /machines/:slug/activity
func (mh *MachineHandler) Activity(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	subject, err := mh.catalogService.SubjectBySlug(dbc, types.KindMachine, c.Param("slug"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	feed, err := mh.activityService.Feed(dbc, subject)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activity": feed})
}

func parseIntQuery(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
