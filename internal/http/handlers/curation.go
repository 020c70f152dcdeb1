package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/pinlore/pinlore-backend/internal/http/response"
	"github.com/pinlore/pinlore-backend/internal/platform/apierr"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/services"
)

type CurationHandler struct {
	curationService services.CurationService
}

func NewCurationHandler(curationService services.CurationService) *CurationHandler {
	return &CurationHandler{curationService: curationService}
}

// PATCH /:kind/:slug/claims
// body: { "claims": { "year": 1993, ... }, "citation": "..." }
func (ch *CurationHandler) EditClaims(c *gin.Context) {
	var req struct {
		Claims   map[string]json.RawMessage `json:"claims"`
		Citation string                     `json:"citation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_request", err))
		return
	}

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	result, err := ch.curationService.EditClaims(dbc, services.EditClaimsInput{
		Kind:     c.Param("kind"),
		Slug:     c.Param("slug"),
		Claims:   req.Claims,
		Citation: req.Citation,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, result)
}
