package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pinlore/pinlore-backend/internal/http/response"
	"github.com/pinlore/pinlore-backend/internal/platform/apierr"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_request", err))
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	user, token, err := ah.authService.Register(dbc, req.Email, req.Password, req.DisplayName)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"user":         user,
		"access_token": token,
	})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apierr.BadRequest("invalid_request", err))
		return
	}
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	user, token, err := ah.authService.Login(dbc, req.Email, req.Password)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"user":         user,
		"access_token": token,
	})
}
