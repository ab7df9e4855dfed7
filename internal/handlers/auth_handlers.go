package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// AuthHandler exposes authentication and profile endpoints.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		respondServiceError(c, err, "Login")
		return
	}
	utils.RespondWithData(c, http.StatusOK, resp, "Login successful")
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	resp, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		respondServiceError(c, err, "Refresh")
		return
	}
	utils.RespondWithData(c, http.StatusOK, resp, "Token refreshed")
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	actor := middleware.GetActor(c)
	user, err := h.authService.GetProfile(actor.UserID)
	if err != nil {
		respondServiceError(c, err, "Profile")
		return
	}
	utils.RespondWithData(c, http.StatusOK, user, "")
}
