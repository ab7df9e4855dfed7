package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// SessionHandler exposes the public guest session endpoints.
type SessionHandler struct {
	sessionService services.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Start handles POST /public/sessions from a scanned QR code.
func (h *SessionHandler) Start(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "StartSession")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, session, "Session started")
}

// Current handles GET /public/sessions/me. The middleware has already
// validated the token.
func (h *SessionHandler) Current(c *gin.Context) {
	utils.RespondWithData(c, http.StatusOK, middleware.GetSession(c), "")
}

// Update handles PATCH /public/sessions/me: guest details and cart.
func (h *SessionHandler) Update(c *gin.Context) {
	var req services.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	session := middleware.GetSession(c)
	updated, err := h.sessionService.Update(c.Request.Context(), session.SessionToken, req)
	if err != nil {
		respondServiceError(c, err, "UpdateSession")
		return
	}
	utils.RespondWithData(c, http.StatusOK, updated, "Session updated")
}

// End handles DELETE /public/sessions/me. Idempotent.
func (h *SessionHandler) End(c *gin.Context) {
	session := middleware.GetSession(c)
	if err := h.sessionService.End(c.Request.Context(), session.SessionToken); err != nil {
		respondServiceError(c, err, "EndSession")
		return
	}
	utils.RespondWithData(c, http.StatusOK, nil, "Session ended")
}
