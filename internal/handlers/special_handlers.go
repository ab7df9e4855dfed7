package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// SpecialHandler exposes daily special management.
type SpecialHandler struct {
	specialService services.SpecialService
}

// NewSpecialHandler creates a new SpecialHandler.
func NewSpecialHandler(specialService services.SpecialService) *SpecialHandler {
	return &SpecialHandler{specialService: specialService}
}

// Create handles POST /restaurants/:id/specials.
func (h *SpecialHandler) Create(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateSpecialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	special, err := h.specialService.Create(middleware.GetActor(c), restaurantID, req)
	if err != nil {
		respondServiceError(c, err, "CreateSpecial")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, special, "Special created")
}

// List handles GET /restaurants/:id/specials.
func (h *SpecialHandler) List(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	activeOnly := c.DefaultQuery("active_only", "false") == "true"

	specials, err := h.specialService.List(middleware.GetActor(c), restaurantID, activeOnly)
	if err != nil {
		respondServiceError(c, err, "ListSpecials")
		return
	}
	utils.RespondWithData(c, http.StatusOK, specials, "")
}

// Update handles PATCH /specials/:id.
func (h *SpecialHandler) Update(c *gin.Context) {
	specialID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateSpecialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	special, err := h.specialService.Update(middleware.GetActor(c), specialID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateSpecial")
		return
	}
	utils.RespondWithData(c, http.StatusOK, special, "Special updated")
}

// Deactivate handles DELETE /specials/:id. Soft delete so past orders keep
// their discount reference.
func (h *SpecialHandler) Deactivate(c *gin.Context) {
	specialID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.specialService.Deactivate(middleware.GetActor(c), specialID); err != nil {
		respondServiceError(c, err, "DeactivateSpecial")
		return
	}
	utils.RespondWithData(c, http.StatusOK, nil, "Special deactivated")
}
