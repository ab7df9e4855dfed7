package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// StaffHandler exposes staff account management endpoints.
type StaffHandler struct {
	authService services.AuthService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(authService services.AuthService) *StaffHandler {
	return &StaffHandler{authService: authService}
}

// Register handles POST /restaurants/:id/staff.
func (h *StaffHandler) Register(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.RegisterStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	user, err := h.authService.RegisterStaff(middleware.GetActor(c), restaurantID, req)
	if err != nil {
		respondServiceError(c, err, "RegisterStaff")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, user, "Staff account created")
}

// List handles GET /restaurants/:id/staff.
func (h *StaffHandler) List(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)

	users, total, err := h.authService.ListStaff(middleware.GetActor(c), restaurantID, page, pageSize)
	if err != nil {
		respondServiceError(c, err, "ListStaff")
		return
	}
	utils.RespondWithData(c, http.StatusOK, paginated(users, total, page, pageSize), "")
}

// Update handles PATCH /staff/:id.
func (h *StaffHandler) Update(c *gin.Context) {
	staffID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	user, err := h.authService.UpdateStaff(middleware.GetActor(c), staffID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateStaff")
		return
	}
	utils.RespondWithData(c, http.StatusOK, user, "Staff account updated")
}

// Deactivate handles DELETE /staff/:id.
func (h *StaffHandler) Deactivate(c *gin.Context) {
	staffID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.authService.DeactivateStaff(middleware.GetActor(c), staffID); err != nil {
		respondServiceError(c, err, "DeactivateStaff")
		return
	}
	utils.RespondWithData(c, http.StatusOK, nil, "Staff account deactivated")
}
