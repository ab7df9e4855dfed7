package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// RestaurantHandler exposes tenant onboarding and settings endpoints.
type RestaurantHandler struct {
	restaurantService services.RestaurantService
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(restaurantService services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService}
}

// Onboard handles POST /restaurants. Public: creates the tenant and its
// owner account in one call.
func (h *RestaurantHandler) Onboard(c *gin.Context) {
	var req services.OnboardRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	restaurant, owner, err := h.restaurantService.Onboard(req)
	if err != nil {
		respondServiceError(c, err, "Onboard")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, gin.H{
		"restaurant": restaurant,
		"owner":      owner,
	}, "Restaurant onboarded")
}

// Get handles GET /restaurants/:id.
func (h *RestaurantHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	restaurant, err := h.restaurantService.GetByID(id)
	if err != nil {
		respondServiceError(c, err, "GetRestaurant")
		return
	}
	utils.RespondWithData(c, http.StatusOK, restaurant, "")
}

// List handles GET /restaurants. Platform admins only.
func (h *RestaurantHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	restaurants, total, err := h.restaurantService.List(middleware.GetActor(c), page, pageSize)
	if err != nil {
		respondServiceError(c, err, "ListRestaurants")
		return
	}
	utils.RespondWithData(c, http.StatusOK, paginated(restaurants, total, page, pageSize), "")
}

// Update handles PATCH /restaurants/:id.
func (h *RestaurantHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	restaurant, err := h.restaurantService.Update(middleware.GetActor(c), id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateRestaurant")
		return
	}
	utils.RespondWithData(c, http.StatusOK, restaurant, "Restaurant updated")
}
