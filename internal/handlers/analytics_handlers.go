package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/models"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// AnalyticsHandler exposes the sales and menu analytics reads.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Sales handles GET /restaurants/:id/analytics/sales.
func (h *AnalyticsHandler) Sales(c *gin.Context) {
	params, ok := h.parseParams(c)
	if !ok {
		return
	}

	analytics, err := h.analyticsService.GetSalesAnalytics(middleware.GetActor(c), params)
	if err != nil {
		respondServiceError(c, err, "SalesAnalytics")
		return
	}
	utils.RespondWithData(c, http.StatusOK, analytics, "")
}

// Menu handles GET /restaurants/:id/analytics/menu.
func (h *AnalyticsHandler) Menu(c *gin.Context) {
	params, ok := h.parseParams(c)
	if !ok {
		return
	}

	analytics, err := h.analyticsService.GetMenuAnalytics(middleware.GetActor(c), params)
	if err != nil {
		respondServiceError(c, err, "MenuAnalytics")
		return
	}
	utils.RespondWithData(c, http.StatusOK, analytics, "")
}

func (h *AnalyticsHandler) parseParams(c *gin.Context) (models.AnalyticsParams, bool) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return models.AnalyticsParams{}, false
	}

	params := models.AnalyticsParams{
		RestaurantID: restaurantID,
		Period:       c.DefaultQuery("period", "today"),
		GroupBy:      c.DefaultQuery("group_by", "day"),
		SortBy:       c.DefaultQuery("sort_by", "revenue"),
	}

	if fromStr := c.Query("date_from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			utils.RespondValidationFailed(c, "date_from must be YYYY-MM-DD")
			return params, false
		}
		params.DateFrom = &from
	}
	if toStr := c.Query("date_to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			utils.RespondValidationFailed(c, "date_to must be YYYY-MM-DD")
			return params, false
		}
		params.DateTo = &to
	}
	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.ParseInt(categoryIDStr, 10, 64)
		if err != nil {
			utils.RespondValidationFailed(c, "category_id must be an integer")
			return params, false
		}
		params.CategoryID = &categoryID
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			utils.RespondValidationFailed(c, "limit must be a positive integer")
			return params, false
		}
		params.Limit = limit
	}
	return params, true
}
