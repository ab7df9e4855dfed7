package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// timeNow is swappable in tests.
var timeNow = time.Now

// respondServiceError maps service sentinel errors onto the API error
// envelope. Unrecognized errors are logged and returned as opaque 500s.
func respondServiceError(c *gin.Context, err error, logContext string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Input validation failed.", err.Error()))
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Operation not permitted.", err.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid email or password.", ""))
	case errors.Is(err, services.ErrAccountLocked):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeAccountLocked, "Account temporarily locked after repeated failures.", ""))
	case errors.Is(err, services.ErrSessionExpired):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeSessionExpired, "Guest session has expired. Scan the table QR code again.", ""))
	case errors.Is(err, services.ErrSessionInactive):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeSessionInactive, "Guest session was ended.", ""))
	case errors.Is(err, services.ErrEmailTaken):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already registered.", ""))
	case errors.Is(err, services.ErrRestaurantNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrMenuItemNotFound),
		errors.Is(err, services.ErrOptionNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrSpecialNotFound),
		errors.Is(err, services.ErrGatewayNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found.", err.Error()))
	case errors.Is(err, services.ErrTableHasOpenOrders),
		errors.Is(err, services.ErrCategoryInUse):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Resource is still in use.", err.Error()))
	case errors.Is(err, services.ErrRestaurantInactive),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrOrderNotPayable),
		errors.Is(err, services.ErrGatewayUnavailable),
		errors.Is(err, services.ErrSpecialExpired),
		errors.Is(err, services.ErrItemUnavailable):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeStateError, "Operation conflicts with current state.", err.Error()))
	case errors.Is(err, services.ErrEmptyOrder):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Order must contain at least one item.", ""))
	default:
		utils.LogError(err, logContext)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Internal server error.", ""))
	}
}

// parseIDParam parses a path parameter as a positive int64 ID.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid "+name+" parameter.", ""))
		return 0, false
	}
	return id, true
}

// parsePagination reads page/page_size query parameters with defaults.
func parsePagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil && v > 0 && v <= 100 {
		pageSize = v
	}
	return page, pageSize
}

// paginated wraps a list payload with pagination metadata.
func paginated(items interface{}, total, page, pageSize int) gin.H {
	return gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}
}
