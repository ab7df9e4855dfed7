package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/models"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// OrderHandler exposes guest ordering and staff order management.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateGuestOrder handles POST /public/orders, authenticated by the guest
// session middleware.
func (h *OrderHandler) CreateGuestOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.orderService.CreateGuestOrder(middleware.GetSession(c), req)
	if err != nil {
		respondServiceError(c, err, "CreateGuestOrder")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, order, "Order placed")
}

// TrackGuestOrder handles GET /public/orders/:id for the owning session.
func (h *OrderHandler) TrackGuestOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetGuestOrder(middleware.GetSession(c), orderID)
	if err != nil {
		respondServiceError(c, err, "TrackGuestOrder")
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "")
}

// CreateStaffOrder handles POST /restaurants/:id/orders.
func (h *OrderHandler) CreateStaffOrder(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.orderService.CreateStaffOrder(middleware.GetActor(c), restaurantID, req)
	if err != nil {
		respondServiceError(c, err, "CreateStaffOrder")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, order, "Order placed")
}

// List handles GET /restaurants/:id/orders with filters and a live summary.
func (h *OrderHandler) List(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	filters := models.OrderFilters{RestaurantID: restaurantID}
	filters.Page, filters.PageSize = parsePagination(c)
	if statusParam := c.Query("status"); statusParam != "" {
		for _, status := range strings.Split(statusParam, ",") {
			filters.Statuses = append(filters.Statuses, strings.ToUpper(strings.TrimSpace(status)))
		}
	}
	if tableIDStr := c.Query("table_id"); tableIDStr != "" {
		tableID, err := strconv.ParseInt(tableIDStr, 10, 64)
		if err != nil {
			utils.RespondValidationFailed(c, "table_id must be an integer")
			return
		}
		filters.TableID = &tableID
	}
	if date := c.Query("date"); date != "" {
		filters.Date = &date
	}

	orders, summary, total, err := h.orderService.ListOrders(middleware.GetActor(c), filters)
	if err != nil {
		respondServiceError(c, err, "ListOrders")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{
		"items":     orders,
		"summary":   summary,
		"total":     total,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	}, "")
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(middleware.GetActor(c), orderID)
	if err != nil {
		respondServiceError(c, err, "GetOrder")
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "")
}

// UpdateStatus handles PATCH /orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	req.Status = strings.ToUpper(req.Status)

	order, err := h.orderService.UpdateStatus(middleware.GetActor(c), orderID, req)
	if err != nil {
		respondServiceError(c, err, "UpdateOrderStatus")
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "Order status updated")
}

// ListUnreconciled handles GET /restaurants/:id/orders/unreconciled.
func (h *OrderHandler) ListUnreconciled(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	orders, err := h.orderService.ListUnreconciled(middleware.GetActor(c), restaurantID)
	if err != nil {
		respondServiceError(c, err, "ListUnreconciled")
		return
	}
	utils.RespondWithData(c, http.StatusOK, orders, "")
}
