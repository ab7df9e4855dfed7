package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/services"
	"dineqr_backend/pkg/utils"
)

// PaymentHandler exposes payment recording, payment intents and gateway
// configuration.
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Record handles POST /orders/:id/payments.
func (h *PaymentHandler) Record(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	req.PaymentMethod = strings.ToUpper(req.PaymentMethod)

	tx, err := h.paymentService.RecordPayment(middleware.GetActor(c), orderID, req)
	if err != nil {
		respondServiceError(c, err, "RecordPayment")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, tx, "Payment recorded")
}

// CreateIntent handles POST /public/orders/:id/payment-intent for guests.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	intent, err := h.paymentService.CreatePaymentIntent(middleware.GetSession(c), orderID)
	if err != nil {
		respondServiceError(c, err, "CreatePaymentIntent")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, intent, "Payment intent created")
}

// UpdateStatus handles PATCH /orders/:id/payment-status.
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	req.PaymentStatus = strings.ToUpper(req.PaymentStatus)

	order, err := h.paymentService.UpdatePaymentStatus(middleware.GetActor(c), orderID, req)
	if err != nil {
		respondServiceError(c, err, "UpdatePaymentStatus")
		return
	}
	utils.RespondWithData(c, http.StatusOK, order, "Payment status updated")
}

// ListTransactions handles GET /orders/:id/payments.
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	transactions, err := h.paymentService.ListTransactions(middleware.GetActor(c), orderID)
	if err != nil {
		respondServiceError(c, err, "ListTransactions")
		return
	}
	utils.RespondWithData(c, http.StatusOK, transactions, "")
}

// ConfigureGateway handles POST /restaurants/:id/gateways.
func (h *PaymentHandler) ConfigureGateway(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ConfigureGatewayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	gateway, err := h.paymentService.ConfigureGateway(middleware.GetActor(c), restaurantID, req)
	if err != nil {
		respondServiceError(c, err, "ConfigureGateway")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, gateway, "Gateway configured")
}

// ListGateways handles GET /restaurants/:id/gateways.
func (h *PaymentHandler) ListGateways(c *gin.Context) {
	restaurantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	gateways, err := h.paymentService.ListGateways(middleware.GetActor(c), restaurantID)
	if err != nil {
		respondServiceError(c, err, "ListGateways")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gateways, "")
}
