package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
	"dineqr_backend/pkg/utils"
)

// paymentTransitions is the payment state machine. It runs parallel to and
// independent of the order lifecycle.
var paymentTransitions = map[string][]string{
	models.PaymentStatusPending:    {models.PaymentStatusProcessing, models.PaymentStatusCompleted, models.PaymentStatusFailed, models.PaymentStatusCancelled},
	models.PaymentStatusProcessing: {models.PaymentStatusCompleted, models.PaymentStatusFailed, models.PaymentStatusCancelled},
	models.PaymentStatusCompleted:  {models.PaymentStatusRefunded},
	models.PaymentStatusFailed:     {models.PaymentStatusPending, models.PaymentStatusProcessing},
	models.PaymentStatusCancelled:  {},
	models.PaymentStatusRefunded:   {},
}

// CanPaymentTransition reports whether the payment machine permits the move.
func CanPaymentTransition(from, to string) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// --- DTOs ---

// RecordPaymentRequest records a manual (cash or offline card) payment.
type RecordPaymentRequest struct {
	PaymentMethod string  `json:"payment_method" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	CustomerName  *string `json:"customer_name"`
}

// ConfigureGatewayRequest registers a hosted-checkout provider for a tenant.
type ConfigureGatewayRequest struct {
	Provider  string `json:"provider" binding:"required"`
	IsDefault bool   `json:"is_default"`
}

// UpdatePaymentStatusRequest moves an order's payment state.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// --- PaymentService Interface ---

type PaymentService interface {
	RecordPayment(actor *Actor, orderID int64, req RecordPaymentRequest) (*models.PaymentTransaction, error)
	CreatePaymentIntent(session *models.GuestSession, orderID int64) (*models.PaymentIntent, error)
	UpdatePaymentStatus(actor *Actor, orderID int64, req UpdatePaymentStatusRequest) (*models.Order, error)
	ListTransactions(actor *Actor, orderID int64) ([]models.PaymentTransaction, error)
	ConfigureGateway(actor *Actor, restaurantID int64, req ConfigureGatewayRequest) (*models.PaymentGateway, error)
	ListGateways(actor *Actor, restaurantID int64) ([]models.PaymentGateway, error)
}

type paymentService struct {
	paymentRepo    repositories.PaymentRepository
	orderRepo      repositories.OrderRepository
	restaurantRepo repositories.RestaurantRepository
	authz          AuthzService
	db             *sql.DB
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	orderRepo repositories.OrderRepository,
	restaurantRepo repositories.RestaurantRepository,
	authz AuthzService,
	db *sql.DB,
) PaymentService {
	return &paymentService{
		paymentRepo:    paymentRepo,
		orderRepo:      orderRepo,
		restaurantRepo: restaurantRepo,
		authz:          authz,
		db:             db,
	}
}

// RecordPayment appends a payment transaction and completes the order's
// payment state in one transaction.
func (s *paymentService) RecordPayment(actor *Actor, orderID int64, req RecordPaymentRequest) (*models.PaymentTransaction, error) {
	if err := s.authz.Require(actor, CapRecordPayment); err != nil {
		return nil, err
	}

	method := strings.ToUpper(req.PaymentMethod)
	switch method {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodDigitalWallet, models.PaymentMethodBankTransfer:
	default:
		return nil, fmt.Errorf("%w: unknown payment method '%s'", ErrValidation, req.PaymentMethod)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("fetching order for payment: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, order.RestaurantID); err != nil {
		return nil, err
	}

	switch order.OrderStatus {
	case models.OrderStatusCancelled, models.OrderStatusRefunded:
		return nil, fmt.Errorf("%w: order is %s", ErrOrderNotPayable, order.OrderStatus)
	}
	if order.PaymentStatus == models.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: payment already completed", ErrOrderNotPayable)
	}
	if utils.Round2(req.Amount) < order.TotalAmount {
		return nil, fmt.Errorf("%w: amount %.2f is less than order total %.2f", ErrValidation, req.Amount, order.TotalAmount)
	}

	reference, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generating payment reference: %w", err)
	}

	transaction := models.PaymentTransaction{
		RestaurantID:      order.RestaurantID,
		OrderID:           orderID,
		InternalReference: "PAY-" + reference[:16],
		PaymentMethod:     method,
		Amount:            utils.Round2(req.Amount),
		NetAmount:         order.TotalAmount,
		Status:            models.PaymentStatusCompleted,
		CustomerName:      req.CustomerName,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting payment transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.paymentRepo.CreateTransaction(tx, &transaction); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}
	if err := s.orderRepo.UpdatePaymentStatus(tx, orderID, models.PaymentStatusCompleted); err != nil {
		return nil, fmt.Errorf("completing order payment status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing payment: %w", err)
	}
	return &transaction, nil
}

// CreatePaymentIntent returns a gateway handle for hosted checkout. It does
// not touch order state; completion arrives through the gateway's webhook.
func (s *paymentService) CreatePaymentIntent(session *models.GuestSession, orderID int64) (*models.PaymentIntent, error) {
	now := time.Now()
	if session.IsExpired(now) {
		return nil, ErrSessionExpired
	}
	if !session.IsActive {
		return nil, ErrSessionInactive
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("fetching order for payment intent: %w", err)
	}
	if order.GuestSessionID == nil || *order.GuestSessionID != session.ID {
		return nil, ErrOrderNotFound
	}
	if order.PaymentStatus == models.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: payment already completed", ErrOrderNotPayable)
	}

	gateway, err := s.paymentRepo.GetDefaultActiveGateway(order.RestaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrGatewayUnavailable
		}
		return nil, fmt.Errorf("resolving payment gateway: %w", err)
	}

	restaurant, err := s.restaurantRepo.GetByID(order.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("fetching restaurant for payment intent: %w", err)
	}

	secret, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generating intent secret: %w", err)
	}

	intentID := fmt.Sprintf("pi_%d_%d", orderID, now.Unix())
	return &models.PaymentIntent{
		ID:           intentID,
		ClientSecret: secret,
		Amount:       order.TotalAmount,
		Currency:     restaurant.CurrencyCode,
		Status:       strings.ToLower(models.PaymentStatusPending),
		PaymentURL:   fmt.Sprintf("https://pay.%s.example/checkout/%s", strings.ToLower(gateway.Provider), intentID),
	}, nil
}

func (s *paymentService) UpdatePaymentStatus(actor *Actor, orderID int64, req UpdatePaymentStatusRequest) (*models.Order, error) {
	if err := s.authz.Require(actor, CapRecordPayment); err != nil {
		return nil, err
	}

	newStatus := strings.ToUpper(req.PaymentStatus)
	if _, ok := paymentTransitions[newStatus]; !ok {
		return nil, fmt.Errorf("%w: unknown payment status '%s'", ErrValidation, req.PaymentStatus)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("fetching order for payment status update: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, order.RestaurantID); err != nil {
		return nil, err
	}

	if order.PaymentStatus == newStatus {
		return order, nil
	}
	if !CanPaymentTransition(order.PaymentStatus, newStatus) {
		return nil, fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, order.PaymentStatus, newStatus)
	}

	if err := s.orderRepo.UpdatePaymentStatus(s.db, orderID, newStatus); err != nil {
		return nil, fmt.Errorf("updating payment status: %w", err)
	}
	order.PaymentStatus = newStatus
	return order, nil
}

func (s *paymentService) ListTransactions(actor *Actor, orderID int64) ([]models.PaymentTransaction, error) {
	if err := s.authz.Require(actor, CapViewOrders); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("fetching order for transaction listing: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, order.RestaurantID); err != nil {
		return nil, err
	}

	transactions, err := s.paymentRepo.ListTransactionsByOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("listing payment transactions: %w", err)
	}
	return transactions, nil
}

func (s *paymentService) ConfigureGateway(actor *Actor, restaurantID int64, req ConfigureGatewayRequest) (*models.PaymentGateway, error) {
	if err := s.authz.Require(actor, CapManagePayments); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, err
	}

	provider := strings.ToUpper(req.Provider)
	switch provider {
	case models.GatewayStripe, models.GatewayPaypal, models.GatewaySquare:
	default:
		return nil, fmt.Errorf("%w: unknown gateway provider '%s'", ErrValidation, req.Provider)
	}

	gateway := models.PaymentGateway{
		RestaurantID: restaurantID,
		Provider:     provider,
		IsDefault:    req.IsDefault,
		Status:       "active",
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting gateway transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.paymentRepo.CreateGateway(tx, &gateway); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: provider %s already configured", ErrValidation, provider)
		}
		return nil, fmt.Errorf("configuring gateway: %w", err)
	}
	if req.IsDefault {
		if err := s.paymentRepo.SetDefaultGateway(tx, restaurantID, gateway.ID); err != nil {
			return nil, fmt.Errorf("setting default gateway: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing gateway configuration: %w", err)
	}
	return &gateway, nil
}

func (s *paymentService) ListGateways(actor *Actor, restaurantID int64) ([]models.PaymentGateway, error) {
	if err := s.authz.Require(actor, CapManagePayments); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, err
	}
	gateways, err := s.paymentRepo.ListGateways(restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing gateways: %w", err)
	}
	return gateways, nil
}
