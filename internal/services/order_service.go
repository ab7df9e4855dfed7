package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
)

// --- DTOs ---

// OrderItemRequest is one requested order line.
type OrderItemRequest struct {
	MenuItemID          int64   `json:"menu_item_id" binding:"required"`
	Quantity            int     `json:"quantity" binding:"required,gt=0"`
	SpecialInstructions *string `json:"special_instructions"`
}

// CreateOrderRequest places an order. Guests omit Items to order their
// session cart; staff always send Items explicitly.
type CreateOrderRequest struct {
	OrderType           string             `json:"order_type"`
	TableID             *int64             `json:"table_id"`
	Items               []OrderItemRequest `json:"items"`
	SpecialID           *int64             `json:"special_id"`
	GuestName           *string            `json:"guest_name"`
	GuestPhone          *string            `json:"guest_phone"`
	GuestEmail          *string            `json:"guest_email" binding:"omitempty,email"`
	PartySize           int                `json:"party_size" binding:"omitempty,gt=0"`
	SpecialInstructions *string            `json:"special_instructions"`
	IdempotencyKey      *string            `json:"idempotency_key"`
}

// UpdateOrderStatusRequest advances an order through its lifecycle.
type UpdateOrderStatusRequest struct {
	Status             string     `json:"status" binding:"required"`
	InternalNotes      *string    `json:"internal_notes"`
	EstimatedReadyTime *time.Time `json:"estimated_ready_time"`
}

// --- OrderService Interface ---

type OrderService interface {
	CreateGuestOrder(session *models.GuestSession, req CreateOrderRequest) (*models.Order, error)
	CreateStaffOrder(actor *Actor, restaurantID int64, req CreateOrderRequest) (*models.Order, error)
	GetOrder(actor *Actor, orderID int64) (*models.Order, error)
	GetGuestOrder(session *models.GuestSession, orderID int64) (*models.Order, error)
	ListOrders(actor *Actor, filters models.OrderFilters) ([]models.Order, *models.OrderSummary, int, error)
	UpdateStatus(actor *Actor, orderID int64, req UpdateOrderStatusRequest) (*models.Order, error)
	ListUnreconciled(actor *Actor, restaurantID int64) ([]models.Order, error)
}

type orderService struct {
	orderRepo      repositories.OrderRepository
	menuRepo       repositories.MenuRepository
	tableRepo      repositories.TableRepository
	restaurantRepo repositories.RestaurantRepository
	specialRepo    repositories.SpecialRepository
	authz          AuthzService
	db             *sql.DB

	// allowAnyTransition disables lifecycle graph enforcement for
	// deployments that manage status flow manually.
	allowAnyTransition bool
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	menuRepo repositories.MenuRepository,
	tableRepo repositories.TableRepository,
	restaurantRepo repositories.RestaurantRepository,
	specialRepo repositories.SpecialRepository,
	authz AuthzService,
	db *sql.DB,
	allowAnyTransition bool,
) OrderService {
	return &orderService{
		orderRepo:          orderRepo,
		menuRepo:           menuRepo,
		tableRepo:          tableRepo,
		restaurantRepo:     restaurantRepo,
		specialRepo:        specialRepo,
		authz:              authz,
		db:                 db,
		allowAnyTransition: allowAnyTransition,
	}
}

// pricedLine pairs a request line with its menu item snapshot.
type pricedLine struct {
	item *models.MenuItem
	req  OrderItemRequest
}

func (s *orderService) CreateGuestOrder(session *models.GuestSession, req CreateOrderRequest) (*models.Order, error) {
	now := time.Now()
	if session.IsExpired(now) {
		return nil, ErrSessionExpired
	}
	if !session.IsActive {
		return nil, ErrSessionInactive
	}

	// Fall back to the session cart when the request carries no lines.
	if len(req.Items) == 0 {
		for _, line := range session.Cart {
			note := line.Note
			var instructions *string
			if note != "" {
				instructions = &note
			}
			req.Items = append(req.Items, OrderItemRequest{
				MenuItemID:          line.MenuItemID,
				Quantity:            line.Quantity,
				SpecialInstructions: instructions,
			})
		}
	}

	if req.OrderType == "" {
		req.OrderType = models.OrderTypeDineIn
	}
	req.TableID = &session.TableID
	if req.GuestName == nil {
		req.GuestName = session.GuestName
	}
	if req.GuestPhone == nil {
		req.GuestPhone = session.GuestPhone
	}
	if req.GuestEmail == nil {
		req.GuestEmail = session.GuestEmail
	}
	if req.PartySize == 0 {
		req.PartySize = session.PartySize
	}

	return s.createOrder(session.RestaurantID, &session.ID, nil, req, now)
}

func (s *orderService) CreateStaffOrder(actor *Actor, restaurantID int64, req CreateOrderRequest) (*models.Order, error) {
	if err := s.authz.Require(actor, CapCreateStaffOrder); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, err
	}
	if req.OrderType == "" {
		req.OrderType = models.OrderTypeDineIn
	}
	return s.createOrder(restaurantID, nil, &actor.UserID, req, time.Now())
}

func (s *orderService) createOrder(restaurantID int64, sessionID, createdBy *int64, req CreateOrderRequest, now time.Time) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	switch req.OrderType {
	case models.OrderTypeDineIn, models.OrderTypeTakeout, models.OrderTypeDelivery, models.OrderTypeCatering:
	default:
		return nil, fmt.Errorf("%w: unknown order type '%s'", ErrValidation, req.OrderType)
	}
	if req.OrderType == models.OrderTypeDineIn && req.TableID == nil {
		return nil, fmt.Errorf("%w: dine-in orders need a table", ErrValidation)
	}

	// Replayed requests return the order created the first time.
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		existing, err := s.orderRepo.GetByIdempotencyKey(restaurantID, *req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("checking idempotency key: %w", err)
		}
	}

	restaurant, err := s.restaurantRepo.GetByID(restaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("fetching restaurant for order: %w", err)
	}
	if !restaurant.IsActive() {
		return nil, ErrRestaurantInactive
	}
	if req.OrderType == models.OrderTypeTakeout && !restaurant.AllowsTakeout {
		return nil, fmt.Errorf("%w: restaurant does not accept takeout orders", ErrValidation)
	}
	if req.OrderType == models.OrderTypeDelivery && !restaurant.AllowsDelivery {
		return nil, fmt.Errorf("%w: restaurant does not accept delivery orders", ErrValidation)
	}

	// Price the lines from the live menu; snapshots are taken below.
	var subtotal float64
	maxPrep := 0
	lines := make([]pricedLine, 0, len(req.Items))
	for _, itemReq := range req.Items {
		if itemReq.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for item %d must be positive", ErrValidation, itemReq.MenuItemID)
		}
		item, err := s.menuRepo.GetItemByID(itemReq.MenuItemID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: item %d", ErrMenuItemNotFound, itemReq.MenuItemID)
			}
			return nil, fmt.Errorf("fetching menu item %d: %w", itemReq.MenuItemID, err)
		}
		// Cross-tenant item references read as missing, never as forbidden.
		if item.RestaurantID != restaurantID {
			return nil, fmt.Errorf("%w: item %d", ErrMenuItemNotFound, itemReq.MenuItemID)
		}
		if !item.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, item.ItemName)
		}
		subtotal += item.Price * float64(itemReq.Quantity)
		if item.PrepTimeMinutes > maxPrep {
			maxPrep = item.PrepTimeMinutes
		}
		lines = append(lines, pricedLine{item: item, req: itemReq})
	}

	// Resolve the special before opening the transaction; its usage is
	// recorded inside it.
	var special *models.DailySpecial
	discount := 0.0
	if req.SpecialID != nil {
		special, err = s.specialRepo.GetByID(*req.SpecialID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrSpecialNotFound
			}
			return nil, fmt.Errorf("fetching special %d: %w", *req.SpecialID, err)
		}
		if special.RestaurantID != restaurantID {
			return nil, fmt.Errorf("%w: special belongs to another restaurant", ErrValidation)
		}
		discount, err = ComputeSpecialDiscount(special, subtotal, now)
		if err != nil {
			return nil, err
		}
	}

	pricing := ComputeOrderTotals(subtotal, restaurant.TaxRate, restaurant.ServiceChargeRate, discount)

	orderNumber, err := s.nextOrderNumber(restaurantID, req.TableID)
	if err != nil {
		return nil, err
	}

	partySize := req.PartySize
	if partySize == 0 {
		partySize = 1
	}
	var estimatedReady *time.Time
	if maxPrep > 0 {
		t := now.Add(time.Duration(maxPrep) * time.Minute)
		estimatedReady = &t
	}

	order := models.Order{
		RestaurantID:        restaurantID,
		TableID:             req.TableID,
		GuestSessionID:      sessionID,
		CreatedByUserID:     createdBy,
		OrderNumber:         orderNumber,
		IdempotencyKey:      req.IdempotencyKey,
		OrderType:           req.OrderType,
		OrderStatus:         models.OrderStatusPending,
		PaymentStatus:       models.PaymentStatusPending,
		GuestName:           req.GuestName,
		GuestPhone:          req.GuestPhone,
		GuestEmail:          req.GuestEmail,
		PartySize:           partySize,
		SpecialInstructions: req.SpecialInstructions,
		Subtotal:            pricing.Subtotal,
		TaxAmount:           pricing.TaxAmount,
		ServiceCharge:       pricing.ServiceCharge,
		DiscountAmount:      pricing.DiscountAmount,
		TotalAmount:         pricing.TotalAmount,
		OrderedAt:           now,
		EstimatedReadyTime:  estimatedReady,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting order transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.orderRepo.CreateOrder(tx, &order); err != nil {
		return nil, fmt.Errorf("creating order record: %w", err)
	}

	for _, line := range lines {
		prep := line.item.PrepTimeMinutes
		item := models.OrderItem{
			RestaurantID:        restaurantID,
			OrderID:             order.ID,
			MenuItemID:          line.item.ID,
			ItemName:            line.item.ItemName,
			ItemDescription:     line.item.Description,
			Quantity:            line.req.Quantity,
			UnitPrice:           line.item.Price,
			TotalPrice:          line.item.Price * float64(line.req.Quantity),
			ItemStatus:          models.ItemStatusOrdered,
			SpecialInstructions: line.req.SpecialInstructions,
			PrepTimeMinutes:     &prep,
		}
		if _, err := s.orderRepo.CreateOrderItem(tx, &item); err != nil {
			return nil, fmt.Errorf("creating order item for menu item %d: %w", line.item.ID, err)
		}
		order.Items = append(order.Items, item)
	}

	if special != nil && discount > 0 {
		usage := models.SpecialUsage{
			SpecialID:      special.ID,
			OrderID:        order.ID,
			DiscountAmount: discount,
		}
		if _, err := s.specialRepo.RecordUsage(tx, &usage); err != nil {
			return nil, fmt.Errorf("recording special usage: %w", err)
		}
		if err := s.specialRepo.IncrementUsageCount(tx, special.ID); err != nil {
			return nil, fmt.Errorf("incrementing special usage count: %w", err)
		}
	}

	if req.TableID != nil {
		if err := s.tableRepo.UpdateStatus(tx, *req.TableID, models.TableStatusOccupied); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("marking table occupied: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing order transaction: %w", err)
	}
	return &order, nil
}

func (s *orderService) nextOrderNumber(restaurantID int64, tableID *int64) (string, error) {
	if tableID != nil {
		table, err := s.tableRepo.GetByID(*tableID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return "", ErrTableNotFound
			}
			return "", fmt.Errorf("fetching table for order number: %w", err)
		}
		if table.RestaurantID != restaurantID {
			return "", fmt.Errorf("%w: table belongs to another restaurant", ErrValidation)
		}
		seq, err := s.orderRepo.CountByTable(*tableID)
		if err != nil {
			return "", fmt.Errorf("counting table orders: %w", err)
		}
		return BuildOrderNumber(table.TableNumber, seq+1), nil
	}

	seq, err := s.orderRepo.CountByRestaurant(restaurantID)
	if err != nil {
		return "", fmt.Errorf("counting restaurant orders: %w", err)
	}
	return BuildOrderNumber("0", seq+1), nil
}

func (s *orderService) GetOrder(actor *Actor, orderID int64) (*models.Order, error) {
	if err := s.authz.Require(actor, CapViewOrders); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", orderID, err)
	}
	if err := s.authz.RequireRestaurant(actor, order.RestaurantID); err != nil {
		return nil, err
	}
	return order, nil
}

// GetGuestOrder lets a guest track only orders placed from their session.
func (s *orderService) GetGuestOrder(session *models.GuestSession, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order %d: %w", orderID, err)
	}
	if order.GuestSessionID == nil || *order.GuestSessionID != session.ID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(actor *Actor, filters models.OrderFilters) ([]models.Order, *models.OrderSummary, int, error) {
	if err := s.authz.Require(actor, CapViewOrders); err != nil {
		return nil, nil, 0, err
	}
	if err := s.authz.RequireRestaurant(actor, filters.RestaurantID); err != nil {
		return nil, nil, 0, err
	}
	for _, status := range filters.Statuses {
		if !IsKnownOrderStatus(status) {
			return nil, nil, 0, fmt.Errorf("%w: unknown order status '%s'", ErrValidation, status)
		}
	}

	orders, total, err := s.orderRepo.List(filters)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	summary, err := s.orderRepo.GetSummary(filters.RestaurantID, filters.Date)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("computing order summary: %w", err)
	}
	return orders, summary, total, nil
}

func (s *orderService) UpdateStatus(actor *Actor, orderID int64, req UpdateOrderStatusRequest) (*models.Order, error) {
	if err := s.authz.Require(actor, CapUpdateOrderStatus); err != nil {
		return nil, err
	}
	if !IsKnownOrderStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown order status '%s'", ErrValidation, req.Status)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("fetching order for status update: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, order.RestaurantID); err != nil {
		return nil, err
	}

	if order.OrderStatus == req.Status {
		return order, nil
	}
	if !CanTransition(order.OrderStatus, req.Status, s.allowAnyTransition) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.OrderStatus, req.Status)
	}

	now := time.Now()
	order.OrderStatus = req.Status
	StampStatusTimestamp(order, req.Status, now)
	if req.InternalNotes != nil {
		order.InternalNotes = req.InternalNotes
	}
	if req.EstimatedReadyTime != nil {
		order.EstimatedReadyTime = req.EstimatedReadyTime
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting status update transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.UpdateStatus(tx, order); err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}

	// Closing out the last open order frees the table.
	if order.TableID != nil && isTerminalOrServed(req.Status) {
		open, err := s.tableRepo.CountActiveOrders(*order.TableID)
		if err != nil {
			return nil, fmt.Errorf("counting open orders for table release: %w", err)
		}
		if open <= 1 {
			if err := s.tableRepo.UpdateStatus(tx, *order.TableID, models.TableStatusCleaning); err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("releasing table: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status update: %w", err)
	}
	return order, nil
}

func isTerminalOrServed(status string) bool {
	switch status {
	case models.OrderStatusServed, models.OrderStatusCompleted, models.OrderStatusCancelled:
		return true
	}
	return false
}

// ListUnreconciled surfaces completed orders whose payment never completed.
func (s *orderService) ListUnreconciled(actor *Actor, restaurantID int64) ([]models.Order, error) {
	if err := s.authz.Require(actor, CapViewReconciliation); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListUnreconciled(restaurantID)
	if err != nil {
		return nil, fmt.Errorf("listing unreconciled orders: %w", err)
	}
	return orders, nil
}
