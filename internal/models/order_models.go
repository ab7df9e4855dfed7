package models

import "time"

// Order lifecycle status values. Forward chain with two exits
// (CANCELLED, REFUNDED); see the order service transition table.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusServed    = "SERVED"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusRefunded  = "REFUNDED"
)

// Payment status values. A parallel state machine driven by the payment
// recorder, independent of order status.
const (
	PaymentStatusPending    = "PENDING"
	PaymentStatusProcessing = "PROCESSING"
	PaymentStatusCompleted  = "COMPLETED"
	PaymentStatusFailed     = "FAILED"
	PaymentStatusCancelled  = "CANCELLED"
	PaymentStatusRefunded   = "REFUNDED"
)

// Order type values.
const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeout  = "TAKEOUT"
	OrderTypeDelivery = "DELIVERY"
	OrderTypeCatering = "CATERING"
)

// Order item status values.
const (
	ItemStatusOrdered   = "ORDERED"
	ItemStatusPreparing = "PREPARING"
	ItemStatusReady     = "READY"
	ItemStatusServed    = "SERVED"
	ItemStatusCancelled = "CANCELLED"
)

// Order is the transactional aggregate. All monetary fields are derived
// and persisted together with the items in one transaction; the invariant
// TotalAmount = Subtotal + TaxAmount + ServiceCharge - DiscountAmount
// holds for every persisted row.
type Order struct {
	ID                  int64      `json:"id"`
	RestaurantID        int64      `json:"restaurant_id" db:"restaurant_id"`
	TableID             *int64     `json:"table_id,omitempty" db:"table_id"`                   // nil for takeout
	GuestSessionID      *int64     `json:"guest_session_id,omitempty" db:"guest_session_id"`   // weak ref, order outlives session
	CreatedByUserID     *int64     `json:"created_by_user_id,omitempty" db:"created_by_user_id"`
	OrderNumber         string     `json:"order_number" db:"order_number"` // unique per restaurant
	IdempotencyKey      *string    `json:"idempotency_key,omitempty" db:"idempotency_key"`
	OrderType           string     `json:"order_type" db:"order_type"`
	OrderStatus         string     `json:"order_status" db:"order_status"`
	PaymentStatus       string     `json:"payment_status" db:"payment_status"`
	GuestName           *string    `json:"guest_name,omitempty" db:"guest_name"`
	GuestPhone          *string    `json:"guest_phone,omitempty" db:"guest_phone"`
	GuestEmail          *string    `json:"guest_email,omitempty" db:"guest_email"`
	PartySize           int        `json:"party_size" db:"party_size"`
	SpecialInstructions *string    `json:"special_instructions,omitempty" db:"special_instructions"`
	InternalNotes       *string    `json:"internal_notes,omitempty" db:"internal_notes"`
	Subtotal            float64    `json:"subtotal" db:"subtotal"`
	TaxAmount           float64    `json:"tax_amount" db:"tax_amount"`
	ServiceCharge       float64    `json:"service_charge" db:"service_charge"`
	DiscountAmount      float64    `json:"discount_amount" db:"discount_amount"`
	TotalAmount         float64    `json:"total_amount" db:"total_amount"`
	OrderedAt           time.Time  `json:"ordered_at" db:"ordered_at"`
	ConfirmedAt         *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	PreparingAt         *time.Time `json:"preparing_at,omitempty" db:"preparing_at"`
	ReadyAt             *time.Time `json:"ready_at,omitempty" db:"ready_at"`
	ServedAt            *time.Time `json:"served_at,omitempty" db:"served_at"`
	CompletedAt         *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	EstimatedReadyTime  *time.Time `json:"estimated_ready_time,omitempty" db:"estimated_ready_time"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`

	Items []OrderItem      `json:"items,omitempty"`
	Table *RestaurantTable `json:"table,omitempty"`
}

// OrderItem snapshots a MenuItem at order time. The copied fields are
// intentionally decoupled from the live MenuItem so historical orders stay
// immutable when the menu later changes.
type OrderItem struct {
	ID                  int64     `json:"id"`
	RestaurantID        int64     `json:"restaurant_id" db:"restaurant_id"`
	OrderID             int64     `json:"order_id" db:"order_id"`
	MenuItemID          int64     `json:"menu_item_id" db:"menu_item_id"`
	ItemName            string    `json:"item_name" db:"item_name"`
	ItemDescription     *string   `json:"item_description,omitempty" db:"item_description"`
	Quantity            int       `json:"quantity" db:"quantity"`
	UnitPrice           float64   `json:"unit_price" db:"unit_price"`
	TotalPrice          float64   `json:"total_price" db:"total_price"` // unit_price * quantity
	ItemStatus          string    `json:"item_status" db:"item_status"`
	SpecialInstructions *string   `json:"special_instructions,omitempty" db:"special_instructions"`
	PrepTimeMinutes     *int      `json:"prep_time_minutes,omitempty" db:"prep_time_minutes"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// OrderFilters defines the available filters for querying orders.
type OrderFilters struct {
	RestaurantID int64
	Statuses     []string
	TableID      *int64
	Date         *string // YYYY-MM-DD
	Page         int
	PageSize     int
}

// OrderSummary is the convenience rollup returned alongside order listings.
// It is recomputed per call, never cached.
type OrderSummary struct {
	TotalOrders     int     `json:"total_orders"`
	PendingOrders   int     `json:"pending_orders"`
	PreparingOrders int     `json:"preparing_orders"`
	ReadyOrders     int     `json:"ready_orders"`
	TotalRevenue    float64 `json:"total_revenue"` // from COMPLETED orders
}
