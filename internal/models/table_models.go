package models

import (
	"errors"
	"fmt"
	"time"
)

// Table coarse status values.
const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusReserved  = "reserved"
	TableStatusCleaning  = "cleaning"
)

// RestaurantTable is a physical table carrying the QR code guests scan.
type RestaurantTable struct {
	ID            int64     `json:"id"`
	RestaurantID  int64     `json:"restaurant_id" db:"restaurant_id"`
	TableNumber   string    `json:"table_number" db:"table_number"` // unique per restaurant
	TableName     *string   `json:"table_name,omitempty" db:"table_name"`
	Capacity      int       `json:"capacity" db:"capacity"`
	Location      *string   `json:"location,omitempty" db:"location"`
	QRCode        string    `json:"qr_code" db:"qr_code"` // unique across all tenants
	IsActive      bool      `json:"is_active" db:"is_active"`
	CurrentStatus string    `json:"current_status" db:"current_status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the table name, falling back to its number.
func (t *RestaurantTable) DisplayName() string {
	if t.TableName != nil && *t.TableName != "" {
		return *t.TableName
	}
	return "Table " + t.TableNumber
}

// IsAvailable reports whether the table can seat a new party.
func (t *RestaurantTable) IsAvailable() bool {
	return t.IsActive && t.CurrentStatus == TableStatusAvailable
}

// CartItem is a single structured cart line kept on a guest session.
type CartItem struct {
	MenuItemID int64  `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
	Note       string `json:"note,omitempty"`
}

// Cart is the schema-validated cart value type owned by a guest session.
// It replaces the opaque serialized blob of earlier designs so malformed
// carts are rejected at the boundary instead of at order time.
type Cart []CartItem

// ErrInvalidCart is returned when a cart fails structural validation.
var ErrInvalidCart = errors.New("invalid cart")

// Validate checks every cart line for a positive item reference and quantity.
func (c Cart) Validate() error {
	for i, line := range c {
		if line.MenuItemID <= 0 {
			return fmt.Errorf("%w: line %d has no menu item reference", ErrInvalidCart, i)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("%w: line %d quantity must be at least 1", ErrInvalidCart, i)
		}
	}
	return nil
}

// GuestSession is an ephemeral, table-scoped identity for an anonymous diner.
// It is deliberately separate from User accounts: guests order without
// registration while staff can still attribute orders to a table and party.
type GuestSession struct {
	ID              int64     `json:"id"`
	RestaurantID    int64     `json:"restaurant_id" db:"restaurant_id"`
	TableID         int64     `json:"table_id" db:"table_id"`
	SessionToken    string    `json:"session_token" db:"session_token"`
	GuestName       *string   `json:"guest_name,omitempty" db:"guest_name"`
	GuestPhone      *string   `json:"guest_phone,omitempty" db:"guest_phone"`
	GuestEmail      *string   `json:"guest_email,omitempty" db:"guest_email"`
	PartySize       int       `json:"party_size" db:"party_size"`
	SpecialRequests *string   `json:"special_requests,omitempty" db:"special_requests"`
	Cart            Cart      `json:"cart" db:"cart_data"`
	ExpiresAt       time.Time `json:"expires_at" db:"expires_at"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	LastActivityAt  time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`

	Table *RestaurantTable `json:"table,omitempty"`
}

// IsExpired reports whether the session has passed its expiry at the given instant.
func (s *GuestSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsValid reports whether the session may still drive guest-facing mutations.
func (s *GuestSession) IsValid(now time.Time) bool {
	return s.IsActive && !s.IsExpired(now)
}
