package models

import "time"

// Restaurant operational status values.
const (
	RestaurantStatusActive    = "ACTIVE"
	RestaurantStatusInactive  = "INACTIVE"
	RestaurantStatusSuspended = "SUSPENDED"
)

// Restaurant is the tenant root. Every tenant-scoped entity hangs off a
// restaurant and is cascade-deleted with it.
type Restaurant struct {
	ID                int64     `json:"id"`
	RestaurantName    string    `json:"restaurant_name" db:"restaurant_name"`
	RestaurantCode    string    `json:"restaurant_code" db:"restaurant_code"` // unique, used in QR payloads
	BusinessEmail     string    `json:"business_email" db:"business_email"`
	PhoneNumber       *string   `json:"phone_number,omitempty" db:"phone_number"`
	CurrencyCode      string    `json:"currency_code" db:"currency_code"`
	TaxRate           float64   `json:"tax_rate" db:"tax_rate"`                       // fraction in [0,1]
	ServiceChargeRate float64   `json:"service_charge_rate" db:"service_charge_rate"` // fraction in [0,1]
	Timezone          string    `json:"timezone" db:"timezone"`
	Status            string    `json:"status" db:"status"`
	AllowsTakeout     bool      `json:"allows_takeout" db:"allows_takeout"`
	AllowsDelivery    bool      `json:"allows_delivery" db:"allows_delivery"`
	ThemeColor        *string   `json:"theme_color,omitempty" db:"theme_color"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the restaurant accepts operations.
func (r *Restaurant) IsActive() bool {
	return r.Status == RestaurantStatusActive
}
