package models

import "time"

// Payment methods.
const (
	PaymentMethodCash          = "CASH"
	PaymentMethodCard          = "CARD"
	PaymentMethodDigitalWallet = "DIGITAL_WALLET"
	PaymentMethodBankTransfer  = "BANK_TRANSFER"
)

// Gateway providers.
const (
	GatewayStripe = "STRIPE"
	GatewayPaypal = "PAYPAL"
	GatewaySquare = "SQUARE"
)

// PaymentGateway is tenant configuration for hosted-checkout payments.
type PaymentGateway struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id" db:"restaurant_id"`
	Provider     string    `json:"provider" db:"provider"`
	IsDefault    bool      `json:"is_default" db:"is_default"`
	Status       string    `json:"status" db:"status"` // active / inactive
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PaymentTransaction is an append-only record of one payment attempt
// against an order. Its status evolves independently of the order status.
type PaymentTransaction struct {
	ID                int64     `json:"id"`
	RestaurantID      int64     `json:"restaurant_id" db:"restaurant_id"`
	OrderID           int64     `json:"order_id" db:"order_id"`
	InternalReference string    `json:"internal_reference" db:"internal_reference"`
	PaymentMethod     string    `json:"payment_method" db:"payment_method"`
	Amount            float64   `json:"amount" db:"amount"`
	NetAmount         float64   `json:"net_amount" db:"net_amount"`
	Status            string    `json:"status" db:"status"`
	CustomerName      *string   `json:"customer_name,omitempty" db:"customer_name"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// PaymentIntent is the gateway-opaque handle returned for hosted checkout.
// Creating one does not mutate order state; completion arrives via an
// external webhook outside this core.
type PaymentIntent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
	PaymentURL   string  `json:"payment_url"`
}
