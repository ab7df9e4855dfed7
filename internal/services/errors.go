package services

import "errors"

// Sentinel errors shared across services. Handlers map these onto API
// error codes; services wrap them with %w and context.
var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("operation not permitted")

	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrRestaurantInactive = errors.New("restaurant is not active")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account temporarily locked")

	ErrTableNotFound      = errors.New("table not found")
	ErrTableHasOpenOrders = errors.New("table has open orders")

	ErrCategoryNotFound = errors.New("menu category not found")
	ErrCategoryInUse    = errors.New("menu category still has items")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrOptionNotFound   = errors.New("menu item option not found")

	ErrSessionNotFound = errors.New("guest session not found")
	ErrSessionExpired  = errors.New("guest session expired")
	ErrSessionInactive = errors.New("guest session is no longer active")

	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyOrder         = errors.New("order must contain at least one item")
	ErrItemUnavailable    = errors.New("menu item is not available")
	ErrInvalidTransition  = errors.New("invalid order status transition")
	ErrOrderNotPayable    = errors.New("order cannot accept a payment in its current state")
	ErrGatewayNotFound    = errors.New("no payment gateway configured")
	ErrGatewayUnavailable = errors.New("no active default payment gateway")

	ErrSpecialNotFound = errors.New("daily special not found")
	ErrSpecialExpired  = errors.New("daily special is not currently valid")
)
