package services

import (
	"fmt"
	"time"

	"dineqr_backend/internal/models"
	"dineqr_backend/pkg/utils"
)

// OrderPricing holds the derived monetary breakdown of an order. The
// invariant TotalAmount = Subtotal + TaxAmount + ServiceCharge -
// DiscountAmount holds for every value this package produces.
type OrderPricing struct {
	Subtotal       float64
	TaxAmount      float64
	ServiceCharge  float64
	DiscountAmount float64
	TotalAmount    float64
}

// ComputeOrderTotals prices an order. Tax and service charge apply to the
// undiscounted subtotal; the discount is subtracted last. All figures are
// rounded to cents independently.
func ComputeOrderTotals(subtotal, taxRate, serviceChargeRate, discount float64) OrderPricing {
	subtotal = utils.Round2(subtotal)
	tax := utils.Round2(subtotal * taxRate)
	service := utils.Round2(subtotal * serviceChargeRate)
	discount = utils.Round2(discount)
	return OrderPricing{
		Subtotal:       subtotal,
		TaxAmount:      tax,
		ServiceCharge:  service,
		DiscountAmount: discount,
		TotalAmount:    utils.Round2(subtotal + tax + service - discount),
	}
}

// ComputeSpecialDiscount evaluates a special against a subtotal at a given
// instant. A zero discount with nil error means the special simply does not
// apply (e.g. below minimum order amount is an error; out of window is too).
func ComputeSpecialDiscount(special *models.DailySpecial, subtotal float64, now time.Time) (float64, error) {
	if !special.AppliesOn(now) {
		return 0, ErrSpecialExpired
	}
	if special.UsageExhausted() {
		return 0, fmt.Errorf("%w: usage limit reached", ErrSpecialExpired)
	}
	if special.MinimumOrderAmount != nil && subtotal < *special.MinimumOrderAmount {
		return 0, fmt.Errorf("%w: order subtotal %.2f is below the %.2f minimum", ErrValidation, subtotal, *special.MinimumOrderAmount)
	}

	var discount float64
	switch special.DiscountType {
	case models.DiscountTypePercentage:
		discount = subtotal * special.DiscountValue / 100
	case models.DiscountTypeFixedAmount:
		discount = special.DiscountValue
	default:
		return 0, fmt.Errorf("%w: unknown discount type '%s'", ErrValidation, special.DiscountType)
	}
	if discount > subtotal {
		discount = subtotal
	}
	return utils.Round2(discount), nil
}

// orderTransitions is the default lifecycle graph: a forward chain with
// cancellation open until preparation finishes and refund only after
// completion. Terminal states have no exits.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing: {models.OrderStatusReady, models.OrderStatusCancelled},
	models.OrderStatusReady:     {models.OrderStatusServed},
	models.OrderStatusServed:    {models.OrderStatusCompleted},
	models.OrderStatusCompleted: {models.OrderStatusRefunded},
	models.OrderStatusCancelled: {},
	models.OrderStatusRefunded:  {},
}

// IsKnownOrderStatus reports whether the status is part of the lifecycle.
func IsKnownOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return ok
}

// CanTransition reports whether the lifecycle graph permits moving from one
// status to another. allowAny bypasses the graph for restaurants that opt
// out of enforcement, but never permits unknown statuses.
func CanTransition(from, to string, allowAny bool) bool {
	if !IsKnownOrderStatus(from) || !IsKnownOrderStatus(to) {
		return false
	}
	if allowAny {
		return true
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StampStatusTimestamp records when an order first reached a status. A
// timestamp already set is never moved, so replayed updates are harmless.
func StampStatusTimestamp(order *models.Order, status string, now time.Time) {
	stamp := func(field **time.Time) {
		if *field == nil {
			t := now
			*field = &t
		}
	}
	switch status {
	case models.OrderStatusConfirmed:
		stamp(&order.ConfirmedAt)
	case models.OrderStatusPreparing:
		stamp(&order.PreparingAt)
	case models.OrderStatusReady:
		stamp(&order.ReadyAt)
	case models.OrderStatusServed:
		stamp(&order.ServedAt)
	case models.OrderStatusCompleted:
		stamp(&order.CompletedAt)
	}
}

// BuildOrderNumber formats the human-facing order number from the table
// number and the table's order sequence.
func BuildOrderNumber(tableNumber string, seq int) string {
	return fmt.Sprintf("ORD-%s-%03d", tableNumber, seq)
}
