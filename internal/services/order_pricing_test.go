package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dineqr_backend/internal/models"
)

func TestComputeOrderTotals(t *testing.T) {
	pricing := ComputeOrderTotals(24.00, 0.08, 0.10, 0)

	assert.Equal(t, 24.00, pricing.Subtotal)
	assert.Equal(t, 1.92, pricing.TaxAmount)
	assert.Equal(t, 2.40, pricing.ServiceCharge)
	assert.Equal(t, 0.0, pricing.DiscountAmount)
	assert.Equal(t, 28.32, pricing.TotalAmount)
}

func TestComputeOrderTotalsInvariant(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		taxRate  float64
		svcRate  float64
		discount float64
	}{
		{"no charges", 10.00, 0, 0, 0},
		{"tax only", 33.33, 0.12, 0, 0},
		{"with discount", 50.00, 0.08, 0.10, 5.00},
		{"rounding pressure", 19.99, 0.0725, 0.125, 1.11},
		{"full discount", 12.00, 0.08, 0.10, 12.00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeOrderTotals(tt.subtotal, tt.taxRate, tt.svcRate, tt.discount)
			assert.InDelta(t, p.Subtotal+p.TaxAmount+p.ServiceCharge-p.DiscountAmount, p.TotalAmount, 0.001)
		})
	}
}

func fixedSpecial(discountType string, value float64) *models.DailySpecial {
	return &models.DailySpecial{
		SpecialName:   "Lunch Deal",
		DiscountType:  discountType,
		DiscountValue: value,
		ValidFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}

func TestComputeSpecialDiscount(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 30, 0, 0, time.UTC)

	t.Run("percentage", func(t *testing.T) {
		discount, err := ComputeSpecialDiscount(fixedSpecial(models.DiscountTypePercentage, 20), 40.00, now)
		require.NoError(t, err)
		assert.Equal(t, 8.00, discount)
	})

	t.Run("fixed amount", func(t *testing.T) {
		discount, err := ComputeSpecialDiscount(fixedSpecial(models.DiscountTypeFixedAmount, 5), 40.00, now)
		require.NoError(t, err)
		assert.Equal(t, 5.00, discount)
	})

	t.Run("capped at subtotal", func(t *testing.T) {
		discount, err := ComputeSpecialDiscount(fixedSpecial(models.DiscountTypeFixedAmount, 50), 12.00, now)
		require.NoError(t, err)
		assert.Equal(t, 12.00, discount)
	})

	t.Run("below minimum order amount", func(t *testing.T) {
		special := fixedSpecial(models.DiscountTypePercentage, 10)
		minimum := 30.00
		special.MinimumOrderAmount = &minimum

		_, err := ComputeSpecialDiscount(special, 20.00, now)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("outside date window", func(t *testing.T) {
		special := fixedSpecial(models.DiscountTypePercentage, 10)
		_, err := ComputeSpecialDiscount(special, 40.00, time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, ErrSpecialExpired)
	})

	t.Run("usage exhausted", func(t *testing.T) {
		special := fixedSpecial(models.DiscountTypePercentage, 10)
		limit := 100
		special.UsageLimit = &limit
		special.UsageCount = 100

		_, err := ComputeSpecialDiscount(special, 40.00, now)
		assert.ErrorIs(t, err, ErrSpecialExpired)
	})

	t.Run("unknown discount type", func(t *testing.T) {
		_, err := ComputeSpecialDiscount(fixedSpecial("BOGOF", 1), 40.00, now)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusPending, models.OrderStatusReady, false},
		{models.OrderStatusConfirmed, models.OrderStatusPreparing, true},
		{models.OrderStatusPreparing, models.OrderStatusReady, true},
		{models.OrderStatusPreparing, models.OrderStatusCancelled, true},
		{models.OrderStatusReady, models.OrderStatusServed, true},
		{models.OrderStatusReady, models.OrderStatusCancelled, false},
		{models.OrderStatusServed, models.OrderStatusCompleted, true},
		{models.OrderStatusCompleted, models.OrderStatusRefunded, true},
		{models.OrderStatusCompleted, models.OrderStatusPending, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
		{models.OrderStatusRefunded, models.OrderStatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"_to_"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to, false))
		})
	}
}

func TestCanTransitionAllowAny(t *testing.T) {
	assert.True(t, CanTransition(models.OrderStatusCompleted, models.OrderStatusPending, true))
	assert.True(t, CanTransition(models.OrderStatusCancelled, models.OrderStatusServed, true))

	// allowAny never legitimizes unknown statuses
	assert.False(t, CanTransition("SHIPPED", models.OrderStatusPending, true))
	assert.False(t, CanTransition(models.OrderStatusPending, "SHIPPED", true))
}

func TestIsKnownOrderStatus(t *testing.T) {
	assert.True(t, IsKnownOrderStatus(models.OrderStatusPending))
	assert.True(t, IsKnownOrderStatus(models.OrderStatusRefunded))
	assert.False(t, IsKnownOrderStatus("pending"))
	assert.False(t, IsKnownOrderStatus(""))
}

func TestStampStatusTimestamp(t *testing.T) {
	first := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	later := first.Add(10 * time.Minute)

	order := &models.Order{}
	StampStatusTimestamp(order, models.OrderStatusConfirmed, first)
	require.NotNil(t, order.ConfirmedAt)
	assert.Equal(t, first, *order.ConfirmedAt)

	// replaying the same status never moves the timestamp
	StampStatusTimestamp(order, models.OrderStatusConfirmed, later)
	assert.Equal(t, first, *order.ConfirmedAt)

	StampStatusTimestamp(order, models.OrderStatusServed, later)
	require.NotNil(t, order.ServedAt)
	assert.Equal(t, later, *order.ServedAt)
	assert.Nil(t, order.PreparingAt)
}

func TestBuildOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD-5-001", BuildOrderNumber("5", 1))
	assert.Equal(t, "ORD-12-042", BuildOrderNumber("12", 42))
	assert.Equal(t, "ORD-0-113", BuildOrderNumber("0", 113))
	assert.Equal(t, "ORD-A7-1024", BuildOrderNumber("A7", 1024))
}
