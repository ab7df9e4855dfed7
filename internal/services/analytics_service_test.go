package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dineqr_backend/internal/models"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC) // a Monday

	t.Run("today", func(t *testing.T) {
		from, to, prevFrom, prevTo, err := ResolvePeriod(models.AnalyticsParams{Period: "today"}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, now, to)
		assert.Equal(t, from, prevTo)
		assert.Equal(t, to.Sub(from), prevTo.Sub(prevFrom))
	})

	t.Run("empty period defaults to today", func(t *testing.T) {
		from, _, _, _, err := ResolvePeriod(models.AnalyticsParams{}, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), from)
	})

	t.Run("week", func(t *testing.T) {
		from, to, prevFrom, prevTo, err := ResolvePeriod(models.AnalyticsParams{Period: "week"}, now)
		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, -7), from)
		assert.Equal(t, now, to)
		assert.Equal(t, from, prevTo)
		assert.Equal(t, now.AddDate(0, 0, -14), prevFrom)
	})

	t.Run("custom", func(t *testing.T) {
		dateFrom := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		dateTo := time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC)
		from, to, _, _, err := ResolvePeriod(models.AnalyticsParams{
			Period: "custom", DateFrom: &dateFrom, DateTo: &dateTo,
		}, now)
		require.NoError(t, err)
		assert.Equal(t, dateFrom, from)
		// end date is inclusive, so the half-open range extends one day past it
		assert.Equal(t, dateTo.AddDate(0, 0, 1), to)
	})

	t.Run("custom without bounds", func(t *testing.T) {
		_, _, _, _, err := ResolvePeriod(models.AnalyticsParams{Period: "custom"}, now)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("custom inverted bounds", func(t *testing.T) {
		dateFrom := time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC)
		dateTo := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
		_, _, _, _, err := ResolvePeriod(models.AnalyticsParams{
			Period: "custom", DateFrom: &dateFrom, DateTo: &dateTo,
		}, now)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown period", func(t *testing.T) {
		_, _, _, _, err := ResolvePeriod(models.AnalyticsParams{Period: "decade"}, now)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestComputeGrowthPercent(t *testing.T) {
	assert.Equal(t, 25.0, ComputeGrowthPercent(125, 100))
	assert.Equal(t, -50.0, ComputeGrowthPercent(50, 100))
	assert.Equal(t, 0.0, ComputeGrowthPercent(100, 100))

	// empty previous period reports no growth instead of dividing by zero
	assert.Equal(t, 0.0, ComputeGrowthPercent(500, 0))
}

func TestSortMenuItemStats(t *testing.T) {
	build := func() []models.MenuItemStats {
		return []models.MenuItemStats{
			{ItemName: "Soup", TotalQuantity: 30, TotalRevenue: 150, ProfitMargin: 90},
			{ItemName: "Steak", TotalQuantity: 10, TotalRevenue: 400, ProfitMargin: 120},
			{ItemName: "Pasta", TotalQuantity: 20, TotalRevenue: 260, ProfitMargin: 160},
		}
	}

	items := build()
	SortMenuItemStats(items, "revenue")
	assert.Equal(t, "Steak", items[0].ItemName)
	assert.Equal(t, "Pasta", items[1].ItemName)

	items = build()
	SortMenuItemStats(items, "profit_margin")
	assert.Equal(t, "Pasta", items[0].ItemName)

	items = build()
	SortMenuItemStats(items, "popularity")
	assert.Equal(t, "Soup", items[0].ItemName)

	items = build()
	SortMenuItemStats(items, "")
	assert.Equal(t, "Soup", items[0].ItemName)
}
