package models

import "time"

// AnalyticsParams defines the common query parameters for analytics reads.
type AnalyticsParams struct {
	RestaurantID int64
	Period       string // today, week, month, quarter, year, custom
	DateFrom     *time.Time
	DateTo       *time.Time
	GroupBy      string // day, week, month
	CategoryID   *int64
	SortBy       string // popularity, revenue, profit_margin
	Limit        int
}

// SalesSummary aggregates COMPLETED orders for a date range.
type SalesSummary struct {
	TotalRevenue          float64 `json:"total_revenue"`
	TotalOrders           int     `json:"total_orders"`
	AvgOrderValue         float64 `json:"avg_order_value"`
	GrowthPercent         float64 `json:"growth_percent"`
	PreviousPeriodRevenue float64 `json:"previous_period_revenue"`
}

// SalesBreakdownRow is one bucket of the per-day sales breakdown.
type SalesBreakdownRow struct {
	Period        string  `json:"period"` // YYYY-MM-DD
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// OrderTypeStats rolls revenue up by order type.
type OrderTypeStats struct {
	OrderType string  `json:"order_type"`
	Orders    int     `json:"orders"`
	Revenue   float64 `json:"revenue"`
}

// SalesAnalytics is the full sales analytics payload.
type SalesAnalytics struct {
	Summary    SalesSummary        `json:"summary"`
	Breakdown  []SalesBreakdownRow `json:"breakdown"`
	OrderTypes []OrderTypeStats    `json:"order_types"`
}

// MenuItemStats aggregates sold order items per menu item, joined with the
// item's stored profit figures.
type MenuItemStats struct {
	ItemID              int64   `json:"item_id"`
	ItemName            string  `json:"item_name"`
	CategoryName        string  `json:"category_name,omitempty"`
	TimesOrdered        int     `json:"times_ordered"`
	TotalQuantity       int     `json:"total_quantity"`
	TotalRevenue        float64 `json:"total_revenue"`
	AvgSellingPrice     float64 `json:"avg_selling_price"`
	ProfitMargin        float64 `json:"profit_margin"` // per-item margin * quantity sold
	ProfitMarginPercent float64 `json:"profit_margin_percent"`
	PopularityRank      int     `json:"popularity_rank"`
}

// CategoryStats rolls sold items up by menu category.
type CategoryStats struct {
	CategoryID    int64   `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	TotalRevenue  float64 `json:"total_revenue"`
	OrderCount    int     `json:"order_count"`
	ItemCount     int     `json:"item_count"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// MenuAnalytics is the full menu analytics payload.
type MenuAnalytics struct {
	TopItems   []MenuItemStats `json:"top_items"`
	Categories []CategoryStats `json:"categories"`
}
