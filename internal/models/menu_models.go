package models

import "time"

// MenuCategory groups menu items for display.
type MenuCategory struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id" db:"restaurant_id"`
	CategoryName string    `json:"category_name" db:"category_name"` // unique per restaurant
	Description  *string   `json:"description,omitempty" db:"description"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// MenuItem is a sellable catalog entry. ProfitMargin and ProfitMarginPercent
// are derived from price and cost_price and recomputed on every change to
// either; they are never written directly.
type MenuItem struct {
	ID                  int64     `json:"id"`
	RestaurantID        int64     `json:"restaurant_id" db:"restaurant_id"`
	CategoryID          *int64    `json:"category_id,omitempty" db:"category_id"`
	ItemName            string    `json:"item_name" db:"item_name"`
	Description         *string   `json:"description,omitempty" db:"description"`
	Price               float64   `json:"price" db:"price"`
	CostPrice           *float64  `json:"cost_price,omitempty" db:"cost_price"`
	PrepTimeMinutes     int       `json:"prep_time_minutes" db:"prep_time_minutes"`
	IsVegetarian        bool      `json:"is_vegetarian" db:"is_vegetarian"`
	IsVegan             bool      `json:"is_vegan" db:"is_vegan"`
	IsGlutenFree        bool      `json:"is_gluten_free" db:"is_gluten_free"`
	IsSpicy             bool      `json:"is_spicy" db:"is_spicy"`
	IsAvailable         bool      `json:"is_available" db:"is_available"`
	IsFeatured          bool      `json:"is_featured" db:"is_featured"`
	DisplayOrder        int       `json:"display_order" db:"display_order"`
	ProfitMargin        *float64  `json:"profit_margin,omitempty" db:"profit_margin"`
	ProfitMarginPercent *float64  `json:"profit_margin_percent,omitempty" db:"profit_margin_percent"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`

	Category *MenuCategory    `json:"category,omitempty"`
	Options  []MenuItemOption `json:"options,omitempty"`
}

// MenuItemOption is a customization belonging to one item, grouped by
// option_group (e.g. "size") and optionally shifting the price.
type MenuItemOption struct {
	ID           int64     `json:"id"`
	RestaurantID int64     `json:"restaurant_id" db:"restaurant_id"`
	ItemID       int64     `json:"item_id" db:"item_id"`
	OptionGroup  string    `json:"option_group" db:"option_group"`
	OptionName   string    `json:"option_name" db:"option_name"`
	PriceChange  float64   `json:"price_change" db:"price_change"`
	IsDefault    bool      `json:"is_default" db:"is_default"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// MenuItemFilters defines the available filters for the paginated catalog read.
type MenuItemFilters struct {
	RestaurantID  int64
	CategoryID    *int64
	Search        *string
	AvailableOnly bool
	Page          int
	PageSize      int
}
