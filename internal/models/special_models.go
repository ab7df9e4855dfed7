package models

import "time"

// Discount calculation types.
const (
	DiscountTypePercentage  = "PERCENTAGE"
	DiscountTypeFixedAmount = "FIXED_AMOUNT"
)

// DailySpecial is a promotional rule with a validity window and usage caps.
type DailySpecial struct {
	ID                 int64     `json:"id"`
	RestaurantID       int64     `json:"restaurant_id" db:"restaurant_id"`
	SpecialName        string    `json:"special_name" db:"special_name"`
	Description        *string   `json:"description,omitempty" db:"description"`
	DiscountType       string    `json:"discount_type" db:"discount_type"`
	DiscountValue      float64   `json:"discount_value" db:"discount_value"`
	MinimumOrderAmount *float64  `json:"minimum_order_amount,omitempty" db:"minimum_order_amount"`
	ValidFrom          time.Time `json:"valid_from" db:"valid_from"`   // date, inclusive
	ValidUntil         time.Time `json:"valid_until" db:"valid_until"` // date, inclusive
	ValidFromTime      *string   `json:"valid_from_time,omitempty" db:"valid_from_time"`   // "HH:MM", optional time-of-day window
	ValidUntilTime     *string   `json:"valid_until_time,omitempty" db:"valid_until_time"` // "HH:MM"
	WeekdayMask        int       `json:"weekday_mask" db:"weekday_mask"`                   // bit per weekday, Sunday = bit 0; 0 means every day
	IsActive           bool      `json:"is_active" db:"is_active"`
	UsageLimit         *int      `json:"usage_limit,omitempty" db:"usage_limit"`
	UsageCount         int       `json:"usage_count" db:"usage_count"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// AppliesOn reports whether the special's date, weekday and time-of-day
// windows cover the given instant. Usage caps are checked separately.
func (s *DailySpecial) AppliesOn(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := time.Date(s.ValidFrom.Year(), s.ValidFrom.Month(), s.ValidFrom.Day(), 0, 0, 0, 0, now.Location())
	until := time.Date(s.ValidUntil.Year(), s.ValidUntil.Month(), s.ValidUntil.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(from) || day.After(until) {
		return false
	}
	if s.WeekdayMask != 0 && s.WeekdayMask&(1<<int(now.Weekday())) == 0 {
		return false
	}
	clock := now.Format("15:04")
	if s.ValidFromTime != nil && clock < *s.ValidFromTime {
		return false
	}
	if s.ValidUntilTime != nil && clock > *s.ValidUntilTime {
		return false
	}
	return true
}

// UsageExhausted reports whether the total usage cap has been reached.
func (s *DailySpecial) UsageExhausted() bool {
	return s.UsageLimit != nil && s.UsageCount >= *s.UsageLimit
}

// SpecialUsage is an append-only ledger entry created each time a special
// is applied to an order.
type SpecialUsage struct {
	ID             int64     `json:"id"`
	SpecialID      int64     `json:"special_id" db:"special_id"`
	OrderID        int64     `json:"order_id" db:"order_id"`
	DiscountAmount float64   `json:"discount_amount" db:"discount_amount"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
