package utils

import "math"

// Round2 rounds a monetary amount to 2 decimal places. All derived order
// amounts (subtotal, tax, service charge, discount, total) go through this
// so the stored figures stay internally consistent.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
