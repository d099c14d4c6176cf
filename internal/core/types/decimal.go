// Package types provides common numeric aliases and utilities.
package types

import "github.com/shopspring/decimal"

// Quantity is a signed stock quantity. Uses decimal.Decimal to avoid floating-point errors.
type Quantity = decimal.Decimal

// Rate is a cost per unit.
type Rate = decimal.Decimal

// Money is a monetary value (quantity multiplied by a rate).
type Money = decimal.Decimal

// DisplayPlaces is the number of fractional digits used for projected report values.
const DisplayPlaces int32 = 2

// Round2 rounds a value for display. Intermediate sums must stay unrounded.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayPlaces)
}

// MaxZero clamps negative values to zero.
func MaxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
