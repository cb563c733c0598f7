// Package pricing computes order totals.  All amounts are int64 cents;
// multiplications by a rate or percentage go through shopspring/decimal and
// are rounded half-up to the cent exactly once, at the point the amount is
// stored.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToDecimal converts cents into a currency decimal (2500 -> 25.00).
func ToDecimal(cents int64) decimal.Decimal { return decimal.New(cents, -2) }

// FromDecimal converts a currency decimal into cents, rounding half-up.
func FromDecimal(d decimal.Decimal) int64 { return d.Shift(2).Round(0).IntPart() }

// Format renders cents with two decimals, e.g. 2543 -> "25.43".
func Format(cents int64) string { return ToDecimal(cents).StringFixed(2) }

// ParseAmount parses a currency string ("25.43") into cents.  More than two
// decimals are rejected rather than silently rounded.
func ParseAmount(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, fmt.Errorf("invalid amount %q: more than two decimals", s)
	}
	return FromDecimal(d), nil
}

// roundCents rounds a decimal number of cents to a whole cent.
func roundCents(d decimal.Decimal) int64 { return d.Round(0).IntPart() }
