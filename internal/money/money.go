// Package money converts between display amounts and the integer milliunits
// stored and transmitted by the API.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of milliunits in one display unit.
const Scale = 1000

var scale = decimal.NewFromInt(Scale)

// ToMilliunits scales amount by 1000 and rounds half away from zero.
func ToMilliunits(amount decimal.Decimal) int64 {
	return amount.Mul(scale).Round(0).IntPart()
}

// FromMilliunits is the inverse of ToMilliunits.
func FromMilliunits(milliunits int64) decimal.Decimal {
	return decimal.NewFromInt(milliunits).Div(scale)
}

// Parse reads a display amount such as "12.34" or "-5" and returns milliunits.
func Parse(s string) (int64, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return ToMilliunits(amount), nil
}

// Format renders milliunits as a display string with two decimal places.
func Format(milliunits int64) string {
	return FromMilliunits(milliunits).StringFixed(2)
}
