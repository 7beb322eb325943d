// Package money holds the fixed-point representation used for every wallet
// balance and ledger amount. Values are integer base units: the human value
// multiplied by 10^8. Decimal strings are only parsed and produced at the edge.
package money

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by an Amount.
const Scale = 8

// maxInputLength bounds the decimal strings Parse accepts. The largest
// balance needs 11 integer digits plus sign, point and fraction.
const maxInputLength = 40

// Amount is a quantity in base units (value × 10^8).
type Amount int64

const (
	Zero Amount = 0
	// One is a single whole unit.
	One Amount = 100_000_000
)

var (
	ErrMalformed   = errors.New("amount is not a decimal number")
	ErrNotPositive = errors.New("amount must be greater than zero")
	ErrOutOfRange  = errors.New("amount is out of range")
	ErrOverflow    = errors.New("amount overflows balance")
)

// Parse reads a base-10 decimal string and converts it to base units,
// rounding half away from zero at the eighth fractional digit.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return 0, ErrMalformed
	}
	if len(s) > maxInputLength {
		return 0, ErrOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrMalformed
	}
	units := d.Shift(Scale).Round(0)
	if !units.IsInteger() || units.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 ||
		units.Cmp(decimal.NewFromInt(math.MinInt64)) < 0 {
		return 0, ErrOutOfRange
	}
	return Amount(units.IntPart()), nil
}

// ParsePositive is Parse restricted to strictly positive results. An input
// such as "0.000000001" rounds to zero and is rejected.
func ParsePositive(s string) (Amount, error) {
	a, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if a <= 0 {
		return 0, ErrNotPositive
	}
	return a, nil
}

// FromUnits wraps a raw base-unit count.
func FromUnits(units int64) Amount { return Amount(units) }

// Units returns the raw base-unit count.
func (a Amount) Units() int64 { return int64(a) }

// Decimal returns the human-unit value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// String formats the amount with exactly eight fractional digits.
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// Add returns a+b, failing instead of wrapping around.
func (a Amount) Add(b Amount) (Amount, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrOverflow
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// MinorUnits converts to a currency's minor units (cents for digits=2).
// The boolean is false when the amount carries precision the currency cannot express.
func (a Amount) MinorUnits(digits int32) (int64, bool) {
	if digits < 0 || digits > Scale {
		return 0, false
	}
	div := int64(math.Pow10(int(Scale - digits)))
	if int64(a)%div != 0 {
		return int64(a) / div, false
	}
	return int64(a) / div, true
}
