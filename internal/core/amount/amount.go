package amount

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is an asset quantity in integer base units.
type Amount int64

// Decimals is the number of fractional digits of one display unit.
const Decimals = 7

// UnitsPerDisplay is the number of base units in one display unit (10^7).
const UnitsPerDisplay Amount = 10_000_000

// ErrInvalidAmount is returned for non-numeric or non-positive input.
var ErrInvalidAmount = errors.New("invalid amount")

var maxDisplay = decimal.New(math.MaxInt64, -Decimals)

// NewAmount wraps a raw base-unit count.
func NewAmount(units int64) Amount {
	return Amount(units)
}

// ToBaseUnits parses a human decimal amount and converts it to base units,
// truncating digits beyond the seventh fractional place.
func ToBaseUnits(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return FromDecimal(d)
}

// FromDecimal converts an already parsed decimal to base units.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: %s must be greater than zero", ErrInvalidAmount, d.String())
	}
	if d.GreaterThan(maxDisplay) {
		return 0, fmt.Errorf("%w: %s exceeds the representable range", ErrInvalidAmount, d.String())
	}
	units := d.Shift(Decimals).Truncate(0)
	if !units.IsPositive() {
		return 0, fmt.Errorf("%w: %s is below one base unit", ErrInvalidAmount, d.String())
	}
	return Amount(units.IntPart()), nil
}

// ToDecimal renders base units for display with two fractional digits.
func ToDecimal(a Amount) string {
	return a.Decimal().StringFixed(2)
}

// Units returns the raw base-unit count.
func (a Amount) Units() int64 {
	return int64(a)
}

// Decimal returns the full-precision display value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Decimals)
}

func (a Amount) Add(other Amount) Amount {
	return a + other
}

func (a Amount) Sub(other Amount) Amount {
	return a - other
}

func (a Amount) IsPositive() bool {
	return a > 0
}

func (a Amount) IsZero() bool {
	return a == 0
}

// String returns the base-unit count as a decimal integer, the wire form of i128 values.
func (a Amount) String() string {
	return fmt.Sprintf("%d", int64(a))
}

// Parse reads a base-unit integer string as produced by String.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q is not an integer base-unit value", ErrInvalidAmount, s)
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("%w: %q overflows 64 bits", ErrInvalidAmount, s)
	}
	return Amount(d.IntPart()), nil
}
