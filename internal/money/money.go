// Package money provides fixed-point decimal arithmetic for quantities,
// unit prices, and monetary amounts. All operations are pure; intermediate
// sums keep full precision and rounding happens only at tax and
// presentation boundaries.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the decimal precision used at presentation and tax
// boundaries.
const DefaultPrecision = 2

// ErrNegativePrecision is returned when a rounding target below zero is
// requested.
var ErrNegativePrecision = fmt.Errorf("rounding precision must be >= 0")

// Zero returns the zero amount.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// FromString parses a decimal amount from its string form.
func FromString(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// MustFromString parses a decimal amount and panics on failure. Intended
// for constants and test fixtures only.
func MustFromString(s string) decimal.Decimal {
	d, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Add returns a + b at full precision.
func Add(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b)
}

// Sub returns a - b at full precision.
func Sub(a, b decimal.Decimal) decimal.Decimal {
	return a.Sub(b)
}

// Mul returns quantity * unitPrice at full precision. A zero quantity or
// price yields zero; empty cost items are valid placeholders, not errors.
func Mul(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() || unitPrice.IsZero() {
		return decimal.Zero
	}
	return quantity.Mul(unitPrice)
}

// Sum adds all amounts at full precision. Decimal addition is exact, so
// the result is independent of summation order.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// ApplyTax returns the tax portion of amount for a percentage rate,
// rounded half-up at DefaultPrecision. A 21% rate on 50.00 yields 10.50.
func ApplyTax(amount, ratePercent decimal.Decimal) decimal.Decimal {
	tax := amount.Mul(ratePercent).Div(decimal.NewFromInt(100))
	return tax.Round(DefaultPrecision)
}

// Round rounds amount half-up at the given decimal precision.
func Round(amount decimal.Decimal, precision int32) (decimal.Decimal, error) {
	if precision < 0 {
		return decimal.Zero, ErrNegativePrecision
	}
	return amount.Round(precision), nil
}

// Format renders an amount with a currency symbol, two decimals, and
// thousands separators, e.g. "€ 1,234.56".
func Format(amount decimal.Decimal, currency string) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(DefaultPrecision)

	intPart, decPart, _ := strings.Cut(fixed, ".")
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := strings.Join(groups, ",") + "." + decPart
	if currency != "" {
		out = currency + " " + out
	}
	if neg {
		out = "-" + out
	}
	return out
}
