package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := FromString(s)
	require.NoError(t, err)
	return v
}

func TestMul_QuantityTimesUnitPrice(t *testing.T) {
	got := Mul(d(t, "10"), d(t, "5.00"))
	assert.True(t, got.Equal(d(t, "50.00")), "got %s", got)
}

func TestMul_ZeroOperandsYieldZero(t *testing.T) {
	assert.True(t, Mul(decimal.Zero, d(t, "5.00")).IsZero())
	assert.True(t, Mul(d(t, "3"), decimal.Zero).IsZero())
}

func TestMul_SignedValues(t *testing.T) {
	got := Mul(d(t, "-2"), d(t, "4.25"))
	assert.True(t, got.Equal(d(t, "-8.50")), "got %s", got)
}

func TestSum_OrderIndependent(t *testing.T) {
	a := []decimal.Decimal{d(t, "0.1"), d(t, "0.2"), d(t, "100000.3"), d(t, "-0.05")}
	b := []decimal.Decimal{a[3], a[2], a[0], a[1]}

	assert.True(t, Sum(a...).Equal(Sum(b...)))
	assert.True(t, Sum(a...).Equal(d(t, "100000.55")))
}

func TestApplyTax_SpecRate(t *testing.T) {
	tax := ApplyTax(d(t, "50.00"), d(t, "21"))
	assert.True(t, tax.Equal(d(t, "10.50")), "got %s", tax)
}

func TestApplyTax_RoundsHalfUp(t *testing.T) {
	// 10.005 exactly between 10.00 and 10.01 rounds up.
	tax := ApplyTax(d(t, "47.6428571"), d(t, "21"))
	assert.True(t, tax.Equal(d(t, "10.00")), "got %s", tax)

	tax = ApplyTax(d(t, "100.05"), d(t, "10"))
	assert.True(t, tax.Equal(d(t, "10.01")), "got %s", tax)
}

func TestRound_HalfUp(t *testing.T) {
	got, err := Round(d(t, "2.345"), 2)
	require.NoError(t, err)
	assert.True(t, got.Equal(d(t, "2.35")), "got %s", got)
}

func TestRound_NegativePrecisionRejected(t *testing.T) {
	_, err := Round(d(t, "1.0"), -1)
	assert.ErrorIs(t, err, ErrNegativePrecision)
}

func TestFormat_ThousandsGrouping(t *testing.T) {
	assert.Equal(t, "€ 1,234,567.89", Format(d(t, "1234567.89"), "€"))
	assert.Equal(t, "€ 0.00", Format(decimal.Zero, "€"))
	assert.Equal(t, "-€ 12.50", Format(d(t, "-12.5"), "€"))
	assert.Equal(t, "999.99", Format(d(t, "999.99"), ""))
}

func TestFromString_Invalid(t *testing.T) {
	_, err := FromString("not-a-number")
	assert.Error(t, err)
}
