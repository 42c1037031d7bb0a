package redbank

import (
	"github.com/mars-protocol/v1-core-sub001/core"

	"github.com/shopspring/decimal"
)

var (
	// SecondsPerYear seconds per year
	SecondsPerYear = decimal.NewFromInt(31536000)
	// MaxPrecision fractional digits carried by all money math, matching the
	// external ledger's native precision
	MaxPrecision int32 = 18
	// ScalingFactor extra precision factor kept inside stored scaled amounts
	ScalingFactor = decimal.New(1, 6)

	one = decimal.New(1, 0)
)

// MulTruncate multiply then truncate to MaxPrecision
func MulTruncate(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b).Truncate(MaxPrecision)
}

// DivTruncate divide then truncate to MaxPrecision. shopspring's Div rounds
// the last digit and a rounded guard digit can still carry into the kept
// ones, so take the exact floor quotient instead; amounts never round up.
func DivTruncate(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, core.ErrDivideByZero
	}

	q, _ := a.QuoRem(b, MaxPrecision)
	return q, nil
}

// SubChecked subtract, failing instead of going negative
func SubChecked(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.GreaterThan(a) {
		return decimal.Zero, core.ErrUnderflow
	}

	return a.Sub(b), nil
}
