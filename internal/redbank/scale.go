package redbank

import (
	"github.com/shopspring/decimal"
)

// ScaledAmount convert a real token amount into an index-scaled share.
//
// The scaling factor is applied before dividing by the index and stays inside
// the stored value, so a small deposit divided by a large cumulative index
// does not collapse to zero. Division truncates: the round trip through
// DescaledAmount can only lose, never gain.
func ScaledAmount(amount, index decimal.Decimal) (decimal.Decimal, error) {
	return DivTruncate(amount.Mul(ScalingFactor), index)
}

// DescaledAmount convert a stored scaled share back into a real, interest
// inclusive amount at the current index.
func DescaledAmount(scaledAmount, index decimal.Decimal) decimal.Decimal {
	descaled, err := DivTruncate(scaledAmount.Mul(index), ScalingFactor)
	if err != nil {
		// ScalingFactor is a non-zero constant
		return decimal.Zero
	}

	return descaled
}
