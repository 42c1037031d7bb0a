package redbank

import (
	"github.com/mars-protocol/v1-core-sub001/core"

	"github.com/shopspring/decimal"
)

// UtilizationRate fraction of the market's liquidity currently lent out
// utilization_rate = total_debt / (available_liquidity + total_debt)
func UtilizationRate(totalDebt, availableLiquidity decimal.Decimal) decimal.Decimal {
	if !totalDebt.IsPositive() {
		return decimal.Zero
	}

	rate, err := DivTruncate(totalDebt, availableLiquidity.Add(totalDebt))
	if err != nil {
		return decimal.Zero
	}

	return rate
}

// GetUpdatedInterestRates dispatch the strategy union and derive both rates.
// The liquidity rate never exceeds the borrow rate since utilization and
// (1 - reserve_factor) are both at most one.
func GetUpdatedInterestRates(strategy core.InterestRateStrategy, utilization, borrowRate, reserveFactor decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	var newBorrowRate decimal.Decimal
	switch strategy.Kind {
	case core.InterestRateStrategyDynamic:
		newBorrowRate = dynamicBorrowRate(strategy.Dynamic, utilization, borrowRate)
	case core.InterestRateStrategyLinear:
		newBorrowRate = linearBorrowRate(strategy.Linear, utilization)
	default:
		return decimal.Zero, decimal.Zero, core.ErrInvalidParams
	}

	return newBorrowRate, LiquidityRate(newBorrowRate, utilization, reserveFactor), nil
}

// dynamicBorrowRate PID controller around the optimal utilization.
//
// Under-utilized markets walk the stored rate down to incentivize borrowing,
// over-utilized markets walk it up; the proportional gain doubles up once the
// error crosses the augmentation threshold.
func dynamicBorrowRate(params *core.DynamicInterestRate, utilization, currentBorrowRate decimal.Decimal) decimal.Decimal {
	err := params.OptimalUtilizationRate.Sub(utilization)
	positive := err.IsPositive()
	err = err.Abs()

	kp := params.Kp1
	if err.GreaterThanOrEqual(params.KpAugmentationThreshold) {
		kp = params.Kp2
	}

	p := MulTruncate(kp, err)

	var rate decimal.Decimal
	if positive {
		rate = currentBorrowRate.Sub(p)
		if rate.IsNegative() {
			rate = decimal.Zero
		}
	} else {
		rate = currentBorrowRate.Add(p)
	}

	if rate.LessThan(params.MinBorrowRate) {
		return params.MinBorrowRate
	}
	if rate.GreaterThan(params.MaxBorrowRate) {
		return params.MaxBorrowRate
	}

	return rate
}

// linearBorrowRate two-slope curve with a kink at the optimal utilization
func linearBorrowRate(params *core.LinearInterestRate, utilization decimal.Decimal) decimal.Decimal {
	if utilization.LessThanOrEqual(params.OptimalUtilizationRate) {
		if params.OptimalUtilizationRate.IsZero() {
			// degenerate kink at zero, the whole curve is the excess leg
			return params.Base.Add(params.Slope1)
		}

		share, err := DivTruncate(utilization, params.OptimalUtilizationRate)
		if err != nil {
			return params.Base
		}
		return params.Base.Add(MulTruncate(params.Slope1, share))
	}

	excess, err := DivTruncate(
		utilization.Sub(params.OptimalUtilizationRate),
		one.Sub(params.OptimalUtilizationRate),
	)
	if err != nil {
		// optimal == 1 never reaches this branch, utilization is capped at 1
		excess = decimal.Zero
	}

	return params.Base.Add(params.Slope1).Add(MulTruncate(params.Slope2, excess))
}

// LiquidityRate share of the borrow rate flowing to depositors
// liquidity_rate = borrow_rate * utilization * (1 - reserve_factor)
func LiquidityRate(borrowRate, utilization, reserveFactor decimal.Decimal) decimal.Decimal {
	return MulTruncate(MulTruncate(borrowRate, utilization), one.Sub(reserveFactor))
}
