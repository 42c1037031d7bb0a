package redbank

import (
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"

	"github.com/shopspring/decimal"
)

// CompoundedIndex apply simple interest per second multiplicatively to a
// cumulative index. Each single update is linear in the elapsed time; the
// index itself carries the compounding history across calls.
func CompoundedIndex(index, rate decimal.Decimal, elapsed int64) decimal.Decimal {
	if !rate.IsPositive() || elapsed <= 0 {
		return index
	}

	growth, err := DivTruncate(rate.Mul(decimal.NewFromInt(elapsed)), SecondsPerYear)
	if err != nil {
		return index
	}

	return MulTruncate(index, one.Add(growth))
}

// ApplyAccruedInterests advance the market's indices to now and return the
// protocol's share of the accrued borrow interest in real units.
//
// Only indices and the returned pending reward move here; principal does not.
// The timestamp never goes backwards.
func ApplyAccruedInterests(market *core.Market, now time.Time) decimal.Decimal {
	ts := now.Unix()
	if ts <= market.InterestsLastUpdated {
		return decimal.Zero
	}

	elapsed := ts - market.InterestsLastUpdated
	borrowIndexPrior := market.BorrowIndex

	market.BorrowIndex = CompoundedIndex(market.BorrowIndex, market.BorrowRate, elapsed)
	market.LiquidityIndex = CompoundedIndex(market.LiquidityIndex, market.LiquidityRate, elapsed)
	market.InterestsLastUpdated = ts

	debtBefore := DescaledAmount(market.DebtTotalScaled, borrowIndexPrior)
	debtAfter := DescaledAmount(market.DebtTotalScaled, market.BorrowIndex)

	interestAccrued := debtAfter.Sub(debtBefore)
	if interestAccrued.IsNegative() {
		interestAccrued = decimal.Zero
	}

	return MulTruncate(interestAccrued, market.ReserveFactor)
}

// PreviewIndices current indices at now without touching stored state, used
// by read paths and health checks so a single call never mixes index epochs.
func PreviewIndices(market *core.Market, now time.Time) (decimal.Decimal, decimal.Decimal) {
	elapsed := now.Unix() - market.InterestsLastUpdated
	borrowIndex := CompoundedIndex(market.BorrowIndex, market.BorrowRate, elapsed)
	liquidityIndex := CompoundedIndex(market.LiquidityIndex, market.LiquidityRate, elapsed)
	return borrowIndex, liquidityIndex
}
