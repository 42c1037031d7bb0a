package redbank

import (
	"testing"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dynamicStrategy() core.InterestRateStrategy {
	return core.InterestRateStrategy{
		Kind: core.InterestRateStrategyDynamic,
		Dynamic: &core.DynamicInterestRate{
			MinBorrowRate:           number.Decimal("0.01"),
			MaxBorrowRate:           number.Decimal("2"),
			KpAugmentationThreshold: number.Decimal("0.15"),
			Kp1:                     number.Decimal("2"),
			Kp2:                     number.Decimal("3"),
			OptimalUtilizationRate:  number.Decimal("0.6"),
		},
	}
}

func linearStrategy() core.InterestRateStrategy {
	return core.InterestRateStrategy{
		Kind: core.InterestRateStrategyLinear,
		Linear: &core.LinearInterestRate{
			OptimalUtilizationRate: number.Decimal("0.8"),
			Base:                   number.Decimal("0.02"),
			Slope1:                 number.Decimal("0.07"),
			Slope2:                 number.Decimal("0.45"),
		},
	}
}

func TestDynamicBorrowRate(t *testing.T) {
	strategy := dynamicStrategy()

	t.Run("under utilized walks rate down", func(t *testing.T) {
		// error = 0.01, kp1 applies: 0.05 - 2*0.01 = 0.03
		borrowRate, _, err := GetUpdatedInterestRates(strategy, number.Decimal("0.59"), number.Decimal("0.05"), decimal.Zero)
		require.Nil(t, err)
		assert.Equal(t, "0.03", borrowRate.String())
	})

	t.Run("over utilized walks rate up", func(t *testing.T) {
		borrowRate, _, err := GetUpdatedInterestRates(strategy, number.Decimal("0.65"), number.Decimal("0.05"), decimal.Zero)
		require.Nil(t, err)
		assert.Equal(t, "0.15", borrowRate.String())
	})

	t.Run("augmented gain past threshold", func(t *testing.T) {
		// error = 0.2 >= 0.15, kp2 applies: 0.05 + 3*0.2 = 0.65
		borrowRate, _, err := GetUpdatedInterestRates(strategy, number.Decimal("0.8"), number.Decimal("0.05"), decimal.Zero)
		require.Nil(t, err)
		assert.Equal(t, "0.65", borrowRate.String())
	})

	t.Run("clamped to min", func(t *testing.T) {
		borrowRate, _, err := GetUpdatedInterestRates(strategy, number.Decimal("0.59"), number.Decimal("0.02"), decimal.Zero)
		require.Nil(t, err)
		assert.Equal(t, strategy.Dynamic.MinBorrowRate.String(), borrowRate.String())
	})

	t.Run("clamped to max", func(t *testing.T) {
		borrowRate, _, err := GetUpdatedInterestRates(strategy, decimal.New(1, 0), number.Decimal("1.9"), decimal.Zero)
		require.Nil(t, err)
		assert.Equal(t, strategy.Dynamic.MaxBorrowRate.String(), borrowRate.String())
	})
}

func TestLinearBorrowRate(t *testing.T) {
	strategy := linearStrategy()

	t.Run("below optimal", func(t *testing.T) {
		// 0.02 + 0.07 * 0.4/0.8 = 0.055
		borrowRate, _, err := GetUpdatedInterestRates(strategy, number.Decimal("0.4"), decimal.Zero, decimal.Zero)
		require.Nil(t, err)
		assert.Equal(t, "0.055", borrowRate.String())
	})

	t.Run("at optimal", func(t *testing.T) {
		borrowRate, _, err := GetUpdatedInterestRates(strategy, number.Decimal("0.8"), decimal.Zero, decimal.Zero)
		require.Nil(t, err)
		assert.Equal(t, "0.09", borrowRate.String())
	})

	t.Run("above optimal", func(t *testing.T) {
		// 0.02 + 0.07 + 0.45 * (0.9-0.8)/(1-0.8) = 0.315
		borrowRate, _, err := GetUpdatedInterestRates(strategy, number.Decimal("0.9"), decimal.Zero, decimal.Zero)
		require.Nil(t, err)
		assert.Equal(t, "0.315", borrowRate.String())
	})

	t.Run("zero optimal uses excess leg", func(t *testing.T) {
		strategy := strategy
		strategy.Linear = &core.LinearInterestRate{
			OptimalUtilizationRate: decimal.Zero,
			Base:                   number.Decimal("0.02"),
			Slope1:                 number.Decimal("0.07"),
			Slope2:                 number.Decimal("0.45"),
		}

		borrowRate, _, err := GetUpdatedInterestRates(strategy, number.Decimal("0.5"), decimal.Zero, decimal.Zero)
		require.Nil(t, err)
		// 0.02 + 0.07 + 0.45*0.5
		assert.Equal(t, "0.315", borrowRate.String())
	})
}

func TestLiquidityRateNeverExceedsBorrowRate(t *testing.T) {
	utilizations := []string{"0", "0.1", "0.25", "0.5", "0.59", "0.6", "0.75", "0.9", "1"}
	reserveFactors := []string{"0", "0.1", "0.3", "1"}

	for _, strategy := range []core.InterestRateStrategy{dynamicStrategy(), linearStrategy()} {
		for _, u := range utilizations {
			for _, rf := range reserveFactors {
				borrowRate, liquidityRate, err := GetUpdatedInterestRates(strategy, number.Decimal(u), number.Decimal("0.2"), number.Decimal(rf))
				require.Nil(t, err)
				assert.True(t, liquidityRate.LessThanOrEqual(borrowRate), "u=%s rf=%s borrow=%s liquidity=%s", u, rf, borrowRate, liquidityRate)
				assert.False(t, liquidityRate.IsNegative())
			}
		}
	}
}

func TestUtilizationRate(t *testing.T) {
	assert.Equal(t, "0", UtilizationRate(decimal.Zero, number.Decimal("100")).String())
	assert.Equal(t, "0.5", UtilizationRate(number.Decimal("100"), number.Decimal("100")).String())
	assert.Equal(t, "1", UtilizationRate(number.Decimal("100"), decimal.Zero).String())
}
