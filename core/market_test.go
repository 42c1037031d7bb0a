package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newValidMarket() *Market {
	return &Market{
		AssetID:                "asset",
		Symbol:                 "BTC",
		CTokenAssetID:          "ctoken",
		ReserveFactor:          decimal.RequireFromString("0.2"),
		MaxLoanToValue:         decimal.RequireFromString("0.7"),
		MaintenanceMargin:      decimal.RequireFromString("0.8"),
		LiquidationBonus:       decimal.RequireFromString("0.1"),
		CloseFactor:            decimal.RequireFromString("0.5"),
		RateStrategy:           InterestRateStrategyLinear,
		OptimalUtilizationRate: decimal.RequireFromString("0.8"),
		Base:                   decimal.RequireFromString("0.02"),
		Slope1:                 decimal.RequireFromString("0.07"),
		Slope2:                 decimal.RequireFromString("0.45"),
	}
}

func TestMarketValidate(t *testing.T) {
	assert.Nil(t, newValidMarket().Validate())

	m := newValidMarket()
	m.AssetID = ""
	assert.Equal(t, ErrInvalidParams, m.Validate())

	m = newValidMarket()
	m.CTokenAssetID = ""
	assert.Equal(t, ErrInvalidParams, m.Validate())

	m = newValidMarket()
	m.ReserveFactor = decimal.RequireFromString("1.01")
	assert.Equal(t, ErrInvalidParams, m.Validate())

	m = newValidMarket()
	m.CloseFactor = decimal.RequireFromString("-0.1")
	assert.Equal(t, ErrInvalidParams, m.Validate())

	// the liquidation line must sit strictly above the borrow limit
	m = newValidMarket()
	m.MaintenanceMargin = m.MaxLoanToValue
	assert.Equal(t, ErrInvalidParams, m.Validate())
}

func TestMarketValidateStrategy(t *testing.T) {
	m := newValidMarket()
	m.OptimalUtilizationRate = decimal.RequireFromString("1.5")
	assert.Equal(t, ErrInvalidParams, m.Validate())

	m = newValidMarket()
	m.RateStrategy = InterestRateStrategyDynamic
	m.MinBorrowRate = decimal.RequireFromString("0.02")
	m.MaxBorrowRate = decimal.RequireFromString("0.5")
	m.OptimalUtilizationRate = decimal.RequireFromString("0.6")
	assert.Nil(t, m.Validate())

	m.MinBorrowRate = decimal.RequireFromString("0.9")
	assert.Equal(t, ErrInvalidParams, m.Validate())

	// a typo'd kind must not fall back to any concrete strategy
	m = newValidMarket()
	m.RateStrategy = "liner"
	s := m.InterestRateStrategy()
	assert.Nil(t, s.Dynamic)
	assert.Nil(t, s.Linear)
	assert.Equal(t, ErrInvalidParams, m.Validate())
}

func TestMarketInterestRateStrategy(t *testing.T) {
	m := newValidMarket()
	s := m.InterestRateStrategy()
	assert.Equal(t, InterestRateStrategyLinear, s.Kind)
	assert.NotNil(t, s.Linear)
	assert.Equal(t, "0.8", s.Linear.OptimalUtilizationRate.String())

	m.RateStrategy = InterestRateStrategyDynamic
	s = m.InterestRateStrategy()
	assert.Equal(t, InterestRateStrategyDynamic, s.Kind)
	assert.NotNil(t, s.Dynamic)
}

func TestMarketGates(t *testing.T) {
	m := newValidMarket()
	m.Active = true
	m.DepositEnabled = true
	m.BorrowEnabled = false

	assert.True(t, m.AllowDeposit())
	assert.True(t, m.AllowWithdraw())
	assert.False(t, m.AllowBorrow())
	assert.True(t, m.AllowRepay())
	assert.True(t, m.AllowLiquidate())

	// the active flag is the master switch
	m.Active = false
	assert.False(t, m.AllowDeposit())
	assert.False(t, m.AllowWithdraw())
	assert.False(t, m.AllowBorrow())
	assert.False(t, m.AllowRepay())
	assert.False(t, m.AllowLiquidate())
}
