package views

import (
	"github.com/mars-protocol/v1-core-sub001/core"

	"github.com/shopspring/decimal"
)

// Market market view
type Market struct {
	core.Market
	TotalDebt      decimal.Decimal `json:"total_debt"`
	TotalLiquidity decimal.Decimal `json:"total_liquidity"`
	SupplyAPY      decimal.Decimal `json:"supply_apy"`
	BorrowAPY      decimal.Decimal `json:"borrow_apy"`
}
