package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UserHealthStatus solvency verdict of a position
type UserHealthStatus string

const (
	// HealthStatusNotBorrowing user has no collateralized debt
	HealthStatusNotBorrowing UserHealthStatus = "not_borrowing"
	// HealthStatusBorrowing health factor is defined
	HealthStatusBorrowing UserHealthStatus = "borrowing"
)

// PositionItem per-market slice of a user position, amounts in real units
type PositionItem struct {
	AssetID          string          `json:"asset_id"`
	Symbol           string          `json:"symbol"`
	Price            decimal.Decimal `json:"price"`
	CollateralAmount decimal.Decimal `json:"collateral_amount"`
	CollateralValue  decimal.Decimal `json:"collateral_value"`
	DebtAmount       decimal.Decimal `json:"debt_amount"`
	DebtValue        decimal.Decimal `json:"debt_value"`
	Uncollateralized bool            `json:"uncollateralized,omitempty"`
}

// UserPosition aggregated cross-market exposure of one user
type UserPosition struct {
	UserID               string          `json:"user_id"`
	TotalCollateralValue decimal.Decimal `json:"total_collateral_value"`
	// LTV 加权的可借上限
	MaxDebtValue decimal.Decimal `json:"max_debt_value"`
	// 清算线加权的抵押价值, 健康因子的分子
	WeightedMaintenanceMarginValue decimal.Decimal `json:"weighted_maintenance_margin_value"`
	TotalDebtValue                 decimal.Decimal `json:"total_debt_value"`
	// 不含信用额度债务
	TotalCollateralizedDebtValue decimal.Decimal  `json:"total_collateralized_debt_value"`
	HealthFactor                 decimal.Decimal  `json:"health_factor"`
	Status                       UserHealthStatus `json:"status"`
	Items                        []*PositionItem  `json:"items,omitempty"`
}

// Liquidatable a position is liquidatable iff it is borrowing with health
// factor strictly below one
func (p *UserPosition) Liquidatable() bool {
	return p.Status == HealthStatusBorrowing && p.HealthFactor.LessThan(one)
}

// IAccountService user position aggregator
type IAccountService interface {
	// CalculateUserPosition aggregate the user's bitmask markets into a
	// position, with indices previewed at now. Prices and balances are read
	// once; a missing oracle price is a hard failure.
	CalculateUserPosition(ctx context.Context, userID string, now time.Time) (*UserPosition, error)
	// LiquidatableUsers users whose current position is below water
	LiquidatableUsers(ctx context.Context, now time.Time) ([]*UserPosition, error)
}
