package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// IBankService user-facing money market operations.
//
// Every operation first accrues interest on the touched market(s), converts
// the requested amount through the scaled codec, re-derives the rate curve
// and, where funds can leave the pool, verifies the resulting position stays
// solvent. Each call commits atomically or leaves no trace.
type IBankService interface {
	Deposit(ctx context.Context, userID, assetID string, amount decimal.Decimal) error
	// Withdraw a zero amount withdraws the full balance
	Withdraw(ctx context.Context, userID, assetID string, amount decimal.Decimal) error
	Borrow(ctx context.Context, userID, assetID string, amount decimal.Decimal) error
	// Repay returns the amount actually repaid, capped at the outstanding debt
	Repay(ctx context.Context, userID, assetID string, amount decimal.Decimal) (decimal.Decimal, error)
	// Liquidate repay up to close_factor of the user's debt and seize
	// collateral with the liquidation bonus; returns the seized amount
	Liquidate(ctx context.Context, liquidatorID, userID, debtAssetID, collateralAssetID string, repayAmount decimal.Decimal) (decimal.Decimal, error)
	// SetUncollateralized admin-only credit line flag on a user's debt
	SetUncollateralized(ctx context.Context, operatorID, userID, assetID string, flag bool) error
}
