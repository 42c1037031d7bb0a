package core

import (
	"context"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// PoolAccountID reserved ledger account holding the bank's underlying cash
const PoolAccountID = "00000000-0000-0000-0000-000000000001"

// ILedgerService external token ledger.
//
// Collateral balances are not stored by the bank; they live here as
// liquidity-index-scaled shares under the market's ctoken asset. The same
// ledger holds the underlying cash of the pool account, which is what
// available-liquidity checks read.
//
// Balance reads are snapshots of committed state; writes join the caller's
// transaction and roll back with it.
type ILedgerService interface {
	BalanceOf(ctx context.Context, assetID, userID string) (decimal.Decimal, error)
	TotalSupply(ctx context.Context, assetID string) (decimal.Decimal, error)
	// PoolBalance contract-held balance of the underlying asset
	PoolBalance(ctx context.Context, assetID string) (decimal.Decimal, error)
	Mint(ctx context.Context, tx *db.DB, assetID, userID string, amount decimal.Decimal) error
	Burn(ctx context.Context, tx *db.DB, assetID, userID string, amount decimal.Decimal) error
	Transfer(ctx context.Context, tx *db.DB, assetID, from, to string, amount decimal.Decimal) error
}
