package market

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mars-protocol/v1-core-sub001/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*db.DB, core.IMarketStore) {
	database := db.MustOpen(db.Config{
		Dialect: "sqlite3",
		Host:    filepath.Join(t.TempDir(), "market.db"),
	})
	t.Cleanup(func() { database.Close() })
	require.Nil(t, db.Migrate(database))
	return database, New(database)
}

func TestMarketStoreUpdateFlags(t *testing.T) {
	database, s := newTestStore(t)
	ctx := context.Background()

	market := &core.Market{
		AssetID:        "asset",
		Symbol:         "BTC",
		CTokenAssetID:  "ctoken",
		BorrowIndex:    decimal.New(1, 0),
		LiquidityIndex: decimal.New(1, 0),
		Base:           decimal.RequireFromString("0.02"),
		RateStrategy:   core.InterestRateStrategyLinear,
		Active:         true,
		DepositEnabled: true,
		BorrowEnabled:  true,
	}
	require.Nil(t, s.Save(ctx, database, market))

	market, err := s.Find(ctx, "asset")
	require.Nil(t, err)
	require.True(t, market.Active)

	// the kill switches must be able to go back to false, and params to zero
	market.Active = false
	market.DepositEnabled = false
	market.BorrowEnabled = false
	market.Base = decimal.Zero
	require.Nil(t, s.Update(ctx, database, market))

	stored, err := s.Find(ctx, "asset")
	require.Nil(t, err)
	assert.False(t, stored.Active)
	assert.False(t, stored.DepositEnabled)
	assert.False(t, stored.BorrowEnabled)
	assert.True(t, stored.Base.IsZero())
	assert.Equal(t, int64(1), stored.Version)
}

func TestMarketStoreUpdateStaleVersion(t *testing.T) {
	database, s := newTestStore(t)
	ctx := context.Background()

	market := &core.Market{
		AssetID:       "asset",
		Symbol:        "BTC",
		CTokenAssetID: "ctoken",
		Active:        true,
	}
	require.Nil(t, s.Save(ctx, database, market))

	stale := *market
	stale.Version = 41
	stale.Active = false
	require.Nil(t, s.Update(ctx, database, &stale))

	stored, err := s.Find(ctx, "asset")
	require.Nil(t, err)
	assert.True(t, stored.Active)
	assert.Equal(t, int64(0), stored.Version)
}
