package debt

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

func newTestStore(t *testing.T) (*db.DB, core.IDebtStore) {
	database := db.MustOpen(db.Config{
		Dialect: "sqlite3",
		Host:    filepath.Join(t.TempDir(), "debt.db"),
	})
	t.Cleanup(func() { database.Close() })
	require.Nil(t, db.Migrate(database))
	return database, New(database)
}

func TestDebtStoreUpdate(t *testing.T) {
	database, s := newTestStore(t)
	ctx := context.Background()

	debt := &core.Debt{
		UserID:           "u1",
		AssetID:          "asset",
		AmountScaled:     decimal.New(100, 6),
		Uncollateralized: true,
	}
	require.Nil(t, s.Save(ctx, database, debt))

	debt, err := s.Find(ctx, "u1", "asset")
	require.Nil(t, err)
	require.True(t, debt.Uncollateralized)

	// revoking a credit line and repaying to zero must both reach the row
	debt.Uncollateralized = false
	debt.AmountScaled = decimal.Zero
	require.Nil(t, s.Update(ctx, database, debt))

	stored, err := s.Find(ctx, "u1", "asset")
	require.Nil(t, err)
	assert.False(t, stored.Uncollateralized)
	assert.True(t, stored.AmountScaled.IsZero())
	assert.Equal(t, int64(1), stored.Version)
}

func TestDebtStoreUsers(t *testing.T) {
	database, s := newTestStore(t)
	ctx := context.Background()

	require.Nil(t, s.Save(ctx, database, &core.Debt{UserID: "u1", AssetID: "a", AmountScaled: decimal.New(1, 6)}))
	require.Nil(t, s.Save(ctx, database, &core.Debt{UserID: "u1", AssetID: "b", AmountScaled: decimal.New(2, 6)}))
	require.Nil(t, s.Save(ctx, database, &core.Debt{UserID: "u2", AssetID: "a", AmountScaled: decimal.Zero}))

	users, err := s.Users(ctx)
	require.Nil(t, err)
	assert.Equal(t, []string{"u1"}, users)
}
