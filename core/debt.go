package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Debt user debt model, keyed by (asset, user).
//
// AmountScaled is the stored principal divided by the borrow index at last
// touch; the real debt is amount_scaled * current borrow index.
type Debt struct {
	ID           uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID       string          `sql:"size:36;unique_index:debt_idx" json:"user_id"`
	AssetID      string          `sql:"size:36;unique_index:debt_idx" json:"asset_id"`
	AmountScaled decimal.Decimal `sql:"type:decimal(40,18)" json:"amount_scaled"`
	// 信用额度债务, 不参与清算判定分母, 但计入总敞口
	Uncollateralized bool      `sql:"default:0" json:"uncollateralized"`
	Version          int64     `sql:"default:0" json:"version"`
	CreatedAt        time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IDebtStore debt store interface
type IDebtStore interface {
	Save(ctx context.Context, tx *db.DB, debt *Debt) error
	Find(ctx context.Context, userID, assetID string) (*Debt, error)
	FindByUser(ctx context.Context, userID string) ([]*Debt, error)
	FindByAssetID(ctx context.Context, assetID string) ([]*Debt, error)
	Update(ctx context.Context, tx *db.DB, debt *Debt) error
	Users(ctx context.Context) ([]string, error)
}
