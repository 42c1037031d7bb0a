package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// Price price point of an asset in the quote currency
type Price struct {
	ID        int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	AssetID   string          `sql:"size:36;unique_index:idx_prices" json:"asset_id,omitempty"`
	Price     decimal.Decimal `sql:"type:decimal(20,8)" json:"price,omitempty"`
	Content   types.JSONText  `sql:"type:varchar(1024)" json:"content,omitempty"`
	Version   int64           `sql:"default:0" json:"version,omitempty"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at,omitempty"`
}

// PriceTicker price ticker from the oracle endpoint
type PriceTicker struct {
	Provider string          `json:"provider,omitempty"`
	AssetID  string          `json:"asset_id,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Price    decimal.Decimal `json:"price,omitempty"`
}

// IPriceStore price store interface
type IPriceStore interface {
	Save(ctx context.Context, tx *db.DB, price *Price) error
	Find(ctx context.Context, assetID string) (*Price, error)
	DeleteBefore(ctx context.Context, t time.Time) error
}

// IPriceOracleService oracle price service interface.
//
// GetUnderlyingPrice fails with ErrPriceNotFound when no price source is
// configured for the asset; callers must treat that as a hard stop.
type IPriceOracleService interface {
	GetUnderlyingPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
	PullPriceTicker(ctx context.Context, assetID string, t time.Time) (*PriceTicker, error)
	PullAllPriceTickers(ctx context.Context, t time.Time) ([]*PriceTicker, error)
}
