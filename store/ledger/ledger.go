package ledger

import (
	"context"
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/pkg/id"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Balance one (asset, holder) row of the share-and-cash ledger
type Balance struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string          `sql:"size:36;unique_index:balance_idx" json:"asset_id"`
	UserID    string          `sql:"size:36;unique_index:balance_idx" json:"user_id"`
	Amount    decimal.Decimal `sql:"type:decimal(40,18)" json:"amount"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Transfer journal row, one per balance movement
type Transfer struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string          `sql:"size:36;unique_index:trace_idx" json:"trace_id"`
	AssetID   string          `sql:"size:36;index:asset_idx" json:"asset_id"`
	FromID    string          `sql:"size:36" json:"from_id"`
	ToID      string          `sql:"size:36" json:"to_id"`
	Amount    decimal.Decimal `sql:"type:decimal(40,18)" json:"amount"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

type ledgerStore struct {
	db *db.DB
}

// New new ledger service backed by the local database.
//
// Production deployments can swap this for a client of the real token ledger;
// the bank only depends on core.ILedgerService.
func New(db *db.DB) core.ILedgerService {
	return &ledgerStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(Balance{})
		if err := tx.AutoMigrate(Balance{}).Error; err != nil {
			return err
		}

		if err := db.Update().Model(Transfer{}).AutoMigrate(Transfer{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *ledgerStore) BalanceOf(ctx context.Context, assetID, userID string) (decimal.Decimal, error) {
	var balance Balance
	if err := s.db.View().Where("asset_id=? and user_id=?", assetID, userID).First(&balance).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return balance.Amount, nil
}

func (s *ledgerStore) TotalSupply(ctx context.Context, assetID string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := s.db.View().Model(Balance{}).
		Select("coalesce(sum(amount), 0) as total").
		Where("asset_id=?", assetID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (s *ledgerStore) PoolBalance(ctx context.Context, assetID string) (decimal.Decimal, error) {
	return s.BalanceOf(ctx, assetID, core.PoolAccountID)
}

func (s *ledgerStore) Mint(ctx context.Context, tx *db.DB, assetID, userID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}
	if err := s.add(ctx, tx, assetID, userID, amount); err != nil {
		return err
	}
	return s.journal(ctx, tx, assetID, "", userID, amount)
}

func (s *ledgerStore) Burn(ctx context.Context, tx *db.DB, assetID, userID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}
	if err := s.add(ctx, tx, assetID, userID, amount.Neg()); err != nil {
		return err
	}
	return s.journal(ctx, tx, assetID, userID, "", amount)
}

func (s *ledgerStore) Transfer(ctx context.Context, tx *db.DB, assetID, from, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}
	if err := s.add(ctx, tx, assetID, from, amount.Neg()); err != nil {
		return err
	}
	if err := s.add(ctx, tx, assetID, to, amount); err != nil {
		return err
	}
	return s.journal(ctx, tx, assetID, from, to, amount)
}

// journal record the movement; an empty from or to marks a mint or burn
func (s *ledgerStore) journal(ctx context.Context, tx *db.DB, assetID, from, to string, amount decimal.Decimal) error {
	transfer := Transfer{
		TraceID: id.GenTraceID(),
		AssetID: assetID,
		FromID:  from,
		ToID:    to,
		Amount:  amount,
	}
	return tx.Update().Create(&transfer).Error
}

func (s *ledgerStore) add(ctx context.Context, tx *db.DB, assetID, userID string, delta decimal.Decimal) error {
	balance := Balance{AssetID: assetID, UserID: userID, Amount: decimal.Zero}
	if err := tx.Update().Where("asset_id=? and user_id=?", assetID, userID).FirstOrCreate(&balance).Error; err != nil {
		return err
	}

	next := balance.Amount.Add(delta)
	if next.IsNegative() {
		return core.ErrUnderflow
	}

	version := balance.Version
	if err := tx.Update().Model(Balance{}).
		Where("asset_id=? and user_id=? and version=?", assetID, userID, version).
		Updates(map[string]interface{}{"amount": next, "version": version + 1}).Error; err != nil {
		return err
	}

	return nil
}
