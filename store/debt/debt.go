package debt

import (
	"context"

	"github.com/mars-protocol/v1-core-sub001/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type debtStore struct {
	db *db.DB
}

// New new debt store
func New(db *db.DB) core.IDebtStore {
	return &debtStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Debt{})
		if err := tx.AutoMigrate(core.Debt{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *debtStore) Save(ctx context.Context, tx *db.DB, debt *core.Debt) error {
	return tx.Update().Where("user_id=? and asset_id=?", debt.UserID, debt.AssetID).FirstOrCreate(debt).Error
}

func (s *debtStore) Find(ctx context.Context, userID, assetID string) (*core.Debt, error) {
	var debt core.Debt
	if err := s.db.View().Where("user_id=? and asset_id=?", userID, assetID).First(&debt).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Debt{UserID: userID, AssetID: assetID}, nil
		}
		return nil, err
	}

	return &debt, nil
}

func (s *debtStore) FindByUser(ctx context.Context, userID string) ([]*core.Debt, error) {
	var debts []*core.Debt
	if err := s.db.View().Where("user_id=?", userID).Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

func (s *debtStore) FindByAssetID(ctx context.Context, assetID string) ([]*core.Debt, error) {
	var debts []*core.Debt
	if err := s.db.View().Where("asset_id=?", assetID).Find(&debts).Error; err != nil {
		return nil, err
	}
	return debts, nil
}

func (s *debtStore) Update(ctx context.Context, tx *db.DB, debt *core.Debt) error {
	version := debt.Version
	debt.Version++
	// map update so a repaid-to-zero amount and a revoked credit line both
	// reach the row
	updates := map[string]interface{}{
		"amount_scaled":    debt.AmountScaled,
		"uncollateralized": debt.Uncollateralized,
		"version":          debt.Version,
	}
	if err := tx.Update().Model(core.Debt{}).Where("user_id=? and asset_id=? and version=?", debt.UserID, debt.AssetID, version).Updates(updates).Error; err != nil {
		return err
	}

	return nil
}

func (s *debtStore) Users(ctx context.Context) ([]string, error) {
	var users []string
	if err := s.db.View().Model(core.Debt{}).Where("amount_scaled > 0").Pluck("distinct user_id", &users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
