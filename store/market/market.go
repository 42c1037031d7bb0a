package market

import (
	"context"

	"github.com/mars-protocol/v1-core-sub001/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type marketStore struct {
	db *db.DB
}

// New new market store
func New(db *db.DB) core.IMarketStore {
	return &marketStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Market{})
		if err := tx.AutoMigrate(core.Market{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *marketStore) Save(ctx context.Context, tx *db.DB, market *core.Market) error {
	return tx.Update().Create(market).Error
}

func (s *marketStore) Find(ctx context.Context, assetID string) (*core.Market, error) {
	var market core.Market
	if err := s.db.View().Where("asset_id=?", assetID).First(&market).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrMarketNotFound
		}
		return nil, err
	}

	return &market, nil
}

func (s *marketStore) FindBySymbol(ctx context.Context, symbol string) (*core.Market, error) {
	var market core.Market
	if err := s.db.View().Where("symbol=?", symbol).First(&market).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrMarketNotFound
		}
		return nil, err
	}

	return &market, nil
}

func (s *marketStore) FindByCToken(ctx context.Context, ctokenAssetID string) (*core.Market, error) {
	var market core.Market
	if err := s.db.View().Where("ctoken_asset_id=?", ctokenAssetID).First(&market).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrMarketNotFound
		}
		return nil, err
	}

	return &market, nil
}

func (s *marketStore) All(ctx context.Context) ([]*core.Market, error) {
	var markets []*core.Market
	if err := s.db.View().Order("market_position").Find(&markets).Error; err != nil {
		return nil, err
	}
	return markets, nil
}

func (s *marketStore) AllAsMap(ctx context.Context) (map[string]*core.Market, error) {
	markets, e := s.All(ctx)
	if e != nil {
		return nil, e
	}

	maps := make(map[string]*core.Market)

	for _, m := range markets {
		maps[m.AssetID] = m
	}

	return maps, nil
}

func (s *marketStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.View().Model(core.Market{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *marketStore) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	version := market.Version
	market.Version++
	// a struct update would skip false flags and zero rates, every mutable
	// column goes through the map
	updates := map[string]interface{}{
		"borrow_index":              market.BorrowIndex,
		"liquidity_index":           market.LiquidityIndex,
		"borrow_rate":               market.BorrowRate,
		"liquidity_rate":            market.LiquidityRate,
		"interests_last_updated":    market.InterestsLastUpdated,
		"debt_total_scaled":         market.DebtTotalScaled,
		"utilization_rate":          market.UtilizationRate,
		"reserve_factor":            market.ReserveFactor,
		"max_loan_to_value":         market.MaxLoanToValue,
		"maintenance_margin":        market.MaintenanceMargin,
		"liquidation_bonus":         market.LiquidationBonus,
		"close_factor":              market.CloseFactor,
		"rate_strategy":             string(market.RateStrategy),
		"min_borrow_rate":           market.MinBorrowRate,
		"max_borrow_rate":           market.MaxBorrowRate,
		"kp_augmentation_threshold": market.KpAugmentationThreshold,
		"kp1":                       market.Kp1,
		"kp2":                       market.Kp2,
		"optimal_utilization_rate":  market.OptimalUtilizationRate,
		"base":                      market.Base,
		"slope1":                    market.Slope1,
		"slope2":                    market.Slope2,
		"active":                    market.Active,
		"deposit_enabled":           market.DepositEnabled,
		"borrow_enabled":            market.BorrowEnabled,
		"version":                   market.Version,
	}
	if err := tx.Update().Model(core.Market{}).Where("asset_id=? and version=?", market.AssetID, version).Updates(updates).Error; err != nil {
		return err
	}

	return nil
}
