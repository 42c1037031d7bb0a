package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// AssetType how the underlying balance is held on the external ledger
type AssetType string

const (
	// AssetTypeNative native ledger asset
	AssetTypeNative AssetType = "native"
	// AssetTypeToken contract-token asset
	AssetTypeToken AssetType = "token"
)

// Market market info, one row per listed asset
type Market struct {
	ID      uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID string `sql:"size:36;unique_index:asset_idx" json:"asset_id"`
	Symbol  string `sql:"size:20;unique_index:symbol_idx" json:"symbol"`
	// 稳定位序, 用户仓位 bitmask 的 bit 位置, 创建后不可变
	Position  uint64    `sql:"column:market_position;unique_index:position_idx" json:"position"`
	AssetType AssetType `sql:"size:10;default:'native'" json:"asset_type"`
	// 抵押凭证(份额)在外部账本上的资产
	CTokenAssetID string `sql:"size:36;unique_index:ctoken_asset_idx" json:"ctoken_asset_id"`
	// 累计借款指数, >= 1, 单调不减
	BorrowIndex decimal.Decimal `sql:"type:decimal(40,18);default:1" json:"borrow_index"`
	// 累计存款指数, >= 1, 单调不减
	LiquidityIndex decimal.Decimal `sql:"type:decimal(40,18);default:1" json:"liquidity_index"`
	// 当前借款年利率
	BorrowRate decimal.Decimal `sql:"type:decimal(40,18)" json:"borrow_rate"`
	// 当前存款年利率
	LiquidityRate decimal.Decimal `sql:"type:decimal(40,18)" json:"liquidity_rate"`
	// 上次计息时间(秒), 只会前进
	InterestsLastUpdated int64 `sql:"default:0" json:"interests_last_updated"`
	// 所有用户 scaled 债务份额之和
	DebtTotalScaled decimal.Decimal `sql:"type:decimal(40,18)" json:"debt_total_scaled"`
	UtilizationRate decimal.Decimal `sql:"type:decimal(40,18)" json:"utilization_rate"`
	// 平台保留金率 [0, 1]
	ReserveFactor decimal.Decimal `sql:"type:decimal(20,8)" json:"reserve_factor"`
	// 可借上限因子 [0, 1], 只限制新借款
	MaxLoanToValue decimal.Decimal `sql:"type:decimal(20,8)" json:"max_loan_to_value"`
	// 清算线因子, 必须大于 max_loan_to_value
	MaintenanceMargin decimal.Decimal `sql:"type:decimal(20,8)" json:"maintenance_margin"`
	// 清算激励因子 [0, 1]
	LiquidationBonus decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_bonus"`
	// 单次清算最大可偿还的债务比例
	CloseFactor decimal.Decimal `sql:"type:decimal(20,8)" json:"close_factor"`

	RateStrategy InterestRateStrategyType `sql:"size:10" json:"rate_strategy"`
	// dynamic strategy params
	MinBorrowRate           decimal.Decimal `sql:"type:decimal(20,8)" json:"min_borrow_rate"`
	MaxBorrowRate           decimal.Decimal `sql:"type:decimal(20,8)" json:"max_borrow_rate"`
	KpAugmentationThreshold decimal.Decimal `sql:"type:decimal(20,8)" json:"kp_augmentation_threshold"`
	Kp1                     decimal.Decimal `sql:"type:decimal(20,8)" json:"kp_1"`
	Kp2                     decimal.Decimal `sql:"type:decimal(20,8)" json:"kp_2"`
	// shared by both strategies
	OptimalUtilizationRate decimal.Decimal `sql:"type:decimal(20,8)" json:"optimal_utilization_rate"`
	// linear strategy params
	Base   decimal.Decimal `sql:"type:decimal(20,8)" json:"base"`
	Slope1 decimal.Decimal `sql:"type:decimal(20,8)" json:"slope_1"`
	Slope2 decimal.Decimal `sql:"type:decimal(20,8)" json:"slope_2"`

	Active         bool `sql:"default:1" json:"active"`
	DepositEnabled bool `sql:"default:1" json:"deposit_enabled"`
	BorrowEnabled  bool `sql:"default:1" json:"borrow_enabled"`

	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// InterestRateStrategy assemble the tagged strategy union from the flat columns
func (m *Market) InterestRateStrategy() InterestRateStrategy {
	switch m.RateStrategy {
	case InterestRateStrategyLinear:
		return InterestRateStrategy{
			Kind: InterestRateStrategyLinear,
			Linear: &LinearInterestRate{
				OptimalUtilizationRate: m.OptimalUtilizationRate,
				Base:                   m.Base,
				Slope1:                 m.Slope1,
				Slope2:                 m.Slope2,
			},
		}
	case InterestRateStrategyDynamic:
		return InterestRateStrategy{
			Kind: InterestRateStrategyDynamic,
			Dynamic: &DynamicInterestRate{
				MinBorrowRate:           m.MinBorrowRate,
				MaxBorrowRate:           m.MaxBorrowRate,
				KpAugmentationThreshold: m.KpAugmentationThreshold,
				Kp1:                     m.Kp1,
				Kp2:                     m.Kp2,
				OptimalUtilizationRate:  m.OptimalUtilizationRate,
			},
		}
	default:
		// unknown kinds carry through with neither leg set and fail Validate
		return InterestRateStrategy{Kind: m.RateStrategy}
	}
}

// AllowDeposit deposit gate
func (m *Market) AllowDeposit() bool {
	return m.Active && m.DepositEnabled
}

// AllowWithdraw withdraw gate, disabling deposits does not lock funds in
func (m *Market) AllowWithdraw() bool {
	return m.Active
}

// AllowBorrow borrow gate
func (m *Market) AllowBorrow() bool {
	return m.Active && m.BorrowEnabled
}

// AllowRepay repay gate, repayments stay open while the market is active
func (m *Market) AllowRepay() bool {
	return m.Active
}

// AllowLiquidate liquidate gate
func (m *Market) AllowLiquidate() bool {
	return m.Active
}

// Validate validate market risk params, rejected before any state write
func (m *Market) Validate() error {
	if m.AssetID == "" || m.CTokenAssetID == "" {
		return ErrInvalidParams
	}

	for _, f := range []decimal.Decimal{m.ReserveFactor, m.MaxLoanToValue, m.MaintenanceMargin, m.LiquidationBonus, m.CloseFactor} {
		if f.IsNegative() || f.GreaterThan(one) {
			return ErrInvalidParams
		}
	}

	if m.MaintenanceMargin.LessThanOrEqual(m.MaxLoanToValue) {
		return ErrInvalidParams
	}

	return m.InterestRateStrategy().Validate()
}

// IMarketStore market store interface
type IMarketStore interface {
	Save(ctx context.Context, tx *db.DB, market *Market) error
	Find(ctx context.Context, assetID string) (*Market, error)
	FindBySymbol(ctx context.Context, symbol string) (*Market, error)
	FindByCToken(ctx context.Context, ctokenAssetID string) (*Market, error)
	All(ctx context.Context) ([]*Market, error)
	AllAsMap(ctx context.Context) (map[string]*Market, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, tx *db.DB, market *Market) error
}

// IMarketService market interest accrual engine
type IMarketService interface {
	// CreateMarket validate and list a new market, operator must be an admin
	CreateMarket(ctx context.Context, operatorID string, market *Market) error
	// UpdateMarket owner-gated risk/strategy param update
	UpdateMarket(ctx context.Context, operatorID string, market *Market) error
	// AccrueInterest advance indices to now and mint the protocol reward share
	AccrueInterest(ctx context.Context, tx *db.DB, market *Market, now time.Time) error
	// UpdateInterestRates recompute the rate curve for the liquidity after this
	// call's movement; outgoing leaves the pool, incoming has been received but
	// is not yet visible in the pool balance
	UpdateInterestRates(ctx context.Context, market *Market, outgoing, incoming decimal.Decimal) error
	CurBorrowRate(ctx context.Context, market *Market) (decimal.Decimal, error)
	CurLiquidityRate(ctx context.Context, market *Market) (decimal.Decimal, error)
}
