package market

import (
	"context"
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/internal/redbank"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type service struct {
	db          *db.DB
	config      *core.Config
	marketStore core.IMarketStore
	ledger      core.ILedgerService
}

// New new market service
func New(
	database *db.DB,
	config *core.Config,
	marketStore core.IMarketStore,
	ledger core.ILedgerService,
) core.IMarketService {
	return &service{
		db:          database,
		config:      config,
		marketStore: marketStore,
		ledger:      ledger,
	}
}

func (s *service) CreateMarket(ctx context.Context, operatorID string, market *core.Market) error {
	if !s.config.IsAdmin(operatorID) {
		return core.ErrOperationForbidden
	}

	if err := market.Validate(); err != nil {
		return err
	}

	if _, err := s.marketStore.Find(ctx, market.AssetID); err == nil {
		return core.ErrMarketAlreadyExists
	} else if err != core.ErrMarketNotFound {
		return err
	}

	count, err := s.marketStore.Count(ctx)
	if err != nil {
		return err
	}

	// position is the stable bit ordinal, assigned once
	market.Position = uint64(count)
	if !market.BorrowIndex.IsPositive() {
		market.BorrowIndex = decimal.New(1, 0)
	}
	if !market.LiquidityIndex.IsPositive() {
		market.LiquidityIndex = decimal.New(1, 0)
	}
	if market.InterestsLastUpdated == 0 {
		market.InterestsLastUpdated = time.Now().Unix()
	}

	return s.db.Tx(func(tx *db.DB) error {
		return s.marketStore.Save(ctx, tx, market)
	})
}

func (s *service) UpdateMarket(ctx context.Context, operatorID string, market *core.Market) error {
	if !s.config.IsAdmin(operatorID) {
		return core.ErrOperationForbidden
	}

	if err := market.Validate(); err != nil {
		return err
	}

	if err := s.UpdateInterestRates(ctx, market, decimal.Zero, decimal.Zero); err != nil {
		return err
	}

	return s.db.Tx(func(tx *db.DB) error {
		return s.marketStore.Update(ctx, tx, market)
	})
}

// AccrueInterest bring the market's indices current before any mutation.
//
// The protocol's share of the accrued borrow interest is minted as collateral
// shares scaled by the just-updated liquidity index; that mint is the only
// side effect here.
func (s *service) AccrueInterest(ctx context.Context, tx *db.DB, market *core.Market, now time.Time) error {
	reward := redbank.ApplyAccruedInterests(market, now)
	if !reward.IsPositive() {
		return nil
	}

	rewardScaled, err := redbank.ScaledAmount(reward, market.LiquidityIndex)
	if err != nil {
		return err
	}
	if !rewardScaled.IsPositive() {
		return nil
	}

	logger.FromContext(ctx).
		WithField("asset", market.AssetID).
		WithField("reward", reward).
		Debugln("mint protocol reward")

	return s.ledger.Mint(ctx, tx, market.CTokenAssetID, s.config.App.FeeAccountID, rewardScaled)
}

// UpdateInterestRates recompute the rate curve for the liquidity after the
// current call's movement. The pool balance is a committed-state snapshot:
// outgoing has not left it yet and incoming is not in it yet.
func (s *service) UpdateInterestRates(ctx context.Context, market *core.Market, outgoing, incoming decimal.Decimal) error {
	balance, err := s.ledger.PoolBalance(ctx, market.AssetID)
	if err != nil {
		return err
	}

	if outgoing.GreaterThan(balance) {
		return core.ErrInsufficientLiquidity
	}

	availableLiquidity := balance.Sub(outgoing).Add(incoming)
	totalDebt := redbank.DescaledAmount(market.DebtTotalScaled, market.BorrowIndex)
	utilization := redbank.UtilizationRate(totalDebt, availableLiquidity)

	borrowRate, liquidityRate, err := redbank.GetUpdatedInterestRates(
		market.InterestRateStrategy(),
		utilization,
		market.BorrowRate,
		market.ReserveFactor,
	)
	if err != nil {
		return err
	}

	market.UtilizationRate = utilization
	market.BorrowRate = borrowRate
	market.LiquidityRate = liquidityRate

	return nil
}

func (s *service) CurBorrowRate(ctx context.Context, market *core.Market) (decimal.Decimal, error) {
	return market.BorrowRate, nil
}

func (s *service) CurLiquidityRate(ctx context.Context, market *core.Market) (decimal.Decimal, error) {
	return market.LiquidityRate, nil
}
