package bank

import (
	"context"
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/internal/redbank"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type bankService struct {
	db             *db.DB
	config         *core.Config
	marketStore    core.IMarketStore
	userStore      core.IUserStore
	debtStore      core.IDebtStore
	ledger         core.ILedgerService
	marketService  core.IMarketService
	accountService core.IAccountService
	priceService   core.IPriceOracleService
}

// New new bank service
func New(
	database *db.DB,
	config *core.Config,
	marketStore core.IMarketStore,
	userStore core.IUserStore,
	debtStore core.IDebtStore,
	ledger core.ILedgerService,
	marketService core.IMarketService,
	accountService core.IAccountService,
	priceService core.IPriceOracleService,
) core.IBankService {
	return &bankService{
		db:             database,
		config:         config,
		marketStore:    marketStore,
		userStore:      userStore,
		debtStore:      debtStore,
		ledger:         ledger,
		marketService:  marketService,
		accountService: accountService,
		priceService:   priceService,
	}
}

func (s *bankService) Deposit(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}

	if !market.AllowDeposit() {
		return core.ErrDepositNotAllowed
	}

	now := time.Now()

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.marketService.AccrueInterest(ctx, tx, market, now); err != nil {
			return err
		}

		shares, err := redbank.ScaledAmount(amount, market.LiquidityIndex)
		if err != nil {
			return err
		}
		if !shares.IsPositive() {
			return core.ErrInvalidAmount
		}

		if err := s.ledger.Transfer(ctx, tx, market.AssetID, userID, core.PoolAccountID, amount); err != nil {
			return err
		}

		if err := s.ledger.Mint(ctx, tx, market.CTokenAssetID, userID, shares); err != nil {
			return err
		}

		if err := s.marketService.UpdateInterestRates(ctx, market, decimal.Zero, amount); err != nil {
			return err
		}

		if err := s.marketStore.Update(ctx, tx, market); err != nil {
			return err
		}

		user, err := s.userStore.Find(ctx, userID)
		if err != nil {
			return err
		}
		user.CollateralAssets.Set(market.Position)
		return s.saveUser(ctx, tx, user)
	})
}

// Withdraw redeem collateral shares for the underlying. A zero amount redeems
// the full balance. The resulting position must stay at or above water.
func (s *bankService) Withdraw(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return core.ErrInvalidAmount
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}

	if !market.AllowWithdraw() {
		return core.ErrWithdrawNotAllowed
	}

	user, err := s.userStore.Find(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()

	// solvency is judged against one committed-state snapshot taken before
	// any mutation, then adjusted for this call's movement
	var position *core.UserPosition
	if !user.BorrowedAssets.IsEmpty() {
		if position, err = s.accountService.CalculateUserPosition(ctx, userID, now); err != nil {
			return err
		}
	}

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.marketService.AccrueInterest(ctx, tx, market, now); err != nil {
			return err
		}

		share, err := s.ledger.BalanceOf(ctx, market.CTokenAssetID, userID)
		if err != nil {
			return err
		}

		maxAmount := redbank.DescaledAmount(share, market.LiquidityIndex)
		if amount.IsZero() {
			amount = maxAmount
		}
		if !amount.IsPositive() || amount.GreaterThan(maxAmount) {
			return core.ErrInsufficientCollaterals
		}

		if err := s.marketService.UpdateInterestRates(ctx, market, amount, decimal.Zero); err != nil {
			return err
		}

		if position != nil && position.TotalCollateralizedDebtValue.IsPositive() {
			price, err := s.priceService.GetUnderlyingPrice(ctx, market.AssetID)
			if err != nil {
				return err
			}

			removed := redbank.MulTruncate(redbank.MulTruncate(amount, price), market.MaintenanceMargin)
			margin := position.WeightedMaintenanceMarginValue.Sub(removed)
			if margin.LessThan(position.TotalCollateralizedDebtValue) {
				return core.ErrInsufficientCollaterals
			}
		}

		burned, err := redbank.ScaledAmount(amount, market.LiquidityIndex)
		if err != nil {
			return err
		}
		// full redemptions burn the exact share balance, leaving no dust
		if amount.Equal(maxAmount) || burned.GreaterThan(share) {
			burned = share
		}

		if err := s.ledger.Burn(ctx, tx, market.CTokenAssetID, userID, burned); err != nil {
			return err
		}

		if err := s.ledger.Transfer(ctx, tx, market.AssetID, core.PoolAccountID, userID, amount); err != nil {
			return err
		}

		if err := s.marketStore.Update(ctx, tx, market); err != nil {
			return err
		}

		if share.Sub(burned).IsZero() {
			user.CollateralAssets.Clear(market.Position)
			return s.saveUser(ctx, tx, user)
		}

		return nil
	})
}

func (s *bankService) Borrow(ctx context.Context, userID, assetID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}

	if !market.AllowBorrow() {
		return core.ErrBorrowNotAllowed
	}

	debt, err := s.debtStore.Find(ctx, userID, assetID)
	if err != nil {
		return err
	}

	now := time.Now()

	// credit-line borrowers skip the loan-to-value check entirely
	if !debt.Uncollateralized {
		position, err := s.accountService.CalculateUserPosition(ctx, userID, now)
		if err != nil {
			return err
		}

		price, err := s.priceService.GetUnderlyingPrice(ctx, market.AssetID)
		if err != nil {
			return err
		}

		borrowed := position.TotalCollateralizedDebtValue.Add(redbank.MulTruncate(amount, price))
		if borrowed.GreaterThan(position.MaxDebtValue) {
			return core.ErrInsufficientCollaterals
		}
	}

	return s.db.Tx(func(tx *db.DB) error {
		if err := s.marketService.AccrueInterest(ctx, tx, market, now); err != nil {
			return err
		}

		delta, err := redbank.ScaledAmount(amount, market.BorrowIndex)
		if err != nil {
			return err
		}
		if !delta.IsPositive() {
			return core.ErrInvalidAmount
		}

		debt.AmountScaled = debt.AmountScaled.Add(delta)
		market.DebtTotalScaled = market.DebtTotalScaled.Add(delta)

		if err := s.marketService.UpdateInterestRates(ctx, market, amount, decimal.Zero); err != nil {
			return err
		}

		if err := s.ledger.Transfer(ctx, tx, market.AssetID, core.PoolAccountID, userID, amount); err != nil {
			return err
		}

		if err := s.saveDebt(ctx, tx, debt); err != nil {
			return err
		}

		if err := s.marketStore.Update(ctx, tx, market); err != nil {
			return err
		}

		user, err := s.userStore.Find(ctx, userID)
		if err != nil {
			return err
		}
		user.BorrowedAssets.Set(market.Position)
		return s.saveUser(ctx, tx, user)
	})
}

func (s *bankService) Repay(ctx context.Context, userID, assetID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	if !market.AllowRepay() {
		return decimal.Zero, core.ErrRepayNotAllowed
	}

	now := time.Now()
	repaid := decimal.Zero

	err = s.db.Tx(func(tx *db.DB) error {
		if err := s.marketService.AccrueInterest(ctx, tx, market, now); err != nil {
			return err
		}

		debt, err := s.debtStore.Find(ctx, userID, assetID)
		if err != nil {
			return err
		}
		if !debt.AmountScaled.IsPositive() {
			return core.ErrDebtNotFound
		}

		owed := redbank.DescaledAmount(debt.AmountScaled, market.BorrowIndex)
		repaid = decimal.Min(amount, owed)
		if !repaid.IsPositive() {
			return core.ErrDebtNotFound
		}

		if repaid.Equal(owed) {
			market.DebtTotalScaled = maxZero(market.DebtTotalScaled.Sub(debt.AmountScaled))
			debt.AmountScaled = decimal.Zero
		} else {
			delta, err := redbank.ScaledAmount(repaid, market.BorrowIndex)
			if err != nil {
				return err
			}
			debt.AmountScaled = maxZero(debt.AmountScaled.Sub(delta))
			market.DebtTotalScaled = maxZero(market.DebtTotalScaled.Sub(delta))
		}

		if err := s.ledger.Transfer(ctx, tx, market.AssetID, userID, core.PoolAccountID, repaid); err != nil {
			return err
		}

		if err := s.marketService.UpdateInterestRates(ctx, market, decimal.Zero, repaid); err != nil {
			return err
		}

		if err := s.debtStore.Update(ctx, tx, debt); err != nil {
			return err
		}

		if err := s.marketStore.Update(ctx, tx, market); err != nil {
			return err
		}

		if debt.AmountScaled.IsZero() {
			user, err := s.userStore.Find(ctx, userID)
			if err != nil {
				return err
			}
			user.BorrowedAssets.Clear(market.Position)
			return s.saveUser(ctx, tx, user)
		}

		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return repaid, nil
}

// Liquidate repay part of an underwater user's debt and seize discounted
// collateral shares in exchange. The repayment is capped by the market's
// close factor and by the collateral actually there to seize.
func (s *bankService) Liquidate(ctx context.Context, liquidatorID, userID, debtAssetID, collateralAssetID string, repayAmount decimal.Decimal) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("liquidator", liquidatorID).WithField("user", userID)

	if !repayAmount.IsPositive() {
		return decimal.Zero, core.ErrInvalidAmount
	}
	if liquidatorID == userID {
		return decimal.Zero, core.ErrOperationForbidden
	}

	debtMarket, err := s.marketStore.Find(ctx, debtAssetID)
	if err != nil {
		return decimal.Zero, err
	}

	collateralMarket := debtMarket
	if collateralAssetID != debtAssetID {
		if collateralMarket, err = s.marketStore.Find(ctx, collateralAssetID); err != nil {
			return decimal.Zero, err
		}
	}

	if !debtMarket.AllowLiquidate() || !collateralMarket.AllowLiquidate() {
		return decimal.Zero, core.ErrOperationForbidden
	}

	now := time.Now()

	position, err := s.accountService.CalculateUserPosition(ctx, userID, now)
	if err != nil {
		return decimal.Zero, err
	}
	if !position.Liquidatable() {
		return decimal.Zero, core.ErrNotLiquidatable
	}

	debt, err := s.debtStore.Find(ctx, userID, debtAssetID)
	if err != nil {
		return decimal.Zero, err
	}
	// credit-line debt does not count against the health factor, so it cannot
	// be seized against either
	if !debt.AmountScaled.IsPositive() || debt.Uncollateralized {
		return decimal.Zero, core.ErrDebtNotFound
	}

	debtPrice, err := s.priceService.GetUnderlyingPrice(ctx, debtAssetID)
	if err != nil {
		return decimal.Zero, err
	}
	collateralPrice, err := s.priceService.GetUnderlyingPrice(ctx, collateralAssetID)
	if err != nil {
		return decimal.Zero, err
	}

	seized := decimal.Zero

	err = s.db.Tx(func(tx *db.DB) error {
		if err := s.marketService.AccrueInterest(ctx, tx, debtMarket, now); err != nil {
			return err
		}
		if collateralMarket != debtMarket {
			if err := s.marketService.AccrueInterest(ctx, tx, collateralMarket, now); err != nil {
				return err
			}
		}

		owed := redbank.DescaledAmount(debt.AmountScaled, debtMarket.BorrowIndex)
		maxClose := redbank.MulTruncate(owed, debtMarket.CloseFactor)
		repay := decimal.Min(repayAmount, maxClose)
		if !repay.IsPositive() {
			return core.ErrInvalidAmount
		}

		bonus := decimal.New(1, 0).Add(collateralMarket.LiquidationBonus)
		seizeValue := redbank.MulTruncate(redbank.MulTruncate(repay, debtPrice), bonus)
		seized, err = redbank.DivTruncate(seizeValue, collateralPrice)
		if err != nil {
			return err
		}

		share, err := s.ledger.BalanceOf(ctx, collateralMarket.CTokenAssetID, userID)
		if err != nil {
			return err
		}
		maxSeize := redbank.DescaledAmount(share, collateralMarket.LiquidityIndex)
		if seized.GreaterThan(maxSeize) {
			// not enough collateral here for the requested repayment; shrink
			// the repayment to what the seizable collateral is worth
			seized = maxSeize
			repay, err = redbank.DivTruncate(redbank.MulTruncate(seized, collateralPrice), debtPrice.Mul(bonus))
			if err != nil {
				return err
			}
			repay = decimal.Min(repay, owed)
		}
		if !repay.IsPositive() || !seized.IsPositive() {
			return core.ErrInvalidAmount
		}

		if err := s.ledger.Transfer(ctx, tx, debtMarket.AssetID, liquidatorID, core.PoolAccountID, repay); err != nil {
			return err
		}

		user, err := s.userStore.Find(ctx, userID)
		if err != nil {
			return err
		}

		if repay.GreaterThanOrEqual(owed) {
			debtMarket.DebtTotalScaled = maxZero(debtMarket.DebtTotalScaled.Sub(debt.AmountScaled))
			debt.AmountScaled = decimal.Zero
			user.BorrowedAssets.Clear(debtMarket.Position)
		} else {
			delta, err := redbank.ScaledAmount(repay, debtMarket.BorrowIndex)
			if err != nil {
				return err
			}
			debt.AmountScaled = maxZero(debt.AmountScaled.Sub(delta))
			debtMarket.DebtTotalScaled = maxZero(debtMarket.DebtTotalScaled.Sub(delta))
		}

		seizedScaled, err := redbank.ScaledAmount(seized, collateralMarket.LiquidityIndex)
		if err != nil {
			return err
		}
		if seized.Equal(maxSeize) || seizedScaled.GreaterThan(share) {
			seizedScaled = share
		}

		if err := s.ledger.Transfer(ctx, tx, collateralMarket.CTokenAssetID, userID, liquidatorID, seizedScaled); err != nil {
			return err
		}

		if share.Sub(seizedScaled).IsZero() {
			user.CollateralAssets.Clear(collateralMarket.Position)
		}

		if err := s.saveUser(ctx, tx, user); err != nil {
			return err
		}

		liquidator, err := s.userStore.Find(ctx, liquidatorID)
		if err != nil {
			return err
		}
		liquidator.CollateralAssets.Set(collateralMarket.Position)
		if err := s.saveUser(ctx, tx, liquidator); err != nil {
			return err
		}

		if err := s.debtStore.Update(ctx, tx, debt); err != nil {
			return err
		}

		if err := s.marketService.UpdateInterestRates(ctx, debtMarket, decimal.Zero, repay); err != nil {
			return err
		}
		if err := s.marketStore.Update(ctx, tx, debtMarket); err != nil {
			return err
		}

		if collateralMarket != debtMarket {
			if err := s.marketService.UpdateInterestRates(ctx, collateralMarket, decimal.Zero, decimal.Zero); err != nil {
				return err
			}
			if err := s.marketStore.Update(ctx, tx, collateralMarket); err != nil {
				return err
			}
		}

		log.WithField("repay", repay).WithField("seized", seized).Infoln("liquidated")
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return seized, nil
}

func (s *bankService) SetUncollateralized(ctx context.Context, operatorID, userID, assetID string, flag bool) error {
	if !s.config.IsAdmin(operatorID) {
		return core.ErrOperationForbidden
	}

	if _, err := s.marketStore.Find(ctx, assetID); err != nil {
		return err
	}

	return s.db.Tx(func(tx *db.DB) error {
		debt, err := s.debtStore.Find(ctx, userID, assetID)
		if err != nil {
			return err
		}

		debt.Uncollateralized = flag
		return s.saveDebt(ctx, tx, debt)
	})
}

func (s *bankService) saveUser(ctx context.Context, tx *db.DB, user *core.User) error {
	if user.ID == 0 {
		return s.userStore.Save(ctx, tx, user)
	}
	return s.userStore.Update(ctx, tx, user)
}

func (s *bankService) saveDebt(ctx context.Context, tx *db.DB, debt *core.Debt) error {
	if debt.ID == 0 {
		return s.debtStore.Save(ctx, tx, debt)
	}
	return s.debtStore.Update(ctx, tx, debt)
}

func maxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
