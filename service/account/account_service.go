package account

import (
	"context"
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/internal/redbank"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type accountService struct {
	marketStore  core.IMarketStore
	debtStore    core.IDebtStore
	userStore    core.IUserStore
	ledger       core.ILedgerService
	priceService core.IPriceOracleService
}

// New new account service
func New(
	marketStore core.IMarketStore,
	debtStore core.IDebtStore,
	userStore core.IUserStore,
	ledger core.ILedgerService,
	priceService core.IPriceOracleService,
) core.IAccountService {
	return &accountService{
		marketStore:  marketStore,
		debtStore:    debtStore,
		userStore:    userStore,
		ledger:       ledger,
		priceService: priceService,
	}
}

// CalculateUserPosition walk the user's active markets and aggregate them
// into one solvency verdict.
//
// Only markets whose bit is set are visited. Indices are previewed at now so
// the whole position sits on one index epoch; prices and balances are read
// once per market.
func (s *accountService) CalculateUserPosition(ctx context.Context, userID string, now time.Time) (*core.UserPosition, error) {
	position := &core.UserPosition{
		UserID:                         userID,
		TotalCollateralValue:           decimal.Zero,
		MaxDebtValue:                   decimal.Zero,
		WeightedMaintenanceMarginValue: decimal.Zero,
		TotalDebtValue:                 decimal.Zero,
		TotalCollateralizedDebtValue:   decimal.Zero,
		HealthFactor:                   decimal.Zero,
		Status:                         core.HealthStatusNotBorrowing,
	}

	user, err := s.userStore.Find(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := user.CollateralAssets.Union(user.BorrowedAssets)
	if active.IsEmpty() {
		return position, nil
	}

	markets, err := s.marketStore.All(ctx)
	if err != nil {
		return nil, err
	}

	byPosition := make(map[uint64]*core.Market, len(markets))
	for _, m := range markets {
		byPosition[m.Position] = m
	}

	for _, pos := range active.Positions() {
		market, found := byPosition[pos]
		if !found {
			return nil, core.ErrMarketNotFound
		}

		borrowIndex, liquidityIndex := redbank.PreviewIndices(market, now)

		price, err := s.priceService.GetUnderlyingPrice(ctx, market.AssetID)
		if err != nil {
			logger.FromContext(ctx).WithField("asset", market.AssetID).WithError(err).Infoln("no oracle price")
			return nil, err
		}

		item := &core.PositionItem{
			AssetID:          market.AssetID,
			Symbol:           market.Symbol,
			Price:            price,
			CollateralAmount: decimal.Zero,
			CollateralValue:  decimal.Zero,
			DebtAmount:       decimal.Zero,
			DebtValue:        decimal.Zero,
		}

		if user.CollateralAssets.Contains(pos) {
			share, err := s.ledger.BalanceOf(ctx, market.CTokenAssetID, userID)
			if err != nil {
				return nil, err
			}

			item.CollateralAmount = redbank.DescaledAmount(share, liquidityIndex)
			item.CollateralValue = redbank.MulTruncate(item.CollateralAmount, price)

			position.TotalCollateralValue = position.TotalCollateralValue.Add(item.CollateralValue)
			position.MaxDebtValue = position.MaxDebtValue.Add(redbank.MulTruncate(item.CollateralValue, market.MaxLoanToValue))
			position.WeightedMaintenanceMarginValue = position.WeightedMaintenanceMarginValue.Add(redbank.MulTruncate(item.CollateralValue, market.MaintenanceMargin))
		}

		if user.BorrowedAssets.Contains(pos) {
			debt, err := s.debtStore.Find(ctx, userID, market.AssetID)
			if err != nil {
				return nil, err
			}

			item.DebtAmount = redbank.DescaledAmount(debt.AmountScaled, borrowIndex)
			item.DebtValue = redbank.MulTruncate(item.DebtAmount, price)
			item.Uncollateralized = debt.Uncollateralized

			position.TotalDebtValue = position.TotalDebtValue.Add(item.DebtValue)
			if !debt.Uncollateralized {
				position.TotalCollateralizedDebtValue = position.TotalCollateralizedDebtValue.Add(item.DebtValue)
			}
		}

		position.Items = append(position.Items, item)
	}

	if position.TotalCollateralizedDebtValue.IsPositive() {
		hf, err := redbank.DivTruncate(position.WeightedMaintenanceMarginValue, position.TotalCollateralizedDebtValue)
		if err != nil {
			return nil, err
		}
		position.Status = core.HealthStatusBorrowing
		position.HealthFactor = hf
	}

	return position, nil
}

// LiquidatableUsers scan borrowers and keep those below water
func (s *accountService) LiquidatableUsers(ctx context.Context, now time.Time) ([]*core.UserPosition, error) {
	users, err := s.debtStore.Users(ctx)
	if err != nil {
		return nil, err
	}

	var positions []*core.UserPosition
	for _, userID := range users {
		position, err := s.CalculateUserPosition(ctx, userID, now)
		if err != nil {
			if err == core.ErrPriceNotFound {
				// a stale price must not hide the rest of the candidates
				continue
			}
			return nil, err
		}

		if position.Liquidatable() {
			positions = append(positions, position)
		}
	}

	return positions, nil
}
