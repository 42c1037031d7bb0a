package bank

import (
	"context"
	"testing"
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"
	accountservice "github.com/mars-protocol/v1-core-sub001/service/account"
	marketservice "github.com/mars-protocol/v1-core-sub001/service/market"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMarketStore struct {
	core.IMarketStore
	markets map[string]*core.Market
}

func (s *memMarketStore) Find(ctx context.Context, assetID string) (*core.Market, error) {
	if m, ok := s.markets[assetID]; ok {
		c := *m
		return &c, nil
	}
	return nil, core.ErrMarketNotFound
}

func (s *memMarketStore) All(ctx context.Context) ([]*core.Market, error) {
	var out []*core.Market
	for _, m := range s.markets {
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (s *memMarketStore) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	market.Version++
	c := *market
	s.markets[market.AssetID] = &c
	return nil
}

type memUserStore struct {
	core.IUserStore
	users map[string]*core.User
}

func (s *memUserStore) Find(ctx context.Context, userID string) (*core.User, error) {
	if u, ok := s.users[userID]; ok {
		c := *u
		c.CollateralAssets = append(core.AssetSet(nil), u.CollateralAssets...)
		c.BorrowedAssets = append(core.AssetSet(nil), u.BorrowedAssets...)
		return &c, nil
	}
	return &core.User{UserID: userID}, nil
}

func (s *memUserStore) Save(ctx context.Context, tx *db.DB, user *core.User) error {
	user.ID = uint64(len(s.users) + 1)
	c := *user
	s.users[user.UserID] = &c
	return nil
}

func (s *memUserStore) Update(ctx context.Context, tx *db.DB, user *core.User) error {
	user.Version++
	c := *user
	s.users[user.UserID] = &c
	return nil
}

type memDebtStore struct {
	core.IDebtStore
	debts map[string]*core.Debt
}

func debtKey(userID, assetID string) string {
	return userID + "/" + assetID
}

func (s *memDebtStore) Find(ctx context.Context, userID, assetID string) (*core.Debt, error) {
	if d, ok := s.debts[debtKey(userID, assetID)]; ok {
		c := *d
		return &c, nil
	}
	return &core.Debt{UserID: userID, AssetID: assetID}, nil
}

func (s *memDebtStore) Save(ctx context.Context, tx *db.DB, debt *core.Debt) error {
	debt.ID = uint64(len(s.debts) + 1)
	c := *debt
	s.debts[debtKey(debt.UserID, debt.AssetID)] = &c
	return nil
}

func (s *memDebtStore) Update(ctx context.Context, tx *db.DB, debt *core.Debt) error {
	debt.Version++
	c := *debt
	s.debts[debtKey(debt.UserID, debt.AssetID)] = &c
	return nil
}

type memLedger struct {
	core.ILedgerService
	balances map[string]decimal.Decimal
}

func balanceKey(assetID, userID string) string {
	return assetID + "/" + userID
}

func (s *memLedger) add(assetID, userID string, delta decimal.Decimal) error {
	key := balanceKey(assetID, userID)
	next := s.balances[key].Add(delta)
	if next.IsNegative() {
		return core.ErrUnderflow
	}
	s.balances[key] = next
	return nil
}

func (s *memLedger) BalanceOf(ctx context.Context, assetID, userID string) (decimal.Decimal, error) {
	return s.balances[balanceKey(assetID, userID)], nil
}

func (s *memLedger) PoolBalance(ctx context.Context, assetID string) (decimal.Decimal, error) {
	return s.BalanceOf(ctx, assetID, core.PoolAccountID)
}

func (s *memLedger) Mint(ctx context.Context, tx *db.DB, assetID, userID string, amount decimal.Decimal) error {
	return s.add(assetID, userID, amount)
}

func (s *memLedger) Burn(ctx context.Context, tx *db.DB, assetID, userID string, amount decimal.Decimal) error {
	return s.add(assetID, userID, amount.Neg())
}

func (s *memLedger) Transfer(ctx context.Context, tx *db.DB, assetID, from, to string, amount decimal.Decimal) error {
	if err := s.add(assetID, from, amount.Neg()); err != nil {
		return err
	}
	return s.add(assetID, to, amount)
}

type flowEnv struct {
	markets  *memMarketStore
	users    *memUserStore
	debts    *memDebtStore
	ledger   *memLedger
	prices   map[string]decimal.Decimal
	accounts core.IAccountService
	bank     core.IBankService
}

func newFlowMarket(assetID, symbol string, position uint64) *core.Market {
	return &core.Market{
		AssetID:                assetID,
		Symbol:                 symbol,
		Position:               position,
		CTokenAssetID:          assetID + "-ctoken",
		BorrowIndex:            decimal.New(1, 0),
		LiquidityIndex:         decimal.New(1, 0),
		ReserveFactor:          decimal.RequireFromString("0.2"),
		MaxLoanToValue:         decimal.RequireFromString("0.7"),
		MaintenanceMargin:      decimal.RequireFromString("0.8"),
		LiquidationBonus:       decimal.RequireFromString("0.1"),
		CloseFactor:            decimal.RequireFromString("0.5"),
		RateStrategy:           core.InterestRateStrategyLinear,
		OptimalUtilizationRate: decimal.RequireFromString("0.8"),
		Base:                   decimal.RequireFromString("0.02"),
		Slope1:                 decimal.RequireFromString("0.07"),
		Slope2:                 decimal.RequireFromString("0.45"),
		// pin the accrual timestamp past the test window so indices hold at
		// one and amounts stay exact
		InterestsLastUpdated: time.Now().Add(time.Hour).Unix(),
		Active:               true,
		DepositEnabled:       true,
		BorrowEnabled:        true,
	}
}

// newFlowEnv wires the real market, account and bank services over in-memory
// stores; the sqlite handle only brackets transactions, state lives in the
// stores.
func newFlowEnv(t *testing.T) *flowEnv {
	database := db.MustOpen(db.SqliteInMemory())
	t.Cleanup(func() { database.Close() })

	env := &flowEnv{
		markets: &memMarketStore{markets: map[string]*core.Market{
			btcAssetID: newFlowMarket(btcAssetID, "BTC", 0),
			usdAssetID: newFlowMarket(usdAssetID, "USDC", 1),
		}},
		users:  &memUserStore{users: map[string]*core.User{}},
		debts:  &memDebtStore{debts: map[string]*core.Debt{}},
		ledger: &memLedger{balances: map[string]decimal.Decimal{}},
		prices: map[string]decimal.Decimal{
			btcAssetID: decimal.New(100, 0),
			usdAssetID: decimal.New(1, 0),
		},
	}

	cfg := &core.Config{
		App:    core.App{FeeAccountID: "fee-account"},
		Admins: []string{"admin"},
	}
	oracle := &mockOracle{prices: env.prices}
	marketSvc := marketservice.New(database, cfg, env.markets, env.ledger)
	env.accounts = accountservice.New(env.markets, env.debts, env.users, env.ledger, oracle)
	env.bank = New(database, cfg, env.markets, env.users, env.debts, env.ledger, marketSvc, env.accounts, oracle)

	return env
}

func (e *flowEnv) setBalance(assetID, userID string, amount int64) {
	e.ledger.balances[balanceKey(assetID, userID)] = decimal.New(amount, 0)
}

func (e *flowEnv) balance(assetID, userID string) decimal.Decimal {
	b, _ := e.ledger.BalanceOf(context.Background(), assetID, userID)
	return b
}

func (e *flowEnv) user(userID string) *core.User {
	u, _ := e.users.Find(context.Background(), userID)
	return u
}

func (e *flowEnv) debt(userID, assetID string) *core.Debt {
	d, _ := e.debts.Find(context.Background(), userID, assetID)
	return d
}

func TestBankFlow(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	env.setBalance(btcAssetID, "borrower", 10)
	env.setBalance(usdAssetID, "supplier", 1000)

	require.Nil(t, env.bank.Deposit(ctx, "borrower", btcAssetID, decimal.New(10, 0)))
	require.Nil(t, env.bank.Deposit(ctx, "supplier", usdAssetID, decimal.New(1000, 0)))

	assert.Equal(t, "10", env.balance(btcAssetID, core.PoolAccountID).String())
	assert.Equal(t, decimal.New(10, 6).String(), env.balance(btcAssetID+"-ctoken", "borrower").String())
	assert.Equal(t, decimal.New(1000, 6).String(), env.balance(usdAssetID+"-ctoken", "supplier").String())
	assert.True(t, env.user("borrower").CollateralAssets.Contains(0))

	// 10 BTC at 100 backs 700 of draw, take 600
	require.Nil(t, env.bank.Borrow(ctx, "borrower", usdAssetID, decimal.New(600, 0)))
	assert.Equal(t, "600", env.balance(usdAssetID, "borrower").String())
	assert.Equal(t, "400", env.balance(usdAssetID, core.PoolAccountID).String())
	assert.Equal(t, decimal.New(600, 6).String(), env.debt("borrower", usdAssetID).AmountScaled.String())
	assert.True(t, env.user("borrower").BorrowedAssets.Contains(1))

	usd := env.markets.markets[usdAssetID]
	assert.Equal(t, "0.6", usd.UtilizationRate.String())
	assert.Equal(t, "0.0725", usd.BorrowRate.String())

	// the next draw would cross the loan-to-value line
	err := env.bank.Borrow(ctx, "borrower", usdAssetID, decimal.New(200, 0))
	assert.Equal(t, core.ErrInsufficientCollaterals, err)
	assert.Equal(t, decimal.New(600, 6).String(), env.debt("borrower", usdAssetID).AmountScaled.String())

	// pulling 3 BTC would sink the margin below the debt
	err = env.bank.Withdraw(ctx, "borrower", btcAssetID, decimal.New(3, 0))
	assert.Equal(t, core.ErrInsufficientCollaterals, err)

	// 1 BTC keeps the position above water
	require.Nil(t, env.bank.Withdraw(ctx, "borrower", btcAssetID, decimal.New(1, 0)))
	assert.Equal(t, "1", env.balance(btcAssetID, "borrower").String())
	assert.True(t, env.user("borrower").CollateralAssets.Contains(0))

	// overpaying settles exactly what is owed
	repaid, err := env.bank.Repay(ctx, "borrower", usdAssetID, decimal.New(5000, 0))
	require.Nil(t, err)
	assert.Equal(t, "600", repaid.String())
	assert.True(t, env.debt("borrower", usdAssetID).AmountScaled.IsZero())
	assert.True(t, env.markets.markets[usdAssetID].DebtTotalScaled.IsZero())
	assert.False(t, env.user("borrower").BorrowedAssets.Contains(1))
	assert.Equal(t, "1000", env.balance(usdAssetID, core.PoolAccountID).String())

	// a zero amount redeems the full balance and clears the bit
	require.Nil(t, env.bank.Withdraw(ctx, "borrower", btcAssetID, decimal.Zero))
	assert.Equal(t, "10", env.balance(btcAssetID, "borrower").String())
	assert.True(t, env.balance(btcAssetID+"-ctoken", "borrower").IsZero())
	assert.False(t, env.user("borrower").CollateralAssets.Contains(0))
}

func TestBankLiquidationFlow(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	env.setBalance(btcAssetID, "borrower", 10)
	env.setBalance(usdAssetID, "supplier", 1000)
	env.setBalance(usdAssetID, "liquidator", 500)

	require.Nil(t, env.bank.Deposit(ctx, "borrower", btcAssetID, decimal.New(10, 0)))
	require.Nil(t, env.bank.Deposit(ctx, "supplier", usdAssetID, decimal.New(1000, 0)))
	require.Nil(t, env.bank.Borrow(ctx, "borrower", usdAssetID, decimal.New(600, 0)))

	// the collateral drops below the maintenance margin line
	env.prices[btcAssetID] = decimal.New(70, 0)

	position, err := env.accounts.CalculateUserPosition(ctx, "borrower", time.Now())
	require.Nil(t, err)
	require.True(t, position.Liquidatable())

	seized, err := env.bank.Liquidate(ctx, "liquidator", "borrower", usdAssetID, btcAssetID, decimal.New(1000, 0))
	require.Nil(t, err)

	// the close factor caps the repayment at 300; 330 of value seized at 70
	assert.Equal(t, "4.714285714285714285", seized.String())
	assert.Equal(t, "200", env.balance(usdAssetID, "liquidator").String())
	assert.Equal(t, "700", env.balance(usdAssetID, core.PoolAccountID).String())
	assert.Equal(t, "4714285.714285714285", env.balance(btcAssetID+"-ctoken", "liquidator").String())

	assert.Equal(t, decimal.New(300, 6).String(), env.debt("borrower", usdAssetID).AmountScaled.String())
	assert.Equal(t, decimal.New(300, 6).String(), env.markets.markets[usdAssetID].DebtTotalScaled.String())

	// a partial seize leaves both bitmasks in place and flags the liquidator
	assert.True(t, env.user("borrower").BorrowedAssets.Contains(1))
	assert.True(t, env.user("borrower").CollateralAssets.Contains(0))
	assert.True(t, env.user("liquidator").CollateralAssets.Contains(0))
}
