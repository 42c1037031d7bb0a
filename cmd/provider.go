package cmd

import (
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"
	accountservice "github.com/mars-protocol/v1-core-sub001/service/account"
	bankservice "github.com/mars-protocol/v1-core-sub001/service/bank"
	marketservice "github.com/mars-protocol/v1-core-sub001/service/market"
	"github.com/mars-protocol/v1-core-sub001/service/oracle"
	"github.com/mars-protocol/v1-core-sub001/store/debt"
	"github.com/mars-protocol/v1-core-sub001/store/ledger"
	"github.com/mars-protocol/v1-core-sub001/store/market"
	"github.com/mars-protocol/v1-core-sub001/store/price"
	"github.com/mars-protocol/v1-core-sub001/store/user"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideMarketStore(db *db.DB) core.IMarketStore {
	return market.New(db)
}

func provideCachedMarketStore(db *db.DB) core.IMarketStore {
	return market.Cache(market.New(db), 5*time.Second)
}

func provideUserStore(db *db.DB) core.IUserStore {
	return user.New(db)
}

func provideDebtStore(db *db.DB) core.IDebtStore {
	return debt.New(db)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return price.New(db)
}

func provideLedgerService(db *db.DB) core.ILedgerService {
	return ledger.New(db)
}

// ------------------service------------------------------------

func providePriceService(priceStore core.IPriceStore) core.IPriceOracleService {
	return oracle.New(provideConfig(), priceStore)
}

func provideMarketService(db *db.DB, marketStore core.IMarketStore, ledgerz core.ILedgerService) core.IMarketService {
	return marketservice.New(db, provideConfig(), marketStore, ledgerz)
}

func provideAccountService(
	marketStore core.IMarketStore,
	debtStore core.IDebtStore,
	userStore core.IUserStore,
	ledgerz core.ILedgerService,
	priceSrv core.IPriceOracleService,
) core.IAccountService {
	return accountservice.New(marketStore, debtStore, userStore, ledgerz, priceSrv)
}

func provideBankService(
	db *db.DB,
	marketStore core.IMarketStore,
	userStore core.IUserStore,
	debtStore core.IDebtStore,
	ledgerz core.ILedgerService,
	marketSrv core.IMarketService,
	accountSrv core.IAccountService,
	priceSrv core.IPriceOracleService,
) core.IBankService {
	return bankservice.New(db, provideConfig(), marketStore, userStore, debtStore, ledgerz, marketSrv, accountSrv, priceSrv)
}
