package priceoracle

import (
	"context"
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

const lastPulledKey = "price_last_pulled_at"

// keep a week of price history around for debugging
const priceRetention = 7 * 24 * time.Hour

// Worker price oracle worker, pulls tickers from the oracle endpoint into the
// local price store
type Worker struct {
	worker.BaseJob
	Config             *core.Config
	DB                 *db.DB
	Property           property.Store
	MarketStore        core.IMarketStore
	PriceStore         core.IPriceStore
	PriceOracleService core.IPriceOracleService
}

// New new price oracle worker
func New(
	cfg *core.Config,
	database *db.DB,
	propertyStore property.Store,
	marketStore core.IMarketStore,
	priceStore core.IPriceStore,
	priceSrv core.IPriceOracleService,
) *Worker {
	job := Worker{
		Config:             cfg,
		DB:                 database,
		Property:           propertyStore,
		MarketStore:        marketStore,
		PriceStore:         priceStore,
		PriceOracleService: priceSrv,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 30s"
	job.Cron.AddFunc(spec, job.Work)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "priceoracle")

	markets, err := w.MarketStore.AllAsMap(ctx)
	if err != nil {
		log.Errorln("fetch all markets error:", err)
		return err
	}

	if len(markets) == 0 {
		return nil
	}

	now := time.Now()

	tickers, err := w.PriceOracleService.PullAllPriceTickers(ctx, now)
	if err != nil {
		log.Errorln("pull price tickers error:", err)
		return err
	}

	for _, ticker := range tickers {
		if _, listed := markets[ticker.AssetID]; !listed {
			continue
		}

		if ticker.Price.LessThanOrEqual(decimal.Zero) {
			log.Errorln("invalid ticker price:", ticker.Symbol, ":", ticker.Price)
			continue
		}

		price := core.Price{
			AssetID: ticker.AssetID,
			Price:   ticker.Price,
		}

		if err := w.DB.Tx(func(tx *db.DB) error {
			return w.PriceStore.Save(ctx, tx, &price)
		}); err != nil {
			log.Errorln("save price error:", err)
		}
	}

	if err := w.PriceStore.DeleteBefore(ctx, now.Add(-priceRetention)); err != nil {
		log.Errorln("delete stale prices error:", err)
	}

	if err := w.Property.Save(ctx, lastPulledKey, now.Unix()); err != nil {
		log.Errorln("save checkpoint error:", err)
	}

	return nil
}
