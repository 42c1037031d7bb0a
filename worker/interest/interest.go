package interest

import (
	"context"
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Worker interest worker, keeps every market's indices close to now so read
// paths and stale markets do not drift too far
type Worker struct {
	worker.BaseJob
	Config        *core.Config
	DB            *db.DB
	MarketStore   core.IMarketStore
	MarketService core.IMarketService
}

// New new interest worker
func New(
	cfg *core.Config,
	database *db.DB,
	marketStore core.IMarketStore,
	marketService core.IMarketService,
) *Worker {
	job := Worker{
		Config:        cfg,
		DB:            database,
		MarketStore:   marketStore,
		MarketService: marketService,
	}

	l, _ := time.LoadLocation(job.Config.App.Location)
	job.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 10s"
	job.Cron.AddFunc(spec, job.Work)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "interest")

	markets, err := w.MarketStore.All(ctx)
	if err != nil {
		log.Errorln("fetch all markets error:", err)
		return err
	}

	now := time.Now()
	for _, m := range markets {
		if err := w.accrue(ctx, m, now); err != nil {
			log.WithField("symbol", m.Symbol).Errorln("accrue error:", err)
		}
	}

	return nil
}

func (w *Worker) accrue(ctx context.Context, market *core.Market, now time.Time) error {
	if now.Unix() <= market.InterestsLastUpdated {
		return nil
	}

	return w.DB.Tx(func(tx *db.DB) error {
		if err := w.MarketService.AccrueInterest(ctx, tx, market, now); err != nil {
			return err
		}

		if err := w.MarketService.UpdateInterestRates(ctx, market, decimal.Zero, decimal.Zero); err != nil {
			return err
		}

		return w.MarketStore.Update(ctx, tx, market)
	})
}
