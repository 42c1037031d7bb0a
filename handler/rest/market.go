package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/handler/render"
	"github.com/mars-protocol/v1-core-sub001/handler/views"
	"github.com/mars-protocol/v1-core-sub001/internal/redbank"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func allMarketsHandler(marketStr core.IMarketStore, marketSrv core.IMarketService, ledger core.ILedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		markets, e := marketStr.All(ctx)
		if e != nil {
			render.BadRequest(w, e)
			return
		}

		marketViews := make([]*views.Market, 0, len(markets))
		for _, m := range markets {
			marketViews = append(marketViews, getMarketView(ctx, m, marketSrv, ledger))
		}

		render.JSON(w, marketViews)
	}
}

func marketHandler(marketStr core.IMarketStore, marketSrv core.IMarketService, ledger core.ILedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
		market, e := marketStr.FindBySymbol(ctx, symbol)
		if e != nil {
			render.NotFoundRequest(w, e)
			return
		}

		render.JSON(w, getMarketView(ctx, market, marketSrv, ledger))
	}
}

func getMarketView(ctx context.Context, market *core.Market, marketSrv core.IMarketService, ledger core.ILedgerService) *views.Market {
	borrowRate, e := marketSrv.CurBorrowRate(ctx, market)
	if e != nil {
		borrowRate = decimal.Zero
	}

	liquidityRate, e := marketSrv.CurLiquidityRate(ctx, market)
	if e != nil {
		liquidityRate = decimal.Zero
	}

	liquidity, e := ledger.PoolBalance(ctx, market.AssetID)
	if e != nil {
		liquidity = decimal.Zero
	}

	return &views.Market{
		Market:         *market,
		TotalDebt:      redbank.DescaledAmount(market.DebtTotalScaled, market.BorrowIndex),
		TotalLiquidity: liquidity,
		SupplyAPY:      liquidityRate,
		BorrowAPY:      borrowRate,
	}
}
