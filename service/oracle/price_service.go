package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"
	"github.com/mars-protocol/v1-core-sub001/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// PriceService oracle price service
type PriceService struct {
	Config     *core.Config
	PriceStore core.IPriceStore
}

// New new oracle price service
func New(config *core.Config, priceStore core.IPriceStore) core.IPriceOracleService {
	return &PriceService{
		Config:     config,
		PriceStore: priceStore,
	}
}

// GetUnderlyingPrice current quote-currency price of the asset. Missing or
// non-positive prices are a hard failure, never a silent default.
func (s *PriceService) GetUnderlyingPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	price, err := s.PriceStore.Find(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	if !price.Price.IsPositive() {
		return decimal.Zero, core.ErrPriceNotFound
	}

	return price.Price, nil
}

// PullPriceTicker pull one price ticker from the oracle endpoint
func (s *PriceService) PullPriceTicker(ctx context.Context, assetID string, t time.Time) (*core.PriceTicker, error) {
	url := fmt.Sprintf("%s/api/v2/tickers/%s?ts=%d", s.Config.PriceOracle.EndPoint, assetID, t.UTC().Unix())
	logger.FromContext(ctx).Debugln("pull price:", url)
	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	var price core.PriceTicker
	if err := resthttp.ParseResponse(resp, &price); err != nil {
		return nil, err
	}

	return &price, nil
}

// PullAllPriceTickers pull all price tickers
func (s *PriceService) PullAllPriceTickers(ctx context.Context, t time.Time) ([]*core.PriceTicker, error) {
	url := fmt.Sprintf("%s/api/tickers?ts=%d", s.Config.PriceOracle.EndPoint, t.UTC().Unix())
	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, err
	}
	var prices []*core.PriceTicker
	if err := resthttp.ParseResponse(resp, &prices); err != nil {
		return nil, err
	}

	return prices, nil
}
