package market

import (
	"context"
	"fmt"
	"time"

	"github.com/mars-protocol/v1-core-sub001/core"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/singleflight"
)

// Cache wrap a market store with a read-through expiring cache, writes pass
// through and refresh the entry
func Cache(store core.IMarketStore, exp time.Duration) core.IMarketStore {
	return &cacheMarketStore{
		IMarketStore: store,
		cache:        gcache.New(256).LRU().Expiration(exp).Build(),
		sf:           &singleflight.Group{},
	}
}

type cacheMarketStore struct {
	core.IMarketStore
	cache gcache.Cache
	sf    *singleflight.Group
}

func (s *cacheMarketStore) Find(ctx context.Context, assetID string) (*core.Market, error) {
	key := s.marketKey(assetID)
	if v, err := s.cache.Get(key); err == nil {
		if market, ok := v.(*core.Market); ok {
			return market, nil
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		market, err := s.IMarketStore.Find(ctx, assetID)
		if err != nil {
			return nil, err
		}
		s.cacheMarket(market)
		return market, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Market), nil
}

func (s *cacheMarketStore) Update(ctx context.Context, tx *db.DB, market *core.Market) error {
	if err := s.IMarketStore.Update(ctx, tx, market); err != nil {
		return err
	}
	s.cacheMarket(market)
	return nil
}

func (s *cacheMarketStore) cacheMarket(market *core.Market) {
	s.cache.Set(s.marketKey(market.AssetID), market)
}

func (s *cacheMarketStore) marketKey(assetID string) string {
	return fmt.Sprintf("market:asset:%s", assetID)
}
