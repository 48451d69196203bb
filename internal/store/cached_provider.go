package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"dca-sim/internal/backtest"
)

// CachedProvider 包装任意 SeriesProvider，缓存足够新时直接返回缓存。
// 上游失败且存在缓存时退回缓存数据。
type CachedProvider struct {
	cache    *SeriesCache
	upstream backtest.SeriesProvider
	maxAge   time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewCachedProvider 创建带缓存的序列提供者，maxAge<=0 时总是回源。
func NewCachedProvider(cache *SeriesCache, upstream backtest.SeriesProvider, maxAge time.Duration, logger *zap.Logger) (*CachedProvider, error) {
	if cache == nil {
		return nil, errors.New("store: cache 不能为空")
	}
	if upstream == nil {
		return nil, errors.New("store: upstream 不能为空")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		cache:    cache,
		upstream: upstream,
		maxAge:   maxAge,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (p *CachedProvider) PriceSeries(ctx context.Context, symbol, timeframe string, limit int) ([]backtest.PricePoint, error) {
	if p.maxAge > 0 {
		fetchedAt, ok, err := p.cache.Freshness(ctx, symbol, timeframe)
		if err != nil {
			return nil, err
		}
		if ok && p.now().Sub(fetchedAt) <= p.maxAge {
			cached, err := p.cache.Load(ctx, symbol, timeframe, limit)
			if err != nil {
				return nil, err
			}
			if limit <= 0 || len(cached) >= limit {
				p.logger.Debug("命中行情缓存",
					zap.String("symbol", symbol),
					zap.String("timeframe", timeframe),
					zap.Int("points", len(cached)),
				)
				return cached, nil
			}
		}
	}

	points, err := p.upstream.PriceSeries(ctx, symbol, timeframe, limit)
	if err != nil {
		cached, cacheErr := p.cache.Load(ctx, symbol, timeframe, limit)
		if cacheErr == nil && len(cached) > 0 {
			p.logger.Warn("回源失败，使用缓存行情",
				zap.String("symbol", symbol),
				zap.String("timeframe", timeframe),
				zap.Int("points", len(cached)),
				zap.Error(err),
			)
			return cached, nil
		}
		return nil, err
	}

	if err := p.cache.Save(ctx, symbol, timeframe, points, p.now()); err != nil {
		p.logger.Warn("写入行情缓存失败", zap.String("symbol", symbol), zap.Error(err))
	}
	return points, nil
}
