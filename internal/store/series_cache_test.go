package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dca-sim/internal/backtest"
	"dca-sim/internal/config"
)

var base = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

func newTestCache(t *testing.T) *SeriesCache {
	t.Helper()
	s, err := NewSQLite(config.DatabaseConfig{InMemory: true, MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	cache, err := NewSeriesCache(s.DB())
	if err != nil {
		t.Fatalf("NewSeriesCache returned error: %v", err)
	}
	return cache
}

func points(closes ...string) []backtest.PricePoint {
	out := make([]backtest.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = backtest.PricePoint{Timestamp: base.AddDate(0, 0, i), Close: decimal.RequireFromString(c)}
	}
	return out
}

func TestSeriesCache_SaveLoad(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	if err := cache.Save(ctx, "BTC", "1d", points("100", "90.5", "80.125"), base); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	all, err := cache.Load(ctx, "BTC", "1d", 0)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 points, got %d", len(all))
	}
	if !all[2].Close.Equal(decimal.RequireFromString("80.125")) || !all[0].Timestamp.Equal(base) {
		t.Errorf("unexpected ordering or values: %+v", all)
	}

	tail, err := cache.Load(ctx, "BTC", "1d", 2)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(tail) != 2 || !tail[0].Close.Equal(decimal.RequireFromString("90.5")) {
		t.Errorf("expected last two points ascending, got %+v", tail)
	}

	// upsert 覆盖同一时间戳
	updated := points("101")
	if err := cache.Save(ctx, "BTC", "1d", updated, base.Add(time.Hour)); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	all, _ = cache.Load(ctx, "BTC", "1d", 0)
	if len(all) != 3 || !all[0].Close.Equal(decimal.NewFromInt(101)) {
		t.Errorf("expected upserted close 101, got %+v", all)
	}

	fetched, ok, err := cache.Freshness(ctx, "BTC", "1d")
	if err != nil || !ok {
		t.Fatalf("Freshness returned %v, %v", ok, err)
	}
	if !fetched.Equal(base.Add(time.Hour)) {
		t.Errorf("expected freshness %v, got %v", base.Add(time.Hour), fetched)
	}

	if _, ok, _ := cache.Freshness(ctx, "ETH", "1d"); ok {
		t.Errorf("expected no freshness for uncached symbol")
	}
}

type countingProvider struct {
	calls  int
	series []backtest.PricePoint
	err    error
}

func (c *countingProvider) PriceSeries(ctx context.Context, symbol, timeframe string, limit int) ([]backtest.PricePoint, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.series, nil
}

func TestCachedProvider(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)
	upstream := &countingProvider{series: points("10", "11", "12")}

	provider, err := NewCachedProvider(cache, upstream, time.Hour, nil)
	if err != nil {
		t.Fatalf("NewCachedProvider returned error: %v", err)
	}
	now := base
	provider.now = func() time.Time { return now }

	if _, err := provider.PriceSeries(ctx, "SOL", "1d", 3); err != nil {
		t.Fatalf("PriceSeries returned error: %v", err)
	}
	got, err := provider.PriceSeries(ctx, "SOL", "1d", 3)
	if err != nil {
		t.Fatalf("PriceSeries returned error: %v", err)
	}
	if upstream.calls != 1 {
		t.Errorf("expected second call served from cache, upstream calls=%d", upstream.calls)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 cached points, got %d", len(got))
	}

	// 缓存过期后回源；回源失败则退回缓存
	now = base.Add(2 * time.Hour)
	upstream.err = errors.New("offline")
	got, err = provider.PriceSeries(ctx, "SOL", "1d", 3)
	if err != nil {
		t.Fatalf("expected cache fallback, got %v", err)
	}
	if upstream.calls != 2 || len(got) != 3 {
		t.Errorf("expected refetch attempt and fallback, calls=%d points=%d", upstream.calls, len(got))
	}

	if _, err := provider.PriceSeries(ctx, "ADA", "1d", 3); err == nil {
		t.Fatalf("expected upstream error without cache")
	}
}
