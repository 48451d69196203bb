package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"dca-sim/internal/backtest"
	"dca-sim/internal/config"
	"dca-sim/internal/exchange"
	"dca-sim/internal/position"
	"dca-sim/internal/store"
)

type fakeSnapshotter struct {
	req      exchange.SnapshotRequest
	snapshot exchange.MarketSnapshot
	err      error
}

func (f *fakeSnapshotter) Snapshot(ctx context.Context, req exchange.SnapshotRequest) (exchange.MarketSnapshot, error) {
	f.req = req
	if f.err != nil {
		return exchange.MarketSnapshot{}, f.err
	}
	snap := f.snapshot
	snap.Symbol = req.Symbol
	snap.Timeframe = req.Timeframe
	return snap, nil
}

type staticQuote struct {
	price decimal.Decimal
	err   error
}

func (q staticQuote) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return q.price, q.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	cfg.Exchange.Market = "ETH/USDT:USDT"
	cfg.Indicator.MAWindows = []int{2}
	return cfg
}

func testSeries() []backtest.PricePoint {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	closes := []string{"100", "90", "80", "70", "85", "95"}
	out := make([]backtest.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = backtest.PricePoint{Timestamp: start.AddDate(0, 0, i), Close: decimal.RequireFromString(c)}
	}
	return out
}

func TestApp_Backtest(t *testing.T) {
	cfg := testConfig(t)
	provider := backtest.NewSliceProvider(map[string][]backtest.PricePoint{"ETH/USDT:USDT": testSeries()})

	a, err := newApp(cfg, zaptest.NewLogger(t), nil, provider, staticQuote{price: decimal.NewFromInt(95)}, nil)
	if err != nil {
		t.Fatalf("newApp returned error: %v", err)
	}

	initial := position.Position{AverageCost: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(10)}
	rep, err := a.Backtest(context.Background(), "", initial)
	if err != nil {
		t.Fatalf("Backtest returned error: %v", err)
	}
	if rep.Outcome.Symbol != "ETH/USDT:USDT" {
		t.Errorf("expected configured symbol, got %q", rep.Outcome.Symbol)
	}
	if rep.Outcome.Result.TriggerCount == 0 {
		t.Errorf("expected at least one trigger")
	}
	if rep.Overlay == nil || len(rep.Overlay.MovingAverages) != 1 {
		t.Fatalf("expected indicator overlay with one MA")
	}
	if md := rep.Markdown("USD"); !strings.Contains(md, "# 回测 ETH/USDT:USDT") {
		t.Errorf("unexpected markdown:\n%s", md)
	}

	if _, err := a.Backtest(context.Background(), "DOGE/USDT:USDT", initial); err == nil {
		t.Errorf("expected error for unknown symbol")
	}
}

func TestApp_Quote(t *testing.T) {
	cfg := testConfig(t)
	provider := backtest.NewSliceProvider(nil)

	a, err := newApp(cfg, zaptest.NewLogger(t), nil, provider, staticQuote{price: decimal.NewFromInt(1234)}, nil)
	if err != nil {
		t.Fatalf("newApp returned error: %v", err)
	}
	price, err := a.Quote(context.Background(), "")
	if err != nil || !price.Equal(decimal.NewFromInt(1234)) {
		t.Fatalf("expected 1234, got %s, %v", price, err)
	}

	failing, _ := newApp(cfg, zaptest.NewLogger(t), nil, provider, staticQuote{err: errors.New("offline")}, nil)
	if _, err := failing.Quote(context.Background(), ""); err == nil {
		t.Errorf("expected quote error")
	}
}

func TestNew_WiresCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.InMemory = true

	st, err := store.NewSQLite(cfg.Database)
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	defer st.Close()

	a, err := New(cfg, zaptest.NewLogger(t), st)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, ok := a.series.(*store.CachedProvider); !ok {
		t.Errorf("expected cached series provider, got %T", a.series)
	}

	// 未配置密钥时不会访问交易所
	if _, err := a.ImportPosition(context.Background(), ""); err == nil {
		t.Errorf("expected error without api credentials")
	}
}

func TestApp_Live(t *testing.T) {
	cfg := testConfig(t)
	cfg.Exchange.Timeframe = "4h"
	cfg.Exchange.Lookback = 120
	market := &fakeSnapshotter{snapshot: exchange.MarketSnapshot{
		Series:    testSeries(),
		LastPrice: decimal.NewFromInt(110),
	}}

	a, err := newApp(cfg, zaptest.NewLogger(t), nil, backtest.NewSliceProvider(nil), nil, market)
	if err != nil {
		t.Fatalf("newApp returned error: %v", err)
	}

	current := position.Position{AverageCost: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(10)}
	rep, err := a.Live(context.Background(), "", current)
	if err != nil {
		t.Fatalf("Live returned error: %v", err)
	}
	if market.req.Symbol != "ETH/USDT:USDT" || market.req.Timeframe != "4h" || market.req.Limit != 120 {
		t.Errorf("unexpected snapshot request %+v", market.req)
	}
	if !rep.Summary.UnrealizedPnlPercent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected return 10%%, got %s", rep.Summary.UnrealizedPnlPercent)
	}
	if !rep.Summary.MarketValue.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("expected market value 1100, got %s", rep.Summary.MarketValue)
	}
	if rep.Overlay == nil {
		t.Fatalf("expected indicator overlay")
	}
	md := rep.Markdown("USD")
	for _, want := range []string{"# 行情 ETH/USDT:USDT (4h)", "最新价格: **110**", "+$100.00 (10.00%)"} {
		if !strings.Contains(md, want) {
			t.Errorf("live markdown missing %q:\n%s", want, md)
		}
	}

	market.err = errors.New("offline")
	if _, err := a.Live(context.Background(), "", current); err == nil {
		t.Errorf("expected snapshot error")
	}

	noMarket, _ := newApp(cfg, zaptest.NewLogger(t), nil, backtest.NewSliceProvider(nil), nil, nil)
	if _, err := noMarket.Live(context.Background(), "", current); err == nil {
		t.Errorf("expected error without snapshot source")
	}
}
