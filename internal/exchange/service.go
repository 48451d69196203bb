package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dca-sim/internal/backtest"
)

type candleFetcher interface {
	FetchCandles(ctx context.Context, symbol, timeframe string, limit int64) ([]Candle, error)
}

// MarketDataService 提供回测所需的价格序列与最新价格。
// 实现 backtest.SeriesProvider 与 backtest.QuoteProvider。
type MarketDataService struct {
	client candleFetcher
	logger *zap.Logger
}

// NewMarketDataService 创建市场数据服务。
func NewMarketDataService(client candleFetcher, logger *zap.Logger) *MarketDataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketDataService{
		client: client,
		logger: logger,
	}
}

// PriceSeries 返回按时间升序、去重后的收盘价序列。
func (s *MarketDataService) PriceSeries(ctx context.Context, symbol, timeframe string, limit int) ([]backtest.PricePoint, error) {
	candles, err := s.client.FetchCandles(ctx, symbol, timeframe, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("exchange: 获取 %s %s K线失败: %w", symbol, timeframe, err)
	}
	return NormalizeSeries(candles), nil
}

// LastPrice 以最近一根1分钟K线的收盘价作为最新价格。
func (s *MarketDataService) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	candles, err := s.client.FetchCandles(ctx, symbol, Timeframe1m, 1)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exchange: 获取 %s 最新价格失败: %w", symbol, err)
	}
	points := NormalizeSeries(candles)
	if len(points) == 0 {
		return decimal.Zero, fmt.Errorf("exchange: %s 没有可用的最新价格", symbol)
	}
	return points[len(points)-1].Close, nil
}

// Snapshot 并发拉取价格序列与最新价格。
func (s *MarketDataService) Snapshot(ctx context.Context, req SnapshotRequest) (MarketSnapshot, error) {
	defaultReq := DefaultSnapshotRequest()
	if req.Timeframe == "" {
		req.Timeframe = defaultReq.Timeframe
	}
	if req.Limit <= 0 {
		req.Limit = defaultReq.Limit
	}
	if req.Symbol == "" {
		return MarketSnapshot{}, fmt.Errorf("exchange: symbol 不能为空")
	}

	var (
		series []backtest.PricePoint
		last   decimal.Decimal
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		data, err := s.PriceSeries(groupCtx, req.Symbol, req.Timeframe, req.Limit)
		if err != nil {
			return err
		}
		series = data
		return nil
	})

	group.Go(func() error {
		price, err := s.LastPrice(groupCtx, req.Symbol)
		if err != nil {
			return err
		}
		last = price
		return nil
	})

	if err := group.Wait(); err != nil {
		return MarketSnapshot{}, err
	}

	snapshot := MarketSnapshot{
		Symbol:      req.Symbol,
		Timeframe:   req.Timeframe,
		Series:      series,
		LastPrice:   last,
		RetrievedAt: time.Now().UTC(),
	}

	s.logger.Debug("市场数据快照获取完成",
		zap.String("symbol", snapshot.Symbol),
		zap.String("timeframe", snapshot.Timeframe),
		zap.Time("retrieved_at", snapshot.RetrievedAt),
		zap.Int("points", len(snapshot.Series)),
		zap.Stringer("last_price", snapshot.LastPrice),
	)

	return snapshot, nil
}
