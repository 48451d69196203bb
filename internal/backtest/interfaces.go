package backtest

import (
	"context"

	"github.com/shopspring/decimal"
)

// SeriesProvider 返回按时间升序、去重后的收盘价序列。
type SeriesProvider interface {
	PriceSeries(ctx context.Context, symbol, timeframe string, limit int) ([]PricePoint, error)
}

// QuoteProvider 返回交易对的最新价格，用作默认市场价。
type QuoteProvider interface {
	LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}
