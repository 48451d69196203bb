package exchange

import (
	"time"

	"github.com/shopspring/decimal"

	"dca-sim/internal/backtest"
)

const (
	// Timeframe1m 用于获取最新价格。
	Timeframe1m = "1m"
	// Timeframe1d 为默认回测周期。
	Timeframe1d = "1d"
)

// Candle 代表单根K线。
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// MarketSnapshot 聚合回测序列与最新价格。
type MarketSnapshot struct {
	Symbol      string
	Timeframe   string
	Series      []backtest.PricePoint
	LastPrice   decimal.Decimal
	RetrievedAt time.Time
}

// SnapshotRequest 控制一次快照采集的参数。
type SnapshotRequest struct {
	Symbol    string
	Timeframe string
	Limit     int
}

// DefaultSnapshotRequest 返回默认快照参数。
func DefaultSnapshotRequest() SnapshotRequest {
	return SnapshotRequest{
		Timeframe: Timeframe1d,
		Limit:     365,
	}
}
