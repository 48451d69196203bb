package backtest

import (
	"context"
	"fmt"
)

// SliceProvider 以固定序列提供价格数据，按 symbol 区分。
type SliceProvider struct {
	series map[string][]PricePoint
}

func NewSliceProvider(series map[string][]PricePoint) *SliceProvider {
	return &SliceProvider{series: series}
}

func (p *SliceProvider) PriceSeries(ctx context.Context, symbol, timeframe string, limit int) ([]PricePoint, error) {
	points, ok := p.series[symbol]
	if !ok {
		return nil, fmt.Errorf("backtest: 没有 %s 的价格序列", symbol)
	}
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return append([]PricePoint(nil), points...), nil
}
