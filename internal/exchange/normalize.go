package exchange

import (
	"sort"

	"github.com/shopspring/decimal"

	"dca-sim/internal/backtest"
)

// NormalizeSeries 将K线转换为按时间升序、时间戳唯一的收盘价序列。
// 重复时间戳保留最后一根，收盘价非正的K线被丢弃。
func NormalizeSeries(candles []Candle) []backtest.PricePoint {
	sorted := make([]Candle, 0, len(candles))
	for _, c := range candles {
		if c.Close > 0 {
			sorted = append(sorted, c)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	points := make([]backtest.PricePoint, 0, len(sorted))
	for _, c := range sorted {
		point := backtest.PricePoint{
			Timestamp: c.Timestamp.UTC(),
			Close:     decimal.NewFromFloat(c.Close),
		}
		if n := len(points); n > 0 && points[n-1].Timestamp.Equal(point.Timestamp) {
			points[n-1] = point
			continue
		}
		points = append(points, point)
	}
	return points
}
