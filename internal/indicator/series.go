package indicator

import (
	"math"
	"time"

	"dca-sim/internal/backtest"
)

// Series 将收盘价序列拆分为便于指标计算的切片。
type Series struct {
	Timestamps []time.Time
	Close      []float64
}

// NewSeries 从回测价格序列创建 Series，保持原有的时间顺序。
func NewSeries(points []backtest.PricePoint) Series {
	length := len(points)
	series := Series{
		Timestamps: make([]time.Time, length),
		Close:      make([]float64, length),
	}

	for i := 0; i < length; i++ {
		series.Timestamps[i] = points[i].Timestamp.UTC()
		series.Close[i] = points[i].Close.InexactFloat64()
	}

	return series
}

// IndexOf 返回时间戳所在的下标，找不到时返回 -1。
func (s Series) IndexOf(ts time.Time) int {
	for i, t := range s.Timestamps {
		if t.Equal(ts) {
			return i
		}
	}
	return -1
}

// Last 返回序列最后一个值，若为空则返回 NaN。
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// SafeDivide 除法保护，除数为0时返回0。
func SafeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
