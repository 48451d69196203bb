package indicator

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"dca-sim/internal/backtest"
)

// MovingAverage 保存单个窗口的简单移动平均。
type MovingAverage struct {
	Window    int
	Values    []float64 // 与序列等长，窗口不足处为 NaN
	Last      float64
	Distance  float64 // 最新收盘价相对均线的偏离比例
	Available bool
}

// Result 为一次指标计算的汇总。
type Result struct {
	Series         Series
	Close          float64
	MovingAverages []MovingAverage
	RSI            float64
	RSIAvailable   bool
}

// Overlay 计算各窗口的简单移动平均与 RSI，用于报告中的趋势背景。
func Overlay(points []backtest.PricePoint, windows []int, rsiPeriod int) (Result, error) {
	if len(points) == 0 {
		return Result{}, fmt.Errorf("计算指标失败: 输入序列为空")
	}

	series := NewSeries(points)
	closes := series.Close
	lastClose := Last(closes)

	result := Result{
		Series: series,
		Close:  lastClose,
		RSI:    math.NaN(),
	}

	for _, window := range windows {
		if window < 2 {
			return Result{}, fmt.Errorf("计算指标失败: 均线窗口 %d 不合法", window)
		}
		ma := MovingAverage{Window: window, Last: math.NaN(), Values: nanSlice(len(closes))}
		if len(closes) >= window {
			sma := talib.Sma(closes, window)
			for i := window - 1; i < len(sma); i++ {
				ma.Values[i] = sma[i]
			}
			ma.Last = Last(sma)
			ma.Distance = SafeDivide(lastClose-ma.Last, ma.Last)
			ma.Available = true
		}
		result.MovingAverages = append(result.MovingAverages, ma)
	}

	if rsiPeriod >= 2 && len(closes) > rsiPeriod {
		result.RSI = Last(talib.Rsi(closes, rsiPeriod))
		result.RSIAvailable = true
	}

	return result, nil
}

// At 返回窗口 window 在下标 i 处的均线值。
func (r Result) At(window, i int) (float64, bool) {
	for _, ma := range r.MovingAverages {
		if ma.Window != window {
			continue
		}
		if i < 0 || i >= len(ma.Values) || math.IsNaN(ma.Values[i]) {
			return 0, false
		}
		return ma.Values[i], true
	}
	return 0, false
}

func nanSlice(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}
	return values
}
