package backtest

import "github.com/shopspring/decimal"

// computeDrawdown 返回序列相对滚动高点的最大回撤，以正数比例表示。
func computeDrawdown(closes []decimal.Decimal) decimal.Decimal {
	peak := decimal.Zero
	maxDD := decimal.Zero
	for _, v := range closes {
		if v.GreaterThan(peak) {
			peak = v
		}
		if !peak.IsPositive() {
			continue
		}
		dd := v.Sub(peak).Div(peak)
		if dd.LessThan(maxDD) {
			maxDD = dd
		}
	}
	return maxDD.Abs()
}
