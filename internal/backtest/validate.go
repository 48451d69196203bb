package backtest

import (
	"github.com/shopspring/decimal"

	"dca-sim/internal/position"
)

var minusOne = decimal.NewFromInt(-1)

// ValidateSeries 检查序列非空、收盘价为正且时间戳严格递增。
func ValidateSeries(series []PricePoint) error {
	if len(series) == 0 {
		return &InvalidSeriesError{Index: -1, Reason: "序列为空"}
	}
	for i, point := range series {
		if !point.Close.IsPositive() {
			return &InvalidSeriesError{Index: i, Reason: "收盘价必须为正, 实际为 " + point.Close.String()}
		}
		if i > 0 && !point.Timestamp.After(series[i-1].Timestamp) {
			return &InvalidSeriesError{Index: i, Reason: "时间戳必须严格递增"}
		}
	}
	return nil
}

// ValidateRules 检查每条规则的阈值位于(-1,0)且加仓倍数为正。
func ValidateRules(rules []DrawdownRule) error {
	for i, rule := range rules {
		if !rule.ThresholdPct.GreaterThan(minusOne) || !rule.ThresholdPct.IsNegative() {
			return &InvalidRuleError{Index: i, Field: "threshold_pct", Value: rule.ThresholdPct, Reason: "必须位于(-1,0)"}
		}
		if !rule.SizingRatio.IsPositive() {
			return &InvalidRuleError{Index: i, Field: "sizing_ratio", Value: rule.SizingRatio, Reason: "必须大于0"}
		}
	}
	return nil
}

func validateInputs(series []PricePoint, initial position.Position, rules []DrawdownRule, baseline decimal.Decimal) error {
	if err := initial.Validate(); err != nil {
		return err
	}
	if baseline.IsNegative() {
		return &position.InvalidPositionError{Field: "baseline_quantity", Value: baseline, Reason: "不能为负"}
	}
	if initial.IsEmpty() && len(rules) > 0 && !baseline.IsPositive() {
		return &position.InvalidPositionError{Field: "baseline_quantity", Value: baseline, Reason: "空仓时必须为正"}
	}
	if err := ValidateSeries(series); err != nil {
		return err
	}
	return ValidateRules(rules)
}
