package backtest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidSeriesError 表示价格序列不合法：为空、时间戳非递增或收盘价非正。
type InvalidSeriesError struct {
	Index  int
	Reason string
}

func (e *InvalidSeriesError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("backtest: 价格序列不合法: %s", e.Reason)
	}
	return fmt.Sprintf("backtest: 价格序列第 %d 个点不合法: %s", e.Index, e.Reason)
}

// InvalidRuleError 表示回撤规则不合法：阈值不在(-1,0)或加仓倍数非正。
type InvalidRuleError struct {
	Index  int
	Field  string
	Value  decimal.Decimal
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("backtest: 规则 %d 的 %s=%s %s", e.Index, e.Field, e.Value.String(), e.Reason)
}
