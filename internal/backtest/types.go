package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"dca-sim/internal/position"
)

// State 描述一次回测所处的状态。
type State string

const (
	StateAccumulating State = "accumulating"
	StateEscaped      State = "escaped"
	StateExhausted    State = "exhausted"
)

// PricePoint 为按时间升序排列的收盘价。
type PricePoint struct {
	Timestamp time.Time       `json:"ts"`
	Close     decimal.Decimal `json:"close"`
}

// DrawdownRule 定义一档回撤触发加仓的规则。
type DrawdownRule struct {
	ThresholdPct decimal.Decimal `json:"threshold_pct"` // 回撤阈值，位于(-1,0)，例如 -0.2
	SizingRatio  decimal.Decimal `json:"sizing_ratio"`  // 加仓数量相对当前持仓数量的倍数
}

// Fill 记录一次触发的模拟买入。
type Fill struct {
	Timestamp time.Time         `json:"ts"`
	Trade     position.Trade    `json:"trade"`
	RuleIndex int               `json:"rule_index"`
	Drawdown  decimal.Decimal   `json:"drawdown"`
	Peak      decimal.Decimal   `json:"peak"`
	Position  position.Position `json:"position"` // 成交后的持仓
}

// Result 汇总一次回测结果，生成后只读。
type Result struct {
	State            State             `json:"state"`
	TriggerCount     int               `json:"trigger_count"`
	EscapeTimestamp  *time.Time        `json:"escape_ts,omitempty"`
	FinalAverageCost decimal.Decimal   `json:"final_average_cost"`
	FinalReturnPct   decimal.Decimal   `json:"final_return_pct"`
	TradeLog         []Fill            `json:"trade_log"`
	FinalPosition    position.Position `json:"final_position"`
	LastClose        decimal.Decimal   `json:"last_close"`
	Invested         decimal.Decimal   `json:"invested"`
	Steps            int               `json:"steps"`
	MaxDrawdown      decimal.Decimal   `json:"max_drawdown"`
}

// Escaped 判断持仓是否已回本。
func (r Result) Escaped() bool {
	return r.State == StateEscaped
}
