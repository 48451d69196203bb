package backtest

import (
	"github.com/shopspring/decimal"

	"dca-sim/internal/position"
)

// simulator 保存单次回测在各步之间传递的状态。
type simulator struct {
	rules    []DrawdownRule
	baseline decimal.Decimal
	policy   PeakPolicy

	state     State
	current   position.Position
	peak      decimal.Decimal
	nextRule  int
	tradeLog  []Fill
	invested  decimal.Decimal
	lastClose decimal.Decimal
	closes    []decimal.Decimal
	escapedAt *PricePoint
}

// Run 在历史价格序列上模拟回撤触发的加仓，直到持仓回本或序列结束。
// 输入不合法时返回 *InvalidSeriesError、*InvalidRuleError 或 *position.InvalidPositionError，不返回部分结果。
func Run(series []PricePoint, initial position.Position, rules []DrawdownRule, baseline decimal.Decimal, opts ...Option) (Result, error) {
	if err := validateInputs(series, initial, rules, baseline); err != nil {
		return Result{}, err
	}

	o := options{peakPolicy: ResetOnTrade}
	for _, opt := range opts {
		opt(&o)
	}

	if initial.IsEmpty() {
		initial = position.Position{AverageCost: decimal.Zero, Quantity: decimal.Zero}
	}

	s := &simulator{
		rules:    rules,
		baseline: baseline,
		policy:   o.peakPolicy,
		state:    StateAccumulating,
		current:  initial,
		closes:   make([]decimal.Decimal, 0, len(series)),
	}

	for _, point := range series {
		s.advance(point)
		if s.state == StateEscaped {
			break
		}
	}
	if s.state == StateAccumulating {
		s.state = StateExhausted
	}

	return s.result(), nil
}

// advance 处理一个价格点：更新高点、判断是否触发加仓，再判断是否回本。
func (s *simulator) advance(point PricePoint) {
	price := point.Close
	s.lastClose = price
	s.closes = append(s.closes, price)

	if price.GreaterThan(s.peak) {
		s.peak = price
	}
	drawdown := price.Sub(s.peak).Div(s.peak)

	if s.nextRule < len(s.rules) && drawdown.LessThanOrEqual(s.rules[s.nextRule].ThresholdPct) {
		s.trigger(point, drawdown)
	}

	if s.canEscape(price) {
		s.state = StateEscaped
		escaped := point
		s.escapedAt = &escaped
	}
}

func (s *simulator) trigger(point PricePoint, drawdown decimal.Decimal) {
	rule := s.rules[s.nextRule]

	base := s.current.Quantity
	if !base.IsPositive() {
		base = s.baseline
	}
	trade := position.Trade{Price: point.Close, Quantity: rule.SizingRatio.Mul(base)}

	s.current = position.Blend(s.current, trade)
	s.invested = s.invested.Add(trade.Cost())
	s.tradeLog = append(s.tradeLog, Fill{
		Timestamp: point.Timestamp,
		Trade:     trade,
		RuleIndex: s.nextRule,
		Drawdown:  drawdown,
		Peak:      s.peak,
		Position:  s.current,
	})

	if s.policy == ResetOnTrade {
		s.peak = point.Close
	}
	s.nextRule++
}

// canEscape 要求至少有一次触发的加仓；没有规则时视为纯持有，只要回到成本即回本。
func (s *simulator) canEscape(price decimal.Decimal) bool {
	if !s.current.Quantity.IsPositive() {
		return false
	}
	if price.LessThan(s.current.AverageCost) {
		return false
	}
	return len(s.tradeLog) > 0 || len(s.rules) == 0
}

func (s *simulator) result() Result {
	res := Result{
		State:            s.state,
		TriggerCount:     len(s.tradeLog),
		FinalAverageCost: s.current.AverageCost,
		FinalReturnPct:   position.EvaluateReturn(s.current, s.lastClose),
		TradeLog:         append([]Fill(nil), s.tradeLog...),
		FinalPosition:    s.current,
		LastClose:        s.lastClose,
		Invested:         s.invested,
		Steps:            len(s.closes),
		MaxDrawdown:      computeDrawdown(s.closes),
	}
	if s.escapedAt != nil {
		ts := s.escapedAt.Timestamp
		res.EscapeTimestamp = &ts
	}
	return res
}
