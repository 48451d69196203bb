package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"dca-sim/internal/backtest"
	"dca-sim/internal/indicator"
	"dca-sim/internal/position"
)

const tsLayout = "2006-01-02 15:04"

// LadderMarkdown 输出同一价格下多个候选加仓数量的对比表。
// target 非零时附加达到目标平均成本所需的数量。
func LadderMarkdown(currency string, current position.Summary, projections []position.Projection, target, targetQty decimal.Decimal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 加仓测算\n\n")
	writeSummary(&b, currency, "当前持仓", current)

	if len(projections) > 0 {
		fmt.Fprintf(&b, "\n## 候选数量 @ %s\n\n", formatPrice(projections[0].Trade.Price))
		fmt.Fprintln(&b, "| 买入数量 | 投入资金 | 新平均成本 | 成本变化 | 新持仓数量 | 浮动盈亏 | 收益率 |")
		fmt.Fprintln(&b, "|---:|---:|---:|---:|---:|---:|---:|")
		for _, p := range projections {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				p.Trade.Quantity.String(),
				formatMoney(p.CapitalAdded, currency),
				formatPrice(p.After.AverageCost),
				formatPrice(p.AverageCostDiff),
				p.After.Quantity.String(),
				signedMoney(p.After.UnrealizedPnl, currency),
				formatPercent(p.After.UnrealizedPnlPercent),
			)
		}
	}

	if target.IsPositive() {
		fmt.Fprintf(&b, "\n## 目标平均成本\n\n")
		fmt.Fprintf(&b, "将平均成本降至 **%s** 需要买入 **%s**。\n", formatPrice(target), targetQty.Round(8).String())
	}

	return b.String()
}

// ProjectionMarkdown 输出单笔加仓前后的持仓对比。
func ProjectionMarkdown(currency string, p position.Projection) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 加仓结果\n\n")
	fmt.Fprintf(&b, "买入 %s @ %s，投入 %s。\n\n", p.Trade.Quantity.String(), formatPrice(p.Trade.Price), formatMoney(p.CapitalAdded, currency))
	fmt.Fprintln(&b, "| | 加仓前 | 加仓后 |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	fmt.Fprintf(&b, "| 平均成本 | %s | %s |\n", formatPrice(p.Before.AverageCost), formatPrice(p.After.AverageCost))
	fmt.Fprintf(&b, "| 数量 | %s | %s |\n", p.Before.Quantity.String(), p.After.Quantity.String())
	fmt.Fprintf(&b, "| 成本 | %s | %s |\n", formatMoney(p.Before.CostBasis, currency), formatMoney(p.After.CostBasis, currency))
	if p.After.MarketPrice.IsPositive() {
		fmt.Fprintf(&b, "| 市值 @ %s | %s | %s |\n", formatPrice(p.After.MarketPrice), formatMoney(p.Before.MarketValue, currency), formatMoney(p.After.MarketValue, currency))
		fmt.Fprintf(&b, "| 收益率 | %s | %s |\n", formatPercent(p.Before.UnrealizedPnlPercent), formatPercent(p.After.UnrealizedPnlPercent))
	}

	return b.String()
}

// BacktestMarkdown 输出回测的结论、成交明细与指标背景。overlay 可为 nil。
func BacktestMarkdown(currency string, initial position.Position, outcome backtest.Outcome, overlay *indicator.Result) string {
	var b strings.Builder
	res := outcome.Result

	fmt.Fprintf(&b, "# 回测 %s (%s)\n\n", outcome.Symbol, outcome.Timeframe)
	if len(outcome.Series) > 0 {
		first := outcome.Series[0].Timestamp
		last := outcome.Series[len(outcome.Series)-1].Timestamp
		fmt.Fprintf(&b, "区间 %s ~ %s，共 %d 个价格点，处理 %d 个。\n\n", first.Format(tsLayout), last.Format(tsLayout), len(outcome.Series), res.Steps)
	}

	fmt.Fprintf(&b, "## 结论\n\n")
	fmt.Fprintf(&b, "- 状态: **%s**\n", stateLabel(res.State))
	if res.EscapeTimestamp != nil {
		fmt.Fprintf(&b, "- 回本时间: %s\n", res.EscapeTimestamp.Format(tsLayout))
	}
	fmt.Fprintf(&b, "- 触发次数: %d\n", res.TriggerCount)
	fmt.Fprintf(&b, "- 初始平均成本: %s (数量 %s)\n", formatPrice(initial.AverageCost), initial.Quantity.String())
	fmt.Fprintf(&b, "- 最终平均成本: %s (数量 %s)\n", formatPrice(res.FinalAverageCost), res.FinalPosition.Quantity.String())
	fmt.Fprintf(&b, "- 最终收益率: %s\n", formatPercent(res.FinalReturnPct))
	fmt.Fprintf(&b, "- 追加投入: %s\n", formatMoney(res.Invested, currency))
	fmt.Fprintf(&b, "- 区间最大回撤: %s\n", formatPercent(res.MaxDrawdown.Mul(decimal.NewFromInt(100))))

	maWindow := 0
	if overlay != nil && len(overlay.MovingAverages) > 0 {
		maWindow = overlay.MovingAverages[0].Window
	}

	if len(res.TradeLog) > 0 {
		fmt.Fprintf(&b, "\n## 成交明细\n\n")
		header := "| # | 时间 | 规则 | 峰值 | 回撤 | 价格 | 数量 | 成交后平均成本 |"
		align := "|---:|:---|---:|---:|---:|---:|---:|---:|"
		if maWindow > 0 {
			header += fmt.Sprintf(" 相对MA%d |", maWindow)
			align += "---:|"
		}
		fmt.Fprintln(&b, header)
		fmt.Fprintln(&b, align)
		for i, fill := range res.TradeLog {
			fmt.Fprintf(&b, "| %d | %s | %d | %s | %s | %s | %s | %s |",
				i+1,
				fill.Timestamp.Format(tsLayout),
				fill.RuleIndex+1,
				formatPrice(fill.Peak),
				formatPercent(fill.Drawdown.Mul(decimal.NewFromInt(100))),
				formatPrice(fill.Trade.Price),
				fill.Trade.Quantity.Round(8).String(),
				formatPrice(fill.Position.AverageCost),
			)
			if maWindow > 0 {
				fmt.Fprintf(&b, " %s |", maDistance(overlay, maWindow, fill))
			}
			fmt.Fprintln(&b)
		}
	}

	if overlay != nil {
		writeOverlay(&b, overlay)
	}

	return b.String()
}

// LiveMarkdown 输出最新价格下的持仓估值，空仓时只列出价格与指标。
func LiveMarkdown(currency, symbol, timeframe string, s position.Summary, overlay *indicator.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 行情 %s (%s)\n\n", symbol, timeframe)
	fmt.Fprintf(&b, "最新价格: **%s**\n\n", formatPrice(s.MarketPrice))
	if s.Quantity.IsPositive() {
		writeSummary(&b, currency, "当前持仓", s)
	}
	if overlay != nil {
		writeOverlay(&b, overlay)
	}

	return b.String()
}

func writeSummary(b *strings.Builder, currency, title string, s position.Summary) {
	fmt.Fprintf(b, "## %s\n\n", title)
	fmt.Fprintf(b, "- 平均成本: %s\n", formatPrice(s.AverageCost))
	fmt.Fprintf(b, "- 数量: %s\n", s.Quantity.String())
	fmt.Fprintf(b, "- 成本: %s\n", formatMoney(s.CostBasis, currency))
	if s.MarketPrice.IsPositive() {
		fmt.Fprintf(b, "- 市值 @ %s: %s\n", formatPrice(s.MarketPrice), formatMoney(s.MarketValue, currency))
		fmt.Fprintf(b, "- 浮动盈亏: %s (%s)\n", signedMoney(s.UnrealizedPnl, currency), formatPercent(s.UnrealizedPnlPercent))
	}
}

func writeOverlay(b *strings.Builder, overlay *indicator.Result) {
	fmt.Fprintf(b, "\n## 指标背景\n\n")
	fmt.Fprintf(b, "- 最新收盘价: %.8g\n", overlay.Close)
	for _, ma := range overlay.MovingAverages {
		if !ma.Available {
			fmt.Fprintf(b, "- MA%d: 数据不足\n", ma.Window)
			continue
		}
		fmt.Fprintf(b, "- MA%d: %.8g (偏离 %+.2f%%)\n", ma.Window, ma.Last, ma.Distance*100)
	}
	if overlay.RSIAvailable {
		fmt.Fprintf(b, "- RSI: %.2f\n", overlay.RSI)
	} else {
		fmt.Fprintf(b, "- RSI: 数据不足\n")
	}
}

func maDistance(overlay *indicator.Result, window int, fill backtest.Fill) string {
	idx := overlay.Series.IndexOf(fill.Timestamp)
	ma, ok := overlay.At(window, idx)
	if !ok {
		return "-"
	}
	price := fill.Trade.Price.InexactFloat64()
	return fmt.Sprintf("%+.2f%%", indicator.SafeDivide(price-ma, ma)*100)
}

func stateLabel(s backtest.State) string {
	switch s {
	case backtest.StateEscaped:
		return "已回本 (escaped)"
	case backtest.StateExhausted:
		return "序列结束未回本 (exhausted)"
	default:
		return "仍在累积 (accumulating)"
	}
}
