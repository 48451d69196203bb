package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"dca-sim/internal/backtest"
	"dca-sim/internal/config"
	"dca-sim/internal/indicator"
	"dca-sim/internal/position"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestFormatMoney(t *testing.T) {
	if got := formatMoney(d("800"), "usd"); got != "$800.00" {
		t.Errorf("expected $800.00, got %q", got)
	}
	if got := formatMoney(d("12.345"), "ZZZ"); got != "12.35" {
		t.Errorf("expected fallback 12.35, got %q", got)
	}
	if got := signedMoney(decimal.Zero, "USD"); got != "-" {
		t.Errorf("expected '-', got %q", got)
	}
	if got := signedMoney(d("5"), "USD"); got != "+$5.00" {
		t.Errorf("expected +$5.00, got %q", got)
	}
}

func TestLadderMarkdown(t *testing.T) {
	current := position.Position{AverageCost: d("100"), Quantity: d("10")}
	projections, err := position.Ladder(current, d("80"), []decimal.Decimal{d("5"), d("10")}, d("80"))
	if err != nil {
		t.Fatalf("Ladder returned error: %v", err)
	}

	md := LadderMarkdown("USD", position.Summarize(current, d("80")), projections, d("90"), d("10"))

	for _, want := range []string{
		"# 加仓测算",
		"## 候选数量 @ 80",
		"| 5 | $400.00 | 93.33333333 |",
		"| 10 | $800.00 | 90 |",
		"需要买入 **10**",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("ladder markdown missing %q:\n%s", want, md)
		}
	}
}

func TestProjectionMarkdown(t *testing.T) {
	p, err := position.Project(position.Position{AverageCost: d("100"), Quantity: d("10")}, position.Trade{Price: d("80"), Quantity: d("10")}, decimal.Zero)
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	md := ProjectionMarkdown("USD", p)
	if !strings.Contains(md, "| 平均成本 | 100 | 90 |") {
		t.Errorf("unexpected projection markdown:\n%s", md)
	}
	if strings.Contains(md, "市值") {
		t.Errorf("expected no market rows without a market price:\n%s", md)
	}
}

func TestBacktestMarkdown(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	series := []backtest.PricePoint{
		{Timestamp: start, Close: d("100")},
		{Timestamp: start.AddDate(0, 0, 1), Close: d("80")},
		{Timestamp: start.AddDate(0, 0, 2), Close: d("95")},
	}
	initial := position.Position{AverageCost: d("100"), Quantity: d("10")}
	rules := []backtest.DrawdownRule{{ThresholdPct: d("-0.2"), SizingRatio: d("1")}}

	res, err := backtest.Run(series, initial, rules, decimal.Zero)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	overlay, err := indicator.Overlay(series, []int{2}, 14)
	if err != nil {
		t.Fatalf("Overlay returned error: %v", err)
	}

	md := BacktestMarkdown("USD", initial, backtest.Outcome{Symbol: "BTC/USDT:USDT", Timeframe: "1d", Series: series, Result: res}, &overlay)

	for _, want := range []string{
		"# 回测 BTC/USDT:USDT (1d)",
		"已回本 (escaped)",
		"回本时间: 2024-01-03 00:00",
		"触发次数: 1",
		"追加投入: $800.00",
		"相对MA2",
		"| 1 | 2024-01-02 00:00 | 1 | 100 | -20.00% | 80 | 10 | 90 | -11.11% |",
		"RSI: 数据不足",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("backtest markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderer_Raw(t *testing.T) {
	r := NewRenderer(config.ReportConfig{Style: "raw"})
	out, err := r.Render("# title")
	if err != nil || out != "# title" {
		t.Fatalf("expected raw passthrough, got %q, %v", out, err)
	}
}

func TestRenderer_Notty(t *testing.T) {
	r := NewRenderer(config.ReportConfig{Style: "notty", Width: 60})
	out, err := r.Render("# 标题\n\n正文")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.Contains(out, "正文") {
		t.Errorf("expected rendered body, got %q", out)
	}
}

func TestLiveMarkdown(t *testing.T) {
	held := position.Summarize(position.Position{AverageCost: d("100"), Quantity: d("2")}, d("90"))
	md := LiveMarkdown("USD", "BTC/USDT:USDT", "1d", held, nil)
	for _, want := range []string{"# 行情 BTC/USDT:USDT (1d)", "最新价格: **90**", "- 浮动盈亏: -$20.00 (-10.00%)"} {
		if !strings.Contains(md, want) {
			t.Errorf("live markdown missing %q:\n%s", want, md)
		}
	}

	empty := LiveMarkdown("USD", "BTC/USDT:USDT", "1d", position.Summarize(position.Position{}, d("90")), nil)
	if strings.Contains(empty, "当前持仓") {
		t.Errorf("expected no holding section for an empty position:\n%s", empty)
	}
}

func TestStateLabel_ExhaustedMeansSeriesEnded(t *testing.T) {
	if got := stateLabel(backtest.StateExhausted); got != "序列结束未回本 (exhausted)" {
		t.Errorf("unexpected exhausted label %q", got)
	}
}
