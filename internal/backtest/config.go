package backtest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PeakPolicy 决定触发加仓后回撤参考点如何变化。
type PeakPolicy int

const (
	// ResetOnTrade 加仓后以成交价作为新的参考高点。
	ResetOnTrade PeakPolicy = iota
	// KeepPeak 加仓后继续沿用加仓前的历史高点。
	KeepPeak
)

func (p PeakPolicy) String() string {
	switch p {
	case ResetOnTrade:
		return "reset"
	case KeepPeak:
		return "keep"
	default:
		return "unknown"
	}
}

// ParsePeakPolicy 解析 "reset" / "keep"，空字符串视为 reset。
func ParsePeakPolicy(s string) (PeakPolicy, error) {
	switch s {
	case "", "reset":
		return ResetOnTrade, nil
	case "keep":
		return KeepPeak, nil
	default:
		return 0, fmt.Errorf("backtest: 未知的 peak policy: %q", s)
	}
}

// Config 定义回测参数。
type Config struct {
	Symbol           string          // 交易对名称
	Timeframe        string          // K线周期
	Lookback         int             // 回看K线数量
	Rules            []DrawdownRule  // 按顺序消费的回撤规则
	BaselineQuantity decimal.Decimal // 空仓时加仓数量的基准
	PeakPolicy       PeakPolicy
}

func (c *Config) normalize() Config {
	cfg := *c
	if cfg.Timeframe == "" {
		cfg.Timeframe = "1d"
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 365
	}
	return cfg
}

// Option 调整单次回测的行为。
type Option func(*options)

type options struct {
	peakPolicy PeakPolicy
}

// WithPeakPolicy 指定加仓后的参考高点策略。
func WithPeakPolicy(policy PeakPolicy) Option {
	return func(o *options) {
		o.peakPolicy = policy
	}
}
