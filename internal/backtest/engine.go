package backtest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dca-sim/internal/position"
)

// Request 描述一次回测请求，Symbol 为空时使用配置中的交易对。
type Request struct {
	Symbol  string
	Initial position.Position
}

// Outcome 汇总回测所用的序列与结果。
type Outcome struct {
	Symbol    string
	Timeframe string
	Series    []PricePoint
	Result    Result
}

// Engine 串联价格数据源与回撤加仓模拟。
type Engine struct {
	cfg      Config
	provider SeriesProvider
	logger   *zap.Logger
}

// NewEngine 构建回测引擎。
func NewEngine(cfg Config, provider SeriesProvider, logger *zap.Logger) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("backtest: provider 不能为空")
	}
	if err := ValidateRules(cfg.Rules); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		cfg:      cfg.normalize(),
		provider: provider,
		logger:   logger,
	}, nil
}

// Config 返回引擎使用的配置。
func (e *Engine) Config() Config {
	return e.cfg
}

// Run 拉取价格序列并执行完整回测流程。
func (e *Engine) Run(ctx context.Context, req Request) (Outcome, error) {
	symbol := req.Symbol
	if symbol == "" {
		symbol = e.cfg.Symbol
	}
	if symbol == "" {
		return Outcome{}, fmt.Errorf("backtest: symbol 不能为空")
	}

	series, err := e.provider.PriceSeries(ctx, symbol, e.cfg.Timeframe, e.cfg.Lookback)
	if err != nil {
		return Outcome{}, fmt.Errorf("backtest: 获取 %s 价格序列失败: %w", symbol, err)
	}

	result, err := Run(series, req.Initial, e.cfg.Rules, e.cfg.BaselineQuantity, WithPeakPolicy(e.cfg.PeakPolicy))
	if err != nil {
		e.logger.Warn("回测输入不合法", zap.String("symbol", symbol), zap.Error(err))
		return Outcome{}, err
	}

	fields := []zap.Field{
		zap.String("symbol", symbol),
		zap.String("timeframe", e.cfg.Timeframe),
		zap.String("state", string(result.State)),
		zap.Int("points", len(series)),
		zap.Int("steps", result.Steps),
		zap.Int("triggers", result.TriggerCount),
		zap.Stringer("final_average_cost", result.FinalAverageCost),
		zap.Stringer("final_return_pct", result.FinalReturnPct),
		zap.Stringer("peak_policy", e.cfg.PeakPolicy),
	}
	if result.EscapeTimestamp != nil {
		fields = append(fields, zap.Time("escape_ts", *result.EscapeTimestamp))
	}
	e.logger.Info("回测完成", fields...)

	return Outcome{
		Symbol:    symbol,
		Timeframe: e.cfg.Timeframe,
		Series:    series,
		Result:    result,
	}, nil
}
