package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dca-sim/internal/backtest"
	"dca-sim/internal/config"
	"dca-sim/internal/exchange"
	"dca-sim/internal/indicator"
	"dca-sim/internal/position"
	"dca-sim/internal/report"
	"dca-sim/internal/store"
)

type snapshotter interface {
	Snapshot(ctx context.Context, req exchange.SnapshotRequest) (exchange.MarketSnapshot, error)
}

// App 聚合核心依赖，串联行情、缓存、回测与报告。
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store

	series   backtest.SeriesProvider
	quotes   backtest.QuoteProvider
	market   snapshotter
	accounts *exchange.AccountService
	engine   *backtest.Engine
}

// BacktestReport 为一次回测及其指标背景。
type BacktestReport struct {
	Initial position.Position
	Outcome backtest.Outcome
	Overlay *indicator.Result
}

// LiveReport 为最新行情下的持仓估值与指标背景。
type LiveReport struct {
	Snapshot exchange.MarketSnapshot
	Summary  position.Summary
	Overlay  *indicator.Result
}

// New 创建 App 实例：交易所行情经由 SQLite 缓存后供回测引擎使用。
// store 为 nil 时不启用缓存。
func New(cfg *config.Config, logger *zap.Logger, st *store.Store) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := exchange.NewClient(cfg.Exchange, logger.Named("exchange"))
	if err != nil {
		return nil, err
	}
	market := exchange.NewMarketDataService(client, logger.Named("market"))

	var series backtest.SeriesProvider = market
	if st != nil {
		cache, err := store.NewSeriesCache(st.DB())
		if err != nil {
			return nil, err
		}
		cached, err := store.NewCachedProvider(cache, market, cfg.Database.CacheMaxAge, logger.Named("cache"))
		if err != nil {
			return nil, err
		}
		series = cached
	}

	a, err := newApp(cfg, logger, st, series, market, market)
	if err != nil {
		return nil, err
	}
	a.accounts = exchange.NewAccountService(client, logger.Named("account"))
	return a, nil
}

func newApp(cfg *config.Config, logger *zap.Logger, st *store.Store, series backtest.SeriesProvider, quotes backtest.QuoteProvider, market snapshotter) (*App, error) {
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}
	engine, err := backtest.NewEngine(engineCfg, series, logger.Named("backtest"))
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		logger: logger,
		store:  st,
		series: series,
		quotes: quotes,
		market: market,
		engine: engine,
	}, nil
}

// Backtest 对 symbol 执行回测，symbol 为空时使用配置中的交易对。
func (a *App) Backtest(ctx context.Context, symbol string, initial position.Position) (BacktestReport, error) {
	a.logger.Info("开始回测",
		zap.String("symbol", a.symbol(symbol)),
		zap.Stringer("average_cost", initial.AverageCost),
		zap.Stringer("quantity", initial.Quantity),
	)

	outcome, err := a.engine.Run(ctx, backtest.Request{Symbol: symbol, Initial: initial})
	if err != nil {
		return BacktestReport{}, err
	}

	rep := BacktestReport{Initial: initial, Outcome: outcome}
	if len(outcome.Series) > 0 {
		overlay, err := indicator.Overlay(outcome.Series, a.cfg.Indicator.MAWindows, a.cfg.Indicator.RSIPeriod)
		if err != nil {
			a.logger.Warn("计算指标背景失败", zap.String("symbol", outcome.Symbol), zap.Error(err))
		} else {
			rep.Overlay = &overlay
		}
	}
	return rep, nil
}

// Quote 返回 symbol 的最新价格，symbol 为空时使用配置中的交易对。
func (a *App) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if a.quotes == nil {
		return decimal.Zero, fmt.Errorf("app: 未配置报价来源")
	}
	symbol = a.symbol(symbol)
	price, err := a.quotes.LastPrice(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	a.logger.Debug("获取最新价格", zap.String("symbol", symbol), zap.Stringer("price", price))
	return price, nil
}

// Live 并发拉取价格序列与最新价格，在最新价下评估 current。
func (a *App) Live(ctx context.Context, symbol string, current position.Position) (LiveReport, error) {
	if a.market == nil {
		return LiveReport{}, fmt.Errorf("app: 未配置行情快照来源")
	}

	req := exchange.DefaultSnapshotRequest()
	req.Symbol = a.symbol(symbol)
	if a.cfg.Exchange.Timeframe != "" {
		req.Timeframe = a.cfg.Exchange.Timeframe
	}
	if a.cfg.Exchange.Lookback > 0 {
		req.Limit = a.cfg.Exchange.Lookback
	}

	snapshot, err := a.market.Snapshot(ctx, req)
	if err != nil {
		return LiveReport{}, err
	}

	rep := LiveReport{
		Snapshot: snapshot,
		Summary:  position.Summarize(current, snapshot.LastPrice),
	}
	if len(snapshot.Series) > 0 {
		overlay, err := indicator.Overlay(snapshot.Series, a.cfg.Indicator.MAWindows, a.cfg.Indicator.RSIPeriod)
		if err != nil {
			a.logger.Warn("计算指标背景失败", zap.String("symbol", snapshot.Symbol), zap.Error(err))
		} else {
			rep.Overlay = &overlay
		}
	}

	a.logger.Info("最新行情评估完成",
		zap.String("symbol", snapshot.Symbol),
		zap.Stringer("last_price", snapshot.LastPrice),
		zap.Stringer("return_pct", rep.Summary.UnrealizedPnlPercent),
	)
	return rep, nil
}

// Markdown 生成最新行情报告。
func (r LiveReport) Markdown(currency string) string {
	return report.LiveMarkdown(currency, r.Snapshot.Symbol, r.Snapshot.Timeframe, r.Summary, r.Overlay)
}

// ImportPosition 从交易所账户读取 symbol 的当前持仓。
func (a *App) ImportPosition(ctx context.Context, symbol string) (position.Position, error) {
	if a.accounts == nil {
		return position.Position{}, fmt.Errorf("app: 未配置账户来源")
	}
	return a.accounts.ImportPosition(ctx, a.symbol(symbol))
}

// Markdown 生成回测报告。
func (r BacktestReport) Markdown(currency string) string {
	return report.BacktestMarkdown(currency, r.Initial, r.Outcome, r.Overlay)
}

func (a *App) symbol(symbol string) string {
	if symbol == "" {
		return a.cfg.Exchange.Market
	}
	return symbol
}
