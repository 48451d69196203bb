package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"dca-sim/internal/app"
	"dca-sim/internal/store"
)

type backtestCmd struct {
	configFlags
	positionFlags
	symbol  string
	asJSON  bool
	noCache bool
	live    bool
}

func (*backtestCmd) Name() string     { return "backtest" }
func (*backtestCmd) Synopsis() string { return "用历史行情回测回撤加仓规则" }
func (*backtestCmd) Usage() string {
	return `dca backtest [-config <路径>] -avg <成本> -qty <数量> [-symbol <交易对>] [-json] [-no-cache] [-from-exchange]

  拉取历史收盘价，按配置的回撤规则模拟加仓，直到回本或规则用尽。
`
}

func (c *backtestCmd) SetFlags(f *flag.FlagSet) {
	c.configFlags.register(f)
	c.positionFlags.register(f)
	f.StringVar(&c.symbol, "symbol", "", "交易对，默认使用配置")
	f.BoolVar(&c.asJSON, "json", false, "以 JSON 输出结果")
	f.BoolVar(&c.noCache, "no-cache", false, "不使用本地行情缓存")
	f.BoolVar(&c.live, "from-exchange", false, "从交易所账户读取初始持仓，忽略 -avg 与 -qty")
}

func (c *backtestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := c.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer func() { _ = logger.Sync() }()

	initial, err := c.position()
	if err != nil {
		fmt.Fprintf(os.Stderr, "持仓参数无效: %v\n", err)
		return subcommands.ExitUsageError
	}

	var sqliteStore *store.Store
	if !c.noCache {
		sqliteStore, err = store.NewSQLite(cfg.Database)
		if err != nil {
			logger.Error("初始化数据库失败", zap.Error(err))
			return subcommands.ExitFailure
		}
		defer func() {
			if closeErr := sqliteStore.Close(); closeErr != nil {
				logger.Warn("关闭数据库失败", zap.Error(closeErr))
			}
		}()
	}

	a, err := app.New(cfg, logger, sqliteStore)
	if err != nil {
		logger.Error("初始化应用失败", zap.Error(err))
		return subcommands.ExitFailure
	}

	if c.live {
		initial, err = a.ImportPosition(ctx, c.symbol)
		if err != nil {
			logger.Error("读取交易所持仓失败", zap.Error(err))
			return subcommands.ExitFailure
		}
	}

	rep, err := a.Backtest(ctx, c.symbol, initial)
	if err != nil {
		logger.Error("回测失败", zap.Error(err))
		return subcommands.ExitFailure
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep.Outcome.Result); err != nil {
			logger.Error("输出结果失败", zap.Error(err))
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(cfg.Report, rep.Markdown(cfg.Report.Currency))
	return subcommands.ExitSuccess
}
