package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"dca-sim/internal/app"
)

type quoteCmd struct {
	configFlags
	positionFlags
	symbol string
	live   bool
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "查询最新行情并评估当前持仓" }
func (*quoteCmd) Usage() string {
	return `dca quote [-symbol <交易对>] [-avg <成本> -qty <数量> | -from-exchange]
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	c.configFlags.register(f)
	c.positionFlags.register(f)
	f.StringVar(&c.symbol, "symbol", "", "交易对，默认使用配置")
	f.BoolVar(&c.live, "from-exchange", false, "从交易所账户读取当前持仓")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, logger, err := c.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg, logger, nil)
	if err != nil {
		logger.Error("初始化应用失败", zap.Error(err))
		return subcommands.ExitFailure
	}

	current, err := c.position()
	if err != nil {
		fmt.Fprintf(os.Stderr, "持仓参数无效: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.live {
		current, err = a.ImportPosition(ctx, c.symbol)
		if err != nil {
			logger.Error("读取交易所持仓失败", zap.Error(err))
			return subcommands.ExitFailure
		}
	}

	rep, err := a.Live(ctx, c.symbol, current)
	if err != nil {
		logger.Error("获取最新行情失败", zap.Error(err))
		return subcommands.ExitFailure
	}

	printMarkdown(cfg.Report, rep.Markdown(cfg.Report.Currency))
	return subcommands.ExitSuccess
}
