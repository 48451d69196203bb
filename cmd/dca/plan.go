package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dca-sim/internal/app"
	"dca-sim/internal/position"
	"dca-sim/internal/report"
)

type planCmd struct {
	configFlags
	positionFlags
	price  decimalFlag
	sizes  decimalList
	target decimalFlag
	live   bool
	symbol string
}

func (*planCmd) Name() string     { return "plan" }
func (*planCmd) Synopsis() string { return "对比多个加仓数量的效果" }
func (*planCmd) Usage() string {
	return `dca plan -avg <成本> -qty <数量> (-price <价格> | -live [-symbol <交易对>]) -sizes 5,10,20 [-target <目标成本>]

  在同一价格下对比多个候选加仓数量，给出 target 时计算所需数量。
  -live 使用交易所最新价格作为买入价。
`
}

func (c *planCmd) SetFlags(f *flag.FlagSet) {
	c.configFlags.register(f)
	c.positionFlags.register(f)
	f.Var(&c.price, "price", "买入价格")
	f.Var(&c.sizes, "sizes", "逗号分隔的候选数量")
	f.Var(&c.target, "target", "目标平均成本")
	f.BoolVar(&c.live, "live", false, "使用交易所最新价格")
	f.StringVar(&c.symbol, "symbol", "", "交易对，默认使用配置")
}

func (c *planCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.price.set && !c.live {
		fmt.Fprintln(os.Stderr, "必须提供 -price 或 -live")
		return subcommands.ExitUsageError
	}

	cfg, logger, err := c.load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer func() { _ = logger.Sync() }()

	current, err := c.position()
	if err != nil {
		fmt.Fprintf(os.Stderr, "持仓参数无效: %v\n", err)
		return subcommands.ExitUsageError
	}

	price := c.price.value
	if c.live {
		a, err := app.New(cfg, logger, nil)
		if err != nil {
			logger.Error("初始化应用失败", zap.Error(err))
			return subcommands.ExitFailure
		}
		price, err = a.Quote(ctx, c.symbol)
		if err != nil {
			logger.Error("获取最新价格失败", zap.Error(err))
			return subcommands.ExitFailure
		}
	}

	projections, err := position.Ladder(current, price, c.sizes, price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "计算失败: %v\n", err)
		return subcommands.ExitFailure
	}

	targetQty := decimal.Zero
	if c.target.set {
		targetQty, err = position.QuantityForTarget(current, price, c.target.value)
		if errors.Is(err, position.ErrTargetUnreachable) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return subcommands.ExitFailure
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "计算失败: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	md := report.LadderMarkdown(cfg.Report.Currency, position.Summarize(current, price), projections, c.target.value, targetQty)
	printMarkdown(cfg.Report, md)
	return subcommands.ExitSuccess
}
