package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"dca-sim/internal/position"
	"dca-sim/internal/report"
)

type blendCmd struct {
	configFlags
	positionFlags
	price  decimalFlag
	buy    decimalFlag
	market decimalFlag
}

func (*blendCmd) Name() string     { return "blend" }
func (*blendCmd) Synopsis() string { return "计算一笔加仓后的平均成本" }
func (*blendCmd) Usage() string {
	return `dca blend -avg <成本> -qty <数量> -price <价格> -buy <数量> [-market <市价>]

  计算按 price 买入 buy 数量后的加权平均成本，给出 market 时附带估值。
`
}

func (c *blendCmd) SetFlags(f *flag.FlagSet) {
	c.configFlags.register(f)
	c.positionFlags.register(f)
	f.Var(&c.price, "price", "买入价格")
	f.Var(&c.buy, "buy", "买入数量")
	f.Var(&c.market, "market", "用于估值的市场价格")
}

func (c *blendCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.price.set || !c.buy.set {
		fmt.Fprintln(os.Stderr, "必须提供 -price 与 -buy")
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
	trade, err := position.NewTrade(c.price.value, c.buy.value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "成交参数无效: %v\n", err)
		return subcommands.ExitUsageError
	}

	projection, err := position.Project(current, trade, c.market.value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "计算失败: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(cfg.Report, report.ProjectionMarkdown(cfg.Report.Currency, projection))
	return subcommands.ExitSuccess
}
