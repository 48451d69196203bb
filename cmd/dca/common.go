package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dca-sim/internal/config"
	"dca-sim/internal/log"
	"dca-sim/internal/position"
	"dca-sim/internal/report"
)

// decimalFlag 以精确小数解析命令行参数。
type decimalFlag struct {
	value decimal.Decimal
	set   bool
}

func (f *decimalFlag) String() string {
	if f == nil || !f.set {
		return ""
	}
	return f.value.String()
}

func (f *decimalFlag) Set(s string) error {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("无效的数值 %q", s)
	}
	f.value = v
	f.set = true
	return nil
}

// decimalList 解析逗号分隔的数量列表，例如 5,10,20。
type decimalList []decimal.Decimal

func (l *decimalList) String() string {
	parts := make([]string, 0, len(*l))
	for _, v := range *l {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, ",")
}

func (l *decimalList) Set(s string) error {
	*l = (*l)[:0]
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := decimal.NewFromString(part)
		if err != nil {
			return fmt.Errorf("无效的数量 %q", part)
		}
		*l = append(*l, v)
	}
	return nil
}

// positionFlags 为持仓相关的公共参数。
type positionFlags struct {
	avg decimalFlag
	qty decimalFlag
}

func (p *positionFlags) register(f *flag.FlagSet) {
	f.Var(&p.avg, "avg", "当前平均成本")
	f.Var(&p.qty, "qty", "当前持仓数量")
}

func (p *positionFlags) position() (position.Position, error) {
	return position.NewPosition(p.avg.value, p.qty.value)
}

// configFlags 负责加载配置与日志。
type configFlags struct {
	path string
}

func (c *configFlags) register(f *flag.FlagSet) {
	f.StringVar(&c.path, "config", "", "配置文件路径，默认使用 configs/config.yaml")
}

func (c *configFlags) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadOrDefault(c.path)
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return cfg, logger, nil
}

func printMarkdown(cfg config.ReportConfig, md string) {
	out, err := report.NewRenderer(cfg).Render(md)
	if err != nil {
		fmt.Fprintf(os.Stderr, "渲染报告失败: %v\n", err)
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
