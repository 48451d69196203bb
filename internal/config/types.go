package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"dca-sim/internal/backtest"
)

// Config 聚合了系统运行所需的全部配置项。
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Exchange  ExchangeConfig  `mapstructure:"exchange"`
	Backtest  BacktestConfig  `mapstructure:"backtest"`
	Indicator IndicatorConfig `mapstructure:"indicator"`
	Report    ReportConfig    `mapstructure:"report"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// ExchangeConfig 描述行情来源。
type ExchangeConfig struct {
	Name       string      `mapstructure:"name"`
	Market     string      `mapstructure:"market"`
	Timeframe  string      `mapstructure:"timeframe"`
	Lookback   int         `mapstructure:"lookback"`
	APIKey     string      `mapstructure:"api_key"`
	APISecret  string      `mapstructure:"api_secret"`
	APIPass    string      `mapstructure:"api_password"`
	UseSandbox bool        `mapstructure:"use_sandbox"`
	Retry      RetryConfig `mapstructure:"retry"`
}

// RetryConfig 统一控制重试机制。
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	MinDelay    time.Duration `mapstructure:"min_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
}

// RuleConfig 为一档回撤加仓规则。
type RuleConfig struct {
	ThresholdPct float64 `mapstructure:"threshold_pct"`
	SizingRatio  float64 `mapstructure:"sizing_ratio"`
}

// BacktestConfig 管理回撤加仓参数。
type BacktestConfig struct {
	Rules            []RuleConfig `mapstructure:"rules"`
	BaselineQuantity float64      `mapstructure:"baseline_quantity"`
	PeakPolicy       string       `mapstructure:"peak_policy"`
}

// IndicatorConfig 控制报告中的均线与 RSI 参数。
type IndicatorConfig struct {
	MAWindows []int `mapstructure:"ma_windows"`
	RSIPeriod int   `mapstructure:"rsi_period"`
}

// ReportConfig 控制报告输出。
type ReportConfig struct {
	Currency string `mapstructure:"currency"`
	Style    string `mapstructure:"style"`
	Width    int    `mapstructure:"width"`
}

// DatabaseConfig 管理行情缓存数据库。
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	InMemory        bool          `mapstructure:"in_memory"`
	CacheMaxAge     time.Duration `mapstructure:"cache_max_age"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Rules 将配置中的规则转换为回测规则。
func (c BacktestConfig) Rules() []backtest.DrawdownRule {
	rules := make([]backtest.DrawdownRule, 0, len(c.Rules))
	for _, r := range c.Rules {
		rules = append(rules, backtest.DrawdownRule{
			ThresholdPct: decimal.NewFromFloat(r.ThresholdPct),
			SizingRatio:  decimal.NewFromFloat(r.SizingRatio),
		})
	}
	return rules
}

// EngineConfig 生成回测引擎配置。
func (c *Config) EngineConfig() (backtest.Config, error) {
	policy, err := backtest.ParsePeakPolicy(c.Backtest.PeakPolicy)
	if err != nil {
		return backtest.Config{}, err
	}
	return backtest.Config{
		Symbol:           c.Exchange.Market,
		Timeframe:        c.Exchange.Timeframe,
		Lookback:         c.Exchange.Lookback,
		Rules:            c.Backtest.Rules(),
		BaselineQuantity: decimal.NewFromFloat(c.Backtest.BaselineQuantity),
		PeakPolicy:       policy,
	}, nil
}

// Validate 对配置进行基本校验。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}
	if c.Exchange.Name == "" {
		err = multierr.Append(err, errors.New("exchange.name 不能为空"))
	}
	if c.Exchange.Market == "" {
		err = multierr.Append(err, errors.New("exchange.market 不能为空"))
	}
	if c.Exchange.Timeframe == "" {
		err = multierr.Append(err, errors.New("exchange.timeframe 不能为空"))
	}
	if c.Exchange.Lookback <= 0 {
		err = multierr.Append(err, errors.New("exchange.lookback 必须大于0"))
	}
	if c.Exchange.Retry.MaxAttempts <= 0 {
		err = multierr.Append(err, errors.New("exchange.retry.max_attempts 必须大于0"))
	}
	if c.Exchange.Retry.MinDelay <= 0 || c.Exchange.Retry.MaxDelay <= 0 {
		err = multierr.Append(err, errors.New("exchange.retry.delay 必须为正"))
	}
	if c.Exchange.Retry.MinDelay > c.Exchange.Retry.MaxDelay {
		err = multierr.Append(err, errors.New("exchange.retry.min_delay 不能大于 max_delay"))
	}
	if ruleErr := backtest.ValidateRules(c.Backtest.Rules()); ruleErr != nil {
		err = multierr.Append(err, ruleErr)
	}
	if c.Backtest.BaselineQuantity < 0 {
		err = multierr.Append(err, errors.New("backtest.baseline_quantity 不能为负"))
	}
	if _, policyErr := backtest.ParsePeakPolicy(c.Backtest.PeakPolicy); policyErr != nil {
		err = multierr.Append(err, policyErr)
	}
	for _, w := range c.Indicator.MAWindows {
		if w < 2 {
			err = multierr.Append(err, fmt.Errorf("indicator.ma_windows 中的窗口 %d 必须不小于2", w))
		}
	}
	if c.Indicator.RSIPeriod < 2 {
		err = multierr.Append(err, errors.New("indicator.rsi_period 必须不小于2"))
	}
	if len(strings.TrimSpace(c.Report.Currency)) != 3 {
		err = multierr.Append(err, errors.New("report.currency 必须为三位货币代码"))
	}
	if c.Database.Path == "" && !c.Database.InMemory {
		err = multierr.Append(err, errors.New("database.path 不能为空"))
	}
	if c.Database.MaxOpenConns <= 0 {
		err = multierr.Append(err, errors.New("database.max_open_conns 必须大于0"))
	}
	if c.Database.MaxIdleConns < 0 {
		err = multierr.Append(err, errors.New("database.max_idle_conns 不能为负"))
	}
	if c.Database.ConnMaxLifetime < 0 {
		err = multierr.Append(err, errors.New("database.conn_max_lifetime 不能为负"))
	}
	if c.Database.CacheMaxAge < 0 {
		err = multierr.Append(err, errors.New("database.cache_max_age 不能为负"))
	}
	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
