package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"dca-sim/internal/position"
)

// ErrShortPosition 表示交易所上的持仓为空头，无法作为加仓模拟的起点。
var ErrShortPosition = errors.New("exchange: 仅支持多头持仓")

type positionFetcher interface {
	FetchPositions(ctx context.Context) ([]ccxt.Position, error)
}

// FetchPositions 获取账户当前所有合约持仓，需要配置 API 密钥。
func (c *Client) FetchPositions(ctx context.Context) ([]ccxt.Position, error) {
	if c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return nil, errors.New("exchange: 读取持仓需要配置 api_key 与 api_secret")
	}

	var raw []ccxt.Position
	err := c.callWithRetry(ctx, "fetch_positions", func() error {
		if err := c.ensureMarketsLoaded(ctx); err != nil {
			return err
		}
		result, err := c.exchange.FetchPositions()
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// AccountService 将交易所持仓转换为平均成本与数量。
type AccountService struct {
	client positionFetcher
	logger *zap.Logger
}

// NewAccountService 创建账户服务。
func NewAccountService(client positionFetcher, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{client: client, logger: logger}
}

// ImportPosition 读取 symbol 的多头持仓，没有持仓时返回空仓。
func (s *AccountService) ImportPosition(ctx context.Context, symbol string) (position.Position, error) {
	rawPositions, err := s.client.FetchPositions(ctx)
	if err != nil {
		return position.Position{}, fmt.Errorf("exchange: 获取持仓失败: %w", err)
	}

	for _, rawPos := range rawPositions {
		if !strings.EqualFold(derefString(rawPos.Symbol), symbol) {
			continue
		}

		size := derefFloat(rawPos.Contracts)
		entry := derefFloat(rawPos.EntryPrice)
		if rawPos.Info != nil {
			if size == 0 {
				size = parseNumeric(rawPos.Info["positionAmt"])
			}
			if entry == 0 {
				entry = parseNumeric(rawPos.Info["entryPrice"])
			}
		}
		if size == 0 {
			continue
		}

		side := strings.ToUpper(strings.TrimSpace(derefString(rawPos.Side)))
		if side == "SHORT" || size < 0 {
			return position.Position{}, fmt.Errorf("%w: %s", ErrShortPosition, symbol)
		}

		p, err := position.NewPosition(decimal.NewFromFloat(entry), decimal.NewFromFloat(size))
		if err != nil {
			return position.Position{}, err
		}

		s.logger.Info("已导入交易所持仓",
			zap.String("symbol", symbol),
			zap.Stringer("average_cost", p.AverageCost),
			zap.Stringer("quantity", p.Quantity),
		)
		return p, nil
	}

	s.logger.Info("交易所无该交易对持仓", zap.String("symbol", symbol))
	return position.Position{}, nil
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func parseNumeric(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case *float64:
		if v != nil {
			return *v
		}
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return 0
}
