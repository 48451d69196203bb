package position

import "github.com/shopspring/decimal"

// Summary 是持仓在某个市场价下的估值快照。
type Summary struct {
	AverageCost          decimal.Decimal `json:"average_cost"`
	Quantity             decimal.Decimal `json:"quantity"`
	CostBasis            decimal.Decimal `json:"cost_basis"`
	MarketPrice          decimal.Decimal `json:"market_price"`
	MarketValue          decimal.Decimal `json:"market_value"`
	UnrealizedPnl        decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPnlPercent decimal.Decimal `json:"unrealized_pnl_percent"`
}

// Summarize 计算持仓在 marketPrice 下的成本、市值与浮动盈亏。
func Summarize(p Position, marketPrice decimal.Decimal) Summary {
	basis := p.CostBasis()
	value := p.MarketValue(marketPrice)
	return Summary{
		AverageCost:          p.AverageCost,
		Quantity:             p.Quantity,
		CostBasis:            basis,
		MarketPrice:          marketPrice,
		MarketValue:          value,
		UnrealizedPnl:        value.Sub(basis),
		UnrealizedPnlPercent: EvaluateReturn(p, marketPrice),
	}
}

// Position 还原摘要对应的持仓。
func (s Summary) Position() Position {
	return Position{AverageCost: s.AverageCost, Quantity: s.Quantity}
}
