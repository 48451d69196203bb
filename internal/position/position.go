package position

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Position 描述当前持仓：加权平均成本与数量。
// 数量为0时平均成本约定为0。所有运算都返回新的 Position，不原地修改。
type Position struct {
	AverageCost decimal.Decimal `json:"average_cost"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// Trade 表示一笔以固定价格买入的数量。
type Trade struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewPosition 校验并构造 Position。
func NewPosition(averageCost, quantity decimal.Decimal) (Position, error) {
	p := Position{AverageCost: averageCost, Quantity: quantity}
	if err := p.Validate(); err != nil {
		return Position{}, err
	}
	if quantity.IsZero() {
		p.AverageCost = decimal.Zero
	}
	return p, nil
}

// NewTrade 校验并构造 Trade。
func NewTrade(price, quantity decimal.Decimal) (Trade, error) {
	t := Trade{Price: price, Quantity: quantity}
	if err := t.Validate(); err != nil {
		return Trade{}, err
	}
	return t, nil
}

// Validate 检查平均成本与数量均不为负。
func (p Position) Validate() error {
	if p.AverageCost.IsNegative() {
		return &InvalidPositionError{Field: "average_cost", Value: p.AverageCost, Reason: "不能为负"}
	}
	if p.Quantity.IsNegative() {
		return &InvalidPositionError{Field: "quantity", Value: p.Quantity, Reason: "不能为负"}
	}
	return nil
}

// Validate 检查成交价与数量均不为负。
func (t Trade) Validate() error {
	if t.Price.IsNegative() {
		return &InvalidPositionError{Field: "trade.price", Value: t.Price, Reason: "不能为负"}
	}
	if t.Quantity.IsNegative() {
		return &InvalidPositionError{Field: "trade.quantity", Value: t.Quantity, Reason: "不能为负"}
	}
	return nil
}

// IsEmpty 判断是否为空仓。
func (p Position) IsEmpty() bool {
	return !p.Quantity.IsPositive()
}

// CostBasis 返回持仓总成本。
func (p Position) CostBasis() decimal.Decimal {
	return p.AverageCost.Mul(p.Quantity)
}

// MarketValue 返回按给定价格计算的持仓市值。
func (p Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(p.Quantity)
}

// Equal 判断两个持仓在数值上相等。
func (p Position) Equal(o Position) bool {
	return p.AverageCost.Equal(o.AverageCost) && p.Quantity.Equal(o.Quantity)
}

func (p Position) String() string {
	return fmt.Sprintf("%s @ %s", p.Quantity.String(), p.AverageCost.String())
}

// Cost 返回成交金额。
func (t Trade) Cost() decimal.Decimal {
	return t.Price.Mul(t.Quantity)
}

// Blend 将一笔成交并入持仓，返回新的加权平均成本与数量。
// 合并后数量为0时结果为 {0, 0}。输入应已通过 Validate。
func Blend(p Position, t Trade) Position {
	quantity := p.Quantity.Add(t.Quantity)
	if quantity.IsZero() {
		return Position{AverageCost: decimal.Zero, Quantity: decimal.Zero}
	}
	basis := p.CostBasis().Add(t.Cost())
	return Position{
		AverageCost: basis.Div(quantity),
		Quantity:    quantity,
	}
}

// BlendAll 按顺序依次合并多笔成交。
func BlendAll(p Position, trades ...Trade) Position {
	for _, t := range trades {
		p = Blend(p, t)
	}
	return p
}

// EvaluateReturn 返回相对平均成本的收益率（百分比）。平均成本为0时返回0。
func EvaluateReturn(p Position, marketPrice decimal.Decimal) decimal.Decimal {
	if !p.AverageCost.IsPositive() {
		return decimal.Zero
	}
	return marketPrice.Sub(p.AverageCost).Div(p.AverageCost).Mul(hundred)
}
