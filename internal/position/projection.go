package position

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrTargetUnreachable 表示在给定价格下无法把平均成本拉到目标值。
var ErrTargetUnreachable = errors.New("position: 目标平均成本不可达")

// Projection 描述追加买入前后的持仓对比。
type Projection struct {
	Trade           Trade           `json:"trade"`
	Before          Summary         `json:"before"`
	After           Summary         `json:"after"`
	AverageCostDiff decimal.Decimal `json:"average_cost_diff"`
	CapitalAdded    decimal.Decimal `json:"capital_added"`
}

// Project 计算追加一笔成交后的持仓，并在 marketPrice 下估值。
func Project(p Position, t Trade, marketPrice decimal.Decimal) (Projection, error) {
	if err := p.Validate(); err != nil {
		return Projection{}, err
	}
	if err := t.Validate(); err != nil {
		return Projection{}, err
	}
	if marketPrice.IsNegative() {
		return Projection{}, &InvalidPositionError{Field: "market_price", Value: marketPrice, Reason: "不能为负"}
	}

	after := Blend(p, t)
	return Projection{
		Trade:           t,
		Before:          Summarize(p, marketPrice),
		After:           Summarize(after, marketPrice),
		AverageCostDiff: after.AverageCost.Sub(p.AverageCost),
		CapitalAdded:    t.Cost(),
	}, nil
}

// Ladder 对同一价格下的多个候选数量分别计算 Projection，顺序与 quantities 一致。
func Ladder(p Position, price decimal.Decimal, quantities []decimal.Decimal, marketPrice decimal.Decimal) ([]Projection, error) {
	projections := make([]Projection, 0, len(quantities))
	for _, qty := range quantities {
		t, err := NewTrade(price, qty)
		if err != nil {
			return nil, err
		}
		proj, err := Project(p, t, marketPrice)
		if err != nil {
			return nil, err
		}
		projections = append(projections, proj)
	}
	return projections, nil
}

// QuantityForTarget 返回在 price 买入多少数量可使平均成本降到 target。
// 需要满足 price < target < 当前平均成本。
func QuantityForTarget(p Position, price, target decimal.Decimal) (decimal.Decimal, error) {
	if err := p.Validate(); err != nil {
		return decimal.Zero, err
	}
	if p.IsEmpty() {
		return decimal.Zero, fmt.Errorf("%w: 空仓没有平均成本", ErrTargetUnreachable)
	}
	if !price.IsPositive() {
		return decimal.Zero, &InvalidPositionError{Field: "price", Value: price, Reason: "必须为正"}
	}
	if target.Equal(p.AverageCost) {
		return decimal.Zero, nil
	}
	if !price.LessThan(target) || !target.LessThan(p.AverageCost) {
		return decimal.Zero, fmt.Errorf("%w: 需要 price(%s) < target(%s) < average_cost(%s)",
			ErrTargetUnreachable, price, target, p.AverageCost)
	}

	// q*(avg-target) = x*(target-price)
	return p.Quantity.Mul(p.AverageCost.Sub(target)).Div(target.Sub(price)), nil
}
