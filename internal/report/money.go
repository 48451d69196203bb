package report

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// formatMoney 按币种的最小单位取整后格式化金额，未知币种退回普通小数。
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// signedMoney 为正数补上 "+"，零值显示为 "-"。
func signedMoney(amount decimal.Decimal, currency string) string {
	if amount.IsZero() {
		return "-"
	}
	if amount.IsPositive() {
		return "+" + formatMoney(amount, currency)
	}
	return formatMoney(amount, currency)
}

func formatPrice(v decimal.Decimal) string {
	return v.Round(8).String()
}

func formatPercent(v decimal.Decimal) string {
	return v.StringFixed(2) + "%"
}
