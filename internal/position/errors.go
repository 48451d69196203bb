package position

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidPositionError 表示持仓或成交的输入不合法（负数量、负成本等）。
type InvalidPositionError struct {
	Field  string
	Value  decimal.Decimal
	Reason string
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("position: %s=%s %s", e.Field, e.Value.String(), e.Reason)
}
