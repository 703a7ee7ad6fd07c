package liquidity

import "github.com/shopspring/decimal"

// ApplyDelta replaces a pool's previous contribution to total with its new one.
// before must be the pool's liquidity as last applied to total.
func ApplyDelta(total, before, after decimal.Decimal) decimal.Decimal {
	return total.Sub(before).Add(after)
}
