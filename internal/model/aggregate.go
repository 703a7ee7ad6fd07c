package model

import "github.com/shopspring/decimal"

// AggregateID is the key of the singleton liquidity aggregate.
const AggregateID = "1"

// LiquidityAggregate holds the running liquidity total over all pools.
type LiquidityAggregate struct {
	ID             string          `json:"id"`
	TotalLiquidity decimal.Decimal `json:"total_liquidity"`
}

// NewLiquidityAggregate returns an empty aggregate with the singleton key.
func NewLiquidityAggregate() *LiquidityAggregate {
	return &LiquidityAggregate{ID: AggregateID, TotalLiquidity: decimal.Zero}
}
