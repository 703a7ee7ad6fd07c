package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// PoolPrice is a timestamped snapshot of a pool's share price and liquidity.
type PoolPrice struct {
	ID          string          `json:"id"`
	PoolID      string          `json:"pool_id"`
	Price       decimal.Decimal `json:"price"`
	TotalSupply decimal.Decimal `json:"total_supply"`
	Liquidity   decimal.Decimal `json:"liquidity"`
	BlockNumber uint64          `json:"block_number"`
	Timestamp   int64           `json:"timestamp"`
}

// PoolPriceID builds the snapshot identity poolId-timestamp.
func PoolPriceID(poolID string, timestamp int64) string {
	return poolID + "-" + strconv.FormatInt(timestamp, 10)
}
