package model

import "github.com/shopspring/decimal"

// Pool is a weighted AMM pool as tracked by the valuator.
type Pool struct {
	ID                  string          `json:"id"`
	TokensList          []string        `json:"tokens_list"`
	TokensCount         int             `json:"tokens_count"`
	PublicSwap          bool            `json:"public_swap"`
	Liquidity           decimal.Decimal `json:"liquidity"`
	TotalShares         decimal.Decimal `json:"total_shares"`
	LastPoolPriceUpdate int64           `json:"last_pool_price_update"`
	PoolPriceCount      uint64          `json:"pool_price_count"`
}

// Tradable reports whether the pool can contribute liquidity at all.
func (p *Pool) Tradable() bool {
	return p != nil && len(p.TokensList) > 0 && p.TokensCount >= 2 && p.PublicSwap
}

// PoolToken is a constituent token of exactly one pool.
type PoolToken struct {
	PoolID       string          `json:"pool_id"`
	Address      string          `json:"address"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Decimals     uint8           `json:"decimals"`
	Balance      decimal.Decimal `json:"balance"`
	DenormWeight decimal.Decimal `json:"denorm_weight"`
}

// ID returns the composite identity poolId-tokenAddress.
func (t PoolToken) ID() string {
	return PoolTokenID(t.PoolID, t.Address)
}

// PoolTokenID builds the identity of a pool token.
func PoolTokenID(poolID, token string) string {
	return poolID + "-" + token
}
