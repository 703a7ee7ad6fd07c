package model

import "github.com/shopspring/decimal"

// TokenPrice is the last resolved unit price of a token, shared across pools.
// A zero price means the last resolution failed.
type TokenPrice struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Decimals    uint8           `json:"decimals"`
	Price       decimal.Decimal `json:"price"`
	PoolTokenID string          `json:"pool_token_id"`
}
