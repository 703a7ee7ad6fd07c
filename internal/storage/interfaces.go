package storage

import (
	"context"

	"poolValuator/internal/model"
)

// PoolStore loads and saves pools. Load returns ErrNotFound for unknown ids.
type PoolStore interface {
	LoadPool(ctx context.Context, id string) (*model.Pool, error)
	SavePool(ctx context.Context, pool *model.Pool) error
}

// PoolTokenStore loads and saves pool constituents.
type PoolTokenStore interface {
	LoadPoolToken(ctx context.Context, poolID, token string) (*model.PoolToken, error)
	SavePoolToken(ctx context.Context, token *model.PoolToken) error
}

// TokenPriceStore loads and saves last resolved token prices.
type TokenPriceStore interface {
	LoadTokenPrice(ctx context.Context, id string) (*model.TokenPrice, error)
	SaveTokenPrice(ctx context.Context, price *model.TokenPrice) error
}

// PoolPriceStore loads and upserts pool snapshots by id.
type PoolPriceStore interface {
	LoadPoolPrice(ctx context.Context, id string) (*model.PoolPrice, error)
	SavePoolPrice(ctx context.Context, price *model.PoolPrice) error
}

// AggregateStore loads and saves the singleton liquidity aggregate.
type AggregateStore interface {
	LoadAggregate(ctx context.Context) (*model.LiquidityAggregate, error)
	SaveAggregate(ctx context.Context, agg *model.LiquidityAggregate) error
}

// EntityStore is the full entity store consumed by the valuator.
// Writes are independent and idempotent by identity.
type EntityStore interface {
	PoolStore
	PoolTokenStore
	TokenPriceStore
	PoolPriceStore
	AggregateStore
}

// SnapshotSink receives written pool snapshots for export.
type SnapshotSink interface {
	PutPoolPrices(prices []model.PoolPrice) error
}
