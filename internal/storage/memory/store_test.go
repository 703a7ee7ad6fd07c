package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolValuator/internal/model"
	"poolValuator/internal/storage"
)

func TestStore_PoolCopyOnLoad(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	pool := &model.Pool{ID: "0xpool", TokensList: []string{"0xa", "0xb"}, TokensCount: 2}
	require.NoError(t, s.SavePool(ctx, pool))

	pool.TokensList[0] = "0xmutated"

	loaded, err := s.LoadPool(ctx, "0xpool")
	require.NoError(t, err)
	assert.Equal(t, []string{"0xa", "0xb"}, loaded.TokensList)

	loaded.TokensCount = 99
	again, err := s.LoadPool(ctx, "0xpool")
	require.NoError(t, err)
	assert.Equal(t, 2, again.TokensCount)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.LoadPool(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.LoadPoolToken(ctx, "missing", "0xa")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.LoadTokenPrice(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.LoadPoolPrice(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.LoadAggregate(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_InvalidInput(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	assert.ErrorIs(t, s.SavePool(ctx, &model.Pool{}), storage.ErrInvalidInput)
	assert.ErrorIs(t, s.SavePoolToken(ctx, &model.PoolToken{PoolID: "p"}), storage.ErrInvalidInput)
	assert.ErrorIs(t, s.SaveTokenPrice(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, s.SavePoolPrice(ctx, &model.PoolPrice{}), storage.ErrInvalidInput)
	assert.ErrorIs(t, s.SaveAggregate(ctx, nil), storage.ErrInvalidInput)
}

func TestStore_PoolPriceUpsertAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.SavePoolPrice(ctx, &model.PoolPrice{ID: "p-7200", PoolID: "p", Timestamp: 7200}))
	require.NoError(t, s.SavePoolPrice(ctx, &model.PoolPrice{ID: "p-3600", PoolID: "p", Timestamp: 3600}))
	require.NoError(t, s.SavePoolPrice(ctx, &model.PoolPrice{ID: "p-3600", PoolID: "p", Timestamp: 3600, Price: decimal.NewFromInt(5)}))
	require.NoError(t, s.SavePoolPrice(ctx, &model.PoolPrice{ID: "q-3600", PoolID: "q", Timestamp: 3600}))

	prices := s.PoolPrices("p")
	require.Len(t, prices, 2)
	assert.Equal(t, int64(3600), prices[0].Timestamp)
	assert.True(t, prices[0].Price.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, int64(7200), prices[1].Timestamp)
}

func TestStore_AggregateSingleton(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.SaveAggregate(ctx, &model.LiquidityAggregate{TotalLiquidity: decimal.NewFromInt(1000)}))

	agg, err := s.LoadAggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AggregateID, agg.ID)
	assert.True(t, agg.TotalLiquidity.Equal(decimal.NewFromInt(1000)))
}
