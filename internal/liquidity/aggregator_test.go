package liquidity

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"poolValuator/internal/model"
	"poolValuator/internal/pricing"
	"poolValuator/internal/storage/memory"
)

const activation = 11_829_649

type fakePricer struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  int
}

func (f *fakePricer) Resolve(_ context.Context, _ *model.Pool, token model.PoolToken, _ uint64) pricing.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	price, ok := f.prices[token.Address]
	if !ok {
		return pricing.Quote{Price: decimal.Zero, Source: "oracle"}
	}
	return pricing.Quote{Price: price, Source: "oracle"}
}

type fixture struct {
	store  *memory.Store
	pricer *fakePricer
	agg    *Aggregator
}

func newFixture(t *testing.T, prices map[string]decimal.Decimal) *fixture {
	t.Helper()
	store := memory.NewStore()
	pricer := &fakePricer{prices: prices}
	return &fixture{
		store:  store,
		pricer: pricer,
		agg:    NewAggregator(Config{ActivationBlock: activation}, store, pricer, zap.NewNop()),
	}
}

func (f *fixture) seedPool(t *testing.T, pool *model.Pool, balances map[string]int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.store.SavePool(ctx, pool))
	for _, addr := range pool.TokensList {
		bal, ok := balances[addr]
		if !ok {
			continue
		}
		require.NoError(t, f.store.SavePoolToken(ctx, &model.PoolToken{
			PoolID:   pool.ID,
			Address:  addr,
			Symbol:   "SYM" + addr,
			Name:     "Token " + addr,
			Decimals: 18,
			Balance:  decimal.NewFromInt(bal),
		}))
	}
}

func (f *fixture) setTotal(t *testing.T, total int64) {
	t.Helper()
	require.NoError(t, f.store.SaveAggregate(context.Background(), &model.LiquidityAggregate{TotalLiquidity: decimal.NewFromInt(total)}))
}

func (f *fixture) total(t *testing.T) decimal.Decimal {
	t.Helper()
	agg, err := f.store.LoadAggregate(context.Background())
	require.NoError(t, err)
	return agg.TotalLiquidity
}

func twoTokenPool(liquidity int64) *model.Pool {
	return &model.Pool{
		ID:          "0xpool",
		TokensList:  []string{"0xa", "0xb"},
		TokensCount: 2,
		PublicSwap:  true,
		Liquidity:   decimal.NewFromInt(liquidity),
		TotalShares: decimal.NewFromInt(100),
	}
}

func TestApplyDelta(t *testing.T) {
	got := ApplyDelta(decimal.NewFromInt(1000), decimal.NewFromInt(150), decimal.NewFromInt(200))
	assert.True(t, got.Equal(decimal.NewFromInt(1050)), got.String())

	got = ApplyDelta(decimal.NewFromInt(1000), decimal.NewFromInt(150), decimal.Zero)
	assert.True(t, got.Equal(decimal.NewFromInt(850)))

	got = ApplyDelta(decimal.Zero, decimal.Zero, decimal.RequireFromString("0.5"))
	assert.True(t, got.Equal(decimal.RequireFromString("0.5")))
}

func TestUpdatePoolLiquidityExcludesFailedPrices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]decimal.Decimal{"0xa": decimal.NewFromInt(2)})
	pool := twoTokenPool(150)
	f.seedPool(t, pool, map[string]int64{"0xa": 100, "0xb": 50})
	f.setTotal(t, 1000)

	// stale price from an earlier resolution must be cleared
	require.NoError(t, f.store.SaveTokenPrice(ctx, &model.TokenPrice{ID: "0xb", Price: decimal.NewFromInt(7)}))

	require.NoError(t, f.agg.UpdatePoolLiquidity(ctx, pool, activation+1))

	assert.True(t, pool.Liquidity.Equal(decimal.NewFromInt(200)), pool.Liquidity.String())
	assert.True(t, f.total(t).Equal(decimal.NewFromInt(1050)), f.total(t).String())

	stored, err := f.store.LoadPool(ctx, pool.ID)
	require.NoError(t, err)
	assert.True(t, stored.Liquidity.Equal(decimal.NewFromInt(200)))

	priceA, err := f.store.LoadTokenPrice(ctx, "0xa")
	require.NoError(t, err)
	assert.True(t, priceA.Price.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "SYM0xa", priceA.Symbol)
	assert.Equal(t, "Token 0xa", priceA.Name)
	assert.Equal(t, uint8(18), priceA.Decimals)
	assert.Equal(t, "0xpool-0xa", priceA.PoolTokenID)

	priceB, err := f.store.LoadTokenPrice(ctx, "0xb")
	require.NoError(t, err)
	assert.True(t, priceB.Price.IsZero(), priceB.Price.String())
}

func TestUpdatePoolLiquidityRepeatedKeepsTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]decimal.Decimal{"0xa": decimal.NewFromInt(2), "0xb": decimal.NewFromInt(1)})
	pool := twoTokenPool(0)
	f.seedPool(t, pool, map[string]int64{"0xa": 100, "0xb": 50})
	f.setTotal(t, 500)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.agg.UpdatePoolLiquidity(ctx, pool, activation))
	}

	assert.True(t, pool.Liquidity.Equal(decimal.NewFromInt(250)))
	assert.True(t, f.total(t).Equal(decimal.NewFromInt(750)), f.total(t).String())
}

func TestUpdatePoolLiquidityStaleCopyDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]decimal.Decimal{"0xa": decimal.NewFromInt(1)})
	pool := twoTokenPool(0)
	f.seedPool(t, pool, map[string]int64{"0xa": 100})

	stale := *pool
	require.NoError(t, f.agg.UpdatePoolLiquidity(ctx, pool, activation))
	require.NoError(t, f.agg.UpdatePoolLiquidity(ctx, &stale, activation))

	assert.True(t, f.total(t).Equal(decimal.NewFromInt(100)), f.total(t).String())
}

func TestUpdatePoolLiquidityIneligiblePools(t *testing.T) {
	cases := map[string]*model.Pool{
		"single token": {ID: "0xp1", TokensList: []string{"0xa"}, TokensCount: 1, PublicSwap: true, Liquidity: decimal.NewFromInt(10)},
		"not public":   {ID: "0xp2", TokensList: []string{"0xa", "0xb"}, TokensCount: 2, Liquidity: decimal.NewFromInt(10)},
		"no tokens":    {ID: "0xp3", TokensCount: 2, PublicSwap: true, Liquidity: decimal.NewFromInt(10)},
	}

	for name, pool := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, map[string]decimal.Decimal{"0xa": decimal.NewFromInt(5), "0xb": decimal.NewFromInt(5)})
			f.seedPool(t, pool, map[string]int64{"0xa": 1, "0xb": 1})
			f.setTotal(t, 1000)

			require.NoError(t, f.agg.UpdatePoolLiquidity(ctx, pool, activation+10))

			assert.True(t, pool.Liquidity.Equal(decimal.NewFromInt(10)))
			assert.True(t, f.total(t).Equal(decimal.NewFromInt(1000)))
			assert.Zero(t, f.pricer.calls)
		})
	}
}

func TestUpdatePoolLiquidityBeforeActivation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]decimal.Decimal{"0xa": decimal.NewFromInt(2)})
	pool := twoTokenPool(150)
	f.seedPool(t, pool, map[string]int64{"0xa": 100, "0xb": 50})
	f.setTotal(t, 1000)

	require.NoError(t, f.agg.UpdatePoolLiquidity(ctx, pool, activation-1))

	assert.True(t, pool.Liquidity.IsZero())
	assert.True(t, f.total(t).Equal(decimal.NewFromInt(850)))
	assert.Zero(t, f.pricer.calls)
}

func TestUpdatePoolLiquidityCreatesAggregate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]decimal.Decimal{"0xa": decimal.NewFromInt(3)})
	pool := twoTokenPool(0)
	f.seedPool(t, pool, map[string]int64{"0xa": 10})

	require.NoError(t, f.agg.UpdatePoolLiquidity(ctx, pool, activation))

	agg, err := f.store.LoadAggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AggregateID, agg.ID)
	assert.True(t, agg.TotalLiquidity.Equal(decimal.NewFromInt(30)))
}

func TestUpdatePoolLiquiditySkipsMissingPoolToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, map[string]decimal.Decimal{"0xa": decimal.NewFromInt(1), "0xb": decimal.NewFromInt(1)})
	pool := twoTokenPool(0)
	f.seedPool(t, pool, map[string]int64{"0xa": 40})

	require.NoError(t, f.agg.UpdatePoolLiquidity(ctx, pool, activation))

	assert.True(t, pool.Liquidity.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 1, f.pricer.calls)
}

func TestUpdatePoolLiquidityConcurrentPools(t *testing.T) {
	ctx := context.Background()
	prices := map[string]decimal.Decimal{"0xa": decimal.NewFromInt(1), "0xb": decimal.NewFromInt(1)}
	f := newFixture(t, prices)

	const pools = 16
	list := make([]*model.Pool, 0, pools)
	for i := 0; i < pools; i++ {
		p := twoTokenPool(0)
		p.ID = fmt.Sprintf("0xpool%d", i)
		f.seedPool(t, p, map[string]int64{"0xa": 10, "0xb": 5})
		list = append(list, p)
	}

	var wg sync.WaitGroup
	for _, p := range list {
		wg.Add(1)
		go func(p *model.Pool) {
			defer wg.Done()
			assert.NoError(t, f.agg.UpdatePoolLiquidity(ctx, p, activation))
		}(p)
	}
	wg.Wait()

	assert.True(t, f.total(t).Equal(decimal.NewFromInt(15*pools)), f.total(t).String())
}
