package liquidity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolValuator/internal/model"
	"poolValuator/internal/pricing"
	"poolValuator/internal/storage"
)

// Pricer resolves a token's unit price within a pool.
type Pricer interface {
	Resolve(ctx context.Context, pool *model.Pool, token model.PoolToken, block uint64) pricing.Quote
}

// Store is the subset of the entity store the aggregator writes to.
type Store interface {
	storage.PoolStore
	storage.PoolTokenStore
	storage.TokenPriceStore
	storage.AggregateStore
}

// Config controls aggregation behavior.
type Config struct {
	// ActivationBlock is the first block at which tokens are priced.
	ActivationBlock uint64
}

// Aggregator computes pool liquidity and keeps the global total in step by delta.
type Aggregator struct {
	cfg    Config
	store  Store
	pricer Pricer
	logger *zap.Logger

	// mu serialises read-modify-write of the aggregate across pools.
	mu sync.Mutex
}

func NewAggregator(cfg Config, store Store, pricer Pricer, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		cfg:    cfg,
		store:  store,
		pricer: pricer,
		logger: logger,
	}
}

// UpdatePoolLiquidity reprices pool at blockNumber, applies the change to the
// global aggregate and stores the new pool liquidity. Ineligible pools are left
// untouched. Only store failures are returned.
func (a *Aggregator) UpdatePoolLiquidity(ctx context.Context, pool *model.Pool, blockNumber uint64) error {
	if pool == nil {
		return fmt.Errorf("pool is nil")
	}
	if !pool.Tradable() {
		a.logger.Debug("skip ineligible pool",
			zap.String("pool", pool.ID),
			zap.Int("tokens_count", pool.TokensCount),
			zap.Bool("public_swap", pool.PublicSwap),
		)
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	poolLiquidity := decimal.Zero
	if blockNumber >= a.cfg.ActivationBlock {
		var err error
		poolLiquidity, err = a.priceTokens(ctx, pool, blockNumber)
		if err != nil {
			return err
		}
	}

	before, err := a.appliedLiquidity(ctx, pool)
	if err != nil {
		return err
	}
	agg, err := a.loadAggregate(ctx)
	if err != nil {
		return err
	}
	agg.TotalLiquidity = ApplyDelta(agg.TotalLiquidity, before, poolLiquidity)
	if err := a.store.SaveAggregate(ctx, agg); err != nil {
		return fmt.Errorf("save aggregate: %w", err)
	}

	pool.Liquidity = poolLiquidity
	if err := a.store.SavePool(ctx, pool); err != nil {
		return fmt.Errorf("save pool %s: %w", pool.ID, err)
	}

	a.logger.Info("pool liquidity updated",
		zap.String("pool", pool.ID),
		zap.Uint64("block", blockNumber),
		zap.String("liquidity_before", before.String()),
		zap.String("liquidity", poolLiquidity.String()),
		zap.String("total_liquidity", agg.TotalLiquidity.String()),
	)
	return nil
}

func (a *Aggregator) priceTokens(ctx context.Context, pool *model.Pool, blockNumber uint64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, address := range pool.TokensList {
		poolToken, err := a.store.LoadPoolToken(ctx, pool.ID, address)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				a.logger.Warn("missing pool token", zap.String("pool", pool.ID), zap.String("token", address))
				continue
			}
			return decimal.Zero, fmt.Errorf("load pool token %s: %w", model.PoolTokenID(pool.ID, address), err)
		}

		tokenPrice, err := a.store.LoadTokenPrice(ctx, address)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return decimal.Zero, fmt.Errorf("load token price %s: %w", address, err)
			}
			tokenPrice = &model.TokenPrice{ID: address}
		}

		quote := a.pricer.Resolve(ctx, pool, *poolToken, blockNumber)
		tokenPrice.Price = decimal.Zero
		if quote.Priced() {
			tokenPrice.Price = quote.Price
			total = total.Add(poolToken.Balance.Mul(quote.Price))
		}
		tokenPrice.Symbol = poolToken.Symbol
		tokenPrice.Name = poolToken.Name
		tokenPrice.Decimals = poolToken.Decimals
		tokenPrice.PoolTokenID = poolToken.ID()
		if err := a.store.SaveTokenPrice(ctx, tokenPrice); err != nil {
			return decimal.Zero, fmt.Errorf("save token price %s: %w", address, err)
		}

		a.logger.Debug("token priced",
			zap.String("pool", pool.ID),
			zap.String("token", address),
			zap.String("symbol", poolToken.Symbol),
			zap.String("source", quote.Source),
			zap.String("price", tokenPrice.Price.String()),
		)
	}
	return total, nil
}

// appliedLiquidity returns the pool liquidity currently counted in the
// aggregate. The stored pool wins over the caller's copy.
func (a *Aggregator) appliedLiquidity(ctx context.Context, pool *model.Pool) (decimal.Decimal, error) {
	stored, err := a.store.LoadPool(ctx, pool.ID)
	if err == nil {
		return stored.Liquidity, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return pool.Liquidity, nil
	}
	return decimal.Zero, fmt.Errorf("load pool %s: %w", pool.ID, err)
}

func (a *Aggregator) loadAggregate(ctx context.Context) (*model.LiquidityAggregate, error) {
	agg, err := a.store.LoadAggregate(ctx)
	if err == nil {
		return agg, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return model.NewLiquidityAggregate(), nil
	}
	return nil, fmt.Errorf("load aggregate: %w", err)
}
