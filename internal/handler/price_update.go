package handler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"poolValuator/internal/model"
	"poolValuator/internal/storage"
)

// LiquidityUpdater recomputes a pool's liquidity at a block.
type LiquidityUpdater interface {
	UpdatePoolLiquidity(ctx context.Context, pool *model.Pool, blockNumber uint64) error
}

// Checkpointer writes a rate-limited pool snapshot.
type Checkpointer interface {
	Checkpoint(ctx context.Context, block model.Block, pool *model.Pool) (bool, error)
}

// PriceUpdateHandler revalues the watched pools on every oracle price update.
type PriceUpdateHandler struct {
	pools      []string
	store      storage.PoolStore
	liquidity  LiquidityUpdater
	checkpoint Checkpointer
	logger     *zap.Logger
}

func NewPriceUpdateHandler(pools []string, store storage.PoolStore, liquidity LiquidityUpdater, checkpoint Checkpointer, logger *zap.Logger) *PriceUpdateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceUpdateHandler{
		pools:      pools,
		store:      store,
		liquidity:  liquidity,
		checkpoint: checkpoint,
		logger:     logger,
	}
}

// Handle processes one PriceUpdated event. Missing pools are logged and skipped;
// only store failures are returned.
func (h *PriceUpdateHandler) Handle(ctx context.Context, event model.PriceUpdate) error {
	for _, id := range h.pools {
		pool, err := h.store.LoadPool(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				h.logger.Error("missing pool", zap.String("pool", id), zap.Uint64("block", event.Block.Number))
				continue
			}
			return fmt.Errorf("load pool %s: %w", id, err)
		}

		if err := h.liquidity.UpdatePoolLiquidity(ctx, pool, event.Block.Number); err != nil {
			return err
		}
		if _, err := h.checkpoint.Checkpoint(ctx, event.Block, pool); err != nil {
			return err
		}
	}
	return nil
}
