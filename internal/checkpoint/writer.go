package checkpoint

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"poolValuator/internal/model"
	"poolValuator/internal/numeric"
	"poolValuator/internal/storage"
)

// LiquidityUpdater recomputes a pool's liquidity at a block.
type LiquidityUpdater interface {
	UpdatePoolLiquidity(ctx context.Context, pool *model.Pool, blockNumber uint64) error
}

// Store is the subset of the entity store the writer needs.
type Store interface {
	storage.PoolStore
	storage.PoolPriceStore
}

// Writer records rate-limited PoolPrice snapshots.
type Writer struct {
	gate    Gate
	updater LiquidityUpdater
	store   Store
	sink    storage.SnapshotSink
	logger  *zap.Logger
}

// NewWriter builds a Writer. sink is optional.
func NewWriter(gate Gate, updater LiquidityUpdater, store Store, sink storage.SnapshotSink, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		gate:    gate,
		updater: updater,
		store:   store,
		sink:    sink,
		logger:  logger,
	}
}

// Checkpoint writes a snapshot of pool at block unless the gate refuses.
// It reports whether a snapshot was written.
func (w *Writer) Checkpoint(ctx context.Context, block model.Block, pool *model.Pool) (bool, error) {
	if pool == nil {
		return false, fmt.Errorf("pool is nil")
	}
	if !w.gate.Allow(pool.LastPoolPriceUpdate, block.Timestamp) {
		w.logger.Info("skipping checkpoint",
			zap.String("pool", pool.ID),
			zap.Int64("timestamp", block.Timestamp),
			zap.Int64("last", pool.LastPoolPriceUpdate),
			zap.Int64("elapsed_seconds", block.Timestamp-pool.LastPoolPriceUpdate),
			zap.Int64("next_at", w.gate.NextAt(pool.LastPoolPriceUpdate)),
		)
		return false, nil
	}

	if err := w.updater.UpdatePoolLiquidity(ctx, pool, block.Number); err != nil {
		return false, fmt.Errorf("update liquidity %s: %w", pool.ID, err)
	}

	snapshot := model.PoolPrice{
		ID:          model.PoolPriceID(pool.ID, block.Timestamp),
		PoolID:      pool.ID,
		Price:       numeric.SafeDiv(pool.Liquidity, pool.TotalShares),
		TotalSupply: pool.TotalShares,
		Liquidity:   pool.Liquidity,
		BlockNumber: block.Number,
		Timestamp:   block.Timestamp,
	}
	if err := w.store.SavePoolPrice(ctx, &snapshot); err != nil {
		return false, fmt.Errorf("save pool price %s: %w", snapshot.ID, err)
	}

	pool.LastPoolPriceUpdate = block.Timestamp
	pool.PoolPriceCount++
	if err := w.store.SavePool(ctx, pool); err != nil {
		return false, fmt.Errorf("save pool %s: %w", pool.ID, err)
	}

	if w.sink != nil {
		if err := w.sink.PutPoolPrices([]model.PoolPrice{snapshot}); err != nil {
			w.logger.Warn("export snapshot", zap.String("pool", pool.ID), zap.Error(err))
		}
	}

	w.logger.Info("checkpoint written",
		zap.String("pool", pool.ID),
		zap.Uint64("block", block.Number),
		zap.Int64("timestamp", block.Timestamp),
		zap.String("price", snapshot.Price.String()),
		zap.String("liquidity", snapshot.Liquidity.String()),
		zap.Uint64("count", pool.PoolPriceCount),
	)
	return true, nil
}
