package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolValuator/internal/model"
)

// runCheckpoint evaluates the watched pools at one block through the same
// path a PriceUpdated event takes.
func runCheckpoint(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if len(a.pools) == 0 {
		return fmt.Errorf("at least one pool is required")
	}

	number, _ := cmd.Flags().GetUint64("block")
	if number == 0 {
		if number, err = a.chain.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
	}
	ts, err := a.chain.BlockTimestamp(ctx, number)
	if err != nil {
		return fmt.Errorf("block timestamp %d: %w", number, err)
	}

	if syncFirst, _ := cmd.Flags().GetBool("sync-pools"); syncFirst {
		if err := a.syncPools(ctx, a.pools, number); err != nil {
			return err
		}
	}

	h, err := a.priceUpdateHandler()
	if err != nil {
		return err
	}
	event := model.PriceUpdate{Block: model.Block{Number: number, Timestamp: ts}}
	if err := h.Handle(ctx, event); err != nil {
		return err
	}

	for _, id := range a.pools {
		pool, err := a.store.LoadPool(ctx, id)
		if err != nil {
			continue
		}
		logger.Info("pool valued",
			zap.String("pool", id),
			zap.Uint64("block", number),
			zap.String("liquidity", pool.Liquidity.String()),
			zap.Int64("last_pool_price_update", pool.LastPoolPriceUpdate),
		)
	}
	return nil
}
