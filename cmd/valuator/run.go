package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolValuator/internal/indexer"
)

func runValuator(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	oracleAddr, err := indexer.ParseAddress(cfg.OracleAddress)
	if err != nil {
		return fmt.Errorf("oracle address: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if len(a.pools) == 0 {
		logger.Warn("no watched pools configured, price updates will be no-ops")
	}
	if syncFirst, _ := cmd.Flags().GetBool("sync-pools"); syncFirst {
		if err := a.syncPools(ctx, a.pools, cfg.FromBlock); err != nil {
			return err
		}
	}

	h, err := a.priceUpdateHandler()
	if err != nil {
		return err
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		Oracle:       oracleAddr,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, a.chain, h, a.progress(), logger)

	logger.Info("valuator start",
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.String("oracle", oracleAddr.Hex()),
		zap.Uint64("activation_block", cfg.ActivationBlock),
		zap.Duration("checkpoint_interval", cfg.CheckpointInterval),
		zap.Uint64("batch_size", cfg.BatchSize),
	)

	return runner.Run(ctx)
}
