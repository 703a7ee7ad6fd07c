package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"poolValuator/internal/chain"
	"poolValuator/internal/checkpoint"
	"poolValuator/internal/config"
	"poolValuator/internal/handler"
	"poolValuator/internal/indexer"
	"poolValuator/internal/liquidity"
	"poolValuator/internal/oracle"
	"poolValuator/internal/poolsync"
	"poolValuator/internal/pricing"
	"poolValuator/internal/storage"
	"poolValuator/internal/storage/memory"
	"poolValuator/internal/storage/postgres"
)

// app owns the long-lived dependencies shared by the commands.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	chain  *chain.Client
	store  storage.EntityStore
	pg     *postgres.Store
	sink   *storage.SnapshotFile
	pools  []string
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	pools, err := indexer.NormalizeAddresses(cfg.Pools)
	if err != nil {
		return nil, fmt.Errorf("pools: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, pools: pools}

	a.chain, err = chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	switch cfg.Store {
	case config.StorePostgres:
		a.pg, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.store = a.pg
	default:
		a.store = memory.NewStore()
	}

	if cfg.SnapshotOut != "" {
		a.sink = storage.NewSnapshotFile(cfg.SnapshotOut)
	}

	logger.Info("valuator configured",
		zap.String("rpc", cfg.RPCURL),
		zap.String("store", cfg.Store),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Strings("pools", pools),
		zap.String("snapshot_out", cfg.SnapshotOut),
	)
	return a, nil
}

func (a *app) close() {
	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.logger.Warn("close snapshot file", zap.Error(err))
		}
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if a.chain != nil {
		a.chain.Close()
	}
}

func (a *app) resolver() (*pricing.Resolver, error) {
	powerOracle, err := oracle.NewPowerOracle(a.chain, a.cfg.OracleAddress)
	if err != nil {
		return nil, fmt.Errorf("oracle address: %w", err)
	}
	sources := pricing.Sources{
		Oracle: powerOracle,
		Vaults: oracle.NewVaults(a.chain),
	}
	if a.cfg.RegistryAddress != "" {
		registry, err := oracle.NewRegistry(a.chain, a.cfg.RegistryAddress)
		if err != nil {
			return nil, fmt.Errorf("registry address: %w", err)
		}
		sources.Registry = registry
	}

	legacy, err := indexer.NormalizeAddresses(a.cfg.LegacyVaults)
	if err != nil {
		return nil, fmt.Errorf("legacy vaults: %w", err)
	}
	return pricing.NewResolver(pricing.Config{
		Rules: pricing.Rules{
			VaultPool:    a.cfg.VaultPool,
			LegacyVaults: legacy,
		},
		SymbolAliases: a.cfg.SymbolAliases,
	}, sources, a.logger), nil
}

// priceUpdateHandler assembles resolver, aggregator and checkpoint writer.
func (a *app) priceUpdateHandler() (*handler.PriceUpdateHandler, error) {
	resolver, err := a.resolver()
	if err != nil {
		return nil, err
	}
	aggregator := liquidity.NewAggregator(liquidity.Config{ActivationBlock: a.cfg.ActivationBlock}, a.store, resolver, a.logger)

	var sink storage.SnapshotSink
	if a.sink != nil {
		sink = a.sink
	}
	writer := checkpoint.NewWriter(checkpoint.NewGate(a.cfg.CheckpointInterval), aggregator, a.store, sink, a.logger)
	return handler.NewPriceUpdateHandler(a.pools, a.store, aggregator, writer, a.logger), nil
}

// syncPools refreshes every watched pool at block.
func (a *app) syncPools(ctx context.Context, pools []string, block uint64) error {
	syncer := poolsync.NewSyncer(a.chain, a.store, a.logger)
	for _, pool := range pools {
		if _, err := syncer.SyncPool(ctx, pool, block); err != nil {
			return fmt.Errorf("sync pool %s: %w", pool, err)
		}
	}
	return nil
}

func (a *app) progress() indexer.ProgressStore {
	if a.pg != nil {
		return indexer.NewDBProgress(a.pg, "price_updates")
	}
	return indexer.NewFileProgress(a.cfg.StateFile)
}
