package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"poolValuator/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "valuator",
		Short:        "Weighted pool liquidity valuator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Follow oracle price updates and revalue watched pools",
		RunE:  runValuator,
	}
	addStoreFlags(runCmd)
	addPricingFlags(runCmd)
	runCmd.Flags().Uint64("from", config.DefaultActivationBlock, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	runCmd.Flags().Uint64("batch-size", 2000, "blocks per log query")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("state-file", "", "progress file used with the memory store, empty disables resume")
	runCmd.Flags().Bool("sync-pools", true, "refresh watched pools from chain before following updates")
	root.AddCommand(runCmd)

	syncCmd := &cobra.Command{
		Use:   "sync-pool [pool...]",
		Short: "Refresh pool and pool token entities from chain",
		RunE:  runSyncPool,
	}
	addStoreFlags(syncCmd)
	syncCmd.Flags().StringSlice("pools", nil, "pool addresses (comma-separated), used when no args are given")
	syncCmd.Flags().Uint64("block", 0, "block to read at, 0 means latest")
	root.AddCommand(syncCmd)

	checkpointCmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Revalue watched pools at one block outside the event stream",
		RunE:  runCheckpoint,
	}
	addStoreFlags(checkpointCmd)
	addPricingFlags(checkpointCmd)
	checkpointCmd.Flags().Uint64("block", 0, "block to evaluate at, 0 means latest")
	checkpointCmd.Flags().Bool("sync-pools", true, "refresh watched pools from chain at the block first")
	root.AddCommand(checkpointCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded Postgres schema",
		RunE:  runMigrate,
	}
	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(migrateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "Ethereum RPC URL (archive node for historical blocks)")
	cmd.Flags().String("store", config.StoreMemory, "entity store (memory, postgres)")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func addPricingFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("pools", nil, "watched pool addresses (comma-separated)")
	cmd.Flags().String("oracle-address", config.DefaultOracleAddress, "power oracle address")
	cmd.Flags().String("registry-address", config.DefaultRegistryAddress, "LP registry address for virtual prices")
	cmd.Flags().Uint64("activation-block", config.DefaultActivationBlock, "first block at which tokens are priced")
	cmd.Flags().String("vault-pool", "", "pool whose tokens are yield vault shares")
	cmd.Flags().StringSlice("legacy-vaults", nil, "vault tokens using the legacy share price accessor")
	cmd.Flags().StringToString("symbol-aliases", nil, "symbol remaps before oracle lookup (e.g. WETH=ETH)")
	cmd.Flags().Duration("checkpoint-interval", time.Hour, "minimum spacing between pool snapshots")
	cmd.Flags().String("snapshot-out", "", "optional JSONL file receiving every written snapshot")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	return config.Load(cfgFile, cmd.Flags())
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
