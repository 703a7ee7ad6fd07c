package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(emptyConfigFile(t), nil)
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, DefaultActivationBlock, cfg.FromBlock)
	assert.Equal(t, DefaultActivationBlock, cfg.ActivationBlock)
	assert.Equal(t, DefaultOracleAddress, cfg.OracleAddress)
	assert.Equal(t, DefaultRegistryAddress, cfg.RegistryAddress)
	assert.Equal(t, time.Hour, cfg.CheckpointInterval)
	assert.Equal(t, map[string]string{"WETH": "ETH"}, cfg.SymbolAliases)
	assert.Equal(t, uint64(2000), cfg.BatchSize)
	assert.Empty(t, cfg.Pools)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("VALUATOR_POOLS", "0xaa, 0xbb,")
	t.Setenv("VALUATOR_LEGACY_VAULTS", "0x01")
	t.Setenv("VALUATOR_SYMBOL_ALIASES", "WETH=ETH,WBTC=BTC,broken")
	t.Setenv("VALUATOR_CHECKPOINT_INTERVAL", "30m")

	cfg, err := Load(emptyConfigFile(t), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"0xaa", "0xbb"}, cfg.Pools)
	assert.Equal(t, []string{"0x01"}, cfg.LegacyVaults)
	assert.Equal(t, map[string]string{"WETH": "ETH", "WBTC": "BTC"}, cfg.SymbolAliases)
	assert.Equal(t, 30*time.Minute, cfg.CheckpointInterval)
}

func TestLoadFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valuator.yaml")
	body := `
vault-pool: "0xvault"
pools:
  - "0xpool"
symbol-aliases:
  WETH: ETH
  renBTC: BTC
activation-block: 100
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Uint64("activation-block", 0, "")
	require.NoError(t, flags.Parse([]string{"--activation-block=200"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "0xvault", cfg.VaultPool)
	assert.Equal(t, []string{"0xpool"}, cfg.Pools)
	// viper lowercases map keys read from files.
	assert.Equal(t, "BTC", cfg.SymbolAliases["renbtc"])
	assert.Equal(t, uint64(200), cfg.ActivationBlock)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("VALUATOR_STORE", "sqlite")
	_, err := Load(emptyConfigFile(t), nil)
	require.Error(t, err)
}

func TestLoadPostgresNeedsDSN(t *testing.T) {
	t.Setenv("VALUATOR_STORE", "postgres")
	_, err := Load(emptyConfigFile(t), nil)
	require.Error(t, err)

	t.Setenv("VALUATOR_PG_DSN", "postgres://localhost/valuator")
	cfg, err := Load(emptyConfigFile(t), nil)
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store)
}
