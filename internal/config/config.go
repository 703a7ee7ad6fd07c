package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultOracleAddress is the mainnet power oracle.
	DefaultOracleAddress = "0x50f8D7f4db16AA926497993F020364f739EDb988"
	// DefaultRegistryAddress is the stable-pool registry used for LP virtual prices.
	DefaultRegistryAddress = "0x90E00ACe148ca3b23Ac1bC8C240C2a7Dd9c2d7f5"
	// DefaultActivationBlock is the first block the power oracle can be queried at.
	DefaultActivationBlock uint64 = 11829649
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL       string
	PGDSN        string
	Store        string
	FromBlock    uint64
	ToBlock      uint64
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
	StateFile    string
	SnapshotOut  string
	LogLevel     string

	OracleAddress      string
	RegistryAddress    string
	ActivationBlock    uint64
	VaultPool          string
	LegacyVaults       []string
	SymbolAliases      map[string]string
	Pools              []string
	CheckpointInterval time.Duration
}

// Load merges config file, VALUATOR_* environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VALUATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("store", StoreMemory)
	v.SetDefault("from", DefaultActivationBlock)
	v.SetDefault("batch-size", uint64(2000))
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	v.SetDefault("oracle-address", DefaultOracleAddress)
	v.SetDefault("registry-address", DefaultRegistryAddress)
	v.SetDefault("activation-block", DefaultActivationBlock)
	v.SetDefault("symbol-aliases", map[string]string{"WETH": "ETH"})
	v.SetDefault("checkpoint-interval", time.Hour)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:       v.GetString("rpc"),
		PGDSN:        v.GetString("pg-dsn"),
		Store:        strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		FromBlock:    v.GetUint64("from"),
		ToBlock:      v.GetUint64("to"),
		BatchSize:    v.GetUint64("batch-size"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		StateFile:    v.GetString("state-file"),
		SnapshotOut:  v.GetString("snapshot-out"),
		LogLevel:     v.GetString("log-level"),

		OracleAddress:      v.GetString("oracle-address"),
		RegistryAddress:    v.GetString("registry-address"),
		ActivationBlock:    v.GetUint64("activation-block"),
		VaultPool:          v.GetString("vault-pool"),
		LegacyVaults:       getStringSlice(v, "legacy-vaults"),
		SymbolAliases:      getStringMap(v, "symbol-aliases"),
		Pools:              getStringSlice(v, "pools"),
		CheckpointInterval: v.GetDuration("checkpoint-interval"),
	}

	if cfg.Store != StoreMemory && cfg.Store != StorePostgres {
		return Config{}, fmt.Errorf("unknown store %q (want %s or %s)", cfg.Store, StoreMemory, StorePostgres)
	}
	if cfg.Store == StorePostgres && cfg.PGDSN == "" {
		return Config{}, fmt.Errorf("pg-dsn is required for the postgres store")
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	switch typed := v.Get(key).(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		if typed == "" {
			return nil
		}
		return cleanStrings(strings.Split(typed, ","))
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// getStringMap accepts a map from a config file or a "k=v,k2=v2" string from env.
func getStringMap(v *viper.Viper, key string) map[string]string {
	out := make(map[string]string)
	if !v.IsSet(key) {
		return out
	}

	switch typed := v.Get(key).(type) {
	case map[string]string:
		for k, val := range typed {
			out[k] = val
		}
	case map[string]interface{}:
		for k, val := range typed {
			out[k] = fmt.Sprintf("%v", val)
		}
	case string:
		for _, pair := range strings.Split(typed, ",") {
			k, val, ok := strings.Cut(pair, "=")
			k, val = strings.TrimSpace(k), strings.TrimSpace(val)
			if !ok || k == "" || val == "" {
				continue
			}
			out[k] = val
		}
	}
	return out
}
