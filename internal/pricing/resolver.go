package pricing

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolValuator/internal/model"
	"poolValuator/internal/numeric"
	"poolValuator/internal/oracle"
)

var errSourceNotConfigured = errors.New("price source not configured")

// SymbolOracle looks up a 1e6 fixed-point price by token symbol.
type SymbolOracle interface {
	PriceBySymbol(ctx context.Context, symbol string, block uint64) (*big.Int, error)
}

// VaultSource reads vault share prices and backing assets.
type VaultSource interface {
	SharePrice(ctx context.Context, vault string, version oracle.VaultVersion, block uint64) (*big.Int, error)
	Underlying(ctx context.Context, vault string, block uint64) (string, error)
}

// VirtualPriceSource reads the 1e18 fixed-point virtual price of an LP token.
type VirtualPriceSource interface {
	VirtualPrice(ctx context.Context, lpToken string, block uint64) (*big.Int, error)
}

// Sources bundles the external price sources.
type Sources struct {
	Oracle   SymbolOracle
	Vaults   VaultSource
	Registry VirtualPriceSource
}

// Config controls resolver dispatch.
type Config struct {
	Rules Rules
	// SymbolAliases remaps token symbols before the oracle lookup.
	SymbolAliases map[string]string
}

// Quote is a resolved unit price. A zero price means the token is currently unpriced.
type Quote struct {
	Price  decimal.Decimal
	Source string
}

// Priced reports whether the quote carries a usable price.
func (q Quote) Priced() bool {
	return q.Price.IsPositive()
}

// Resolver prices pool tokens. It never returns an error: every failing
// source is logged and converted to a zero quote.
type Resolver struct {
	table   *Table
	aliases map[string]string
	sources Sources
	logger  *zap.Logger
}

func NewResolver(cfg Config, sources Sources, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	aliases := make(map[string]string, len(cfg.SymbolAliases))
	for from, to := range cfg.SymbolAliases {
		aliases[strings.ToUpper(from)] = to
	}
	return &Resolver{
		table:   NewTable(cfg.Rules),
		aliases: aliases,
		sources: sources,
		logger:  logger,
	}
}

// Resolve returns the unit price of token inside pool at block.
func (r *Resolver) Resolve(ctx context.Context, pool *model.Pool, token model.PoolToken, block uint64) Quote {
	strategy := r.table.Select(pool.ID, token.Address)
	quote := Quote{Price: decimal.Zero, Source: strategy.String()}

	switch strategy {
	case StrategyLegacyVault:
		quote.Price = r.vaultPrice(ctx, token.Address, oracle.VaultLegacy, block)
	case StrategyVault:
		quote.Price = r.vaultPrice(ctx, token.Address, oracle.VaultCurrent, block)
	default:
		quote.Price = r.oraclePrice(ctx, token, block)
	}
	return quote
}

func (r *Resolver) oraclePrice(ctx context.Context, token model.PoolToken, block uint64) decimal.Decimal {
	symbol := token.Symbol
	if alias, ok := r.aliases[strings.ToUpper(symbol)]; ok {
		symbol = alias
	}
	if r.sources.Oracle == nil {
		r.logger.Warn("missing oracle info for token: no oracle configured",
			zap.String("token", token.Address), zap.String("name", token.Name))
		return decimal.Zero
	}

	raw, err := r.sources.Oracle.PriceBySymbol(ctx, symbol, block)
	if err != nil {
		r.logger.Warn("missing oracle info for token",
			zap.String("token", token.Address),
			zap.String("name", token.Name),
			zap.String("symbol", symbol),
			zap.Error(err),
		)
		return decimal.Zero
	}
	return numeric.FromFixed(raw, numeric.OracleUnit)
}

// vaultPrice prices a vault share as sharePrice * virtualPrice(underlying).
// The first failing call aborts the chain.
func (r *Resolver) vaultPrice(ctx context.Context, vault string, version oracle.VaultVersion, block uint64) decimal.Decimal {
	fail := func(step string, err error) decimal.Decimal {
		r.logger.Warn("vault price unavailable",
			zap.String("vault", vault),
			zap.String("accessor", version.String()),
			zap.String("step", step),
			zap.Error(err),
		)
		return decimal.Zero
	}

	if r.sources.Vaults == nil || r.sources.Registry == nil {
		return fail("config", errSourceNotConfigured)
	}

	share, err := r.sources.Vaults.SharePrice(ctx, vault, version, block)
	if err != nil {
		return fail("share_price", err)
	}
	sharePrice := numeric.FromFixed(share, numeric.WAD)

	underlying, err := r.sources.Vaults.Underlying(ctx, vault, block)
	if err != nil {
		return fail("underlying", err)
	}

	virtual, err := r.sources.Registry.VirtualPrice(ctx, underlying, block)
	if err != nil {
		return fail("virtual_price", err)
	}

	price := sharePrice.Mul(numeric.FromFixed(virtual, numeric.WAD))
	r.logger.Debug("vault price",
		zap.String("vault", vault),
		zap.String("underlying", underlying),
		zap.String("share_price", sharePrice.String()),
		zap.String("price", price.String()),
	)
	return price
}
