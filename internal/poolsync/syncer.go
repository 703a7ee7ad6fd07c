package poolsync

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolValuator/internal/chain"
	"poolValuator/internal/model"
	"poolValuator/internal/numeric"
	"poolValuator/internal/storage"
)

// poolShareDecimals is the fixed precision of pool share tokens.
const poolShareDecimals = 18

// Store is the persistence the syncer writes to.
type Store interface {
	storage.PoolStore
	storage.PoolTokenStore
}

// Syncer refreshes Pool and PoolToken entities from a weighted pool contract.
type Syncer struct {
	caller chain.Caller
	store  Store
	tokens *TokenMetaCache
	logger *zap.Logger
}

func NewSyncer(caller chain.Caller, store Store, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		caller: caller,
		store:  store,
		tokens: NewTokenMetaCache(),
		logger: logger,
	}
}

// SyncPool reads the pool at block (0 = latest) and upserts it and its tokens.
// Valuation state (liquidity, checkpoint bookkeeping) is preserved.
func (s *Syncer) SyncPool(ctx context.Context, poolID string, block uint64) (*model.Pool, error) {
	if s.caller == nil {
		return nil, fmt.Errorf("chain caller is nil")
	}
	if !common.IsHexAddress(poolID) {
		return nil, fmt.Errorf("invalid pool address: %s", poolID)
	}
	if err := parseABIs(); err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	address := common.HexToAddress(poolID)

	values, err := callMethod(ctx, s.caller, address, weightedPoolABI, "getCurrentTokens", block)
	if err != nil {
		return nil, err
	}
	tokens, ok := values[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("getCurrentTokens unexpected type %T", values[0])
	}

	values, err = callMethod(ctx, s.caller, address, weightedPoolABI, "isPublicSwap", block)
	if err != nil {
		return nil, err
	}
	publicSwap, _ := values[0].(bool)

	supply, err := s.callUint(ctx, address, "totalSupply", block)
	if err != nil {
		return nil, err
	}

	pool, err := s.store.LoadPool(ctx, normalize(address))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load pool: %w", err)
		}
		pool = &model.Pool{ID: normalize(address)}
	}

	pool.TokensList = make([]string, 0, len(tokens))
	for _, token := range tokens {
		poolToken, err := s.syncToken(ctx, address, token, block)
		if err != nil {
			return nil, err
		}
		if err := s.store.SavePoolToken(ctx, poolToken); err != nil {
			return nil, fmt.Errorf("save pool token %s: %w", poolToken.ID(), err)
		}
		pool.TokensList = append(pool.TokensList, poolToken.Address)
	}
	pool.TokensCount = len(pool.TokensList)
	pool.PublicSwap = publicSwap
	pool.TotalShares = numeric.BigIntToDecimal(supply, poolShareDecimals)

	if err := s.store.SavePool(ctx, pool); err != nil {
		return nil, fmt.Errorf("save pool: %w", err)
	}
	s.logger.Info("pool synced",
		zap.String("pool", pool.ID),
		zap.Int("tokens", pool.TokensCount),
		zap.Bool("public_swap", pool.PublicSwap),
		zap.String("total_shares", pool.TotalShares.String()),
	)
	return pool, nil
}

func (s *Syncer) syncToken(ctx context.Context, pool, token common.Address, block uint64) (*model.PoolToken, error) {
	meta, ok := s.tokens.Get(token)
	if !ok {
		var err error
		meta, err = FetchTokenMeta(ctx, s.caller, token, s.logger)
		if err != nil {
			return nil, err
		}
		s.tokens.Set(token, meta)
	}

	balance, err := s.callUint(ctx, pool, "getBalance", block, token)
	if err != nil {
		return nil, err
	}
	weight, err := s.callUint(ctx, pool, "getDenormalizedWeight", block, token)
	if err != nil {
		return nil, err
	}

	return &model.PoolToken{
		PoolID:       normalize(pool),
		Address:      meta.Address,
		Symbol:       meta.Symbol,
		Name:         meta.Name,
		Decimals:     meta.Decimals,
		Balance:      numeric.BigIntToDecimal(balance, meta.Decimals),
		DenormWeight: numeric.BigIntToDecimal(weight, poolShareDecimals),
	}, nil
}

func (s *Syncer) callUint(ctx context.Context, to common.Address, method string, block uint64, args ...interface{}) (*big.Int, error) {
	values, err := callMethod(ctx, s.caller, to, weightedPoolABI, method, block, args...)
	if err != nil {
		return nil, err
	}
	out, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s unexpected type %T", method, values[0])
	}
	return out, nil
}

func normalize(address common.Address) string {
	return strings.ToLower(address.Hex())
}
