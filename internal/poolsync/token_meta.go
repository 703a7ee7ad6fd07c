package poolsync

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolValuator/internal/chain"
)

// DefaultDecimals is assumed when a token does not answer decimals().
const DefaultDecimals uint8 = 18

// TokenMeta is the immutable ERC20 metadata mirrored onto pool tokens.
type TokenMeta struct {
	Address  string
	Symbol   string
	Name     string
	Decimals uint8
}

// TokenMetaCache caches token metadata by address.
type TokenMetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]TokenMeta
}

func NewTokenMetaCache() *TokenMetaCache {
	return &TokenMetaCache{data: make(map[common.Address]TokenMeta)}
}

func (c *TokenMetaCache) Get(address common.Address) (TokenMeta, bool) {
	c.mu.RLock()
	meta, ok := c.data[address]
	c.mu.RUnlock()
	return meta, ok
}

func (c *TokenMetaCache) Set(address common.Address, meta TokenMeta) {
	c.mu.Lock()
	c.data[address] = meta
	c.mu.Unlock()
}

// FetchTokenMeta reads decimals, symbol and name. It never fails on a
// misbehaving token: missing strings stay empty and decimals default to 18.
func FetchTokenMeta(ctx context.Context, caller chain.Caller, token common.Address, logger *zap.Logger) (TokenMeta, error) {
	meta := TokenMeta{Address: normalize(token), Decimals: DefaultDecimals}
	if caller == nil {
		return meta, fmt.Errorf("chain caller is nil")
	}
	if err := parseABIs(); err != nil {
		return meta, fmt.Errorf("parse erc20 abi: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if values, err := callMethod(ctx, caller, token, erc20StringABI, "decimals", 0); err == nil {
		if decimals, ok := values[0].(uint8); ok {
			meta.Decimals = decimals
		}
	} else {
		logger.Debug("decimals call failed", zap.String("token", meta.Address), zap.Error(err))
	}

	meta.Symbol = readText(ctx, caller, token, "symbol", logger)
	meta.Name = readText(ctx, caller, token, "name", logger)
	return meta, nil
}

func readText(ctx context.Context, caller chain.Caller, token common.Address, method string, logger *zap.Logger) string {
	if values, err := callMethod(ctx, caller, token, erc20StringABI, method, 0); err == nil {
		if text, ok := values[0].(string); ok {
			return text
		}
	}
	values, err := callMethod(ctx, caller, token, erc20Bytes32ABI, method, 0)
	if err != nil {
		logger.Debug(method+" call failed", zap.String("token", normalize(token)), zap.Error(err))
		return ""
	}
	if raw, ok := values[0].([32]byte); ok {
		return string(bytes.TrimRight(raw[:], "\x00"))
	}
	return ""
}

func callMethod(ctx context.Context, caller chain.Caller, to common.Address, parsed abi.ABI, method string, block uint64, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	var blockPtr *big.Int
	if block > 0 {
		blockPtr = new(big.Int).SetUint64(block)
	}
	resp, err := caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, blockPtr)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned nothing", method)
	}
	return values, nil
}
