package oracle

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolValuator/internal/chain"
)

// Registry reads LP token virtual prices from a pool registry.
type Registry struct {
	caller  chain.Caller
	address common.Address
}

func NewRegistry(caller chain.Caller, address string) (*Registry, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	return &Registry{caller: caller, address: addr}, nil
}

// VirtualPrice returns the 1e18 fixed-point virtual price of lpToken.
func (r *Registry) VirtualPrice(ctx context.Context, lpToken string, block uint64) (*big.Int, error) {
	token, err := parseAddress(lpToken)
	if err != nil {
		return nil, err
	}
	parsed, err := RegistryABI()
	if err != nil {
		return nil, err
	}
	return callUint(ctx, r.caller, r.address, parsed, "get_virtual_price_from_lp_token", block, token)
}
