package oracle

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolValuator/internal/chain"
)

// PowerOracle reads symbol prices (1e6 fixed point) from a power oracle contract.
type PowerOracle struct {
	caller  chain.Caller
	address common.Address
}

func NewPowerOracle(caller chain.Caller, address string) (*PowerOracle, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	return &PowerOracle{caller: caller, address: addr}, nil
}

// Address returns the oracle contract address.
func (o *PowerOracle) Address() common.Address {
	return o.address
}

// PriceBySymbol returns the raw oracle price for symbol at block.
func (o *PowerOracle) PriceBySymbol(ctx context.Context, symbol string, block uint64) (*big.Int, error) {
	parsed, err := PowerOracleABI()
	if err != nil {
		return nil, err
	}
	return callUint(ctx, o.caller, o.address, parsed, "getPriceBySymbol", block, symbol)
}
