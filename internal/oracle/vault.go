package oracle

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolValuator/internal/chain"
)

// VaultVersion selects the share-price accessor a vault exposes.
type VaultVersion int

const (
	VaultLegacy VaultVersion = iota
	VaultCurrent
)

func (v VaultVersion) method() string {
	if v == VaultLegacy {
		return "getPricePerFullShare"
	}
	return "pricePerShare"
}

func (v VaultVersion) String() string {
	if v == VaultLegacy {
		return "legacy"
	}
	return "current"
}

// Vaults reads share prices and underlying assets from yield vaults.
type Vaults struct {
	caller chain.Caller
}

func NewVaults(caller chain.Caller) *Vaults {
	return &Vaults{caller: caller}
}

// SharePrice returns the 1e18 fixed-point share price of vault.
func (v *Vaults) SharePrice(ctx context.Context, vault string, version VaultVersion, block uint64) (*big.Int, error) {
	addr, err := parseAddress(vault)
	if err != nil {
		return nil, err
	}
	parsed, err := VaultABI()
	if err != nil {
		return nil, err
	}
	return callUint(ctx, v.caller, addr, parsed, version.method(), block)
}

// Underlying returns the address of the asset backing vault.
func (v *Vaults) Underlying(ctx context.Context, vault string, block uint64) (string, error) {
	addr, err := parseAddress(vault)
	if err != nil {
		return "", err
	}
	parsed, err := VaultABI()
	if err != nil {
		return "", err
	}
	values, err := callMethod(ctx, v.caller, addr, parsed, "token", block)
	if err != nil {
		return "", err
	}
	token, ok := values[0].(common.Address)
	if !ok {
		return "", fmt.Errorf("token unexpected type %T", values[0])
	}
	return token.Hex(), nil
}
