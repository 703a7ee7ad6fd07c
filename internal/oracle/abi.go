package oracle

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const powerOracleABIJSON = `[
  {"inputs": [{"internalType": "string", "name": "symbol", "type": "string"}], "name": "getPriceBySymbol", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"anonymous": false, "inputs": [
    {"indexed": false, "internalType": "string", "name": "symbol", "type": "string"},
    {"indexed": false, "internalType": "uint256", "name": "price", "type": "uint256"}
  ], "name": "PriceUpdated", "type": "event"}
]`

// Legacy (v1) and current (v2) vault share-price accessors live side by side;
// a given vault only answers one of them.
const vaultABIJSON = `[
  {"inputs": [], "name": "getPricePerFullShare", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "pricePerShare", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const registryABIJSON = `[
  {"inputs": [{"name": "_token", "type": "address"}], "name": "get_virtual_price_from_lp_token", "outputs": [{"name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

type lazyABI struct {
	json   string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.json))
	})
	return l.parsed, l.err
}

var (
	powerOracleABI = &lazyABI{json: powerOracleABIJSON}
	vaultABI       = &lazyABI{json: vaultABIJSON}
	registryABI    = &lazyABI{json: registryABIJSON}
)

// PowerOracleABI returns the parsed power oracle ABI.
func PowerOracleABI() (abi.ABI, error) { return powerOracleABI.get() }

// VaultABI returns the parsed vault ABI covering both accessor versions.
func VaultABI() (abi.ABI, error) { return vaultABI.get() }

// RegistryABI returns the parsed pool registry ABI.
func RegistryABI() (abi.ABI, error) { return registryABI.get() }
