package poolsync

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const weightedPoolABIJSON = `[
  {"inputs": [], "name": "getCurrentTokens", "outputs": [{"internalType": "address[]", "name": "tokens", "type": "address[]"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "token", "type": "address"}], "name": "getBalance", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "token", "type": "address"}], "name": "getDenormalizedWeight", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "isPublicSwap", "outputs": [{"internalType": "bool", "name": "", "type": "bool"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"}
]`

// Some early tokens return bytes32 for symbol and name.
const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	abiOnce         sync.Once
	abiErr          error
	weightedPoolABI abi.ABI
	erc20StringABI  abi.ABI
	erc20Bytes32ABI abi.ABI
)

func parseABIs() error {
	abiOnce.Do(func() {
		if weightedPoolABI, abiErr = abi.JSON(strings.NewReader(weightedPoolABIJSON)); abiErr != nil {
			return
		}
		if erc20StringABI, abiErr = abi.JSON(strings.NewReader(erc20ABIStringJSON)); abiErr != nil {
			return
		}
		erc20Bytes32ABI, abiErr = abi.JSON(strings.NewReader(erc20ABIBytes32JSON))
	})
	return abiErr
}
