package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// registryABIJSON is the subset of the prediction-market contract ABI the
// service calls. getMarket and getWager return fixed-shape tuples that are
// decoded into typed views at the boundary.
const registryABIJSON = `[
  {"type":"function","name":"marketCount","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getMarket","stateMutability":"view",
   "inputs":[{"name":"marketId","type":"uint256"}],
   "outputs":[{"name":"viewData","type":"tuple","components":[
     {"name":"title","type":"string"},
     {"name":"description","type":"string"},
     {"name":"metadataURI","type":"string"},
     {"name":"deadline","type":"uint64"},
     {"name":"status","type":"uint8"},
     {"name":"outcome","type":"uint8"},
     {"name":"yesPool","type":"uint128"},
     {"name":"noPool","type":"uint128"},
     {"name":"bettorCount","type":"uint256"}]}]},
  {"type":"function","name":"getWager","stateMutability":"view",
   "inputs":[{"name":"marketId","type":"uint256"},{"name":"bettor","type":"address"}],
   "outputs":[{"name":"","type":"tuple","components":[
     {"name":"yesAmount","type":"uint128"},
     {"name":"noAmount","type":"uint128"},
     {"name":"paid","type":"bool"}]}]},
  {"type":"function","name":"createMarket","stateMutability":"nonpayable",
   "inputs":[
     {"name":"title","type":"string"},
     {"name":"description","type":"string"},
     {"name":"deadline","type":"uint64"},
     {"name":"metadataURI","type":"string"}],
   "outputs":[{"name":"marketId","type":"uint256"}]},
  {"type":"function","name":"placeBet","stateMutability":"nonpayable",
   "inputs":[
     {"name":"marketId","type":"uint256"},
     {"name":"outcome","type":"uint8"},
     {"name":"amount","type":"uint256"}],
   "outputs":[]},
  {"type":"function","name":"submitEvidence","stateMutability":"nonpayable",
   "inputs":[
     {"name":"marketId","type":"uint256"},
     {"name":"walrusURI","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"resolveMarket","stateMutability":"nonpayable",
   "inputs":[
     {"name":"marketId","type":"uint256"},
     {"name":"outcome","type":"uint8"}],
   "outputs":[]}
]`

// erc20ABIJSON is the ERC-20 subset the betting flow needs.
const erc20ABIJSON = `[
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"allowance","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable",
   "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]}
]`

var (
	registryABI = mustParseABI(registryABIJSON)
	erc20ABI    = mustParseABI(erc20ABIJSON)
)

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(err)
	}
	return parsed
}
