// Package abis holds the contract ABIs the engine interacts with: the
// Chainlink feed registry, AggregatorV3 price feeds (also the shape of L2
// sequencer uptime feeds), and the ERC20 metadata surface.
package abis

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

func parseABI(abiJSON string) (*abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// GetFeedRegistryABI returns the ABI for the Chainlink Feed Registry.
// Used to resolve (base, quote) pairs to aggregator addresses via getFeed;
// the call reverts when the pair has no registered feed.
func GetFeedRegistryABI() (*abi.ABI, error) {
	return parseABI(`[
		{
			"inputs": [
				{"name": "base", "type": "address"},
				{"name": "quote", "type": "address"}
			],
			"name": "getFeed",
			"outputs": [{"name": "aggregator", "type": "address"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)
}

// GetAggregatorV3ABI returns the ABI for the Chainlink AggregatorV3Interface.
// Price feeds and L2 sequencer uptime feeds share this shape.
func GetAggregatorV3ABI() (*abi.ABI, error) {
	return parseABI(`[
		{
			"inputs": [],
			"name": "latestRoundData",
			"outputs": [
				{"name": "roundId", "type": "uint80"},
				{"name": "answer", "type": "int256"},
				{"name": "startedAt", "type": "uint256"},
				{"name": "updatedAt", "type": "uint256"},
				{"name": "answeredInRound", "type": "uint80"}
			],
			"stateMutability": "view",
			"type": "function"
		},
		{
			"inputs": [],
			"name": "decimals",
			"outputs": [{"name": "", "type": "uint8"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)
}

// GetERC20ABI returns the metadata subset of the ERC20 ABI. Only decimals()
// is called; it is optional in the standard and may be absent or reverting.
func GetERC20ABI() (*abi.ABI, error) {
	return parseABI(`[
		{
			"inputs": [],
			"name": "decimals",
			"outputs": [{"name": "", "type": "uint8"}],
			"stateMutability": "view",
			"type": "function"
		},
		{
			"inputs": [],
			"name": "symbol",
			"outputs": [{"name": "", "type": "string"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)
}
