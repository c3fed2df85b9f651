package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/pkg/abis"
	"github.com/pwndao/loan-pricing/internal/ports/outbound"
)

// Compile-time check that Registry implements outbound.FeedRegistry.
var _ outbound.FeedRegistry = (*Registry)(nil)

// Registry reads the on-chain Chainlink feed registry. getFeed reverts for
// unregistered pairs, which this adapter translates into ErrFeedNotFound so
// the engine can treat a miss as control flow.
type Registry struct {
	client  *Client
	address common.Address
	abi     *abi.ABI
}

// NewRegistry builds a registry adapter bound to one registry contract.
func NewRegistry(client *Client, address common.Address) (*Registry, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	registryABI, err := abis.GetFeedRegistryABI()
	if err != nil {
		return nil, fmt.Errorf("parsing feed registry ABI: %w", err)
	}
	return &Registry{client: client, address: address, abi: registryABI}, nil
}

func (r *Registry) GetFeed(ctx context.Context, base, quote common.Address) (common.Address, error) {
	callData, err := r.abi.Pack("getFeed", base, quote)
	if err != nil {
		return common.Address{}, fmt.Errorf("packing getFeed: %w", err)
	}

	raw, err := r.client.Call(ctx, r.address, callData)
	if err != nil {
		if isRevert(err) {
			return common.Address{}, fmt.Errorf("%s/%s: %w", base.Hex(), quote.Hex(), outbound.ErrFeedNotFound)
		}
		return common.Address{}, fmt.Errorf("calling getFeed(%s, %s): %w", base.Hex(), quote.Hex(), err)
	}

	values, err := r.abi.Unpack("getFeed", raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpacking getFeed result: %w", err)
	}
	feed, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("getFeed returned unexpected type %T", values[0])
	}
	if feed == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s/%s: %w", base.Hex(), quote.Hex(), outbound.ErrFeedNotFound)
	}
	return feed, nil
}
