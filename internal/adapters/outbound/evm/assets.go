package evm

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/pkg/abis"
	"github.com/pwndao/loan-pricing/internal/ports/outbound"
)

// Compile-time check that AssetReader implements outbound.AssetReader.
var _ outbound.AssetReader = (*AssetReader)(nil)

// AssetReader reads token metadata. decimals() is optional in ERC20, so a
// revert or an empty return means "no decimals", not a failure; only
// transport errors surface.
type AssetReader struct {
	client *Client
	abi    *abi.ABI
}

// NewAssetReader builds an asset reader on the shared client.
func NewAssetReader(client *Client) (*AssetReader, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	erc20ABI, err := abis.GetERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parsing ERC20 ABI: %w", err)
	}
	return &AssetReader{client: client, abi: erc20ABI}, nil
}

func (a *AssetReader) Decimals(ctx context.Context, asset common.Address) (uint8, bool, error) {
	callData, err := a.abi.Pack("decimals")
	if err != nil {
		return 0, false, fmt.Errorf("packing decimals: %w", err)
	}

	raw, err := a.client.Call(ctx, asset, callData)
	if err != nil {
		if isRevert(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("calling decimals on %s: %w", asset.Hex(), err)
	}
	if len(raw) == 0 {
		// address with no code, or a fallback that returns nothing
		return 0, false, nil
	}

	values, err := a.abi.Unpack("decimals", raw)
	if err != nil {
		return 0, false, nil
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, false, fmt.Errorf("decimals has unexpected type %T", values[0])
	}
	return decimals, true, nil
}
