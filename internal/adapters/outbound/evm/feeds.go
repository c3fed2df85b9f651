package evm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/domain/entity"
	"github.com/pwndao/loan-pricing/internal/pkg/abis"
	"github.com/pwndao/loan-pricing/internal/ports/outbound"
)

// Compile-time check that FeedReader implements outbound.FeedReader.
var _ outbound.FeedReader = (*FeedReader)(nil)

// FeedReader reads AggregatorV3-shaped feeds. One port call needs two
// contract reads, latestRoundData() and decimals(), so both go out in a
// single JSON-RPC batch request.
type FeedReader struct {
	client *Client
	abi    *abi.ABI
}

// NewFeedReader builds a feed reader on the shared client.
func NewFeedReader(client *Client) (*FeedReader, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	aggregatorABI, err := abis.GetAggregatorV3ABI()
	if err != nil {
		return nil, fmt.Errorf("parsing aggregator ABI: %w", err)
	}
	return &FeedReader{client: client, abi: aggregatorABI}, nil
}

func (f *FeedReader) LatestRound(ctx context.Context, feed common.Address) (entity.RoundData, uint8, error) {
	roundCall, err := f.abi.Pack("latestRoundData")
	if err != nil {
		return entity.RoundData{}, 0, fmt.Errorf("packing latestRoundData: %w", err)
	}
	decimalsCall, err := f.abi.Pack("decimals")
	if err != nil {
		return entity.RoundData{}, 0, fmt.Errorf("packing decimals: %w", err)
	}

	results, callErrs, err := f.client.BatchCall(ctx,
		[]common.Address{feed, feed},
		[][]byte{roundCall, decimalsCall})
	if err != nil {
		return entity.RoundData{}, 0, fmt.Errorf("reading feed %s: %w", feed.Hex(), err)
	}
	if callErrs[0] != nil {
		return entity.RoundData{}, 0, fmt.Errorf("latestRoundData on %s: %w", feed.Hex(), callErrs[0])
	}
	if callErrs[1] != nil {
		return entity.RoundData{}, 0, fmt.Errorf("decimals on %s: %w", feed.Hex(), callErrs[1])
	}

	round, err := f.unpackRound(results[0])
	if err != nil {
		return entity.RoundData{}, 0, fmt.Errorf("feed %s: %w", feed.Hex(), err)
	}
	decimals, err := f.unpackDecimals(results[1])
	if err != nil {
		return entity.RoundData{}, 0, fmt.Errorf("feed %s: %w", feed.Hex(), err)
	}
	return round, decimals, nil
}

func (f *FeedReader) unpackRound(data []byte) (entity.RoundData, error) {
	values, err := f.abi.Unpack("latestRoundData", data)
	if err != nil {
		return entity.RoundData{}, fmt.Errorf("unpacking latestRoundData: %w", err)
	}
	if len(values) != 5 {
		return entity.RoundData{}, fmt.Errorf("latestRoundData returned %d values, want 5", len(values))
	}

	roundID, ok := values[0].(*big.Int)
	if !ok {
		return entity.RoundData{}, fmt.Errorf("roundId has unexpected type %T", values[0])
	}
	answer, ok := values[1].(*big.Int)
	if !ok {
		return entity.RoundData{}, fmt.Errorf("answer has unexpected type %T", values[1])
	}
	startedAt, ok := values[2].(*big.Int)
	if !ok {
		return entity.RoundData{}, fmt.Errorf("startedAt has unexpected type %T", values[2])
	}
	updatedAt, ok := values[3].(*big.Int)
	if !ok {
		return entity.RoundData{}, fmt.Errorf("updatedAt has unexpected type %T", values[3])
	}
	answeredInRound, ok := values[4].(*big.Int)
	if !ok {
		return entity.RoundData{}, fmt.Errorf("answeredInRound has unexpected type %T", values[4])
	}

	return entity.NewRoundData(
		roundID,
		answer,
		time.Unix(startedAt.Int64(), 0).UTC(),
		time.Unix(updatedAt.Int64(), 0).UTC(),
		answeredInRound,
	)
}

func (f *FeedReader) unpackDecimals(data []byte) (uint8, error) {
	values, err := f.abi.Unpack("decimals", data)
	if err != nil {
		return 0, fmt.Errorf("unpacking decimals: %w", err)
	}
	decimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals has unexpected type %T", values[0])
	}
	return decimals, nil
}
