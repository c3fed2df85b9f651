package outbound

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/domain/entity"
)

// FeedReader reads Chainlink AggregatorV3-shaped feeds. One call returns the
// latest round together with the feed's decimals so adapters can fetch both in
// a single RPC round trip.
type FeedReader interface {
	// LatestRound returns the feed's most recent round data and its decimals.
	// The answer is returned raw and unvalidated; sign and staleness checks are
	// the caller's responsibility.
	LatestRound(ctx context.Context, feed common.Address) (entity.RoundData, uint8, error)
}
