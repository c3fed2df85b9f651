// Package outbound defines the outbound port interfaces.
package outbound

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrFeedNotFound is returned (possibly wrapped) by FeedRegistry.GetFeed when
// no feed is registered for a pair. Adapters must translate their transport's
// "unregistered pair" signal into this sentinel so callers can branch on it
// with errors.Is instead of trapping arbitrary errors.
var ErrFeedNotFound = errors.New("feed not found in registry")

// FeedRegistry resolves an (asset, quote-denomination) pair to the address of
// the price feed serving it. Registries are externally owned and read-only.
type FeedRegistry interface {
	// GetFeed returns the feed address for the pair, ErrFeedNotFound when the
	// pair is unregistered, or a transport error.
	GetFeed(ctx context.Context, base, quote common.Address) (common.Address, error)
}
