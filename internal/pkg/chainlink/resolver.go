package chainlink

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/ports/outbound"
)

// feedResolver maps (asset, denomination) pairs to feed addresses through the
// registry. It offers two lookup modes: Resolve propagates a missing feed as
// a FeedNotFoundError, TryResolve reports it as found=false so discovery can
// treat a miss as a control-flow branch. Either way the wrapped-native token
// is substituted with the ETH denomination sentinel first, since registries
// key native-asset feeds by the sentinel, not the wrapper contract.
type feedResolver struct {
	registry      outbound.FeedRegistry
	wrappedNative common.Address
}

func (r feedResolver) substitute(addr common.Address) common.Address {
	if addr == r.wrappedNative {
		return DenominationETH
	}
	return addr
}

// Resolve is the hard lookup: a missing feed is a fault of the whole call.
func (r feedResolver) Resolve(ctx context.Context, base, quote common.Address) (common.Address, error) {
	base, quote = r.substitute(base), r.substitute(quote)
	feed, err := r.registry.GetFeed(ctx, base, quote)
	if err != nil {
		return common.Address{}, &FeedNotFoundError{Base: base, Quote: quote, Err: err}
	}
	return feed, nil
}

// TryResolve is the soft lookup: a registry miss is found=false, and only
// transport faults surface as errors.
func (r feedResolver) TryResolve(ctx context.Context, base, quote common.Address) (common.Address, bool, error) {
	base, quote = r.substitute(base), r.substitute(quote)
	feed, err := r.registry.GetFeed(ctx, base, quote)
	if errors.Is(err, outbound.ErrFeedNotFound) {
		return common.Address{}, false, nil
	}
	if err != nil {
		return common.Address{}, false, err
	}
	return feed, true, nil
}
