package chainlink

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/domain/entity"
)

// fetchPrice reads one feed's latest round and widens it into a validated
// PriceQuote: negative answers and quotes older than the staleness bound are
// faults. asset is carried for error context only.
func (e *Engine) fetchPrice(ctx context.Context, feed, asset, denomination common.Address) (*big.Int, uint8, error) {
	round, decimals, err := e.feeds.LatestRound(ctx, feed)
	if err != nil {
		return nil, 0, fmt.Errorf("reading feed %s: %w", feed.Hex(), err)
	}
	if round.Answer.Sign() < 0 {
		return nil, 0, &NegativePriceError{
			Asset:        asset,
			Denomination: denomination,
			Answer:       new(big.Int).Set(round.Answer),
		}
	}
	quote, err := entity.NewPriceQuote(round.Answer, decimals, denomination, round.UpdatedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("feed %s: %w", feed.Hex(), err)
	}
	if !quote.Fresh(e.now(), e.maxPriceAge) {
		return nil, 0, &PriceTooOldError{Asset: asset, UpdatedAt: quote.AsOf}
	}
	return quote.Amount, quote.Decimals, nil
}

// convertPriceDenomination folds one hop's feed rate into a running price.
// The hop's invert flag means the registered feed quotes the pair the other
// way round, so the lookup is reversed and the rate divides instead of
// multiplies. Both operands are synced onto one decimal basis first, and the
// result stays on that basis.
func (e *Engine) convertPriceDenomination(ctx context.Context, price *big.Int, decimals uint8, hop entity.Hop) (*big.Int, uint8, error) {
	base, quote := hop.Base, hop.Quote
	if hop.Invert {
		base, quote = quote, base
	}

	feed, err := e.resolver.Resolve(ctx, base, quote)
	if err != nil {
		return nil, 0, err
	}
	return e.applyHopRate(ctx, price, decimals, feed, base, quote, hop.Invert)
}

// tryConvertPriceDenomination is the soft variant used while probing for a
// common denominator: a missing feed passes the input price through unchanged
// (a neutral 1.0 rate) and reports found=false, leaving the fallback policy
// to the call site.
func (e *Engine) tryConvertPriceDenomination(ctx context.Context, price *big.Int, decimals uint8, hop entity.Hop) (*big.Int, uint8, bool, error) {
	base, quote := hop.Base, hop.Quote
	if hop.Invert {
		base, quote = quote, base
	}

	feed, found, err := e.resolver.TryResolve(ctx, base, quote)
	if err != nil {
		return nil, 0, false, err
	}
	if !found {
		return price, decimals, false, nil
	}
	converted, outDecimals, err := e.applyHopRate(ctx, price, decimals, feed, base, quote, hop.Invert)
	if err != nil {
		return nil, 0, false, err
	}
	return converted, outDecimals, true, nil
}

func (e *Engine) applyHopRate(ctx context.Context, price *big.Int, decimals uint8, feed, base, quote common.Address, invert bool) (*big.Int, uint8, error) {
	rate, rateDecimals, err := e.fetchPrice(ctx, feed, base, quote)
	if err != nil {
		return nil, 0, err
	}

	price, rate, outDecimals := SyncDecimalsUp(price, decimals, rate, rateDecimals)
	if invert {
		if rate.Sign() == 0 {
			return nil, 0, fmt.Errorf("feed %s answered zero, cannot invert rate", feed.Hex())
		}
		return mulDiv(price, pow10(int(outDecimals)), rate), outDecimals, nil
	}
	return mulDiv(price, rate, pow10(int(outDecimals))), outDecimals, nil
}
