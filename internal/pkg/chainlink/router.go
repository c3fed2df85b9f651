package chainlink

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/domain/entity"
)

// denominatorCandidate is one entry in the ordered common-denominator probe
// table. bridgeA/bridgeB mark the leg whose price must be brought into USD
// through the ETH/USD feed before the two legs share a denomination.
type denominatorCandidate struct {
	name    string
	denomA  common.Address
	denomB  common.Address
	bridgeA bool
	bridgeB bool
}

// denominatorCandidates returns the probe order as data: both assets in USD,
// both in ETH, then the two mixed forms bridged through ETH/USD. The order is
// a deliberate preference — USD feeds are the densest — and the router stops
// at the first candidate that resolves.
func denominatorCandidates() []denominatorCandidate {
	return []denominatorCandidate{
		{name: "usd", denomA: DenominationUSD, denomB: DenominationUSD},
		{name: "eth", denomA: DenominationETH, denomB: DenominationETH},
		{name: "usd/eth-bridged", denomA: DenominationUSD, denomB: DenominationETH, bridgeB: true},
		{name: "eth/usd-bridged", denomA: DenominationETH, denomB: DenominationUSD, bridgeA: true},
	}
}

// findCommonDenominatorPrice walks the probe table in order and returns both
// assets' prices in the first denomination that resolves, synced onto one
// decimal basis. Later candidates are never probed once an earlier one
// succeeds. Exhausting the table is a hard fault.
func (e *Engine) findCommonDenominatorPrice(ctx context.Context, assetA, assetB common.Address) (entity.CommonDenominatorPrice, error) {
	for _, cand := range denominatorCandidates() {
		result, ok, err := e.probeCandidate(ctx, assetA, assetB, cand)
		e.metrics.RecordDenominatorProbe(ctx, cand.name, ok && err == nil)
		if err != nil {
			return entity.CommonDenominatorPrice{}, err
		}
		if ok {
			return result, nil
		}
	}
	return entity.CommonDenominatorPrice{}, &CommonDenominatorNotFoundError{AssetA: assetA, AssetB: assetB}
}

// probeCandidate attempts one candidate. A missing feed anywhere in the
// candidate — either leg, or the bridge — is a miss, not a fault; the caller
// moves on to the next candidate. Data-quality problems on a feed that does
// exist (negative answer, stale round) abort the whole search.
func (e *Engine) probeCandidate(ctx context.Context, assetA, assetB common.Address, cand denominatorCandidate) (entity.CommonDenominatorPrice, bool, error) {
	feedA, found, err := e.resolver.TryResolve(ctx, assetA, cand.denomA)
	if err != nil || !found {
		return entity.CommonDenominatorPrice{}, false, err
	}
	feedB, found, err := e.resolver.TryResolve(ctx, assetB, cand.denomB)
	if err != nil || !found {
		return entity.CommonDenominatorPrice{}, false, err
	}

	priceA, decimalsA, err := e.fetchPrice(ctx, feedA, assetA, cand.denomA)
	if err != nil {
		return entity.CommonDenominatorPrice{}, false, err
	}
	priceB, decimalsB, err := e.fetchPrice(ctx, feedB, assetB, cand.denomB)
	if err != nil {
		return entity.CommonDenominatorPrice{}, false, err
	}

	denomination := cand.denomA
	ethToUSD := entity.Hop{Base: DenominationETH, Quote: DenominationUSD}
	if cand.bridgeA {
		priceA, decimalsA, found, err = e.tryConvertPriceDenomination(ctx, priceA, decimalsA, ethToUSD)
		if err != nil || !found {
			return entity.CommonDenominatorPrice{}, false, err
		}
		denomination = DenominationUSD
	}
	if cand.bridgeB {
		priceB, decimalsB, found, err = e.tryConvertPriceDenomination(ctx, priceB, decimalsB, ethToUSD)
		if err != nil || !found {
			return entity.CommonDenominatorPrice{}, false, err
		}
		denomination = DenominationUSD
	}

	priceA, priceB, decimals := SyncDecimalsUp(priceA, decimalsA, priceB, decimalsB)
	return entity.CommonDenominatorPrice{
		PriceA:       priceA,
		PriceB:       priceB,
		Decimals:     decimals,
		Denomination: denomination,
	}, true, nil
}

// walkPath folds an explicit conversion path into one aggregate rate,
// starting from 1 at zero decimals. Hops are read strictly in path order:
// each hop's output is the next hop's normalization input.
func (e *Engine) walkPath(ctx context.Context, path entity.ConversionPath) (*big.Int, uint8, error) {
	rate := big.NewInt(1)
	var decimals uint8
	var err error
	for _, hop := range path.Hops() {
		rate, decimals, err = e.convertPriceDenomination(ctx, rate, decimals, hop)
		if err != nil {
			return nil, 0, err
		}
	}
	return rate, decimals, nil
}

// newPath validates caller-supplied path inputs before any external call is
// made: a conversion with malformed inputs must fail without a single
// registry or feed read.
func (e *Engine) newPath(base, quote common.Address, intermediaries []common.Address, invertFlags []bool) (entity.ConversionPath, error) {
	if len(invertFlags) != len(intermediaries)+1 {
		return entity.ConversionPath{}, ErrInvalidInputLengths
	}
	if len(intermediaries) > e.maxIntermediaries {
		return entity.ConversionPath{}, &IntermediaryDenominationsOutOfBoundsError{
			Provided: len(intermediaries),
			Max:      e.maxIntermediaries,
		}
	}
	return entity.NewConversionPath(base, quote, intermediaries, invertFlags)
}
