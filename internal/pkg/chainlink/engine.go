package chainlink

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/domain/entity"
)

// ConvertDenomination answers "what is amount of baseAsset worth in units of
// quoteAsset". With no intermediaries and no invert flags it discovers a
// common denominator through the probe table; otherwise it walks the explicit
// caller-supplied path. Input validation runs before the sequencer guard so
// that malformed inputs fail without a single external read.
func (e *Engine) ConvertDenomination(ctx context.Context, baseAsset, quoteAsset common.Address, amount *big.Int, intermediaries []common.Address, invertFlags []bool) (*big.Int, error) {
	if amount == nil {
		return nil, fmt.Errorf("amount cannot be nil")
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount cannot be negative: %s", amount)
	}

	if len(intermediaries) == 0 && len(invertFlags) == 0 {
		return e.convertViaCommonDenominator(ctx, baseAsset, quoteAsset, amount)
	}
	return e.convertViaPath(ctx, baseAsset, quoteAsset, amount, intermediaries, invertFlags)
}

func (e *Engine) convertViaCommonDenominator(ctx context.Context, baseAsset, quoteAsset common.Address, amount *big.Int) (*big.Int, error) {
	if err := e.checkSequencerUptime(ctx); err != nil {
		return nil, err
	}

	prices, err := e.findCommonDenominatorPrice(ctx, baseAsset, quoteAsset)
	if err != nil {
		return nil, err
	}

	baseDecimals, err := e.assetDecimals(ctx, baseAsset)
	if err != nil {
		return nil, err
	}
	quoteDecimals, err := e.assetDecimals(ctx, quoteAsset)
	if err != nil {
		return nil, err
	}

	return convertWithCommonPrices(amount, prices, baseDecimals, quoteDecimals)
}

func (e *Engine) convertViaPath(ctx context.Context, baseAsset, quoteAsset common.Address, amount *big.Int, intermediaries []common.Address, invertFlags []bool) (*big.Int, error) {
	path, err := e.newPath(baseAsset, quoteAsset, intermediaries, invertFlags)
	if err != nil {
		return nil, err
	}
	if err := e.checkSequencerUptime(ctx); err != nil {
		return nil, err
	}

	rate, rateDecimals, err := e.walkPath(ctx, path)
	if err != nil {
		return nil, err
	}

	baseDecimals, err := e.assetDecimals(ctx, baseAsset)
	if err != nil {
		return nil, err
	}
	quoteDecimals, err := e.assetDecimals(ctx, quoteAsset)
	if err != nil {
		return nil, err
	}

	return applyRate(amount, rate, rateDecimals, baseDecimals, quoteDecimals), nil
}

// GetCollateralAmount prices a credit amount in collateral units and applies
// the loan-to-value ratio: collateral = converted * ltvBps / 10000. Zero LTV
// yields zero; guarding against that belongs to the caller.
func (e *Engine) GetCollateralAmount(ctx context.Context, creditAsset common.Address, creditAmount *big.Int, collateralAsset common.Address, intermediaries []common.Address, invertFlags []bool, loanToValueBps uint64) (*big.Int, error) {
	converted, err := e.ConvertDenomination(ctx, creditAsset, collateralAsset, creditAmount, intermediaries, invertFlags)
	if err != nil {
		return nil, err
	}
	ltv := new(big.Int).SetUint64(loanToValueBps)
	return mulDiv(converted, ltv, big.NewInt(basisPointsDivisor)), nil
}

// FindCommonDenominatorPrice runs the denominator probe directly, returning
// both assets' prices on one decimal basis in the first denomination that
// resolves. The sequencer guard applies here too.
func (e *Engine) FindCommonDenominatorPrice(ctx context.Context, assetA, assetB common.Address) (entity.CommonDenominatorPrice, error) {
	if err := e.checkSequencerUptime(ctx); err != nil {
		return entity.CommonDenominatorPrice{}, err
	}
	return e.findCommonDenominatorPrice(ctx, assetA, assetB)
}

// assetDecimals reads a token's decimals(), pricing tokens without the method
// at zero decimals rather than failing.
func (e *Engine) assetDecimals(ctx context.Context, asset common.Address) (uint8, error) {
	decimals, ok, err := e.assets.Decimals(ctx, asset)
	if err != nil {
		return 0, fmt.Errorf("reading decimals of asset %s: %w", asset, err)
	}
	if !ok {
		return 0, nil
	}
	return decimals, nil
}

// applyRate rescales amount by an aggregate rate while moving from the base
// asset's decimals to the quote asset's. The combined exponent can go
// negative when the quote asset is the finer-grained one; the division flips
// to a multiplication in that case.
func applyRate(amount, rate *big.Int, rateDecimals, baseDecimals, quoteDecimals uint8) *big.Int {
	exp := int(rateDecimals) + int(baseDecimals) - int(quoteDecimals)
	if exp >= 0 {
		return mulDiv(amount, rate, pow10(exp))
	}
	scaled := new(big.Int).Mul(amount, rate)
	return scaled.Mul(scaled, pow10(-exp))
}

// convertWithCommonPrices converts amount of the base asset into quote-asset
// units given both prices on one decimal basis. A single floor division keeps
// precision loss to one unit of the quote asset's resolution.
func convertWithCommonPrices(amount *big.Int, prices entity.CommonDenominatorPrice, baseDecimals, quoteDecimals uint8) (*big.Int, error) {
	if prices.PriceB.Sign() == 0 {
		return nil, fmt.Errorf("quote asset price is zero in denomination %s", prices.Denomination)
	}
	exp := int(quoteDecimals) - int(baseDecimals)
	if exp >= 0 {
		numerator := new(big.Int).Mul(amount, prices.PriceA)
		numerator.Mul(numerator, pow10(exp))
		return new(big.Int).Quo(numerator, prices.PriceB), nil
	}
	denominator := new(big.Int).Mul(prices.PriceB, pow10(-exp))
	return mulDiv(amount, prices.PriceA, denominator), nil
}
