// Package inbound contains the primary/inbound ports.
// These interfaces define the use cases that the application exposes.
package inbound

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/domain/entity"
)

// ConversionService defines the pricing use cases exposed to loan-proposal
// consumers. Inbound adapters (HTTP handlers, CLI) call these methods.
type ConversionService interface {
	// ConvertDenomination prices amount of baseAsset in units of quoteAsset.
	// Empty intermediaries and invertFlags select common-denominator discovery;
	// any non-empty input selects the explicit conversion path.
	ConvertDenomination(ctx context.Context, amount *big.Int, baseAsset, quoteAsset common.Address,
		intermediaries []common.Address, invertFlags []bool) (*big.Int, error)

	// GetCollateralAmount returns the collateral required to back creditAmount
	// of creditAsset at the given loan-to-value ratio (basis points).
	GetCollateralAmount(ctx context.Context, creditAsset common.Address, creditAmount *big.Int,
		collateralAsset common.Address, intermediaries []common.Address, invertFlags []bool,
		loanToValueBps uint64) (*big.Int, error)

	// FindCommonDenominatorPrice returns both assets' prices in the first
	// shared denomination found, on one decimal basis.
	FindCommonDenominatorPrice(ctx context.Context, assetA, assetB common.Address) (entity.CommonDenominatorPrice, error)

	// Ping reports whether the service can serve requests.
	Ping(ctx context.Context) error
}
