package entity

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// PriceQuote is one validated, decimal-tagged price observation. Quotes are
// function-scoped: computed per call, combined, and discarded. Nothing in the
// engine persists or caches them.
type PriceQuote struct {
	Amount       *big.Int
	Decimals     uint8
	Denomination common.Address
	AsOf         time.Time
}

// NewPriceQuote creates a PriceQuote with validation. Amounts are unsigned:
// signed feed values must be sign-checked before they are widened into a quote.
func NewPriceQuote(amount *big.Int, decimals uint8, denomination common.Address, asOf time.Time) (PriceQuote, error) {
	if amount == nil {
		return PriceQuote{}, fmt.Errorf("quote amount must not be nil")
	}
	if amount.Sign() < 0 {
		return PriceQuote{}, fmt.Errorf("quote amount must be non-negative, got %s", amount)
	}
	return PriceQuote{
		Amount:       new(big.Int).Set(amount),
		Decimals:     decimals,
		Denomination: denomination,
		AsOf:         asOf,
	}, nil
}

// Fresh reports whether the quote is usable at the given instant. Freshness is
// checked at use time only; a quote carries no validity state of its own.
func (q PriceQuote) Fresh(now time.Time, maxAge time.Duration) bool {
	return now.Sub(q.AsOf) <= maxAge
}

// CommonDenominatorPrice holds the prices of two assets expressed in one
// shared denomination on one shared decimal basis.
type CommonDenominatorPrice struct {
	PriceA       *big.Int
	PriceB       *big.Int
	Decimals     uint8
	Denomination common.Address
}
