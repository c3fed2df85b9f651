package chainlink

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Every fault below is fatal to the enclosing conversion: the engine performs
// no retries and substitutes no prices. Callers match faults with errors.Is
// and errors.As.

// ErrSequencerDown is returned when the L2 sequencer uptime feed reports the
// sequencer as down.
var ErrSequencerDown = errors.New("sequencer is down")

// ErrInvalidInputLengths is returned when the invert flags do not line up with
// the intermediary denominations (expected: len(invertFlags) ==
// len(intermediaries)+1).
var ErrInvalidInputLengths = errors.New("invert flags length must equal intermediary denominations length plus one")

// GracePeriodNotOverError is returned when the sequencer is up but has not
// been up long enough.
type GracePeriodNotOverError struct {
	Elapsed     time.Duration
	GracePeriod time.Duration
}

func (e *GracePeriodNotOverError) Error() string {
	return fmt.Sprintf("sequencer grace period not over: up for %s of required %s", e.Elapsed, e.GracePeriod)
}

// FeedNotFoundError is returned by hard feed resolution when the registry has
// no feed for a pair. It wraps the registry's own error.
type FeedNotFoundError struct {
	Base  common.Address
	Quote common.Address
	Err   error
}

func (e *FeedNotFoundError) Error() string {
	return fmt.Sprintf("no feed registered for %s/%s", e.Base.Hex(), e.Quote.Hex())
}

func (e *FeedNotFoundError) Unwrap() error { return e.Err }

// CommonDenominatorNotFoundError is returned when every candidate in the
// probe table failed to resolve for an asset pair.
type CommonDenominatorNotFoundError struct {
	AssetA common.Address
	AssetB common.Address
}

func (e *CommonDenominatorNotFoundError) Error() string {
	return fmt.Sprintf("no common denominator found for %s and %s", e.AssetA.Hex(), e.AssetB.Hex())
}

// NegativePriceError is returned when a feed answers with a negative value.
type NegativePriceError struct {
	Asset        common.Address
	Denomination common.Address
	Answer       *big.Int
}

func (e *NegativePriceError) Error() string {
	return fmt.Sprintf("feed for %s/%s returned negative price %s", e.Asset.Hex(), e.Denomination.Hex(), e.Answer)
}

// PriceTooOldError is returned when a feed's latest round is older than the
// configured maximum price age.
type PriceTooOldError struct {
	Asset     common.Address
	UpdatedAt time.Time
}

func (e *PriceTooOldError) Error() string {
	return fmt.Sprintf("price for %s too old, last updated at %s", e.Asset.Hex(), e.UpdatedAt.UTC().Format(time.RFC3339))
}

// IntermediaryDenominationsOutOfBoundsError is returned when a caller-supplied
// path has more intermediary denominations than the deployment allows.
type IntermediaryDenominationsOutOfBoundsError struct {
	Provided int
	Max      int
}

func (e *IntermediaryDenominationsOutOfBoundsError) Error() string {
	return fmt.Sprintf("%d intermediary denominations provided, at most %d allowed", e.Provided, e.Max)
}
