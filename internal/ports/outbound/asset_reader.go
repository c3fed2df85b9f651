package outbound

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// AssetReader reads token contract metadata.
type AssetReader interface {
	// Decimals returns the asset's decimals() value. ok is false when the
	// contract does not expose decimals() or reverts the call; that case is not
	// an error — callers treat it as zero decimals. A non-nil error means the
	// read itself failed (transport fault) and the enclosing operation must
	// abort.
	Decimals(ctx context.Context, asset common.Address) (decimals uint8, ok bool, err error)
}
