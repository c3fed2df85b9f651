package chainlink

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Denomination sentinels understood by the Chainlink feed registry. USD and
// other fiat currencies use their ISO 4217 numeric code as an address; ETH and
// BTC use fixed marker addresses.
var (
	DenominationUSD = common.HexToAddress("0x0000000000000000000000000000000000000348")
	DenominationETH = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")
	DenominationBTC = common.HexToAddress("0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB")
)

// Well-known mainnet addresses.
var (
	MainnetFeedRegistry = common.HexToAddress("0x47Fb2585D2C56Fe188D0E6ec628a38b74fCeeeDf")
	MainnetWETH         = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

const (
	// DefaultGracePeriod is the minimum continuous uptime required of an L2
	// sequencer before feed answers are trusted again after an outage.
	DefaultGracePeriod = 10 * time.Minute

	// DefaultMaxPriceAge is the oldest a feed round may be and still price a
	// conversion.
	DefaultMaxPriceAge = 24 * time.Hour

	// DefaultMaxIntermediaryDenominations bounds caller-supplied conversion
	// paths.
	DefaultMaxIntermediaryDenominations = 2

	// basisPointsDivisor converts basis points to a ratio.
	basisPointsDivisor = 10_000
)
