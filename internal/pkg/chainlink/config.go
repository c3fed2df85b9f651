// Package chainlink implements oracle price resolution and cross-denomination
// conversion on top of the Chainlink feed registry. The engine answers "what
// is this amount of asset A worth in units of asset B" by finding a usable
// conversion chain between the two assets — a shared quote denomination or a
// caller-supplied chain of intermediary denominations — and folding the feed
// rates together at full precision.
//
// The engine holds no mutable state: every value it computes is scoped to a
// single call, every call re-reads live data, and any fault aborts the whole
// call with a structured error. It never retries a failed read and never
// substitutes a price for a missing or stale feed.
package chainlink

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/ports/outbound"
)

// Config carries a deployment's protocol constants and outbound dependencies.
// All of it is fixed at construction; the engine has no mutable configuration.
type Config struct {
	// Registry resolves (asset, denomination) pairs to feed addresses.
	Registry outbound.FeedRegistry

	// Feeds reads AggregatorV3-shaped feeds (price and sequencer uptime).
	Feeds outbound.FeedReader

	// Assets reads token decimals. Assets without decimals() price at 0
	// decimals.
	Assets outbound.AssetReader

	// Metrics records probe and conversion telemetry. Optional.
	Metrics outbound.MetricsRecorder

	// GracePeriod is the minimum continuous sequencer uptime before prices are
	// trusted. Only meaningful when SequencerUptimeFeed is set.
	GracePeriod time.Duration

	// MaxPriceAge is the staleness bound applied to every feed round.
	MaxPriceAge time.Duration

	// MaxIntermediaryDenominations bounds caller-supplied conversion paths.
	MaxIntermediaryDenominations int

	// WrappedNativeToken is substituted with the ETH denomination sentinel
	// before any registry lookup (WETH on mainnet).
	WrappedNativeToken common.Address

	// SequencerUptimeFeed is the L2 sequencer uptime feed, or nil when not
	// deployed on an L2. When nil the liveness guard is a no-op.
	SequencerUptimeFeed *common.Address

	// Now is the clock used for staleness and grace-period checks. Defaults to
	// time.Now; injectable for tests.
	Now func() time.Time
}

// Engine converts amounts between asset denominations using registry-resolved
// Chainlink feeds. Construct with NewEngine; the zero value is not usable.
type Engine struct {
	feeds    outbound.FeedReader
	assets   outbound.AssetReader
	metrics  outbound.MetricsRecorder
	resolver feedResolver

	gracePeriod       time.Duration
	maxPriceAge       time.Duration
	maxIntermediaries int
	sequencerFeed     *common.Address
	now               func() time.Time
}

// NewEngine validates the config, applies defaults, and builds an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if cfg.Feeds == nil {
		return nil, fmt.Errorf("feed reader cannot be nil")
	}
	if cfg.Assets == nil {
		return nil, fmt.Errorf("asset reader cannot be nil")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = outbound.NoopMetrics{}
	}
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.MaxPriceAge == 0 {
		cfg.MaxPriceAge = DefaultMaxPriceAge
	}
	if cfg.MaxIntermediaryDenominations == 0 {
		cfg.MaxIntermediaryDenominations = DefaultMaxIntermediaryDenominations
	}
	if cfg.WrappedNativeToken == (common.Address{}) {
		cfg.WrappedNativeToken = MainnetWETH
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Engine{
		feeds:    cfg.Feeds,
		assets:   cfg.Assets,
		metrics:  cfg.Metrics,
		resolver: feedResolver{
			registry:      cfg.Registry,
			wrappedNative: cfg.WrappedNativeToken,
		},
		gracePeriod:       cfg.GracePeriod,
		maxPriceAge:       cfg.MaxPriceAge,
		maxIntermediaries: cfg.MaxIntermediaryDenominations,
		sequencerFeed:     cfg.SequencerUptimeFeed,
		now:               cfg.Now,
	}, nil
}
