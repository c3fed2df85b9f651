package testutil

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/domain/entity"
	"github.com/pwndao/loan-pricing/internal/ports/outbound"
)

type feedKey struct {
	Base  common.Address
	Quote common.Address
}

// MockFeedRegistry implements outbound.FeedRegistry for testing. Lookups on
// unregistered pairs return outbound.ErrFeedNotFound. Every lookup is counted
// per pair so tests can assert which probes were and were not attempted.
type MockFeedRegistry struct {
	mu    sync.Mutex
	feeds map[feedKey]common.Address
	calls map[feedKey]int

	// Err, when set, is returned by every lookup regardless of registration.
	Err error
}

func NewMockFeedRegistry() *MockFeedRegistry {
	return &MockFeedRegistry{
		feeds: make(map[feedKey]common.Address),
		calls: make(map[feedKey]int),
	}
}

// Register maps an (asset, denomination) pair to a feed address.
func (m *MockFeedRegistry) Register(base, quote, feed common.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feeds[feedKey{base, quote}] = feed
}

func (m *MockFeedRegistry) GetFeed(ctx context.Context, base, quote common.Address) (common.Address, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := feedKey{base, quote}
	m.calls[key]++

	if m.Err != nil {
		return common.Address{}, m.Err
	}
	feed, ok := m.feeds[key]
	if !ok {
		return common.Address{}, outbound.ErrFeedNotFound
	}
	return feed, nil
}

// Calls returns how many lookups were made for one pair.
func (m *MockFeedRegistry) Calls(base, quote common.Address) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[feedKey{base, quote}]
}

// TotalCalls returns the number of lookups across all pairs.
func (m *MockFeedRegistry) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// FeedRound is the per-feed state served by MockFeedReader.
type FeedRound struct {
	Answer    *big.Int
	Decimals  uint8
	StartedAt time.Time
	UpdatedAt time.Time
}

// MockFeedReader implements outbound.FeedReader for testing, serving canned
// rounds by feed address and counting reads per feed.
type MockFeedReader struct {
	mu     sync.Mutex
	rounds map[common.Address]FeedRound
	calls  map[common.Address]int

	// Err, when set, is returned by every read.
	Err error
}

func NewMockFeedReader() *MockFeedReader {
	return &MockFeedReader{
		rounds: make(map[common.Address]FeedRound),
		calls:  make(map[common.Address]int),
	}
}

// SetRound installs the round returned for a feed address.
func (m *MockFeedReader) SetRound(feed common.Address, round FeedRound) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[feed] = round
}

func (m *MockFeedReader) LatestRound(ctx context.Context, feed common.Address) (entity.RoundData, uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[feed]++

	if m.Err != nil {
		return entity.RoundData{}, 0, m.Err
	}
	round, ok := m.rounds[feed]
	if !ok {
		return entity.RoundData{}, 0, fmt.Errorf("no round set for feed %s", feed)
	}
	data := entity.RoundData{
		RoundID:         big.NewInt(1),
		Answer:          new(big.Int).Set(round.Answer),
		StartedAt:       round.StartedAt,
		UpdatedAt:       round.UpdatedAt,
		AnsweredInRound: big.NewInt(1),
	}
	return data, round.Decimals, nil
}

// Calls returns how many reads were made against one feed.
func (m *MockFeedReader) Calls(feed common.Address) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[feed]
}

// TotalCalls returns the number of reads across all feeds.
func (m *MockFeedReader) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// MockAssetReader implements outbound.AssetReader for testing. Assets without
// a registered value report ok=false, mirroring tokens with no decimals().
type MockAssetReader struct {
	mu       sync.Mutex
	decimals map[common.Address]uint8
	calls    map[common.Address]int

	// Err, when set, is returned by every read.
	Err error
}

func NewMockAssetReader() *MockAssetReader {
	return &MockAssetReader{
		decimals: make(map[common.Address]uint8),
		calls:    make(map[common.Address]int),
	}
}

// SetDecimals installs an asset's decimals() value.
func (m *MockAssetReader) SetDecimals(asset common.Address, decimals uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decimals[asset] = decimals
}

func (m *MockAssetReader) Decimals(ctx context.Context, asset common.Address) (uint8, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[asset]++

	if m.Err != nil {
		return 0, false, m.Err
	}
	decimals, ok := m.decimals[asset]
	return decimals, ok, nil
}

// Calls returns how many reads were made for one asset.
func (m *MockAssetReader) Calls(asset common.Address) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[asset]
}
