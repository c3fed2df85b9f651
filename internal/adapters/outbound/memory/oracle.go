// oracle.go provides an in-memory implementation of the oracle ports.
//
// This adapter serves feed registrations, feed rounds, and token decimals
// from maps, for testing and offline development. All operations are
// thread-safe. Data is lost on process restart.
package memory

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

// Compile-time checks that OracleStore implements the oracle ports
var (
	_ outbound.FeedRegistry = (*OracleStore)(nil)
	_ outbound.FeedReader   = (*OracleStore)(nil)
	_ outbound.AssetReader  = (*OracleStore)(nil)
)

type pairKey struct {
	Base  common.Address
	Quote common.Address
}

type storedRound struct {
	answer    *big.Int
	decimals  uint8
	startedAt time.Time
	updatedAt time.Time
}

// OracleStore is an in-memory feed registry, feed reader, and asset reader in
// one, for offline conversions and tests.
type OracleStore struct {
	mu       sync.RWMutex
	feeds    map[pairKey]common.Address
	rounds   map[common.Address]storedRound
	decimals map[common.Address]uint8
	roundID  int64
}

// NewOracleStore creates an empty in-memory oracle store.
func NewOracleStore() *OracleStore {
	return &OracleStore{
		feeds:    make(map[pairKey]common.Address),
		rounds:   make(map[common.Address]storedRound),
		decimals: make(map[common.Address]uint8),
	}
}

// SetFeed registers a feed for an (asset, denomination) pair and installs its
// current answer in one step.
func (s *OracleStore) SetFeed(base, quote, feed common.Address, answer *big.Int, decimals uint8, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feeds[pairKey{base, quote}] = feed
	s.rounds[feed] = storedRound{
		answer:    new(big.Int).Set(answer),
		decimals:  decimals,
		startedAt: updatedAt,
		updatedAt: updatedAt,
	}
}

// SetDecimals registers a token's decimals() value.
func (s *OracleStore) SetDecimals(asset common.Address, decimals uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decimals[asset] = decimals
}

func (s *OracleStore) GetFeed(ctx context.Context, base, quote common.Address) (common.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	feed, ok := s.feeds[pairKey{base, quote}]
	if !ok {
		return common.Address{}, fmt.Errorf("%s/%s: %w", base.Hex(), quote.Hex(), outbound.ErrFeedNotFound)
	}
	return feed, nil
}

func (s *OracleStore) LatestRound(ctx context.Context, feed common.Address) (entity.RoundData, uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, ok := s.rounds[feed]
	if !ok {
		return entity.RoundData{}, 0, fmt.Errorf("no round stored for feed %s", feed.Hex())
	}
	s.roundID++
	data, err := entity.NewRoundData(
		big.NewInt(s.roundID),
		round.answer,
		round.startedAt,
		round.updatedAt,
		big.NewInt(s.roundID),
	)
	if err != nil {
		return entity.RoundData{}, 0, err
	}
	return data, round.decimals, nil
}

func (s *OracleStore) Decimals(ctx context.Context, asset common.Address) (uint8, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decimals, ok := s.decimals[asset]
	return decimals, ok, nil
}
