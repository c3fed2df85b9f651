package evm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/pwndao/loan-pricing/internal/pkg/chainlink"
	"github.com/pwndao/loan-pricing/internal/ports/outbound"
	"github.com/pwndao/loan-pricing/internal/testutil"
)

var (
	registryAddr = common.HexToAddress("0x0000000000000000000000000000000000000e01")
	tokenA       = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	tokenB       = common.HexToAddress("0x0000000000000000000000000000000000000b01")
	feedA        = common.HexToAddress("0x0000000000000000000000000000000000000f01")
	feedB        = common.HexToAddress("0x0000000000000000000000000000000000000f02")
)

func newTestClient(t *testing.T, node *testutil.MockOracleNode) *Client {
	t.Helper()
	rpcClient, err := rpc.Dial(node.Server.URL)
	if err != nil {
		t.Fatalf("dialing mock node: %v", err)
	}
	t.Cleanup(rpcClient.Close)
	return NewClientWithRPC(rpcClient, ClientConfig{
		RateLimitPerSec: 1000,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestRegistryGetFeed(t *testing.T) {
	node := testutil.StartMockOracleNode(t, registryAddr)
	defer node.Server.Close()
	node.RegisterFeed(tokenA, chainlink.DenominationUSD, feedA, testutil.NodeRound{
		Answer:    big.NewInt(100_000_000),
		Decimals:  8,
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
	})

	registry, err := NewRegistry(newTestClient(t, node), registryAddr)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	got, err := registry.GetFeed(context.Background(), tokenA, chainlink.DenominationUSD)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if got != feedA {
		t.Errorf("got %s, want %s", got.Hex(), feedA.Hex())
	}

	// unregistered pairs revert on chain; that must surface as not-found
	_, err = registry.GetFeed(context.Background(), tokenB, chainlink.DenominationUSD)
	if !errors.Is(err, outbound.ErrFeedNotFound) {
		t.Errorf("unregistered pair: got %v, want ErrFeedNotFound", err)
	}
}

func TestFeedReaderLatestRound(t *testing.T) {
	updatedAt := time.Date(2026, 8, 31, 11, 59, 0, 0, time.UTC)
	startedAt := updatedAt.Add(-time.Minute)

	node := testutil.StartMockOracleNode(t, registryAddr)
	defer node.Server.Close()
	node.RegisterFeed(tokenA, chainlink.DenominationUSD, feedA, testutil.NodeRound{
		Answer:    big.NewInt(123_456_789),
		Decimals:  8,
		StartedAt: startedAt,
		UpdatedAt: updatedAt,
	})

	reader, err := NewFeedReader(newTestClient(t, node))
	if err != nil {
		t.Fatalf("NewFeedReader: %v", err)
	}

	round, decimals, err := reader.LatestRound(context.Background(), feedA)
	if err != nil {
		t.Fatalf("LatestRound: %v", err)
	}
	if round.Answer.Cmp(big.NewInt(123_456_789)) != 0 {
		t.Errorf("answer = %s, want 123456789", round.Answer)
	}
	if decimals != 8 {
		t.Errorf("decimals = %d, want 8", decimals)
	}
	if !round.UpdatedAt.Equal(updatedAt) {
		t.Errorf("updatedAt = %s, want %s", round.UpdatedAt, updatedAt)
	}
	if !round.StartedAt.Equal(startedAt) {
		t.Errorf("startedAt = %s, want %s", round.StartedAt, startedAt)
	}

	if _, _, err := reader.LatestRound(context.Background(), feedB); err == nil {
		t.Error("expected error for unknown feed")
	}
}

func TestAssetReaderDecimals(t *testing.T) {
	node := testutil.StartMockOracleNode(t, registryAddr)
	defer node.Server.Close()
	node.RegisterToken(tokenA, 18)

	reader, err := NewAssetReader(newTestClient(t, node))
	if err != nil {
		t.Fatalf("NewAssetReader: %v", err)
	}

	decimals, ok, err := reader.Decimals(context.Background(), tokenA)
	if err != nil || !ok || decimals != 18 {
		t.Errorf("got (%d, %t, %v), want (18, true, nil)", decimals, ok, err)
	}

	// an address with no code returns empty data, not an error
	decimals, ok, err = reader.Decimals(context.Background(), tokenB)
	if err != nil || ok || decimals != 0 {
		t.Errorf("codeless address: got (%d, %t, %v), want (0, false, nil)", decimals, ok, err)
	}
}

func TestEngineOverEVMAdapters(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	node := testutil.StartMockOracleNode(t, registryAddr)
	defer node.Server.Close()
	node.RegisterFeed(tokenA, chainlink.DenominationUSD, feedA, testutil.NodeRound{
		Answer:    big.NewInt(200_000_000), // 2 USD
		Decimals:  8,
		StartedAt: now.Add(-time.Hour),
		UpdatedAt: now,
	})
	node.RegisterFeed(tokenB, chainlink.DenominationUSD, feedB, testutil.NodeRound{
		Answer:    big.NewInt(100_000_000), // 1 USD
		Decimals:  8,
		StartedAt: now.Add(-time.Hour),
		UpdatedAt: now,
	})
	node.RegisterToken(tokenA, 6)
	node.RegisterToken(tokenB, 6)

	client := newTestClient(t, node)
	registry, err := NewRegistry(client, registryAddr)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	feeds, err := NewFeedReader(client)
	if err != nil {
		t.Fatalf("NewFeedReader: %v", err)
	}
	assets, err := NewAssetReader(client)
	if err != nil {
		t.Fatalf("NewAssetReader: %v", err)
	}

	engine, err := chainlink.NewEngine(chainlink.Config{
		Registry: registry,
		Feeds:    feeds,
		Assets:   assets,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	// 1 whole A at 2 USD buys 2 whole B at 1 USD
	got, err := engine.ConvertDenomination(context.Background(), tokenA, tokenB, big.NewInt(1_000_000), nil, nil)
	if err != nil {
		t.Fatalf("ConvertDenomination: %v", err)
	}
	if got.Cmp(big.NewInt(2_000_000)) != 0 {
		t.Errorf("got %s, want 2000000", got)
	}
}
