// Package main provides a one-shot CLI for denomination conversions: price an
// amount of one asset in units of another, optionally applying a
// loan-to-value ratio. With -offline it runs against a small built-in feed
// fixture instead of a live node, which is handy for trying out paths and
// invert flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/adapters/outbound/evm"
	"github.com/pwndao/loan-pricing/internal/adapters/outbound/memory"
	"github.com/pwndao/loan-pricing/internal/pkg/chainlink"
	"github.com/pwndao/loan-pricing/internal/pkg/env"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

type cliConfig struct {
	base           common.Address
	quote          common.Address
	amount         *big.Int
	intermediaries []common.Address
	invertFlags    []bool
	ltvBps         uint64
	rpcURL         string
	registry       common.Address
	offline        bool
}

func parseConfig(args []string) (cliConfig, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	base := fs.String("base", "", "base asset address")
	quote := fs.String("quote", "", "quote asset address")
	amount := fs.String("amount", "", "amount of the base asset, in its smallest unit")
	intermediaries := fs.String("intermediaries", "", "comma-separated intermediary denomination addresses")
	invertFlags := fs.String("invert", "", "comma-separated per-hop invert flags (true/false)")
	ltvBps := fs.Uint64("ltv", 0, "loan-to-value in basis points; when set, prints the required collateral")
	rpcURL := fs.String("rpc", "", "Ethereum JSON-RPC endpoint")
	registry := fs.String("registry", "", "feed registry contract address (default mainnet)")
	offline := fs.Bool("offline", false, "use a built-in feed fixture instead of a live node")
	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}

	cfg := cliConfig{
		ltvBps:  *ltvBps,
		offline: *offline,
	}

	if !common.IsHexAddress(*base) {
		return cliConfig{}, fmt.Errorf("invalid base asset address %q", *base)
	}
	cfg.base = common.HexToAddress(*base)

	if !common.IsHexAddress(*quote) {
		return cliConfig{}, fmt.Errorf("invalid quote asset address %q", *quote)
	}
	cfg.quote = common.HexToAddress(*quote)

	parsed, ok := new(big.Int).SetString(*amount, 10)
	if !ok {
		return cliConfig{}, fmt.Errorf("invalid amount %q", *amount)
	}
	cfg.amount = parsed

	if *intermediaries != "" {
		for _, s := range strings.Split(*intermediaries, ",") {
			s = strings.TrimSpace(s)
			if !common.IsHexAddress(s) {
				return cliConfig{}, fmt.Errorf("invalid intermediary address %q", s)
			}
			cfg.intermediaries = append(cfg.intermediaries, common.HexToAddress(s))
		}
	}
	if *invertFlags != "" {
		for _, s := range strings.Split(*invertFlags, ",") {
			b, err := strconv.ParseBool(strings.TrimSpace(s))
			if err != nil {
				return cliConfig{}, fmt.Errorf("invalid invert flag %q", s)
			}
			cfg.invertFlags = append(cfg.invertFlags, b)
		}
	}

	if !cfg.offline {
		cfg.rpcURL = *rpcURL
		if cfg.rpcURL == "" {
			cfg.rpcURL = env.Get("ETH_RPC_URL", "")
		}
		if cfg.rpcURL == "" {
			return cliConfig{}, fmt.Errorf("RPC endpoint not provided (use -rpc flag, ETH_RPC_URL env var, or -offline)")
		}

		registryHex := *registry
		if registryHex == "" {
			registryHex = env.Get("FEED_REGISTRY_ADDRESS", "")
		}
		if registryHex == "" {
			cfg.registry = chainlink.MainnetFeedRegistry
		} else {
			if !common.IsHexAddress(registryHex) {
				return cliConfig{}, fmt.Errorf("invalid registry address %q", registryHex)
			}
			cfg.registry = common.HexToAddress(registryHex)
		}
	}

	return cfg, nil
}

func run(ctx context.Context, args []string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: env.ParseLogLevel(slog.LevelWarn),
	}))
	slog.SetDefault(logger)

	engineCfg := chainlink.Config{}
	if cfg.offline {
		store := offlineFixture()
		engineCfg.Registry = store
		engineCfg.Feeds = store
		engineCfg.Assets = store
	} else {
		client, err := evm.NewClient(ctx, evm.ClientConfig{RPCURL: cfg.rpcURL, Logger: logger})
		if err != nil {
			return fmt.Errorf("connecting to Ethereum node: %w", err)
		}
		defer client.Close()

		registry, err := evm.NewRegistry(client, cfg.registry)
		if err != nil {
			return fmt.Errorf("creating registry adapter: %w", err)
		}
		feeds, err := evm.NewFeedReader(client)
		if err != nil {
			return fmt.Errorf("creating feed reader: %w", err)
		}
		assets, err := evm.NewAssetReader(client)
		if err != nil {
			return fmt.Errorf("creating asset reader: %w", err)
		}
		engineCfg.Registry = registry
		engineCfg.Feeds = feeds
		engineCfg.Assets = assets
	}

	engine, err := chainlink.NewEngine(engineCfg)
	if err != nil {
		return fmt.Errorf("creating conversion engine: %w", err)
	}

	if cfg.ltvBps > 0 {
		collateral, err := engine.GetCollateralAmount(ctx, cfg.base, cfg.amount, cfg.quote,
			cfg.intermediaries, cfg.invertFlags, cfg.ltvBps)
		if err != nil {
			return err
		}
		fmt.Println(collateral.String())
		return nil
	}

	converted, err := engine.ConvertDenomination(ctx, cfg.base, cfg.quote, cfg.amount,
		cfg.intermediaries, cfg.invertFlags)
	if err != nil {
		return err
	}
	fmt.Println(converted.String())
	return nil
}

// Well-known mainnet token addresses for the offline fixture.
var (
	fixtureWBTC = common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599")
	fixtureUSDC = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	fixtureDAI  = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
)

// offlineFixture builds an in-memory oracle with a handful of mainnet-like
// feeds so conversions work without a node.
func offlineFixture() *memory.OracleStore {
	store := memory.NewOracleStore()
	now := time.Now()
	usd := chainlink.DenominationUSD
	eth := chainlink.DenominationETH

	feed := func(i int64) common.Address {
		return common.BigToAddress(big.NewInt(0xf000 + i))
	}

	store.SetFeed(eth, usd, feed(1), big.NewInt(2_500_00000000), 8, now)          // ETH/USD 2500
	store.SetFeed(fixtureWBTC, usd, feed(2), big.NewInt(60_000_00000000), 8, now) // WBTC/USD 60000
	wbtcETH := new(big.Int).Mul(big.NewInt(24), big.NewInt(1e18)) // WBTC/ETH 24
	store.SetFeed(fixtureWBTC, eth, feed(3), wbtcETH, 18, now)
	store.SetFeed(fixtureUSDC, usd, feed(4), big.NewInt(1_00000000), 8, now)
	store.SetFeed(fixtureDAI, usd, feed(5), big.NewInt(1_00000000), 8, now)

	store.SetDecimals(chainlink.MainnetWETH, 18)
	store.SetDecimals(fixtureWBTC, 8)
	store.SetDecimals(fixtureUSDC, 6)
	store.SetDecimals(fixtureDAI, 18)
	return store
}
