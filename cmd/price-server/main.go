// Package main runs the loan pricing API server: it resolves Chainlink feeds
// through the on-chain feed registry and serves denomination conversions and
// collateral computations over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	httpadapter "github.com/pwndao/loan-pricing/internal/adapters/inbound/http"
	"github.com/pwndao/loan-pricing/internal/adapters/outbound/evm"
	"github.com/pwndao/loan-pricing/internal/adapters/outbound/telemetry"
	"github.com/pwndao/loan-pricing/internal/pkg/chainlink"
	"github.com/pwndao/loan-pricing/internal/pkg/env"
	"github.com/pwndao/loan-pricing/internal/services/loan_pricing"
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
	addr          string
	rpcURL        string
	registry      common.Address
	sequencerFeed *common.Address
	gracePeriod   time.Duration
	maxPriceAge   time.Duration
	otlpEndpoint  string
}

func parseConfig(args []string) (cliConfig, error) {
	fs := flag.NewFlagSet("price-server", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (default :8080)")
	rpcURL := fs.String("rpc", "", "Ethereum JSON-RPC endpoint")
	registry := fs.String("registry", "", "feed registry contract address (default mainnet)")
	sequencerFeed := fs.String("sequencer-feed", "", "L2 sequencer uptime feed address (omit off L2)")
	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}

	cfg := cliConfig{
		addr:         *addr,
		rpcURL:       *rpcURL,
		gracePeriod:  env.GetDuration("GRACE_PERIOD", chainlink.DefaultGracePeriod),
		maxPriceAge:  env.GetDuration("MAX_PRICE_AGE", chainlink.DefaultMaxPriceAge),
		otlpEndpoint: env.Get("OTLP_ENDPOINT", ""),
	}

	if cfg.addr == "" {
		cfg.addr = env.Get("API_ADDR", ":8080")
	}

	if cfg.rpcURL == "" {
		cfg.rpcURL = env.Get("ETH_RPC_URL", "")
	}
	if cfg.rpcURL == "" {
		return cliConfig{}, fmt.Errorf("RPC endpoint not provided (use -rpc flag or ETH_RPC_URL env var)")
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

	sequencerHex := *sequencerFeed
	if sequencerHex == "" {
		sequencerHex = env.Get("SEQUENCER_UPTIME_FEED", "")
	}
	if sequencerHex != "" {
		if !common.IsHexAddress(sequencerHex) {
			return cliConfig{}, fmt.Errorf("invalid sequencer feed address %q", sequencerHex)
		}
		feed := common.HexToAddress(sequencerHex)
		cfg.sequencerFeed = &feed
	}

	return cfg, nil
}

func run(ctx context.Context, args []string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: env.ParseLogLevel(slog.LevelInfo),
	}))
	slog.SetDefault(logger)

	logger.Info("starting price server",
		"addr", cfg.addr, "registry", cfg.registry.Hex(), "l2", cfg.sequencerFeed != nil)

	metricsShutdown, err := telemetry.InitMetrics(ctx, telemetry.MetricConfig{
		ServiceName:  "price-server",
		Environment:  env.Get("ENVIRONMENT", "development"),
		OTLPEndpoint: cfg.otlpEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}
	defer func() {
		if err := metricsShutdown(context.Background()); err != nil {
			logger.Error("metrics shutdown failed", "error", err)
		}
	}()

	tracerShutdown, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceName:  "price-server",
		Environment:  env.Get("ENVIRONMENT", "development"),
		OTLPEndpoint: cfg.otlpEndpoint,
	})
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		if err := tracerShutdown(context.Background()); err != nil {
			logger.Error("tracer shutdown failed", "error", err)
		}
	}()

	client, err := evm.NewClient(ctx, evm.ClientConfig{
		RPCURL: cfg.rpcURL,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("connecting to Ethereum node: %w", err)
	}
	defer client.Close()
	logger.Info("Ethereum node connected")

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

	metrics, err := telemetry.NewMetrics("loan-pricing")
	if err != nil {
		return fmt.Errorf("creating metrics recorder: %w", err)
	}

	engine, err := chainlink.NewEngine(chainlink.Config{
		Registry:            registry,
		Feeds:               feeds,
		Assets:              assets,
		Metrics:             metrics,
		GracePeriod:         cfg.gracePeriod,
		MaxPriceAge:         cfg.maxPriceAge,
		SequencerUptimeFeed: cfg.sequencerFeed,
	})
	if err != nil {
		return fmt.Errorf("creating conversion engine: %w", err)
	}

	service, err := loan_pricing.NewService(loan_pricing.Config{Logger: logger}, engine, metrics)
	if err != nil {
		return fmt.Errorf("creating pricing service: %w", err)
	}

	handler := httpadapter.NewHandler(service, logger)
	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Addr:   cfg.addr,
		Logger: logger,
	}, handler)

	server.Start()
	logger.Info("server started")

	// Block until context is cancelled (signal or test cancellation).
	<-ctx.Done()
	logger.Info("shutting down...")

	if err := server.Shutdown(25 * time.Second); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("shutdown complete")

	return nil
}
