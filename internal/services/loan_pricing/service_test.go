package loan_pricing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/pkg/chainlink"
	"github.com/pwndao/loan-pricing/internal/testutil"
)

var (
	tokenA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	tokenB = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	feedA  = common.HexToAddress("0x0000000000000000000000000000000000000f01")
	feedB  = common.HexToAddress("0x0000000000000000000000000000000000000f02")
)

type conversionRecord struct {
	operation string
	outcome   string
}

type captureMetrics struct {
	conversions []conversionRecord
}

func (c *captureMetrics) RecordConversion(ctx context.Context, operation, outcome string) {
	c.conversions = append(c.conversions, conversionRecord{operation, outcome})
}

func (c *captureMetrics) RecordDenominatorProbe(ctx context.Context, denomination string, hit bool) {
}

func newTestService(t *testing.T, metrics *captureMetrics) *Service {
	t.Helper()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	registry := testutil.NewMockFeedRegistry()
	feeds := testutil.NewMockFeedReader()
	assets := testutil.NewMockAssetReader()

	registry.Register(tokenA, chainlink.DenominationUSD, feedA)
	registry.Register(tokenB, chainlink.DenominationUSD, feedB)
	feeds.SetRound(feedA, testutil.FeedRound{
		Answer: big.NewInt(200_000_000), Decimals: 8,
		StartedAt: now.Add(-time.Hour), UpdatedAt: now,
	})
	feeds.SetRound(feedB, testutil.FeedRound{
		Answer: big.NewInt(100_000_000), Decimals: 8,
		StartedAt: now.Add(-time.Hour), UpdatedAt: now,
	})
	assets.SetDecimals(tokenA, 6)
	assets.SetDecimals(tokenB, 6)

	engine, err := chainlink.NewEngine(chainlink.Config{
		Registry: registry,
		Feeds:    feeds,
		Assets:   assets,
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewService(Config{Logger: logger}, engine, metrics)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewServiceRequiresEngine(t *testing.T) {
	if _, err := NewService(Config{}, nil, nil); err == nil {
		t.Error("expected error for nil engine")
	}
}

func TestConvertDenominationRecordsSuccess(t *testing.T) {
	metrics := &captureMetrics{}
	svc := newTestService(t, metrics)

	got, err := svc.ConvertDenomination(context.Background(), big.NewInt(1_000_000), tokenA, tokenB, nil, nil)
	if err != nil {
		t.Fatalf("ConvertDenomination: %v", err)
	}
	if got.Cmp(big.NewInt(2_000_000)) != 0 {
		t.Errorf("got %s, want 2000000", got)
	}

	want := conversionRecord{"convert_denomination", "success"}
	if len(metrics.conversions) != 1 || metrics.conversions[0] != want {
		t.Errorf("recorded %v, want [%v]", metrics.conversions, want)
	}
}

func TestGetCollateralAmountRecordsOutcome(t *testing.T) {
	metrics := &captureMetrics{}
	svc := newTestService(t, metrics)

	got, err := svc.GetCollateralAmount(context.Background(), tokenA, big.NewInt(1_000_000), tokenB, nil, nil, 5_000)
	if err != nil {
		t.Fatalf("GetCollateralAmount: %v", err)
	}
	if got.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Errorf("got %s, want 1000000", got)
	}
	if metrics.conversions[len(metrics.conversions)-1].operation != "get_collateral_amount" {
		t.Errorf("recorded %v", metrics.conversions)
	}
}

func TestOutcomeClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "success"},
		{"sequencer down", chainlink.ErrSequencerDown, "sequencer_down"},
		{
			"grace period",
			&chainlink.GracePeriodNotOverError{Elapsed: time.Second, GracePeriod: time.Minute},
			"grace_period_not_over",
		},
		{"invalid lengths", chainlink.ErrInvalidInputLengths, "invalid_input"},
		{"too many intermediaries", &chainlink.IntermediaryDenominationsOutOfBoundsError{Provided: 3, Max: 2}, "invalid_input"},
		{"feed not found", &chainlink.FeedNotFoundError{}, "feed_not_found"},
		{"no denominator", &chainlink.CommonDenominatorNotFoundError{}, "no_common_denominator"},
		{"negative price", &chainlink.NegativePriceError{Answer: big.NewInt(-1)}, "negative_price"},
		{"stale price", &chainlink.PriceTooOldError{}, "stale_price"},
		{"anything else", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcome(tt.err); got != tt.want {
				t.Errorf("outcome(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestFindCommonDenominatorPrice(t *testing.T) {
	metrics := &captureMetrics{}
	svc := newTestService(t, metrics)

	prices, err := svc.FindCommonDenominatorPrice(context.Background(), tokenA, tokenB)
	if err != nil {
		t.Fatalf("FindCommonDenominatorPrice: %v", err)
	}
	if prices.Denomination != chainlink.DenominationUSD {
		t.Errorf("denomination = %s, want USD sentinel", prices.Denomination.Hex())
	}
}

func TestPing(t *testing.T) {
	svc := newTestService(t, &captureMetrics{})
	if err := svc.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
