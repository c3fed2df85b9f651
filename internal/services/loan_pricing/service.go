// Package loan_pricing exposes the conversion engine as an application
// service. It owns the ambient concerns around the engine — structured
// logging and outcome metrics — and implements the inbound ConversionService
// port for HTTP and CLI adapters.
package loan_pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/domain/entity"
	"github.com/pwndao/loan-pricing/internal/pkg/chainlink"
	"github.com/pwndao/loan-pricing/internal/ports/inbound"
	"github.com/pwndao/loan-pricing/internal/ports/outbound"
)

// Compile-time check that Service implements inbound.ConversionService.
var _ inbound.ConversionService = (*Service)(nil)

// Config holds configuration for the pricing service.
type Config struct {
	Logger *slog.Logger
}

func configDefaults() Config {
	return Config{
		Logger: slog.Default(),
	}
}

// Service wraps the conversion engine with logging and metrics.
type Service struct {
	engine  *chainlink.Engine
	metrics outbound.MetricsRecorder
	logger  *slog.Logger
}

// NewService creates a new pricing service.
func NewService(config Config, engine *chainlink.Engine, metrics outbound.MetricsRecorder) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if metrics == nil {
		metrics = outbound.NoopMetrics{}
	}
	if config.Logger == nil {
		config.Logger = configDefaults().Logger
	}

	return &Service{
		engine:  engine,
		metrics: metrics,
		logger:  config.Logger.With("component", "loan-pricing"),
	}, nil
}

func (s *Service) ConvertDenomination(ctx context.Context, amount *big.Int, baseAsset, quoteAsset common.Address, intermediaries []common.Address, invertFlags []bool) (*big.Int, error) {
	converted, err := s.engine.ConvertDenomination(ctx, baseAsset, quoteAsset, amount, intermediaries, invertFlags)
	s.metrics.RecordConversion(ctx, "convert_denomination", outcome(err))
	if err != nil {
		s.logger.Warn("conversion failed",
			"base", baseAsset.Hex(), "quote", quoteAsset.Hex(), "error", err)
		return nil, err
	}
	s.logger.Debug("conversion done",
		"base", baseAsset.Hex(), "quote", quoteAsset.Hex(),
		"amount", amount.String(), "converted", converted.String())
	return converted, nil
}

func (s *Service) GetCollateralAmount(ctx context.Context, creditAsset common.Address, creditAmount *big.Int, collateralAsset common.Address, intermediaries []common.Address, invertFlags []bool, loanToValueBps uint64) (*big.Int, error) {
	collateral, err := s.engine.GetCollateralAmount(ctx, creditAsset, creditAmount, collateralAsset, intermediaries, invertFlags, loanToValueBps)
	s.metrics.RecordConversion(ctx, "get_collateral_amount", outcome(err))
	if err != nil {
		s.logger.Warn("collateral computation failed",
			"credit", creditAsset.Hex(), "collateral", collateralAsset.Hex(),
			"ltvBps", loanToValueBps, "error", err)
		return nil, err
	}
	s.logger.Debug("collateral computed",
		"credit", creditAsset.Hex(), "collateral", collateralAsset.Hex(),
		"ltvBps", loanToValueBps, "amount", collateral.String())
	return collateral, nil
}

func (s *Service) FindCommonDenominatorPrice(ctx context.Context, assetA, assetB common.Address) (entity.CommonDenominatorPrice, error) {
	prices, err := s.engine.FindCommonDenominatorPrice(ctx, assetA, assetB)
	s.metrics.RecordConversion(ctx, "find_common_denominator_price", outcome(err))
	if err != nil {
		s.logger.Warn("denominator search failed",
			"assetA", assetA.Hex(), "assetB", assetB.Hex(), "error", err)
		return entity.CommonDenominatorPrice{}, err
	}
	s.logger.Debug("denominator found",
		"assetA", assetA.Hex(), "assetB", assetB.Hex(),
		"denomination", prices.Denomination.Hex(), "decimals", prices.Decimals)
	return prices, nil
}

// Ping reports readiness. The service holds no connections of its own, so it
// is ready as soon as it is constructed.
func (s *Service) Ping(ctx context.Context) error {
	return nil
}

// outcome classifies an engine error into a low-cardinality metrics label.
func outcome(err error) string {
	if err == nil {
		return "success"
	}

	var (
		gracePeriod  *chainlink.GracePeriodNotOverError
		feedNotFound *chainlink.FeedNotFoundError
		noDenom      *chainlink.CommonDenominatorNotFoundError
		negative     *chainlink.NegativePriceError
		tooOld       *chainlink.PriceTooOldError
		outOfBounds  *chainlink.IntermediaryDenominationsOutOfBoundsError
	)
	switch {
	case errors.Is(err, chainlink.ErrSequencerDown):
		return "sequencer_down"
	case errors.As(err, &gracePeriod):
		return "grace_period_not_over"
	case errors.Is(err, chainlink.ErrInvalidInputLengths), errors.As(err, &outOfBounds):
		return "invalid_input"
	case errors.As(err, &feedNotFound):
		return "feed_not_found"
	case errors.As(err, &noDenom):
		return "no_common_denominator"
	case errors.As(err, &negative):
		return "negative_price"
	case errors.As(err, &tooOld):
		return "stale_price"
	default:
		return "error"
	}
}
