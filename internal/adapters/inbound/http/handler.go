// handler.go provides HTTP REST API handlers for the pricing service.
//
// This inbound adapter exposes the service functionality over HTTP:
//   - POST /v1/convert: Convert an amount between asset denominations
//   - POST /v1/collateral: Required collateral for a credit amount and LTV
//   - GET /v1/common-price: Both assets' prices in a shared denomination
//   - GET /health: Health check endpoint for liveness/readiness probes
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/pkg/chainlink"
	"github.com/pwndao/loan-pricing/internal/ports/inbound"
)

// Handler implements HTTP handlers for the API.
type Handler struct {
	service inbound.ConversionService
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler with the given service.
func NewHandler(service inbound.ConversionService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the HTTP routes with the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /v1/convert", h.Convert)
	mux.HandleFunc("POST /v1/collateral", h.Collateral)
	mux.HandleFunc("GET /v1/common-price", h.CommonPrice)
}

// Health handles the health check endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		h.respondError(w, http.StatusServiceUnavailable, "service unhealthy")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type convertRequest struct {
	Amount         string   `json:"amount"`
	BaseAsset      string   `json:"baseAsset"`
	QuoteAsset     string   `json:"quoteAsset"`
	Intermediaries []string `json:"intermediaries"`
	InvertFlags    []bool   `json:"invertFlags"`
}

type convertResponse struct {
	Amount string `json:"amount"`
}

// Convert handles POST /v1/convert.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	base, err := parseAddress("baseAsset", req.BaseAsset)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	quote, err := parseAddress("quoteAsset", req.QuoteAsset)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	intermediaries, err := parseAddresses(req.Intermediaries)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	converted, err := h.service.ConvertDenomination(r.Context(), amount, base, quote, intermediaries, req.InvertFlags)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, convertResponse{Amount: converted.String()})
}

type collateralRequest struct {
	CreditAsset     string   `json:"creditAsset"`
	CreditAmount    string   `json:"creditAmount"`
	CollateralAsset string   `json:"collateralAsset"`
	Intermediaries  []string `json:"intermediaries"`
	InvertFlags     []bool   `json:"invertFlags"`
	LoanToValueBps  uint64   `json:"loanToValueBps"`
}

type collateralResponse struct {
	CollateralAmount string `json:"collateralAmount"`
}

// Collateral handles POST /v1/collateral.
func (h *Handler) Collateral(w http.ResponseWriter, r *http.Request) {
	var req collateralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	creditAmount, err := parseAmount(req.CreditAmount)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	credit, err := parseAddress("creditAsset", req.CreditAsset)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	collateral, err := parseAddress("collateralAsset", req.CollateralAsset)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	intermediaries, err := parseAddresses(req.Intermediaries)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := h.service.GetCollateralAmount(r.Context(), credit, creditAmount, collateral,
		intermediaries, req.InvertFlags, req.LoanToValueBps)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, collateralResponse{CollateralAmount: amount.String()})
}

type commonPriceResponse struct {
	PriceA       string `json:"priceA"`
	PriceB       string `json:"priceB"`
	Decimals     uint8  `json:"decimals"`
	Denomination string `json:"denomination"`
}

// CommonPrice handles GET /v1/common-price.
func (h *Handler) CommonPrice(w http.ResponseWriter, r *http.Request) {
	assetA, err := parseAddress("assetA", r.URL.Query().Get("assetA"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	assetB, err := parseAddress("assetB", r.URL.Query().Get("assetB"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	prices, err := h.service.FindCommonDenominatorPrice(r.Context(), assetA, assetB)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, commonPriceResponse{
		PriceA:       prices.PriceA.String(),
		PriceB:       prices.PriceB.String(),
		Decimals:     prices.Decimals,
		Denomination: prices.Denomination.Hex(),
	})
}

// respondServiceError maps pricing faults onto HTTP statuses: caller mistakes
// are 400, pairs the oracle cannot price are 422, sequencer outages are 503,
// and anything else is treated as an upstream failure.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var (
		gracePeriod  *chainlink.GracePeriodNotOverError
		feedNotFound *chainlink.FeedNotFoundError
		noDenom      *chainlink.CommonDenominatorNotFoundError
		negative     *chainlink.NegativePriceError
		tooOld       *chainlink.PriceTooOldError
		outOfBounds  *chainlink.IntermediaryDenominationsOutOfBoundsError
	)
	switch {
	case errors.Is(err, chainlink.ErrInvalidInputLengths), errors.As(err, &outOfBounds):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, chainlink.ErrSequencerDown), errors.As(err, &gracePeriod):
		h.respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &feedNotFound), errors.As(err, &noDenom),
		errors.As(err, &negative), errors.As(err, &tooOld):
		h.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("conversion request failed", "error", err)
		h.respondError(w, http.StatusBadGateway, "upstream oracle error")
	}
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func parseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", field, s)
	}
	return common.HexToAddress(s), nil
}

func parseAddresses(in []string) ([]common.Address, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]common.Address, len(in))
	for i, s := range in {
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid intermediary address %q", s)
		}
		out[i] = common.HexToAddress(s)
	}
	return out, nil
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
