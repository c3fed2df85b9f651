// Package evm implements the oracle ports against a JSON-RPC Ethereum node:
// feed registry lookups, AggregatorV3 round reads, and ERC20 decimals, all
// via eth_call with:
//   - JSON-RPC batching where one port call needs multiple contract reads
//   - Rate limiting to stay within node provider limits
//   - Configurable per-request timeouts
package evm

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// ClientConfig holds configuration for the EVM JSON-RPC client.
type ClientConfig struct {
	// RPCURL is the JSON-RPC endpoint of an Ethereum node.
	RPCURL string

	// Timeout is the maximum time to wait for a single request.
	Timeout time.Duration

	// RateLimitPerSec is the rate limit in requests per second.
	RateLimitPerSec int

	// Logger is the structured logger for the client.
	Logger *slog.Logger
}

// ClientConfigDefaults returns a config with default values.
func ClientConfigDefaults() ClientConfig {
	return ClientConfig{
		Timeout:         15 * time.Second,
		RateLimitPerSec: 10,
		Logger:          slog.Default(),
	}
}

// Client is a thin rate-limited wrapper over an rpc.Client, shared by the
// registry, feed, and asset adapters in this package.
type Client struct {
	rpc     *rpc.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	timeout time.Duration
}

// NewClient dials the configured endpoint and builds a client.
func NewClient(ctx context.Context, config ClientConfig) (*Client, error) {
	if config.RPCURL == "" {
		return nil, errors.New("RPCURL is required")
	}
	applyClientDefaults(&config)

	rpcClient, err := rpc.DialContext(ctx, config.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", config.RPCURL, err)
	}
	return newClient(rpcClient, config), nil
}

// NewClientWithRPC wraps an already-dialed rpc.Client.
func NewClientWithRPC(rpcClient *rpc.Client, config ClientConfig) *Client {
	applyClientDefaults(&config)
	return newClient(rpcClient, config)
}

func newClient(rpcClient *rpc.Client, config ClientConfig) *Client {
	return &Client{
		rpc:     rpcClient,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimitPerSec), 1),
		logger:  config.Logger.With("component", "evm_client"),
		timeout: config.Timeout,
	}
}

func applyClientDefaults(config *ClientConfig) {
	defaults := ClientConfigDefaults()
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RateLimitPerSec == 0 {
		config.RateLimitPerSec = defaults.RateLimitPerSec
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// ethCallArg mirrors go-ethereum's internal callMsg JSON encoding for eth_call.
type ethCallArg struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// Call performs a single eth_call against the latest block.
func (c *Client) Call(ctx context.Context, to common.Address, callData []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result hexutil.Bytes
	err := c.rpc.CallContext(ctx, &result, "eth_call",
		ethCallArg{To: to.Hex(), Data: "0x" + hex.EncodeToString(callData)}, "latest")
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BatchCall sends all calls in a single JSON-RPC batch request against the
// latest block, minimizing round-trip latency. A per-element revert surfaces
// in that element's error, not as a batch failure.
func (c *Client) BatchCall(ctx context.Context, targets []common.Address, callData [][]byte) ([][]byte, []error, error) {
	if len(targets) != len(callData) {
		return nil, nil, fmt.Errorf("got %d targets for %d payloads", len(targets), len(callData))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	elems := make([]rpc.BatchElem, len(targets))
	hexResults := make([]hexutil.Bytes, len(targets))
	for i := range targets {
		elems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []interface{}{
				ethCallArg{To: targets[i].Hex(), Data: "0x" + hex.EncodeToString(callData[i])},
				"latest",
			},
			Result: &hexResults[i],
		}
	}

	if err := c.rpc.BatchCallContext(ctx, elems); err != nil {
		return nil, nil, fmt.Errorf("batch eth_call failed: %w", err)
	}

	results := make([][]byte, len(targets))
	callErrs := make([]error, len(targets))
	for i, elem := range elems {
		if elem.Error != nil {
			callErrs[i] = elem.Error
			continue
		}
		results[i] = hexResults[i]
	}
	return results, callErrs, nil
}

// isRevert reports whether an eth_call error is an EVM execution revert
// rather than a transport failure. Reverts from geth-lineage nodes carry
// error data; other providers only give the message text.
func isRevert(err error) bool {
	if err == nil {
		return false
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) && dataErr.ErrorData() != nil {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}
