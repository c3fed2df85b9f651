package testutil

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/pwndao/loan-pricing/internal/pkg/abis"
)

// JSONRPCRequest represents a JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// NodeRound is the feed state served by MockOracleNode.
type NodeRound struct {
	Answer    *big.Int
	Decimals  uint8
	StartedAt time.Time
	UpdatedAt time.Time
}

// MockOracleNode is a mock Ethereum node serving the three contract surfaces
// the oracle adapters touch: feed registry getFeed, aggregator
// latestRoundData/decimals, and ERC20 decimals. It handles both single
// requests and JSON-RPC batches, and answers unregistered registry pairs and
// decimals-less tokens with execution reverts, matching real node behavior.
type MockOracleNode struct {
	t *testing.T

	mu       sync.Mutex
	registry common.Address
	feeds    map[[2]common.Address]common.Address
	rounds   map[common.Address]NodeRound
	tokens   map[common.Address]uint8

	registryABI   *abi.ABI
	aggregatorABI *abi.ABI
	erc20ABI      *abi.ABI

	Server *httptest.Server
}

// StartMockOracleNode creates a mock node with the given registry address.
// Close the returned node's Server when done.
func StartMockOracleNode(t *testing.T, registry common.Address) *MockOracleNode {
	t.Helper()

	registryABI, err := abis.GetFeedRegistryABI()
	if err != nil {
		t.Fatalf("load feed registry ABI: %v", err)
	}
	aggregatorABI, err := abis.GetAggregatorV3ABI()
	if err != nil {
		t.Fatalf("load aggregator ABI: %v", err)
	}
	erc20ABI, err := abis.GetERC20ABI()
	if err != nil {
		t.Fatalf("load ERC20 ABI: %v", err)
	}

	n := &MockOracleNode{
		t:             t,
		registry:      registry,
		feeds:         make(map[[2]common.Address]common.Address),
		rounds:        make(map[common.Address]NodeRound),
		tokens:        make(map[common.Address]uint8),
		registryABI:   registryABI,
		aggregatorABI: aggregatorABI,
		erc20ABI:      erc20ABI,
	}
	n.Server = httptest.NewServer(http.HandlerFunc(n.handle))
	return n
}

// RegisterFeed maps a pair to a feed and installs the feed's round.
func (n *MockOracleNode) RegisterFeed(base, quote, feed common.Address, round NodeRound) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.feeds[[2]common.Address{base, quote}] = feed
	n.rounds[feed] = round
}

// RegisterToken installs a token's decimals() value.
func (n *MockOracleNode) RegisterToken(token common.Address, decimals uint8) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens[token] = decimals
}

func (n *MockOracleNode) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []JSONRPCRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			http.Error(w, "parse error", http.StatusBadRequest)
			return
		}
		responses := make([]json.RawMessage, len(reqs))
		for i, req := range reqs {
			responses[i] = n.dispatch(req)
		}
		_ = json.NewEncoder(w).Encode(responses)
		return
	}

	var req JSONRPCRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		http.Error(w, "parse error", http.StatusBadRequest)
		return
	}
	_, _ = w.Write(n.dispatch(req))
}

func (n *MockOracleNode) dispatch(req JSONRPCRequest) json.RawMessage {
	if req.Method != "eth_call" {
		return rpcError(req.ID, -32601, "method not found: "+req.Method)
	}

	to, data, ok := parseEthCall(req.Params)
	if !ok {
		return rpcError(req.ID, -32602, "invalid eth_call params")
	}
	result, revert := n.call(to, data)
	if revert {
		return rpcRevert(req.ID)
	}
	resultJSON, _ := json.Marshal("0x" + hex.EncodeToString(result))
	return rpcResult(req.ID, json.RawMessage(resultJSON))
}

// call executes one eth_call against the mock state. revert=true means the
// EVM would have reverted.
func (n *MockOracleNode) call(to common.Address, data []byte) (result []byte, revert bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(data) < 4 {
		return nil, true
	}
	selector := data[:4]

	if to == n.registry {
		method := n.registryABI.Methods["getFeed"]
		if !bytes.Equal(selector, method.ID) {
			return nil, true
		}
		args, err := method.Inputs.Unpack(data[4:])
		if err != nil {
			return nil, true
		}
		base, _ := args[0].(common.Address)
		quote, _ := args[1].(common.Address)
		feed, found := n.feeds[[2]common.Address{base, quote}]
		if !found {
			return nil, true
		}
		packed, err := method.Outputs.Pack(feed)
		if err != nil {
			n.t.Fatalf("packing getFeed output: %v", err)
		}
		return packed, false
	}

	if round, ok := n.rounds[to]; ok {
		roundMethod := n.aggregatorABI.Methods["latestRoundData"]
		decimalsMethod := n.aggregatorABI.Methods["decimals"]
		switch {
		case bytes.Equal(selector, roundMethod.ID):
			packed, err := roundMethod.Outputs.Pack(
				big.NewInt(1),
				round.Answer,
				big.NewInt(round.StartedAt.Unix()),
				big.NewInt(round.UpdatedAt.Unix()),
				big.NewInt(1),
			)
			if err != nil {
				n.t.Fatalf("packing latestRoundData output: %v", err)
			}
			return packed, false
		case bytes.Equal(selector, decimalsMethod.ID):
			packed, err := decimalsMethod.Outputs.Pack(round.Decimals)
			if err != nil {
				n.t.Fatalf("packing feed decimals output: %v", err)
			}
			return packed, false
		}
		return nil, true
	}

	if decimals, ok := n.tokens[to]; ok {
		method := n.erc20ABI.Methods["decimals"]
		if !bytes.Equal(selector, method.ID) {
			return nil, true
		}
		packed, err := method.Outputs.Pack(decimals)
		if err != nil {
			n.t.Fatalf("packing token decimals output: %v", err)
		}
		return packed, false
	}

	// unknown address: no code, eth_call returns empty
	return []byte{}, false
}

func parseEthCall(params json.RawMessage) (common.Address, []byte, bool) {
	var p []json.RawMessage
	if err := json.Unmarshal(params, &p); err != nil || len(p) < 1 {
		return common.Address{}, nil, false
	}
	var callObj map[string]interface{}
	if err := json.Unmarshal(p[0], &callObj); err != nil {
		return common.Address{}, nil, false
	}
	toHex, _ := callObj["to"].(string)
	// go-ethereum may use "data" or "input" for the calldata field
	dataHex, _ := callObj["data"].(string)
	if dataHex == "" {
		dataHex, _ = callObj["input"].(string)
	}
	dataBytes, err := hex.DecodeString(strings.TrimPrefix(dataHex, "0x"))
	if err != nil {
		return common.Address{}, nil, false
	}
	return common.HexToAddress(toHex), dataBytes, true
}

func rpcResult(id, result json.RawMessage) json.RawMessage {
	out, _ := json.Marshal(map[string]json.RawMessage{
		"jsonrpc": json.RawMessage(`"2.0"`),
		"id":      id,
		"result":  result,
	})
	return out
}

func rpcError(id json.RawMessage, code int, message string) json.RawMessage {
	errJSON, _ := json.Marshal(map[string]interface{}{"code": code, "message": message})
	out, _ := json.Marshal(map[string]json.RawMessage{
		"jsonrpc": json.RawMessage(`"2.0"`),
		"id":      id,
		"error":   json.RawMessage(errJSON),
	})
	return out
}

// rpcRevert writes the error shape geth produces for an execution revert,
// including the data field revert detection keys on.
func rpcRevert(id json.RawMessage) json.RawMessage {
	errJSON, _ := json.Marshal(map[string]interface{}{
		"code":    3,
		"message": "execution reverted",
		"data":    "0x",
	})
	out, _ := json.Marshal(map[string]json.RawMessage{
		"jsonrpc": json.RawMessage(`"2.0"`),
		"id":      id,
		"error":   json.RawMessage(errJSON),
	})
	return out
}
