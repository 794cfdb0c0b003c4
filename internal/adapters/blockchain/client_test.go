package blockchain

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmium-toolchains/osmium-cli/internal/domain"
	"github.com/osmium-toolchains/osmium-cli/internal/usecase"
)

const counterABI = `[
	{"type":"function","name":"number","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"setNumber","inputs":[{"name":"n","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"}
]`

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// rpcServer answers JSON-RPC methods from a table; unknown methods get a method-not-found error
func rpcServer(t *testing.T, handlers map[string]func(params []json.RawMessage) (any, *rpcError)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if h, ok := handlers[req.Method]; ok {
			result, rpcErr := h(req.Params)
			if rpcErr != nil {
				resp["error"] = rpcErr
			} else {
				resp["result"] = result
			}
		} else {
			resp["error"] = rpcError{Code: -32601, Message: "method not found: " + req.Method}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T) *ClientAdapter {
	t.Helper()
	c := NewClientAdapter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(c.Close)
	return c
}

func parseABI(t *testing.T) *abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(counterABI))
	require.NoError(t, err)
	return &parsed
}

func revertData(t *testing.T, reason string) string {
	t.Helper()
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)
	return hexutil.Encode(append([]byte{0x08, 0xc3, 0x79, 0xa0}, packed...))
}

func TestClientAdapter_ChainID(t *testing.T) {
	srv := rpcServer(t, map[string]func([]json.RawMessage) (any, *rpcError){
		"eth_chainId": func([]json.RawMessage) (any, *rpcError) { return "0x7a69", nil },
	})

	id, err := newTestClient(t).ChainID(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(31337), id.Int64())
}

func TestClientAdapter_Call(t *testing.T) {
	addr := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	t.Run("decodes return value", func(t *testing.T) {
		srv := rpcServer(t, map[string]func([]json.RawMessage) (any, *rpcError){
			"eth_call": func([]json.RawMessage) (any, *rpcError) {
				return hexutil.Encode(common.LeftPadBytes(big.NewInt(42).Bytes(), 32)), nil
			},
		})

		values, err := newTestClient(t).Call(context.Background(), usecase.CallRequest{
			RPCURL: srv.URL, Address: addr, ABI: parseABI(t), Method: "number",
		})
		require.NoError(t, err)
		assert.Equal(t, []any{"42"}, values)
	})

	t.Run("revert reason is decoded", func(t *testing.T) {
		srv := rpcServer(t, map[string]func([]json.RawMessage) (any, *rpcError){
			"eth_call": func([]json.RawMessage) (any, *rpcError) {
				return nil, &rpcError{Code: 3, Message: "execution reverted", Data: revertData(t, "not owner")}
			},
		})

		_, err := newTestClient(t).Call(context.Background(), usecase.CallRequest{
			RPCURL: srv.URL, Address: addr, ABI: parseABI(t), Method: "number",
		})
		require.Error(t, err)
		assert.Equal(t, "execution reverted: not owner", err.Error())
		assert.Equal(t, domain.CodeCallFailed, domain.ErrorCode(err))
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := newTestClient(t).Call(context.Background(), usecase.CallRequest{
			RPCURL: "http://127.0.0.1:1", Address: addr, ABI: parseABI(t), Method: "nope",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("invalid endpoint", func(t *testing.T) {
		_, err := newTestClient(t).Call(context.Background(), usecase.CallRequest{
			RPCURL: "localhost", Address: addr, ABI: parseABI(t), Method: "number",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRPCURL)
	})
}

func TestClientAdapter_EstimateGas(t *testing.T) {
	var gotData string
	srv := rpcServer(t, map[string]func([]json.RawMessage) (any, *rpcError){
		"eth_estimateGas": func(params []json.RawMessage) (any, *rpcError) {
			var msg struct {
				Data  string `json:"data"`
				Input string `json:"input"`
			}
			_ = json.Unmarshal(params[0], &msg)
			gotData = msg.Input + msg.Data
			return "0x5208", nil
		},
	})

	gas, err := newTestClient(t).EstimateGas(context.Background(), usecase.EstimateRequest{
		RPCURL:  srv.URL,
		Address: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		ABI:     parseABI(t),
		Method:  "setNumber",
		Args:    []json.RawMessage{json.RawMessage(`"7"`)},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)
	// selector of setNumber(uint256)
	assert.Contains(t, gotData, "3fb5c1cb")
}

func TestShortMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"failed to estimate gas: execution reverted: Ownable: caller is not the owner", "execution reverted: Ownable: caller is not the owner"},
		{"VM Exception while processing transaction: revert nope", "revert nope"},
		{"dial tcp 127.0.0.1:8545: connect: connection refused", "dial tcp 127.0.0.1:8545: connect: connection refused"},
		{"first line\nsecond line", "first line"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShortMessage(assertError(tt.msg)))
	}
}

type assertError string

func (e assertError) Error() string { return string(e) }
