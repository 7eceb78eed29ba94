package rpc_test

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-safe/internal/safe/contract"
	"github/chapool/go-safe/internal/safe/rpc"
)

var safeAddress = common.HexToAddress("0x9fC3dc011b461664c835F2527fffb1169b3C213e")

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type callArgs struct {
	To    *common.Address `json:"to"`
	Input hexutil.Bytes   `json:"input"`
	Data  hexutil.Bytes   `json:"data"`
}

// ethCallHandler answers eth_chainId with 0x89 and eth_call with answer(calldata).
func ethCallHandler(t *testing.T, answer func(calldata []byte) (interface{}, *rpcError)) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "eth_chainId":
			resp["result"] = "0x89"
		case "eth_call":
			var args callArgs
			if len(req.Params) > 0 {
				_ = json.Unmarshal(req.Params[0], &args)
			}
			calldata := args.Input
			if len(calldata) == 0 {
				calldata = args.Data
			}

			result, rpcErr := answer(calldata)
			if rpcErr != nil {
				resp["error"] = rpcErr
			} else {
				resp["result"] = result
			}
		default:
			resp["error"] = rpcError{Code: -32601, Message: "method not found"}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func newClient(t *testing.T, urls []string, opts ...rpc.Option) *rpc.Client {
	t.Helper()

	client, err := rpc.NewClient(t.Context(), urls, opts...)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := rpc.NewClient(t.Context(), nil)
	assert.Error(t, err)
}

func TestClientChainID(t *testing.T) {
	srv := httptest.NewServer(ethCallHandler(t, nil))
	defer srv.Close()

	client := newClient(t, []string{srv.URL})

	chainID, err := client.ChainID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(137), chainID)
}

func TestClientReadSendsSelectorAndArgs(t *testing.T) {
	var seen []byte
	srv := httptest.NewServer(ethCallHandler(t, func(calldata []byte) (interface{}, *rpcError) {
		seen = calldata
		return hexutil.Encode(common.LeftPadBytes([]byte{7}, 32)), nil
	}))
	defer srv.Close()

	client := newClient(t, []string{srv.URL})

	args := common.LeftPadBytes([]byte{5}, 32)
	out, err := client.Read(t.Context(), safeAddress, contract.SelectorChannelNonces, args)
	require.NoError(t, err)
	assert.Equal(t, common.LeftPadBytes([]byte{7}, 32), out)

	require.Len(t, seen, 36)
	assert.Equal(t, contract.SelectorChannelNonces[:], seen[:4])
	assert.Equal(t, args, seen[4:])
}

func TestClientReadClassification(t *testing.T) {
	tests := []struct {
		name   string
		result interface{}
		err    *rpcError
		want   error
	}{
		{
			name: "revert without data",
			err:  &rpcError{Code: -32000, Message: "execution reverted"},
			want: contract.ErrFunctionNotFound,
		},
		{
			name: "revert with empty data",
			err:  &rpcError{Code: 3, Message: "execution reverted", Data: "0x"},
			want: contract.ErrFunctionNotFound,
		},
		{
			name: "revert with reason",
			err: &rpcError{
				Code:    3,
				Message: "execution reverted: GS013",
				Data:    "0x08c379a0000000000000000000000000000000000000000000000000000000000000002000000000000000000000000000000000000000000000000000000000000000054753303133000000000000000000000000000000000000000000000000000000",
			},
			want: contract.ErrReverted,
		},
		{
			name:   "malformed result",
			result: "not-hex",
			want:   contract.ErrDecodeFailed,
		},
		{
			name: "node error",
			err:  &rpcError{Code: -32005, Message: "limit exceeded"},
			want: contract.ErrConnectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(ethCallHandler(t, func([]byte) (interface{}, *rpcError) {
				return tt.result, tt.err
			}))
			defer srv.Close()

			client := newClient(t, []string{srv.URL})

			_, err := client.Read(t.Context(), safeAddress, contract.SelectorNonce, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestClientReadEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(ethCallHandler(t, func([]byte) (interface{}, *rpcError) {
		return "0x", nil
	}))
	defer srv.Close()

	client := newClient(t, []string{srv.URL})

	out, err := client.Read(t.Context(), safeAddress, contract.SelectorChannelNonces, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = contract.ReadChannelNonce(t.Context(), client, safeAddress, big.NewInt(0))
	assert.True(t, errors.Is(err, contract.ErrFunctionNotFound))
}

func TestClientReadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := newClient(t, []string{srv.URL}, rpc.WithTimeout(50*time.Millisecond))

	_, err := client.Read(t.Context(), safeAddress, contract.SelectorNonce, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrTimeout))
}

func TestClientFailover(t *testing.T) {
	var downHits atomic.Int32
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		downHits.Add(1)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer down.Close()

	up := httptest.NewServer(ethCallHandler(t, func([]byte) (interface{}, *rpcError) {
		return hexutil.Encode(common.LeftPadBytes([]byte{1}, 32)), nil
	}))
	defer up.Close()

	client := newClient(t, []string{down.URL, up.URL})

	out, err := client.Read(t.Context(), safeAddress, contract.SelectorNonce, nil)
	require.NoError(t, err)
	assert.Equal(t, common.LeftPadBytes([]byte{1}, 32), out)
	assert.Equal(t, int32(1), downHits.Load())

	// the healthy node is now preferred
	_, err = client.Read(t.Context(), safeAddress, contract.SelectorNonce, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), downHits.Load())
}

func TestClientAllNodesDown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer down.Close()

	client := newClient(t, []string{down.URL, down.URL})

	_, err := client.Read(t.Context(), safeAddress, contract.SelectorNonce, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrConnectionFailed))
}

func TestClientMetrics(t *testing.T) {
	srv := httptest.NewServer(ethCallHandler(t, func([]byte) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "execution reverted"}
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	client := newClient(t, []string{srv.URL}, rpc.WithRegisterer(reg))

	_, err := client.Read(t.Context(), safeAddress, contract.SelectorVersion, nil)
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "safe_rpc_reads_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = rpc.NewClient(t.Context(), []string{srv.URL}, rpc.WithRegisterer(reg))
	assert.Error(t, err, "registering twice must fail")
}
