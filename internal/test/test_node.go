package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github/chapool/go-safe/internal/safe/contract"
)

// NewTestNode serves eth_chainId and eth_call over JSON-RPC, answering from
// stub. ErrFunctionNotFound answers are reported as a revert without data.
// The server is closed when the test ends.
func NewTestNode(t *testing.T, stub *StubReader) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage   `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch req.Method {
		case "eth_chainId":
			chainID, err := stub.ChainID(r.Context())
			if err != nil {
				resp["error"] = map[string]interface{}{"code": -32000, "message": err.Error()}
				break
			}
			resp["result"] = hexutil.EncodeBig(chainID)
		case "eth_call":
			result, rpcErr := answerCall(r, stub, req.Params)
			if rpcErr != nil {
				resp["error"] = rpcErr
				break
			}
			resp["result"] = hexutil.Encode(result)
		default:
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func answerCall(r *http.Request, stub *StubReader, params []json.RawMessage) ([]byte, map[string]interface{}) {
	var call struct {
		To    common.Address `json:"to"`
		Input hexutil.Bytes  `json:"input"`
		Data  hexutil.Bytes  `json:"data"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params[0], &call); err != nil {
			return nil, map[string]interface{}{"code": -32602, "message": err.Error()}
		}
	}

	calldata := call.Input
	if len(calldata) == 0 {
		calldata = call.Data
	}

	var sel contract.Selector
	if len(calldata) < len(sel) {
		return nil, nil
	}
	copy(sel[:], calldata)

	out, err := stub.Read(r.Context(), call.To, sel, calldata[len(sel):])
	if errors.Is(err, contract.ErrFunctionNotFound) {
		return nil, map[string]interface{}{"code": -32000, "message": "execution reverted"}
	}
	if err != nil {
		return nil, map[string]interface{}{"code": -32603, "message": err.Error()}
	}

	return out, nil
}
