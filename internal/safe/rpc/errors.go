package rpc

import (
	"context"
	"encoding/json"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github/chapool/go-safe/internal/safe/contract"
)

const revertMessage = "execution reverted"

// callError 保留原始错误，同时可以用 errors.Is 匹配错误类别
type callError struct {
	kind  error
	cause error
}

func (e *callError) Error() string {
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *callError) Is(target error) bool {
	return target == e.kind //nolint:errorlint // kind is always a sentinel
}

func (e *callError) Unwrap() error {
	return e.cause
}

// classify 将 go-ethereum 返回的错误映射到 contract 包定义的错误类别
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	kind := kindOf(ctx, err)
	return &callError{kind: kind, cause: err}
}

func kindOf(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return contract.ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return contract.ErrTimeout
	}

	// 节点返回的 revert：没有 revert data 说明函数不存在（落入 fallback 并 revert）
	var rpcErr gethrpc.Error
	if errors.As(err, &rpcErr) && strings.Contains(strings.ToLower(rpcErr.Error()), revertMessage) {
		if len(revertData(err)) == 0 {
			return contract.ErrFunctionNotFound
		}
		return contract.ErrReverted
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return contract.ErrDecodeFailed
	}

	return contract.ErrConnectionFailed
}

func revertData(err error) []byte {
	var dataErr gethrpc.DataError
	if !errors.As(err, &dataErr) {
		return nil
	}

	raw, ok := dataErr.ErrorData().(string)
	if !ok || raw == "" {
		return nil
	}

	data, decodeErr := hexutil.Decode(raw)
	if decodeErr != nil {
		return nil
	}
	return data
}
