package contract

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const (
	MethodVersion       = "VERSION"
	MethodChannelNonces = "channelNonces"
	MethodNonce         = "nonce"
)

// safeABI covers the read-only Safe accessors used for capability and nonce discovery.
const safeABI = `[
	{"constant":true,"inputs":[],"name":"VERSION","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"channel","type":"uint256"}],"name":"channelNonces","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"nonce","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

var (
	parsedSafeABI = mustParseABI(safeABI)

	SelectorVersion       = selectorOf(MethodVersion)
	SelectorChannelNonces = selectorOf(MethodChannelNonces)
	SelectorNonce         = selectorOf(MethodNonce)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

func selectorOf(method string) Selector {
	var sel Selector
	copy(sel[:], parsedSafeABI.Methods[method].ID)
	return sel
}

// ReadVersion calls VERSION() on the Safe.
func ReadVersion(ctx context.Context, r Reader, safe common.Address) (string, error) {
	out, err := call(ctx, r, safe, MethodVersion)
	if err != nil {
		return "", err
	}

	version, ok := out[0].(string)
	if !ok {
		return "", errors.Wrapf(ErrDecodeFailed, "unexpected %s output type %T", MethodVersion, out[0])
	}

	return version, nil
}

// ReadChannelNonce calls channelNonces(uint256) on the Safe.
func ReadChannelNonce(ctx context.Context, r Reader, safe common.Address, channel *big.Int) (*big.Int, error) {
	out, err := call(ctx, r, safe, MethodChannelNonces, channel)
	if err != nil {
		return nil, err
	}

	return bigOutput(MethodChannelNonces, out[0])
}

// ReadNonce calls the parameterless nonce() accessor on the Safe.
func ReadNonce(ctx context.Context, r Reader, safe common.Address) (*big.Int, error) {
	out, err := call(ctx, r, safe, MethodNonce)
	if err != nil {
		return nil, err
	}

	return bigOutput(MethodNonce, out[0])
}

func call(ctx context.Context, r Reader, safe common.Address, method string, args ...interface{}) ([]interface{}, error) {
	input, err := parsedSafeABI.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s call", method)
	}

	var sel Selector
	copy(sel[:], input[:len(sel)])

	raw, err := r.Read(ctx, safe, sel, input[len(sel):])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s", method)
	}

	// A Safe without the accessor routes the call to its fallback, which returns nothing.
	if len(raw) == 0 {
		return nil, errors.Wrapf(ErrFunctionNotFound, "%s returned no data", method)
	}

	out, err := parsedSafeABI.Unpack(method, raw)
	if err != nil {
		return nil, errors.Wrapf(ErrDecodeFailed, "failed to unpack %s output: %v", method, err)
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(ErrDecodeFailed, "%s output is empty", method)
	}

	return out, nil
}

func bigOutput(method string, v interface{}) (*big.Int, error) {
	n, ok := v.(*big.Int)
	if !ok || n == nil {
		return nil, errors.Wrapf(ErrDecodeFailed, "unexpected %s output type %T", method, v)
	}
	return n, nil
}
