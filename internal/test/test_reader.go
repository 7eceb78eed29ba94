package test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github/chapool/go-safe/internal/safe/contract"
)

// ReadFunc answers a single stubbed contract call.
type ReadFunc func(args []byte) ([]byte, error)

// StubReader is a deterministic contract.Reader and contract.ChainIDReader.
// Selectors without a registered answer return empty data, which is what a Safe
// does when the call lands in its fallback.
type StubReader struct {
	mu      sync.Mutex
	answers map[contract.Selector]ReadFunc
	calls   map[contract.Selector]int
	reads   []common.Address

	chainID    *big.Int
	chainIDErr error
}

func NewStubReader() *StubReader {
	return &StubReader{
		answers: make(map[contract.Selector]ReadFunc),
		calls:   make(map[contract.Selector]int),
		chainID: big.NewInt(1),
	}
}

func (s *StubReader) On(sel contract.Selector, fn ReadFunc) *StubReader {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.answers[sel] = fn
	return s
}

func (s *StubReader) Returns(sel contract.Selector, data []byte) *StubReader {
	return s.On(sel, func([]byte) ([]byte, error) { return data, nil })
}

func (s *StubReader) Fails(sel contract.Selector, err error) *StubReader {
	return s.On(sel, func([]byte) ([]byte, error) { return nil, err })
}

func (s *StubReader) WithChainID(chainID *big.Int, err error) *StubReader {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chainID = chainID
	s.chainIDErr = err
	return s
}

func (s *StubReader) Read(ctx context.Context, target common.Address, sel contract.Selector, args []byte) ([]byte, error) {
	s.mu.Lock()
	s.calls[sel]++
	s.reads = append(s.reads, target)
	fn := s.answers[sel]
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(contract.ErrTimeout, err.Error())
	}
	if fn == nil {
		return nil, nil
	}

	return fn(args)
}

func (s *StubReader) ChainID(ctx context.Context) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(contract.ErrTimeout, err.Error())
	}
	if s.chainIDErr != nil {
		return nil, s.chainIDErr
	}

	return new(big.Int).Set(s.chainID), nil
}

// Calls returns how often sel was read.
func (s *StubReader) Calls(sel contract.Selector) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[sel]
}

// Targets returns the contract addresses read so far, in call order.
func (s *StubReader) Targets() []common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]common.Address(nil), s.reads...)
}

// NewLegacySafe stubs a Safe exposing VERSION() and nonce() only.
func NewLegacySafe(t *testing.T, version string, nonce int64) *StubReader {
	t.Helper()

	return NewStubReader().
		Returns(contract.SelectorVersion, EncodeString(t, version)).
		Returns(contract.SelectorNonce, EncodeUint256(t, big.NewInt(nonce)))
}

// NewMultichannelSafe stubs a Safe exposing VERSION() and channelNonces(uint256).
// Channels missing from nonces read as zero.
func NewMultichannelSafe(t *testing.T, version string, nonces map[int64]int64) *StubReader {
	t.Helper()

	uint256Args := abi.Arguments{{Type: mustType(t, "uint256")}}

	return NewStubReader().
		Returns(contract.SelectorVersion, EncodeString(t, version)).
		On(contract.SelectorChannelNonces, func(args []byte) ([]byte, error) {
			values, err := uint256Args.Unpack(args)
			if err != nil {
				return nil, errors.Wrap(contract.ErrDecodeFailed, err.Error())
			}
			channel, ok := values[0].(*big.Int)
			if !ok || !channel.IsInt64() {
				return EncodeUint256(t, big.NewInt(0)), nil
			}
			return EncodeUint256(t, big.NewInt(nonces[channel.Int64()])), nil
		})
}

func EncodeUint256(t *testing.T, n *big.Int) []byte {
	t.Helper()

	out, err := abi.Arguments{{Type: mustType(t, "uint256")}}.Pack(n)
	if err != nil {
		t.Fatalf("failed to encode uint256: %v", err)
	}
	return out
}

func EncodeString(t *testing.T, s string) []byte {
	t.Helper()

	out, err := abi.Arguments{{Type: mustType(t, "string")}}.Pack(s)
	if err != nil {
		t.Fatalf("failed to encode string: %v", err)
	}
	return out
}

func mustType(t *testing.T, name string) abi.Type {
	t.Helper()

	typ, err := abi.NewType(name, "", nil)
	if err != nil {
		t.Fatalf("failed to build abi type %s: %v", name, err)
	}
	return typ
}
