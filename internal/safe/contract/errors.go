package contract

import (
	"github.com/pkg/errors"
)

// Outcomes of a read-only contract call. Only ErrFunctionNotFound is a capability
// signal; everything else describes a failed round-trip and must reach the caller.
var (
	// ErrFunctionNotFound means the target has no code for the selector
	// (empty return data, or a revert carrying no data).
	ErrFunctionNotFound = errors.New("contract function not found")
	ErrTimeout          = errors.New("rpc call timed out")
	ErrConnectionFailed = errors.New("rpc connection failed")
	ErrDecodeFailed     = errors.New("malformed rpc response")
	// ErrReverted is a revert that carries revert data, i.e. the function exists.
	ErrReverted = errors.New("contract call reverted")
)

// IsNetworkFailure reports whether err is a failed round-trip, as opposed to a
// capability signal. These are never converted into default values.
func IsNetworkFailure(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConnectionFailed) ||
		errors.Is(err, ErrDecodeFailed) ||
		errors.Is(err, ErrReverted)
}
