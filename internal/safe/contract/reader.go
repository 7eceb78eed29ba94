package contract

import (
	"context"
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Selector is the 4-byte function selector of a contract method.
type Selector [4]byte

func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// Reader performs a read-only call against a deployed contract.
// args is the ABI encoding of the call arguments without the selector.
type Reader interface {
	Read(ctx context.Context, contract common.Address, selector Selector, args []byte) ([]byte, error)
}

// ChainIDReader returns the chain identifier of the connected network.
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}
