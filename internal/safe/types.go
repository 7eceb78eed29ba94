package safe

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/go-safe/internal/safe/txhash"
)

// Service negotiates the SafeTx hashing scheme of a Safe and computes signing hashes.
type Service interface {
	// Scheme detects which SafeTx encoding the Safe verifies signatures against.
	Scheme(ctx context.Context, safe common.Address) (*Capability, error)

	// TransactionHash computes the EIP-712 signing hash of params for safe.
	TransactionHash(ctx context.Context, safe common.Address, params txhash.TransactionParameters) (*Result, error)

	// ChannelNonce returns the current nonce of channel on safe.
	ChannelNonce(ctx context.Context, safe common.Address, channel *big.Int) (*big.Int, error)

	// PopulateNonce returns a copy of params with Nonce read from the chain.
	PopulateNonce(ctx context.Context, safe common.Address, params txhash.TransactionParameters) (txhash.TransactionParameters, error)
}

// Capability is the outcome of scheme negotiation for one Safe.
type Capability struct {
	Version *string // VERSION() result, nil if the Safe did not report one
	Scheme  txhash.Scheme
}

// Multichannel reports whether the Safe supports channel nonces.
func (c *Capability) Multichannel() bool {
	return c.Scheme == txhash.SchemeMultichannel
}

// Result is a computed Safe transaction hash with the inputs it was bound to.
type Result struct {
	Capability
	ChainID         *big.Int
	DomainSeparator common.Hash
	SafeTxHash      common.Hash
}
