package txhash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Scheme selects the SafeTx type a Safe signs over.
type Scheme int

const (
	// SchemeLegacy is the channel-less SafeTx of Safe v1.3.0 and v1.4.1.
	SchemeLegacy Scheme = iota
	// SchemeMultichannel prefixes SafeTx with a uint256 channel.
	SchemeMultichannel
)

func (s Scheme) String() string {
	switch s {
	case SchemeLegacy:
		return "legacy"
	case SchemeMultichannel:
		return "multichannel"
	default:
		return "unknown"
	}
}

// TypeHash returns the SafeTx typehash of the scheme.
func (s Scheme) TypeHash() common.Hash {
	if s == SchemeMultichannel {
		return multichannelTypeHash
	}
	return legacyTypeHash
}

var eip712Prefix = []byte{0x19, 0x01}

// TypedDataHash returns keccak256(0x19 0x01 ++ domainSeparator ++ structHash).
func TypedDataHash(domainSeparator, structHash common.Hash) common.Hash {
	buf := make([]byte, 0, len(eip712Prefix)+common.HashLength*2)
	buf = append(buf, eip712Prefix...)
	buf = append(buf, domainSeparator.Bytes()...)
	buf = append(buf, structHash.Bytes()...)

	return crypto.Keccak256Hash(buf)
}

// DataHash returns keccak256(data). Empty data hashes the zero-length sequence.
func DataHash(data []byte) common.Hash {
	return crypto.Keccak256Hash(data)
}

// StructHash encodes params under the multichannel SafeTx typehash.
func StructHash(params TransactionParameters) (common.Hash, error) {
	w, err := params.words()
	if err != nil {
		return common.Hash{}, err
	}

	encoded, err := multichannelArgs.Pack(
		multichannelTypeHash,
		w.channel,
		params.To,
		w.value,
		DataHash(params.Data),
		uint8(params.Operation),
		w.safeTxGas,
		w.baseGas,
		w.gasPrice,
		params.GasToken,
		params.RefundReceiver,
		w.nonce,
	)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to encode SafeTx")
	}

	return crypto.Keccak256Hash(encoded), nil
}

// LegacyStructHash encodes params under the channel-less SafeTx typehash.
// Only channel 0 can be expressed.
func LegacyStructHash(params TransactionParameters) (common.Hash, error) {
	w, err := params.words()
	if err != nil {
		return common.Hash{}, err
	}
	if w.channel.Sign() != 0 {
		return common.Hash{}, errors.Wrapf(ErrInvalidParameter, "legacy SafeTx has no channel, got %s", w.channel)
	}

	encoded, err := legacyArgs.Pack(
		legacyTypeHash,
		params.To,
		w.value,
		DataHash(params.Data),
		uint8(params.Operation),
		w.safeTxGas,
		w.baseGas,
		w.gasPrice,
		params.GasToken,
		params.RefundReceiver,
		w.nonce,
	)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to encode legacy SafeTx")
	}

	return crypto.Keccak256Hash(encoded), nil
}

// SigningHash returns the EIP-712 hash a Safe owner signs for params under the
// multichannel scheme.
func SigningHash(chainID *big.Int, safe common.Address, params TransactionParameters) (common.Hash, error) {
	return Hash(SchemeMultichannel, chainID, safe, params)
}

// LegacySigningHash returns the EIP-712 hash for a Safe without channel support.
func LegacySigningHash(chainID *big.Int, safe common.Address, params TransactionParameters) (common.Hash, error) {
	return Hash(SchemeLegacy, chainID, safe, params)
}

// Hash returns the EIP-712 signing hash of params for the given scheme.
func Hash(scheme Scheme, chainID *big.Int, safe common.Address, params TransactionParameters) (common.Hash, error) {
	var (
		structHash common.Hash
		err        error
	)
	switch scheme {
	case SchemeMultichannel:
		structHash, err = StructHash(params)
	case SchemeLegacy:
		structHash, err = LegacyStructHash(params)
	default:
		return common.Hash{}, errors.Wrapf(ErrInvalidParameter, "unknown scheme %d", scheme)
	}
	if err != nil {
		return common.Hash{}, err
	}

	separator, err := DomainSeparator(chainID, safe)
	if err != nil {
		return common.Hash{}, err
	}

	return TypedDataHash(separator, structHash), nil
}
