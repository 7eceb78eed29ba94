package txhash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// DomainSeparator computes
// keccak256(abi.encode(DOMAIN_TYPEHASH, chainId, verifyingContract)) for a Safe.
func DomainSeparator(chainID *big.Int, safe common.Address) (common.Hash, error) {
	id, err := Uint256("chainId", chainID)
	if err != nil {
		return common.Hash{}, err
	}

	encoded, err := domainArgs.Pack(domainTypeHash, id, safe)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to encode domain")
	}

	return crypto.Keccak256Hash(encoded), nil
}
