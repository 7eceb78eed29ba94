package txhash

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	domainTypeString = "EIP712Domain(uint256 chainId,address verifyingContract)"

	multichannelTypeString = "SafeTx(uint256 channel,address to,uint256 value,bytes data,uint8 operation," +
		"uint256 safeTxGas,uint256 baseGas,uint256 gasPrice,address gasToken,address refundReceiver,uint256 nonce)"

	// Safe v1.3.0 / v1.4.1 transaction type.
	legacyTypeString = "SafeTx(address to,uint256 value,bytes data,uint8 operation," +
		"uint256 safeTxGas,uint256 baseGas,uint256 gasPrice,address gasToken,address refundReceiver,uint256 nonce)"
)

var (
	domainTypeHash       = crypto.Keccak256Hash([]byte(domainTypeString))
	multichannelTypeHash = crypto.Keccak256Hash([]byte(multichannelTypeString))
	legacyTypeHash       = crypto.Keccak256Hash([]byte(legacyTypeString))
)

// DomainTypeHash returns keccak256 of the EIP712Domain type string.
func DomainTypeHash() common.Hash { return domainTypeHash }

// MultichannelTypeHash returns keccak256 of the multichannel SafeTx type string.
func MultichannelTypeHash() common.Hash { return multichannelTypeHash }

// LegacyTypeHash returns keccak256 of the channel-less SafeTx type string.
func LegacyTypeHash() common.Hash { return legacyTypeHash }

// ABI tuple layouts, typehash first. Every member is a static type, so each is
// encoded as exactly one 32-byte word.
var (
	domainArgs = newArguments("bytes32", "uint256", "address")

	multichannelArgs = newArguments(
		"bytes32",
		"uint256", // channel
		"address", // to
		"uint256", // value
		"bytes32", // keccak256(data)
		"uint8",   // operation
		"uint256", // safeTxGas
		"uint256", // baseGas
		"uint256", // gasPrice
		"address", // gasToken
		"address", // refundReceiver
		"uint256", // nonce
	)

	legacyArgs = newArguments(
		"bytes32",
		"address", "uint256", "bytes32", "uint8",
		"uint256", "uint256", "uint256",
		"address", "address", "uint256",
	)
)

func newArguments(types ...string) abi.Arguments {
	args := make(abi.Arguments, 0, len(types))
	for _, name := range types {
		typ, err := abi.NewType(name, "", nil)
		if err != nil {
			panic(err)
		}
		args = append(args, abi.Argument{Type: typ})
	}
	return args
}
