package txhash

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ErrInvalidParameter marks hashing input that violates its type or bit-width.
var ErrInvalidParameter = errors.New("invalid parameter")

// Operation is the Safe call type.
type Operation uint8

const (
	OperationCall         Operation = 0
	OperationDelegateCall Operation = 1
)

func (o Operation) String() string {
	switch o {
	case OperationCall:
		return "call"
	case OperationDelegateCall:
		return "delegatecall"
	default:
		return "unknown"
	}
}

// TransactionParameters holds the fields of a Safe transaction.
// Nil integers are treated as zero.
type TransactionParameters struct {
	Channel        *big.Int
	To             common.Address
	Value          *big.Int
	Data           []byte
	Operation      Operation
	SafeTxGas      *big.Int
	BaseGas        *big.Int
	GasPrice       *big.Int
	GasToken       common.Address
	RefundReceiver common.Address
	Nonce          *big.Int
}

// Copy returns a deep copy of p.
func (p TransactionParameters) Copy() TransactionParameters {
	cp := p
	cp.Channel = copyBig(p.Channel)
	cp.Value = copyBig(p.Value)
	cp.SafeTxGas = copyBig(p.SafeTxGas)
	cp.BaseGas = copyBig(p.BaseGas)
	cp.GasPrice = copyBig(p.GasPrice)
	cp.Nonce = copyBig(p.Nonce)
	if p.Data != nil {
		cp.Data = append([]byte(nil), p.Data...)
	}
	return cp
}

// Validate checks every integer field fits in an unsigned 256-bit word and the
// operation is Call or DelegateCall.
func (p TransactionParameters) Validate() error {
	_, err := p.words()
	return err
}

// ChannelIsDefault reports whether the transaction targets channel 0.
func (p TransactionParameters) ChannelIsDefault() bool {
	return p.Channel == nil || p.Channel.Sign() == 0
}

type paramWords struct {
	channel, value, safeTxGas, baseGas, gasPrice, nonce *big.Int
}

func (p TransactionParameters) words() (*paramWords, error) {
	if p.Operation > OperationDelegateCall {
		return nil, errors.Wrapf(ErrInvalidParameter, "operation %d is neither call nor delegatecall", p.Operation)
	}

	var (
		w   paramWords
		err error
	)
	fields := []struct {
		name string
		in   *big.Int
		out  **big.Int
	}{
		{"channel", p.Channel, &w.channel},
		{"value", p.Value, &w.value},
		{"safeTxGas", p.SafeTxGas, &w.safeTxGas},
		{"baseGas", p.BaseGas, &w.baseGas},
		{"gasPrice", p.GasPrice, &w.gasPrice},
		{"nonce", p.Nonce, &w.nonce},
	}
	for _, f := range fields {
		if *f.out, err = Uint256(f.name, f.in); err != nil {
			return nil, err
		}
	}

	return &w, nil
}

// Uint256 validates n as an unsigned 256-bit integer and returns a normalized copy.
// A nil n is zero.
func Uint256(name string, n *big.Int) (*big.Int, error) {
	if n == nil {
		return new(big.Int), nil
	}
	if n.Sign() < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "%s is negative", name)
	}

	u, overflow := uint256.FromBig(n)
	if overflow {
		return nil, errors.Wrapf(ErrInvalidParameter, "%s exceeds 256 bits", name)
	}

	return u.ToBig(), nil
}

// ParseAddress parses a 20-byte hex address, with or without the 0x prefix.
func ParseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(ErrInvalidParameter, "%s %q is not a 20-byte hex address", name, s)
	}
	return common.HexToAddress(s), nil
}

func copyBig(n *big.Int) *big.Int {
	if n == nil {
		return nil
	}
	return new(big.Int).Set(n)
}
