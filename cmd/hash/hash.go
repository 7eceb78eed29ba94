package hash

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/go-safe/internal/config"
	"github/chapool/go-safe/internal/safe"
	"github/chapool/go-safe/internal/safe/txhash"
	"github/chapool/go-safe/internal/util/command"
)

const (
	schemeAuto = "auto"
)

type options struct {
	safe           string
	chainID        string
	scheme         string
	channel        string
	to             string
	value          string
	data           string
	operation      uint8
	safeTxGas      string
	baseGas        string
	gasPrice       string
	gasToken       string
	refundReceiver string
	nonce          string
}

func New() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Compute the EIP-712 signing hash of a Safe transaction",
		Long: `Compute the EIP-712 signing hash of a Safe transaction.

The hashing scheme is negotiated from the Safe's VERSION() unless --scheme is given.
Chain id and nonce are read from the chain when not provided. With --chain-id,
--nonce and an explicit --scheme the hash is computed offline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.safe, "safe", "", "Safe address (required)")
	flags.StringVar(&opts.chainID, "chain-id", "", "chain id, read from the node when empty")
	flags.StringVar(&opts.scheme, "scheme", schemeAuto, "hashing scheme: auto, multichannel or legacy")
	flags.StringVar(&opts.channel, "channel", "0", "nonce channel")
	flags.StringVar(&opts.to, "to", "", "destination address")
	flags.StringVar(&opts.value, "value", "0", "value in wei")
	flags.StringVar(&opts.data, "data", "0x", "hex encoded call data")
	flags.Uint8Var(&opts.operation, "operation", 0, "0 = call, 1 = delegatecall")
	flags.StringVar(&opts.safeTxGas, "safe-tx-gas", "0", "safeTxGas")
	flags.StringVar(&opts.baseGas, "base-gas", "0", "baseGas")
	flags.StringVar(&opts.gasPrice, "gas-price", "0", "gasPrice")
	flags.StringVar(&opts.gasToken, "gas-token", "", "gas token address")
	flags.StringVar(&opts.refundReceiver, "refund-receiver", "", "refund receiver address")
	flags.StringVar(&opts.nonce, "nonce", "", "nonce, read from the channel when empty")
	_ = cmd.MarkFlagRequired("safe")

	return cmd
}

func run(ctx context.Context, out io.Writer, opts *options) error {
	safeAddress, err := txhash.ParseAddress("safe", opts.safe)
	if err != nil {
		return err
	}

	params, err := opts.params()
	if err != nil {
		return err
	}

	if opts.offline() {
		return hashOffline(out, safeAddress, params, opts)
	}

	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}

	return command.WithService(ctx, cfg, func(ctx context.Context, svc safe.Service) error {
		return hashOnline(ctx, out, svc, safeAddress, params, opts)
	})
}

func (o *options) offline() bool {
	return o.chainID != "" && o.nonce != "" && o.scheme != schemeAuto
}

func (o *options) params() (txhash.TransactionParameters, error) {
	var (
		p   txhash.TransactionParameters
		err error
	)

	ints := []struct {
		name string
		in   string
		out  **big.Int
	}{
		{"channel", o.channel, &p.Channel},
		{"value", o.value, &p.Value},
		{"safe-tx-gas", o.safeTxGas, &p.SafeTxGas},
		{"base-gas", o.baseGas, &p.BaseGas},
		{"gas-price", o.gasPrice, &p.GasPrice},
	}
	for _, f := range ints {
		if *f.out, err = command.ParseUint256(f.name, f.in); err != nil {
			return p, err
		}
	}

	if o.nonce != "" {
		if p.Nonce, err = command.ParseUint256("nonce", o.nonce); err != nil {
			return p, err
		}
	}

	addrs := []struct {
		name string
		in   string
		out  *common.Address
	}{
		{"to", o.to, &p.To},
		{"gas-token", o.gasToken, &p.GasToken},
		{"refund-receiver", o.refundReceiver, &p.RefundReceiver},
	}
	for _, f := range addrs {
		if *f.out, err = command.ParseOptionalAddress(f.name, f.in); err != nil {
			return p, err
		}
	}

	if p.Data, err = hexutil.Decode(normalizeHex(o.data)); err != nil {
		return p, errors.Wrapf(txhash.ErrInvalidParameter, "data: %v", err)
	}

	p.Operation = txhash.Operation(o.operation)

	return p, p.Validate()
}

func (o *options) parseScheme() (txhash.Scheme, error) {
	switch o.scheme {
	case txhash.SchemeMultichannel.String():
		return txhash.SchemeMultichannel, nil
	case txhash.SchemeLegacy.String():
		return txhash.SchemeLegacy, nil
	default:
		return 0, errors.Wrapf(txhash.ErrInvalidParameter, "unknown scheme %q", o.scheme)
	}
}

func hashOffline(out io.Writer, safeAddress common.Address, params txhash.TransactionParameters, opts *options) error {
	scheme, err := opts.parseScheme()
	if err != nil {
		return err
	}

	chainID, err := command.ParseUint256("chain-id", opts.chainID)
	if err != nil {
		return err
	}

	separator, err := txhash.DomainSeparator(chainID, safeAddress)
	if err != nil {
		return err
	}

	hash, err := txhash.Hash(scheme, chainID, safeAddress, params)
	if err != nil {
		return err
	}

	return printResult(out, &safe.Result{
		Capability:      safe.Capability{Scheme: scheme},
		ChainID:         chainID,
		DomainSeparator: separator,
		SafeTxHash:      hash,
	}, params)
}

func hashOnline(ctx context.Context, out io.Writer, svc safe.Service, safeAddress common.Address, params txhash.TransactionParameters, opts *options) error {
	var err error

	if params.Nonce == nil {
		if params, err = svc.PopulateNonce(ctx, safeAddress, params); err != nil {
			return errors.Wrap(err, "failed to resolve nonce")
		}
	}

	res, err := svc.TransactionHash(ctx, safeAddress, params)
	if err != nil {
		return err
	}

	if opts.scheme != schemeAuto {
		want, err := opts.parseScheme()
		if err != nil {
			return err
		}
		if want != res.Scheme {
			return errors.Errorf("safe uses the %s scheme, %s was requested", res.Scheme, want)
		}
	}

	if opts.chainID != "" {
		want, err := command.ParseUint256("chain-id", opts.chainID)
		if err != nil {
			return err
		}
		if want.Cmp(res.ChainID) != 0 {
			return errors.Errorf("node reports chain id %s, %s was requested", res.ChainID, want)
		}
	}

	return printResult(out, res, params)
}

func printResult(out io.Writer, res *safe.Result, params txhash.TransactionParameters) error {
	version := "-"
	if res.Version != nil {
		version = *res.Version
	}

	_, err := fmt.Fprintf(out, `scheme:           %s
version:          %s
chain id:         %s
channel:          %s
nonce:            %s
domain separator: %s
safe tx hash:     %s
`,
		res.Scheme,
		version,
		res.ChainID,
		orZero(params.Channel),
		orZero(params.Nonce),
		res.DomainSeparator.Hex(),
		res.SafeTxHash.Hex(),
	)
	return err
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}

func normalizeHex(s string) string {
	if s == "" || s == "0x" || s == "0X" {
		return "0x"
	}
	if len(s) < 2 || (s[:2] != "0x" && s[:2] != "0X") {
		return "0x" + s
	}
	return s
}
