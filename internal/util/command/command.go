package command

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-safe/internal/config"
	"github/chapool/go-safe/internal/safe"
	"github/chapool/go-safe/internal/safe/rpc"
	"github/chapool/go-safe/internal/safe/txhash"
)

// NewSubcommandGroup returns a command that only groups its subcommands.
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: use + " subcommands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(subcommands...)

	return cmd
}

// WithService dials the configured RPC nodes, wires a safe.Service over them and
// runs fn. Connections are closed when fn returns.
func WithService(ctx context.Context, cfg config.Config, fn func(ctx context.Context, svc safe.Service) error) error {
	if len(cfg.RPC.URLs) == 0 {
		return errors.Errorf("no RPC URL configured, set --rpc-url or %s_RPC_URLS", config.EnvPrefix)
	}

	client, err := rpc.NewClient(ctx, cfg.RPC.URLs, rpc.WithTimeout(cfg.RPC.Timeout))
	if err != nil {
		return errors.Wrap(err, "failed to create RPC client")
	}
	defer client.Close()

	log.Debug().Strs("urls", cfg.RPC.URLs).Msg("Connected to RPC nodes")

	return fn(ctx, safe.NewService(client, client))
}

// ParseUint256 parses a decimal or 0x-prefixed hex integer that must fit in 256 bits.
func ParseUint256(name, s string) (*big.Int, error) {
	n, ok := math.ParseBig256(strings.TrimSpace(s))
	if !ok {
		return nil, errors.Wrapf(txhash.ErrInvalidParameter, "%s %q is not a 256-bit integer", name, s)
	}
	return txhash.Uint256(name, n)
}

// ParseOptionalAddress parses an address flag, treating an empty value as the zero address.
func ParseOptionalAddress(name, s string) (common.Address, error) {
	if strings.TrimSpace(s) == "" {
		return common.Address{}, nil
	}
	return txhash.ParseAddress(name, strings.TrimSpace(s))
}
