package probe

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/go-safe/internal/config"
	"github/chapool/go-safe/internal/safe/rpc"
)

func newChain() *cobra.Command {
	return &cobra.Command{
		Use:   "chain",
		Short: "Print the chain id reported by the configured RPC nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromViper(viper.GetViper())
			if err != nil {
				return err
			}
			if len(cfg.RPC.URLs) == 0 {
				return errors.New("no RPC URL configured")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			client, err := rpc.NewClient(ctx, cfg.RPC.URLs, rpc.WithTimeout(cfg.RPC.Timeout))
			if err != nil {
				return err
			}
			defer client.Close()

			chainID, err := client.ChainID(ctx)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), chainID.String())
			return err
		},
	}
}
