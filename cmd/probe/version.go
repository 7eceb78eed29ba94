package probe

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/go-safe/internal/config"
	"github/chapool/go-safe/internal/safe"
	"github/chapool/go-safe/internal/safe/txhash"
	"github/chapool/go-safe/internal/util/command"
)

func newVersion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the Safe version and whether it supports multichannel nonces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := cmd.Flags().GetString(safeFlag)
			if err != nil {
				return err
			}
			safeAddress, err := txhash.ParseAddress(safeFlag, raw)
			if err != nil {
				return err
			}

			cfg, err := config.FromViper(viper.GetViper())
			if err != nil {
				return err
			}

			return command.WithService(cmd.Context(), cfg, func(ctx context.Context, svc safe.Service) error {
				c, err := svc.Scheme(ctx, safeAddress)
				if err != nil {
					return err
				}

				version := "-"
				if c.Version != nil {
					version = *c.Version
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "version:      %s\nmultichannel: %t\nscheme:       %s\n",
					version, c.Multichannel(), c.Scheme)
				return err
			})
		},
	}

	cmd.Flags().String(safeFlag, "", "Safe address (required)")
	_ = cmd.MarkFlagRequired(safeFlag)

	return cmd
}
