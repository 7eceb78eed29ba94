package nonce

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

func New() *cobra.Command {
	var (
		safeFlag    string
		channelFlag string
	)

	cmd := &cobra.Command{
		Use:   "nonce",
		Short: "Print the current nonce of a Safe channel",
		Long: `Print the current nonce of a Safe channel.

Safes without channel support report nonce() for channel 0 and zero for every other channel.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			safeAddress, err := txhash.ParseAddress("safe", safeFlag)
			if err != nil {
				return err
			}
			channel, err := command.ParseUint256("channel", channelFlag)
			if err != nil {
				return err
			}

			cfg, err := config.FromViper(viper.GetViper())
			if err != nil {
				return err
			}

			return command.WithService(cmd.Context(), cfg, func(ctx context.Context, svc safe.Service) error {
				n, err := svc.ChannelNonce(ctx, safeAddress, channel)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), n.String())
				return err
			})
		},
	}

	cmd.Flags().StringVar(&safeFlag, "safe", "", "Safe address (required)")
	cmd.Flags().StringVar(&channelFlag, "channel", "0", "nonce channel")
	_ = cmd.MarkFlagRequired("safe")

	return cmd
}
