package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/go-safe/cmd/hash"
	"github/chapool/go-safe/cmd/nonce"
	"github/chapool/go-safe/cmd/probe"
	"github/chapool/go-safe/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "app",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Computes Safe transaction hashes and negotiates multichannel support.
Reads configuration from flags, an optional config file and %v_* environment variables.`, config.ModuleName, config.EnvPrefix),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if file, _ := cmd.Flags().GetString("config"); file != "" {
			viper.SetConfigFile(file)
			if err := viper.ReadInConfig(); err != nil {
				return errors.Wrapf(err, "failed to read config file %s", file)
			}
		}

		cfg, err := config.FromViper(viper.GetViper())
		if err != nil {
			return err
		}
		cfg.Logger.Setup()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "optional config file (yaml, json or toml)")
	flags.String("rpc-url", "", "comma separated JSON-RPC endpoints")
	flags.Duration("rpc-timeout", 0, "timeout of a single RPC call")
	flags.String("log-level", "", "zerolog level (debug, info, warn, error)")
	flags.Bool("pretty", false, "human readable console logging")

	for key, flag := range map[string]string{
		config.KeyRPCURLs:      "rpc-url",
		config.KeyRPCTimeout:   "rpc-timeout",
		config.KeyLoggerLevel:  "log-level",
		config.KeyLoggerPretty: "pretty",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatal().Err(err).Str("flag", flag).Msg("Failed to bind flag")
		}
	}

	// attach the subcommands
	rootCmd.AddCommand(
		hash.New(),
		nonce.New(),
		probe.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
