package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cryptoji/Tokens-Flipper/internal/config"
)

const BinaryName = "flipperd"

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

// NewRootCmd creates a new root command for flipperd. It is called once in main.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()
	d := config.Default()

	rootCmd := &cobra.Command{
		Use:           BinaryName,
		Short:         "Tokens Flipper commit-reveal lottery ABCI application",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return v.BindPFlags(cmd.Flags())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String(config.KeyHome, d.Home, "node home directory (state under <home>/data, config under <home>/config)")
	pf.String(config.KeyLogLevel, d.LogLevel, "log level (trace|debug|info|warn|error)")
	pf.String(config.KeyLogFormat, d.LogFormat, "log format (plain|json)")

	rootCmd.AddCommand(
		startCmd(v),
		commitmentCmd(),
		genesisCmd(),
		versionCmd(),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the binary version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
