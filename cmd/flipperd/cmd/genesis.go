package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cryptoji/Tokens-Flipper/internal/app"
)

// parseAccounts turns addr=amount pairs into a balance map.
func parseAccounts(pairs []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(pairs))
	for _, p := range pairs {
		addr, raw, ok := strings.Cut(p, "=")
		if !ok || addr == "" {
			return nil, fmt.Errorf("invalid account %q (want addr=amount)", p)
		}
		amount, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid amount in %q: %w", p, err)
		}
		if _, dup := out[addr]; dup {
			return nil, fmt.Errorf("duplicate account %q", addr)
		}
		out[addr] = amount
	}
	return out, nil
}

func genesisCmd() *cobra.Command {
	var (
		operator string
		accounts []string
	)
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Print an app_state document for the CometBFT genesis file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			balances, err := parseAccounts(accounts)
			if err != nil {
				return err
			}
			gen := app.GenesisState{Operator: operator, Accounts: balances}
			if err := gen.Validate(); err != nil {
				return err
			}
			out, err := json.MarshalIndent(gen, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "operator account (creates configurations and sessions)")
	cmd.Flags().StringSliceVar(&accounts, "account", nil, "initial balance as addr=amount (repeatable)")
	return cmd
}
