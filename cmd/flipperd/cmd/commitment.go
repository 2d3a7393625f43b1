package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/cryptoji/Tokens-Flipper/internal/lottery"
)

type commitmentOutput struct {
	Address      string `json:"address"`
	Number       string `json:"number"`
	Secret       string `json:"secret"`
	SecretBase64 string `json:"secretBase64"`
	Matches      *bool  `json:"matches,omitempty"`
}

// parseNumber accepts a decimal or 0x-prefixed hex uint256.
func parseNumber(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return uint256.FromHex(s)
	}
	return uint256.FromDecimal(s)
}

func commitmentCmd() *cobra.Command {
	var number, address, verify string
	cmd := &cobra.Command{
		Use:   "commitment",
		Short: "Compute the commitment for a secret number and address",
		Long: "Prints keccak256(uint256be(number) || address), the value submitted as " +
			"the secret of lottery/commit (base64) and later opened by lottery/reveal. " +
			"With --verify, also reports whether a stored commitment opens to number and address.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if address == "" {
				return fmt.Errorf("--address is required")
			}
			n, err := parseNumber(number)
			if err != nil {
				return fmt.Errorf("invalid --number %q: %w", number, err)
			}
			secret := lottery.Commitment(n, address)
			res := commitmentOutput{
				Address:      address,
				Number:       n.Dec(),
				Secret:       lottery.SecretHex(secret),
				SecretBase64: base64.StdEncoding.EncodeToString(secret),
			}
			if verify != "" {
				stored, err := lottery.ParseSecretHex(verify)
				if err != nil {
					return fmt.Errorf("invalid --verify: %w", err)
				}
				ok := lottery.VerifyCommitment(stored, n, address)
				res.Matches = &ok
			}
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&number, "number", "", "secret number (decimal or 0x-hex, up to 2^256-1)")
	cmd.Flags().StringVar(&address, "address", "", "committing account address")
	cmd.Flags().StringVar(&verify, "verify", "", "hex commitment to check against number and address")
	_ = cmd.MarkFlagRequired("number")
	return cmd
}
