package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cryptoji/Tokens-Flipper/cmd/flipperd/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
