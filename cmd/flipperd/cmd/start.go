package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cryptoji/Tokens-Flipper/internal/app"
	"github.com/cryptoji/Tokens-Flipper/internal/config"
	"github.com/cryptoji/Tokens-Flipper/internal/state"
)

func startCmd(v *viper.Viper) *cobra.Command {
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			store, err := state.OpenStore(cfg.Home, cfg.DBBackend)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			a, err := app.New(store, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			srv, err := server.NewServer(cfg.Addr, cfg.Transport, a)
			if err != nil {
				return fmt.Errorf("create abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()
			logger.Info("abci server listening", "addr", cfg.Addr, "transport", cfg.Transport, "home", cfg.Home)

			// Wait for signal.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}

	f := cmd.Flags()
	f.String(config.KeyAddr, d.Addr, "ABCI listen address")
	f.String(config.KeyTransport, d.Transport, "ABCI transport (socket|grpc)")
	f.String(config.KeyDBBackend, d.DBBackend, "cosmos-db backend (goleveldb|memdb|...)")
	return cmd
}
