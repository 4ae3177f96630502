package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/container"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap("stdout")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			app := fx.New(container.Server(cfg, log))
			if err := app.Err(); err != nil {
				return fmt.Errorf("failed to build application: %w", err)
			}

			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return fmt.Errorf("failed to start application: %w", err)
			}

			// Either a signal or the server failing underneath us
			select {
			case <-ctx.Done():
			case sig := <-app.Wait():
				log.Warn("Application requested shutdown", zap.Int("exit_code", sig.ExitCode))
			}

			timeout := cfg.Server.ShutdownTimeout
			if timeout <= 0 {
				timeout = 30 * time.Second
			}
			stopCtx, stopCancel := context.WithTimeout(context.Background(), timeout)
			defer stopCancel()

			if err := app.Stop(stopCtx); err != nil {
				return fmt.Errorf("failed to stop application gracefully: %w", err)
			}
			log.Info("Application stopped")
			return nil
		},
	}
}

// runCore starts the application graph without the HTTP server, hands the
// populated targets to fn and stops the graph afterwards
func runCore(ctx context.Context, logOutput string, fn func(ctx context.Context, cfg *config.Config, log *zap.Logger) error, targets ...any) error {
	cfg, log, err := bootstrap(logOutput)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	app := fx.New(container.Core(cfg, log), fx.Populate(targets...))
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	runErr := fn(ctx, cfg, log)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
