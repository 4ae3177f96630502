// Package main is the cookbook command line: the API server, the MCP tool
// server and the maintenance jobs
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configPath string
	envFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cookbook",
		Short:         "Recipe book with lineage, meal planning and shopping lists",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(ingredientsCmd())
	rootCmd.AddCommand(importPlanCmd())
	rootCmd.AddCommand(tokenCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the environment file, the configuration and the logger.
// Logs go to logOutput, which is stderr for commands that own stdout.
func bootstrap(logOutput string) (*config.Config, *zap.Logger, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if Version != "dev" {
		cfg.App.Version = Version
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.IsDevelopment(),
		OutputPaths: []string{logOutput},
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
