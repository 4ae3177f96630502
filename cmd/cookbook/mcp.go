package main

import (
	"context"
	"fmt"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/infrastructure/mcp"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func mcpCmd() *cobra.Command {
	var userFlag string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the recipe tools over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			var recipes inbound.RecipeService

			// stdout carries the protocol, logs go to stderr
			return runCore(cmd.Context(), "stderr", func(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
				raw := userFlag
				if raw == "" {
					raw = cfg.MCP.UserID
				}
				userID, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("mcp needs a user id (--user or mcp.user_id): %w", err)
				}

				mcp.Version = Version
				log.Info("Serving MCP tools on stdio", zap.String("user_id", userID.String()))
				return mcp.Serve(mcp.New(cfg.MCP.Name, recipes, userID, log))
			}, &recipes)
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "owner of the recipes written by the tools")
	return cmd
}
