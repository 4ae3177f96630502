package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func importPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-plan <file>",
		Short: "Print the import order and suggested parents of extracted recipes",
		Long: `Reads a JSON array of {"index": n, "recipe": {...}} candidates, as
extracted from a conversation, and prints the plan: parents before their
variations, each with the suggested parent position.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var candidates []inbound.ImportCandidateInput
			if err := json.Unmarshal(data, &candidates); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			var recipes inbound.RecipeService
			return runCore(cmd.Context(), "stderr", func(ctx context.Context, _ *config.Config, log *zap.Logger) error {
				plan, err := recipes.PlanImport(ctx, candidates)
				if err != nil {
					return err
				}
				log.Debug("Import plan computed", zap.Int("items", len(plan.Items)))
				return printJSON(cmd, plan)
			}, &recipes)
		},
	}
}
