package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func ingredientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredients",
		Short: "Maintain the ingredient gallery",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "backfill",
		Short: "Fill missing nutrition values from the bundled dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ingredients inbound.IngredientService

			return runCore(cmd.Context(), "stderr", func(ctx context.Context, _ *config.Config, log *zap.Logger) error {
				updated, err := ingredients.BackfillNutrition(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d ingredients updated\n", updated)
				return nil
			}, &ingredients)
		},
	})

	var refresh bool
	enrich := &cobra.Command{
		Use:   "enrich <id>",
		Short: "Synchronize one ingredient with USDA FoodData Central",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid ingredient id %q: %w", args[0], err)
			}

			var ingredients inbound.IngredientService
			return runCore(cmd.Context(), "stderr", func(ctx context.Context, _ *config.Config, log *zap.Logger) error {
				enriched, err := ingredients.EnrichFromUSDA(ctx, id, refresh)
				if err != nil {
					return err
				}
				return printJSON(cmd, enriched)
			}, &ingredients)
		},
	}
	enrich.Flags().BoolVar(&refresh, "refresh", false, "ignore the cached USDA match")
	cmd.AddCommand(enrich)

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
