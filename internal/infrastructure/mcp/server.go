// Package mcp exposes the recipe tools to LLM agents over the Model Context
// Protocol (stdio transport)
package mcp

import (
	"context"
	"encoding/json"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags
var Version = "dev"

const instructions = `Cookbook tools. Call update_recipe with the structured recipe you propose.
Omit recipeId to create a new recipe; pass it to revise an existing one.
Pass parentId together with a variationNote when the recipe is a variation of another.`

// New creates the MCP server with every tool registered. Recipes are
// written on behalf of userID.
func New(name string, recipes inbound.RecipeService, userID uuid.UUID, logger *zap.Logger) *server.MCPServer {
	if name == "" {
		name = "cookbook"
	}

	s := server.NewMCPServer(
		name,
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	updateTool := NewUpdateRecipeTool(recipes, userID, logger)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	return s
}

// Serve runs the server on stdin/stdout until the input closes
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// UpdateRecipeTool creates or revises a recipe from loose LLM output
type UpdateRecipeTool struct {
	recipes inbound.RecipeService
	userID  uuid.UUID
	logger  *zap.Logger
}

func NewUpdateRecipeTool(recipes inbound.RecipeService, userID uuid.UUID, logger *zap.Logger) *UpdateRecipeTool {
	return &UpdateRecipeTool{
		recipes: recipes,
		userID:  userID,
		logger:  logger.Named("mcp-update-recipe"),
	}
}

// Definition describes the tool arguments. The schema is advisory: the
// handler accepts anything and normalizes it.
func (t *UpdateRecipeTool) Definition() mcp.Tool {
	return mcp.NewTool("update_recipe",
		mcp.WithDescription("Create a recipe, or update the recipe named by recipeId, from structured fields. Malformed ingredients or steps are dropped."),
		mcp.WithString("recipeId", mcp.Description("Id of the recipe to update; omit to create")),
		mcp.WithString("parentId", mcp.Description("Id of the recipe this one is a variation of")),
		mcp.WithString("title", mcp.Description("Recipe title")),
		mcp.WithString("variationNote", mcp.Description("What changes compared to the parent recipe; required with parentId")),
		mcp.WithString("objective", mcp.Description("Short description or goal")),
		mcp.WithArray("ingredients",
			mcp.Description("Ingredients as {name, quantity, unit, note} objects or plain strings"),
			mcp.Items(map[string]any{"type": "object"}),
		),
		mcp.WithArray("steps",
			mcp.Description("Steps as {order, instruction} objects or plain strings"),
			mcp.Items(map[string]any{"type": "object"}),
		),
		withOneOf("duration", "Total minutes as a number, or {prep, cook, total} in minutes",
			map[string]any{"type": "number"},
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"prep":  map[string]any{"type": "number"},
					"cook":  map[string]any{"type": "number"},
					"total": map[string]any{"type": "number"},
				},
			},
		),
		mcp.WithNumber("portions", mcp.Description("Number of portions")),
		mcp.WithArray("tags", mcp.Items(map[string]any{"type": "string"})),
		mcp.WithArray("equipment", mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("dishType", mcp.Description("starter, main, dessert, ...")),
		mcp.WithArray("images",
			mcp.Description("Image URLs"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// withOneOf declares a property accepting any of the given schemas
func withOneOf(name, description string, schemas ...map[string]any) mcp.ToolOption {
	return func(t *mcp.Tool) {
		alternatives := make([]any, len(schemas))
		for i, schema := range schemas {
			alternatives[i] = schema
		}
		t.InputSchema.Properties[name] = map[string]any{
			"description": description,
			"oneOf":       alternatives,
		}
	}
}

// Handle normalizes the arguments and writes the recipe. Application errors
// are returned as tool errors so the agent can correct its call.
func (t *UpdateRecipeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := recipe.NormalizePayload(req.GetArguments())

	var (
		dto *inbound.RecipeDTO
		err error
	)
	if payload.RecipeID != nil {
		dto, err = t.recipes.UpdateRecipe(ctx, t.userID, *payload.RecipeID, payload)
	} else {
		dto, err = t.recipes.CreateRecipe(ctx, t.userID, payload)
	}
	if err != nil {
		appErr := errors.Wrap(err, "update_recipe failed")
		if appErr.IsServerError() {
			t.logger.Error("update_recipe failed", zap.Error(err))
			return mcp.NewToolResultError(appErr.Message), nil
		}
		msg := appErr.Message
		if appErr.Details != "" {
			msg += ": " + appErr.Details
		}
		return mcp.NewToolResultError(msg), nil
	}

	body, err := json.Marshal(dto)
	if err != nil {
		return nil, err
	}
	t.logger.Info("Recipe written through MCP",
		zap.String("recipe_id", dto.ID.String()),
		zap.Bool("update", payload.RecipeID != nil),
	)
	return mcp.NewToolResultText(string(body)), nil
}
