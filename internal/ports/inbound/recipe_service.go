// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/google/uuid"
)

// RecipeService defines the use cases for recipe management
// This is the primary port that HTTP handlers and the MCP server use
type RecipeService interface {
	// Commands - operations that modify state
	CreateRecipe(ctx context.Context, userID uuid.UUID, payload recipe.Payload) (*RecipeDTO, error)
	UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, payload recipe.Payload) (*RecipeDTO, error)
	DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*DeleteRecipeResult, error)
	AddImage(ctx context.Context, cmd AddImageCommand) (*RecipeDTO, error)

	// Queries - operations that read state
	GetRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*RecipeDTO, error)
	ListRecipes(ctx context.Context, filter recipe.ListFilter) (*RecipeList, error)
	ListChildren(ctx context.Context, userID, recipeID uuid.UUID) ([]RecipeDTO, error)
	GetLineage(ctx context.Context, userID, recipeID uuid.UUID, mode recipe.LineageMode) (*LineageDTO, error)

	// Structuring and import
	StructureRecipe(ctx context.Context, text string) (*RecipeContentDTO, error)
	PlanImport(ctx context.Context, candidates []ImportCandidateInput) (*ImportPlanDTO, error)
	CommitImport(ctx context.Context, cmd CommitImportCommand) ([]RecipeDTO, error)
}

// AddImageCommand uploads an image and appends it to a recipe
type AddImageCommand struct {
	UserID      uuid.UUID
	RecipeID    uuid.UUID
	Filename    string
	ContentType string
	Data        []byte
}

// ImportCandidateInput is one recipe found in an imported conversation
type ImportCandidateInput struct {
	Index  int            `json:"index"`
	Recipe map[string]any `json:"recipe"`
}

// CommitImportCommand creates the recipes of an import plan
type CommitImportCommand struct {
	UserID     uuid.UUID
	Candidates []ImportCandidateInput
	// Selections maps an import index to its parent import index; nil or
	// absent means the recipe starts a new lineage
	Selections map[int]*int
}

// DeleteRecipeResult reports the outcome of a delete
type DeleteRecipeResult struct {
	Deleted          bool `json:"deleted"`
	DetachedChildren int  `json:"detachedChildren"`
}

// RecipeList is a page of recipes
type RecipeList struct {
	Recipes []RecipeDTO `json:"recipes"`
	Total   int         `json:"total"`
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
}

// LineageDTO is a recipe with its variations
type LineageDTO struct {
	Recipe   RecipeDTO    `json:"recipe"`
	Children []LineageDTO `json:"children"`
}

// ImportPlanDTO is the suggested lineage of an import
type ImportPlanDTO struct {
	Items []ImportPlanItemDTO `json:"items"`
}

// ImportPlanItemDTO is one planned import
type ImportPlanItemDTO struct {
	ImportIndex          int              `json:"importIndex"`
	SuggestedParentIndex *int             `json:"suggestedParentIndex"`
	Index                int              `json:"index"`
	Recipe               RecipeContentDTO `json:"recipe"`
}
