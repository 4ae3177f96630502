package mcp

import (
	"context"
	"encoding/json"
	"testing"

	apprecipe "github.com/alchemorsel/cookbook/internal/application/recipe"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/cookbook/internal/infrastructure/storage"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/test/testutils"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type UpdateRecipeToolTestSuite struct {
	suite.Suite
	ctx    context.Context
	userID uuid.UUID
	tool   *UpdateRecipeTool
}

func (s *UpdateRecipeToolTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.userID = uuid.New()
	service := apprecipe.NewRecipeService(
		memory.NewRecipeRepository(),
		&testutils.MockRecipeStructurer{},
		storage.Disabled{},
		&testutils.EventRecorder{},
		zap.NewNop(),
	)
	s.tool = NewUpdateRecipeTool(service, s.userID, zap.NewNop())
}

func (s *UpdateRecipeToolTestSuite) call(args map[string]any) *mcp.CallToolResult {
	req := mcp.CallToolRequest{}
	req.Params.Name = "update_recipe"
	req.Params.Arguments = args

	result, err := s.tool.Handle(s.ctx, req)
	s.Require().NoError(err)
	s.Require().NotNil(result)
	return result
}

func (s *UpdateRecipeToolTestSuite) text(result *mcp.CallToolResult) string {
	s.Require().Len(result.Content, 1)
	content, ok := result.Content[0].(mcp.TextContent)
	s.Require().True(ok)
	return content.Text
}

func (s *UpdateRecipeToolTestSuite) decode(result *mcp.CallToolResult) inbound.RecipeDTO {
	s.Require().False(result.IsError, s.text(result))
	var dto inbound.RecipeDTO
	s.Require().NoError(json.Unmarshal([]byte(s.text(result)), &dto))
	return dto
}

func (s *UpdateRecipeToolTestSuite) TestDefinition() {
	def := s.tool.Definition()

	s.Equal("update_recipe", def.Name)
	s.Contains(def.InputSchema.Properties, "recipeId")
	s.Contains(def.InputSchema.Properties, "images")
	s.Empty(def.InputSchema.Required)

	duration, ok := def.InputSchema.Properties["duration"].(map[string]any)
	s.Require().True(ok)
	alternatives, ok := duration["oneOf"].([]any)
	s.Require().True(ok)
	s.Require().Len(alternatives, 2)
	s.Equal("number", alternatives[0].(map[string]any)["type"])
	s.Equal("object", alternatives[1].(map[string]any)["type"])
}

func (s *UpdateRecipeToolTestSuite) TestCreate_AcceptsNumericDurationAndImages() {
	dto := s.decode(s.call(map[string]any{
		"title":    "Soupe",
		"duration": 45,
		"images":   []any{" https://img.example/soupe.jpg "},
	}))

	s.Require().NotNil(dto.Duration)
	s.Require().NotNil(dto.Duration.Minutes)
	s.Equal(45.0, *dto.Duration.Minutes)
	s.Equal([]string{"https://img.example/soupe.jpg"}, dto.Images)
}

func (s *UpdateRecipeToolTestSuite) TestCreate_NormalizesLooseArguments() {
	// Act
	dto := s.decode(s.call(map[string]any{
		"title":    " Tarte ",
		"duration": map[string]any{"prep": 10, "cook": 20},
		"steps": []any{
			map[string]any{"order": 2, "instruction": "b"},
			map[string]any{"order": 1, "instruction": "a"},
		},
		"ingredients": []any{map[string]any{"quantity": 3}, map[string]any{"name": "pommes", "quantity": "4"}},
	}))

	// Assert
	s.Equal("Tarte", dto.Title)
	s.Equal(s.userID, dto.UserID)
	s.Require().Len(dto.Steps, 2)
	s.Equal("a", dto.Steps[0].Instruction)
	s.Equal("b", dto.Steps[1].Instruction)
	s.Require().Len(dto.Ingredients, 1)
	s.Equal("pommes", dto.Ingredients[0].Name)
	s.Require().NotNil(dto.Ingredients[0].Quantity)
	s.Equal(4.0, *dto.Ingredients[0].Quantity)
}

func (s *UpdateRecipeToolTestSuite) TestUpdate_ByRecipeID() {
	created := s.decode(s.call(map[string]any{"title": "Gratin"}))

	updated := s.decode(s.call(map[string]any{
		"recipeId": created.ID.String(),
		"title":    "Gratin dauphinois",
		"portions": 6,
	}))

	s.Equal(created.ID, updated.ID)
	s.Equal("Gratin dauphinois", updated.Title)
	s.Require().NotNil(updated.Portions)
	s.Equal(6, *updated.Portions)
}

func (s *UpdateRecipeToolTestSuite) TestVariation_RequiresNote() {
	root := s.decode(s.call(map[string]any{"title": "Crêpes"}))

	result := s.call(map[string]any{"title": "Crêpes salées", "parentId": root.ID.String()})

	s.True(result.IsError)
	s.Contains(s.text(result), "variation")
}

func (s *UpdateRecipeToolTestSuite) TestUpdate_UnknownRecipe() {
	result := s.call(map[string]any{"recipeId": uuid.NewString(), "title": "Ghost"})

	s.True(result.IsError)
	s.Contains(s.text(result), "not found")
}

func TestUpdateRecipeToolTestSuite(t *testing.T) {
	suite.Run(t, new(UpdateRecipeToolTestSuite))
}
