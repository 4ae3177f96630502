package ingredient

import (
	"context"
	"testing"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type IngredientServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	ingredients *memory.IngredientRepository
	recipes     *memory.RecipeRepository
	shopping    *memory.ShoppingItemRepository
	cache       *memory.CacheRepository
	usda        *testutils.MockUSDAClient
	dataset     testutils.StaticDataset
	service     *IngredientService
	userID      uuid.UUID
	now         time.Time
}

func (s *IngredientServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ingredients = memory.NewIngredientRepository()
	s.recipes = memory.NewRecipeRepository()
	s.shopping = memory.NewShoppingItemRepository()
	s.cache = memory.NewCacheRepository(time.Minute)
	s.usda = &testutils.MockUSDAClient{}
	s.dataset = testutils.StaticDataset{
		"tomate": {Calories: testutils.Float(18), Protein: testutils.Float(0.9)},
		"creme":  {Calories: testutils.Float(292), Fat: testutils.Float(30)},
	}
	s.userID = uuid.New()
	s.now = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	s.service = NewIngredientService(s.ingredients, s.recipes, s.shopping, s.dataset, s.usda, s.cache, zap.NewNop())
	s.service.now = func() time.Time { return s.now }
}

func (s *IngredientServiceTestSuite) TearDownTest() {
	s.Require().NoError(s.cache.Close())
}

func (s *IngredientServiceTestSuite) TestCreateIngredient_DeduplicatesCanonicalNames() {
	first, created, err := s.service.CreateIngredient(s.ctx, "Crème", "")
	s.Require().NoError(err)
	s.True(created)
	s.Equal("creme", first.Name)
	s.Equal("Crème", first.DisplayName)
	s.Equal("dataset", first.NutritionSource)

	again, created, err := s.service.CreateIngredient(s.ctx, "  CREME ", "Crème fraîche")
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, again.ID)
}

func (s *IngredientServiceTestSuite) TestCreateIngredient_NameRequired() {
	_, _, err := s.service.CreateIngredient(s.ctx, "   ", "")

	s.Equal(errors.CodeValidationFailed, errors.GetCode(err))
}

func (s *IngredientServiceTestSuite) TestListIngredients_SyncsAndBackfills() {
	// Arrange
	content := recipe.Content{
		Title: "Salade",
		Ingredients: []recipe.IngredientLine{
			{Name: "Tomate"},
			{Name: "tomate"},
			{Name: "Huile d'olive"},
		},
	}
	r, err := recipe.NewRecipe(s.userID, content, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.recipes.Create(s.ctx, r))
	s.Require().NoError(s.shopping.Create(s.ctx, testutils.ShoppingItem(s.userID, "Crème", nil, s.now)))

	foreign, err := recipe.NewRecipe(uuid.New(), recipe.Content{
		Title:       "Other",
		Ingredients: []recipe.IngredientLine{{Name: "safran"}},
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.recipes.Create(s.ctx, foreign))

	// Act
	list, err := s.service.ListIngredients(s.ctx, s.userID)

	// Assert
	s.Require().NoError(err)
	byName := make(map[string]inbound.IngredientDTO)
	for _, ing := range list {
		byName[ing.Name] = ing
	}
	s.Len(byName, 3)
	s.Contains(byName, "tomate")
	s.Contains(byName, "huile d'olive")
	s.Contains(byName, "creme")
	s.NotContains(byName, "safran")
	s.Equal("Tomate", byName["tomate"].DisplayName)
	s.Equal("dataset", byName["tomate"].NutritionSource)
	s.Equal(18.0, *byName["tomate"].Nutrition.Calories)
	s.Empty(byName["huile d'olive"].NutritionSource)

	synced, err := s.service.SyncNames(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Zero(synced)
}

func (s *IngredientServiceTestSuite) TestBackfillNutrition_KeepsManualValues() {
	ing, err := ingredient.New("tomate", "", s.now)
	s.Require().NoError(err)
	s.Require().NoError(ing.Apply(ingredient.Patch{Nutrition: &ingredient.Nutrition{Calories: testutils.Float(25)}}, s.now))
	s.Require().NoError(s.ingredients.Create(s.ctx, ing))

	updated, err := s.service.BackfillNutrition(s.ctx)

	s.Require().NoError(err)
	s.Zero(updated)
	stored, err := s.ingredients.FindByID(s.ctx, ing.ID)
	s.Require().NoError(err)
	s.Equal(25.0, *stored.Nutrition.Calories)
	s.Equal(ingredient.SourceManual, stored.NutritionSource)
}

func (s *IngredientServiceTestSuite) TestEnrichFromUSDA_UsesCache() {
	// Arrange
	created, _, err := s.service.CreateIngredient(s.ctx, "Pois chiche", "")
	s.Require().NoError(err)

	match := &ingredient.USDAMatch{
		FdcID:       173756,
		Description: "Chickpeas, mature seeds, raw",
		DataType:    "SR Legacy",
		Nutrition:   ingredient.Nutrition{Calories: testutils.Float(378), Protein: testutils.Float(20.5)},
	}
	s.usda.On("SearchFood", mock.Anything, "pois chiche").Return(match, nil).Once()

	// Act
	first, err := s.service.EnrichFromUSDA(s.ctx, created.ID, false)
	s.Require().NoError(err)
	second, err := s.service.EnrichFromUSDA(s.ctx, created.ID, false)
	s.Require().NoError(err)

	// Assert
	s.Equal("usda", first.NutritionSource)
	s.Require().NotNil(first.USDAFdcID)
	s.Equal(int64(173756), *first.USDAFdcID)
	s.Equal(378.0, *second.Nutrition.Calories)
	s.usda.AssertNumberOfCalls(s.T(), "SearchFood", 1)

	_, err = s.cache.Get(s.ctx, "usda:pois chiche")
	s.NoError(err)
}

func (s *IngredientServiceTestSuite) TestEnrichFromUSDA_RefreshBypassesCache() {
	// Arrange
	created, _, err := s.service.CreateIngredient(s.ctx, "Lentilles", "")
	s.Require().NoError(err)

	stale := &ingredient.USDAMatch{FdcID: 1, Description: "Lentils, raw", Nutrition: ingredient.Nutrition{Calories: testutils.Float(352)}}
	fresh := &ingredient.USDAMatch{FdcID: 2, Description: "Lentils, mature seeds, raw", Nutrition: ingredient.Nutrition{Calories: testutils.Float(353)}}
	s.usda.On("SearchFood", mock.Anything, "lentilles").Return(stale, nil).Once()
	s.usda.On("SearchFood", mock.Anything, "lentilles").Return(fresh, nil).Once()

	// Act
	_, err = s.service.EnrichFromUSDA(s.ctx, created.ID, false)
	s.Require().NoError(err)
	refreshed, err := s.service.EnrichFromUSDA(s.ctx, created.ID, true)

	// Assert
	s.Require().NoError(err)
	s.Require().NotNil(refreshed.USDAFdcID)
	s.Equal(int64(2), *refreshed.USDAFdcID)
	s.usda.AssertNumberOfCalls(s.T(), "SearchFood", 2)
}

func (s *IngredientServiceTestSuite) TestEnrichFromUSDA_Errors() {
	created, _, err := s.service.CreateIngredient(s.ctx, "yuzu", "")
	s.Require().NoError(err)

	s.Run("missing key", func() {
		s.usda.On("SearchFood", mock.Anything, "yuzu").Return(nil, outbound.ErrNotConfigured).Once()
		_, err := s.service.EnrichFromUSDA(s.ctx, created.ID, false)
		s.Equal(errors.CodeServiceUnavailable, errors.GetCode(err))
	})

	s.Run("no match", func() {
		s.usda.On("SearchFood", mock.Anything, "yuzu").Return(nil, outbound.ErrNoMatch).Once()
		_, err := s.service.EnrichFromUSDA(s.ctx, created.ID, false)
		s.Equal(errors.CodeNotFound, errors.GetCode(err))
	})

	s.Run("unknown ingredient", func() {
		_, err := s.service.EnrichFromUSDA(s.ctx, uuid.New(), false)
		s.Equal(errors.CodeIngredientNotFound, errors.GetCode(err))
	})
}

func (s *IngredientServiceTestSuite) TestUpdateIngredient() {
	created, _, err := s.service.CreateIngredient(s.ctx, "basilic", "")
	s.Require().NoError(err)
	display := "Basilic frais"

	updated, err := s.service.UpdateIngredient(s.ctx, created.ID, ingredient.Patch{
		DisplayName: &display,
		Nutrition:   &ingredient.Nutrition{Calories: testutils.Float(23)},
	})

	s.Require().NoError(err)
	s.Equal("Basilic frais", updated.DisplayName)
	s.Equal("manual", updated.NutritionSource)

	_, err = s.service.UpdateIngredient(s.ctx, created.ID, ingredient.Patch{
		Nutrition: &ingredient.Nutrition{Fat: testutils.Float(-1)},
	})
	s.Equal(errors.CodeValidationFailed, errors.GetCode(err))
}

func TestIngredientServiceTestSuite(t *testing.T) {
	suite.Run(t, new(IngredientServiceTestSuite))
}
