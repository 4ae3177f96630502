package gorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	gormrepo "github.com/alchemorsel/cookbook/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/test/testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type RepositoryTestSuite struct {
	suite.Suite
	ctx          context.Context
	recipes      *gormrepo.RecipeRepository
	realizations *gormrepo.RealizationRepository
	meals        *gormrepo.PlannedMealRepository
	items        *gormrepo.ShoppingItemRepository
	ingredients  *gormrepo.IngredientRepository
	factory      *testutils.RecipeFactory
	userID       uuid.UUID
	now          time.Time
}

func (s *RepositoryTestSuite) SetupTest() {
	db, err := sqlite.SetupDatabase(sqlite.Options{LogLevel: "silent"}, zap.NewNop())
	s.Require().NoError(err)

	s.ctx = context.Background()
	s.recipes = gormrepo.NewRecipeRepository(db)
	s.realizations = gormrepo.NewRealizationRepository(db)
	s.meals = gormrepo.NewPlannedMealRepository(db)
	s.items = gormrepo.NewShoppingItemRepository(db)
	s.ingredients = gormrepo.NewIngredientRepository(db)
	s.factory = testutils.NewRecipeFactory(11)
	s.userID = uuid.New()
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *RepositoryTestSuite) createRecipe(at time.Time) *recipe.Recipe {
	r := s.factory.Recipe(s.userID, at)
	s.Require().NoError(s.recipes.Create(s.ctx, r))
	return r
}

func (s *RepositoryTestSuite) TestRecipe_RoundTripKeepsContent() {
	// Arrange
	r := s.createRecipe(s.now)

	// Act
	found, err := s.recipes.FindByID(s.ctx, s.userID, r.ID())

	// Assert
	s.Require().NoError(err)
	if diff := cmp.Diff(r.Snapshot(), found.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		s.Failf("snapshot mismatch", "(-want +got):\n%s", diff)
	}
}

func (s *RepositoryTestSuite) TestRecipe_OwnerScoped() {
	r := s.createRecipe(s.now)

	_, err := s.recipes.FindByID(s.ctx, uuid.New(), r.ID())
	s.ErrorIs(err, outbound.ErrNotFound)

	_, err = s.recipes.Delete(s.ctx, uuid.New(), r.ID())
	s.ErrorIs(err, outbound.ErrNotFound)
}

func (s *RepositoryTestSuite) TestRecipe_DeleteDetachesChildren() {
	// Arrange
	parent := s.createRecipe(s.now)
	child := s.factory.Variation(parent, nil, s.now.Add(time.Minute))
	s.Require().NoError(s.recipes.Create(s.ctx, child))
	grandchild := s.factory.Variation(child, []uuid.UUID{parent.ID()}, s.now.Add(2*time.Minute))
	s.Require().NoError(s.recipes.Create(s.ctx, grandchild))

	// Act
	detached, err := s.recipes.Delete(s.ctx, s.userID, parent.ID())

	// Assert
	s.Require().NoError(err)
	s.Equal(1, detached)
	reloaded, err := s.recipes.FindByID(s.ctx, s.userID, child.ID())
	s.Require().NoError(err)
	s.Nil(reloaded.ParentID())
	reloaded, err = s.recipes.FindByID(s.ctx, s.userID, grandchild.ID())
	s.Require().NoError(err)
	s.Require().NotNil(reloaded.ParentID())
	s.Equal(child.ID(), *reloaded.ParentID())
}

func (s *RepositoryTestSuite) TestRecipe_ListStructuralFilters() {
	older := s.createRecipe(s.now)
	newer := s.createRecipe(s.now.Add(time.Hour))
	child := s.factory.Variation(older, nil, s.now.Add(2*time.Hour))
	s.Require().NoError(s.recipes.Create(s.ctx, child))

	all, err := s.recipes.List(s.ctx, recipe.ListFilter{UserID: s.userID})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{child.ID(), newer.ID(), older.ID()}, ids(all))

	roots, err := s.recipes.List(s.ctx, recipe.ListFilter{UserID: s.userID, ParentsOnly: true})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{newer.ID(), older.ID()}, ids(roots))

	parentID := older.ID()
	children, err := s.recipes.FindChildren(s.ctx, s.userID, parentID)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{child.ID()}, ids(children))

	byIDs, err := s.recipes.FindByIDs(s.ctx, s.userID, []uuid.UUID{newer.ID(), uuid.New()})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{newer.ID()}, ids(byIDs))
}

func (s *RepositoryTestSuite) TestRealization_FindInclusiveRange() {
	recipeID := uuid.New()
	for _, day := range []int{1, 3, 8} {
		s.Require().NoError(s.realizations.Create(s.ctx,
			testutils.Realization(s.userID, recipeID, time.Date(2024, 1, day, 10, 0, 0, 0, time.UTC))))
	}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC)

	rows, err := s.realizations.Find(s.ctx, journal.Query{UserID: s.userID, From: &from, To: &to, Sort: journal.SortAscending})

	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal(1, rows[0].RealizedAt.Day())
	s.Equal(3, rows[1].RealizedAt.Day())
}

func (s *RepositoryTestSuite) TestPlannedMeal_RangeAndUpdate() {
	day := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	dinner := testutils.PlannedMeal(s.userID, day, planner.SlotDinner)
	lunch := testutils.PlannedMeal(s.userID, day, planner.SlotLunch)
	later := testutils.PlannedMeal(s.userID, day.AddDate(0, 0, 1), planner.SlotLunch)
	for _, m := range []*planner.PlannedMeal{dinner, lunch, later} {
		s.Require().NoError(s.meals.Create(s.ctx, m))
	}

	meals, err := s.meals.FindInRange(s.ctx, s.userID, day.AddDate(0, 0, -6), day.Add(24*time.Hour-time.Nanosecond))
	s.Require().NoError(err)
	s.Require().Len(meals, 2)
	s.Equal(lunch.ID, meals[0].ID)
	s.Equal(dinner.ID, meals[1].ID)

	dinner.Comment = "avec des amis"
	s.Require().NoError(s.meals.Update(s.ctx, dinner))
	reloaded, err := s.meals.FindByID(s.ctx, s.userID, dinner.ID)
	s.Require().NoError(err)
	s.Equal("avec des amis", reloaded.Comment)

	dinner.UserID = uuid.New()
	s.ErrorIs(s.meals.Update(s.ctx, dinner), outbound.ErrNotFound)
}

func (s *RepositoryTestSuite) TestShopping_DeleteByIDsIsOwnerScoped() {
	mine := testutils.ShoppingItem(s.userID, "farine", nil, s.now)
	theirs := testutils.ShoppingItem(uuid.New(), "sucre", nil, s.now)
	s.Require().NoError(s.items.Create(s.ctx, mine))
	s.Require().NoError(s.items.Create(s.ctx, theirs))

	deleted, err := s.items.DeleteByIDs(s.ctx, s.userID, []uuid.UUID{mine.ID, theirs.ID})

	s.Require().NoError(err)
	s.Equal(1, deleted)
	_, err = s.items.FindByID(s.ctx, theirs.UserID, theirs.ID)
	s.NoError(err)
}

func (s *RepositoryTestSuite) TestShopping_ListBoughtFilter() {
	first := testutils.ShoppingItem(s.userID, "pain", nil, s.now)
	second := testutils.ShoppingItem(s.userID, "lait", nil, s.now.Add(time.Minute))
	second.Bought = true
	s.Require().NoError(s.items.Create(s.ctx, first, second))

	all, err := s.items.List(s.ctx, s.userID, nil)
	s.Require().NoError(err)
	s.Len(all, 2)
	s.Equal("pain", all[0].Name)

	bought := true
	only, err := s.items.List(s.ctx, s.userID, &bought)
	s.Require().NoError(err)
	s.Require().Len(only, 1)
	s.Equal("lait", only[0].Name)
}

func (s *RepositoryTestSuite) TestIngredient_UniqueNameAndNutrition() {
	ing, err := ingredient.New("Crème", "", s.now)
	s.Require().NoError(err)
	ing.Backfill(ingredient.Nutrition{Calories: testutils.Float(292)}, s.now)
	s.Require().NoError(s.ingredients.Create(s.ctx, ing))

	dup, err := ingredient.New("creme", "", s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.ingredients.Create(s.ctx, dup), outbound.ErrDuplicate)

	found, err := s.ingredients.FindByName(s.ctx, "creme")
	s.Require().NoError(err)
	s.Equal(292.0, *found.Nutrition.Calories)
	s.Nil(found.Nutrition.Fat)
	s.Equal(ingredient.SourceDataset, found.NutritionSource)

	missing, err := ingredient.New("absent", "", s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.ingredients.Update(s.ctx, missing), outbound.ErrNotFound)
}

func ids(recipes []*recipe.Recipe) []uuid.UUID {
	out := make([]uuid.UUID, len(recipes))
	for i, r := range recipes {
		out[i] = r.ID()
	}
	return out
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
