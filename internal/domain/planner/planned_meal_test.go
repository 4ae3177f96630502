package planner

import (
	"testing"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseSlot(t *testing.T) {
	for _, name := range []string{"breakfast", "Collation", " LUNCH ", "dinner", "sortie"} {
		_, err := ParseSlot(name)
		assert.NoError(t, err, name)
	}

	_, err := ParseSlot("brunch")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestNewPlannedMeal(t *testing.T) {
	owner := uuid.New()
	now := time.Now().UTC()

	t.Run("TruncatesDate", func(t *testing.T) {
		m, err := NewPlannedMeal(owner, time.Date(2024, 1, 7, 19, 30, 0, 0, time.UTC), SlotDinner, nil, "Soupe", "", now)

		require.NoError(t, err)
		assert.Equal(t, day(2024, 1, 7), m.Date)
	})

	t.Run("FreeformNeedsTitle", func(t *testing.T) {
		_, err := NewPlannedMeal(owner, day(2024, 1, 7), SlotLunch, nil, "  ", "", now)
		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("RecipeBoundWithoutTitle", func(t *testing.T) {
		recipeID := uuid.New()
		_, err := NewPlannedMeal(owner, day(2024, 1, 7), SlotLunch, &recipeID, "", "", now)
		assert.NoError(t, err)
	})

	t.Run("MissingDate", func(t *testing.T) {
		_, err := NewPlannedMeal(owner, time.Time{}, SlotLunch, nil, "x", "", now)
		assert.ErrorIs(t, err, ErrDateRequired)
	})
}

func TestPlannedMeal_ApplyIsAtomic(t *testing.T) {
	recipeID := uuid.New()
	m, err := NewPlannedMeal(uuid.New(), day(2024, 1, 1), SlotLunch, &recipeID, "", "", time.Now())
	require.NoError(t, err)

	bad := Slot("brunch")
	comment := "avec les voisins"
	err = m.Apply(Patch{Slot: &bad, Comment: &comment}, time.Now())

	assert.ErrorIs(t, err, ErrInvalidSlot)
	assert.Equal(t, SlotLunch, m.Slot)
	assert.Empty(t, m.Comment)

	err = m.Apply(Patch{ClearRecipe: true}, time.Now())
	assert.ErrorIs(t, err, ErrTitleRequired)
	assert.NotNil(t, m.RecipeID)
}

func TestNewRange(t *testing.T) {
	r, err := NewRange(day(2024, 1, 1), day(2024, 1, 7))
	require.NoError(t, err)

	assert.True(t, r.Contains(time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(day(2024, 1, 7)))
	assert.True(t, r.Contains(time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(day(2024, 1, 8)))

	_, err = NewRange(day(2024, 1, 8), day(2024, 1, 7))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewRange(day(2024, 1, 1), day(2025, 6, 1))
	assert.ErrorIs(t, err, ErrRangeTooLarge)
}

func TestBuildCalendar_SortsAndEnriches(t *testing.T) {
	owner := uuid.New()
	now := time.Now()
	recipeID := uuid.New()
	r, _ := NewRange(day(2024, 1, 1), day(2024, 1, 7))

	dinner, _ := NewPlannedMeal(owner, day(2024, 1, 2), SlotDinner, nil, "Restes", "", now)
	breakfast, _ := NewPlannedMeal(owner, day(2024, 1, 2), SlotBreakfast, &recipeID, "Pancakes", "", now)
	first, _ := NewPlannedMeal(owner, day(2024, 1, 1), SlotSortie, nil, "Restaurant", "", now)

	late := &journal.Realization{RealizedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}
	early := &journal.Realization{RealizedAt: time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)}

	cal := BuildCalendar(r,
		[]*journal.Realization{late, early},
		[]*PlannedMeal{dinner, breakfast, first},
		map[uuid.UUID]RecipeInfo{recipeID: {Title: "Pancakes", DishType: "dessert"}},
	)

	assert.Equal(t, []*journal.Realization{early, late}, cal.Realizations)
	require.Len(t, cal.PlannedMeals, 3)
	assert.Same(t, first, cal.PlannedMeals[0].Meal)
	assert.Same(t, breakfast, cal.PlannedMeals[1].Meal)
	assert.Equal(t, "dessert", cal.PlannedMeals[1].RecipeDishType)
	assert.Same(t, dinner, cal.PlannedMeals[2].Meal)
	assert.Empty(t, cal.PlannedMeals[2].RecipeDishType)
}

func TestRecipeIDs_Distinct(t *testing.T) {
	id := uuid.New()
	meals := []*PlannedMeal{{RecipeID: &id}, {RecipeID: &id}, {}}

	assert.Equal(t, []uuid.UUID{id}, RecipeIDs(meals))
}
