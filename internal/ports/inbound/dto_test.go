package inbound

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationDTO_MarshalJSON(t *testing.T) {
	ten, twenty, fortyFive := 10.0, 20.0, 45.0

	raw, err := json.Marshal(DurationDTO{Minutes: &fortyFive})
	require.NoError(t, err)
	assert.JSONEq(t, `45`, string(raw))

	raw, err = json.Marshal(DurationDTO{Prep: &ten, Cook: &twenty})
	require.NoError(t, err)
	assert.JSONEq(t, `{"prep":10,"cook":20}`, string(raw))
}

func TestDurationDTO_UnmarshalJSON(t *testing.T) {
	var minutes DurationDTO
	require.NoError(t, json.Unmarshal([]byte(`45`), &minutes))
	require.NotNil(t, minutes.Minutes)
	assert.Equal(t, 45.0, *minutes.Minutes)

	var breakdown DurationDTO
	require.NoError(t, json.Unmarshal([]byte(`{"prep":10,"total":30}`), &breakdown))
	assert.Nil(t, breakdown.Minutes)
	require.NotNil(t, breakdown.Total)
	assert.Equal(t, 30.0, *breakdown.Total)
	assert.Nil(t, breakdown.Cook)

	assert.Error(t, json.Unmarshal([]byte(`"long"`), &DurationDTO{}))
}

func TestNewRecipeContentDTO_EmptyListsEncodeAsArrays(t *testing.T) {
	dto := NewRecipeContentDTO(recipe.Content{Title: "Soupe"})

	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Soupe","ingredients":[],"steps":[],"tags":[],"equipment":[],"images":[]}`, string(raw))
}

func TestNewCalendarDTO_FormatsDays(t *testing.T) {
	r, err := planner.NewRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	meal, err := planner.NewPlannedMeal(uuid.New(), time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), planner.SlotLunch, nil, "Pique-nique", "", time.Now())
	require.NoError(t, err)

	dto := NewCalendarDTO(planner.Calendar{
		Range:        r,
		Realizations: []*journal.Realization{{RealizedAt: time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)}},
		PlannedMeals: []planner.CalendarMeal{{Meal: meal, RecipeDishType: "plat"}},
	})

	assert.Equal(t, "2024-01-01", dto.From)
	assert.Equal(t, "2024-01-07", dto.To)
	require.Len(t, dto.Realizations, 1)
	assert.Equal(t, "2024-01-03", dto.Realizations[0].Date)
	require.Len(t, dto.PlannedMeals, 1)
	assert.Equal(t, "2024-01-07", dto.PlannedMeals[0].Date)
	assert.Equal(t, "plat", dto.PlannedMeals[0].RecipeDishType)
}
