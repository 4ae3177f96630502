package ingredient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func ptr(v float64) *float64 { return &v }

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Crème  Fraîche ", "creme fraiche"},
		{"TOMATE", "tomate"},
		{"Jalapeño", "jalapeno"},
		{"\tœuf \n", "œuf"},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalName(tt.in))
		})
	}
}

func TestCanonicalNames_DeduplicatesInOrder(t *testing.T) {
	got := CanonicalNames([]string{"Basilic", "basilic ", "", "Échalote", "echalote", "Ail"})

	assert.Equal(t, []string{"basilic", "echalote", "ail"}, got)
}

func TestNew(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	ing, err := New("  Crème fraîche", "", now)
	require.NoError(t, err)
	assert.Equal(t, "creme fraiche", ing.Name)
	assert.Equal(t, "Crème fraîche", ing.DisplayName)
	assert.Equal(t, now, ing.CreatedAt)
	assert.False(t, ing.HasNutrition())

	_, err = New(" ", "Nothing", now)
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestBackfill_OnlyFillsUnknownNutrition(t *testing.T) {
	now := time.Now().UTC()
	ing, err := New("beurre", "", now)
	require.NoError(t, err)

	assert.True(t, ing.Backfill(Nutrition{Calories: ptr(717), Fat: ptr(81)}, now))
	assert.Equal(t, SourceDataset, ing.NutritionSource)

	assert.False(t, ing.Backfill(Nutrition{Calories: ptr(1)}, now))
	assert.Equal(t, 717.0, *ing.Nutrition.Calories)
}

func TestApplyUSDA(t *testing.T) {
	now := time.Now().UTC()
	ing, err := New("butter", "", now)
	require.NoError(t, err)
	ing.Backfill(Nutrition{Calories: ptr(700)}, now)

	err = ing.ApplyUSDA(USDAMatch{
		FdcID:       173410,
		Description: "Butter, salted",
		DataType:    "SR Legacy",
		Nutrition:   Nutrition{Calories: ptr(717), Protein: ptr(0.85)},
	}, now)

	require.NoError(t, err)
	assert.Equal(t, SourceUSDA, ing.NutritionSource)
	assert.Equal(t, int64(173410), *ing.USDAFdcID)
	assert.Equal(t, 717.0, *ing.Nutrition.Calories)
	require.NotNil(t, ing.USDASyncedAt)

	assert.ErrorIs(t, ing.ApplyUSDA(USDAMatch{}, now), ErrUSDAMatchIncomplete)
}

func TestApply_Patch(t *testing.T) {
	now := time.Now().UTC()
	ing, err := New("sel", "", now)
	require.NoError(t, err)

	display := "Sel de Guérande"
	require.NoError(t, ing.Apply(Patch{
		DisplayName: &display,
		Nutrition:   &Nutrition{Sodium: ptr(38758)},
	}, now))
	assert.Equal(t, display, ing.DisplayName)
	assert.Equal(t, SourceManual, ing.NutritionSource)

	err = ing.Apply(Patch{Nutrition: &Nutrition{Fat: ptr(-1)}}, now)
	assert.ErrorIs(t, err, ErrNegativeNutrient)

	blank := "  "
	assert.ErrorIs(t, ing.Apply(Patch{DisplayName: &blank}, now), ErrNameRequired)
}
