package journal

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRealization(t *testing.T) {
	now := time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC)
	owner, recipeID := uuid.New(), uuid.New()

	r, err := NewRealization(owner, recipeID, nil, "  trop salé ", now)
	require.NoError(t, err)
	assert.Equal(t, now, r.RealizedAt)
	assert.Equal(t, "trop salé", r.Comment)

	at := time.Date(2024, 1, 30, 20, 0, 0, 0, time.FixedZone("CET", 3600))
	r, err = NewRealization(owner, recipeID, &at, "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 30, 19, 0, 0, 0, time.UTC), r.RealizedAt)

	_, err = NewRealization(owner, uuid.Nil, nil, "", now)
	assert.ErrorIs(t, err, ErrRecipeRequired)
}

func TestQuery(t *testing.T) {
	owner, recipeID := uuid.New(), uuid.New()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 7, 23, 59, 59, 0, time.UTC)
	q := Query{UserID: owner, RecipeID: &recipeID, From: &from, To: &to}

	assert.True(t, q.Matches(&Realization{UserID: owner, RecipeID: recipeID, RealizedAt: from.AddDate(0, 0, 2)}))
	assert.False(t, q.Matches(&Realization{UserID: owner, RecipeID: uuid.New(), RealizedAt: from}))
	assert.False(t, q.Matches(&Realization{UserID: owner, RecipeID: recipeID, RealizedAt: to.Add(time.Second)}))
	assert.False(t, q.Matches(&Realization{UserID: uuid.New(), RecipeID: recipeID, RealizedAt: from}))

	assert.ErrorIs(t, Query{From: &to, To: &from}.Validate(), ErrInvalidRange)
}

func TestParseSortOrder(t *testing.T) {
	order, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, SortDescending, order)

	order, err = ParseSortOrder("ASC")
	require.NoError(t, err)
	assert.Equal(t, SortAscending, order)

	_, err = ParseSortOrder("random")
	assert.ErrorIs(t, err, ErrInvalidSort)
}
