package journal

import (
	"context"
	"testing"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*JournalService, uuid.UUID, uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	recipes := memory.NewRecipeRepository()
	userID := uuid.New()
	now := time.Date(2024, 4, 2, 19, 0, 0, 0, time.UTC)

	r := testutils.NewRecipeFactory(7).Recipe(userID, now)
	require.NoError(t, recipes.Create(ctx, r))

	service := NewJournalService(memory.NewRealizationRepository(), recipes, zap.NewNop())
	service.now = func() time.Time { return now }
	return service, userID, r.ID()
}

func TestCreateRealization(t *testing.T) {
	service, userID, recipeID := newTestService(t)
	ctx := context.Background()

	t.Run("defaults to now", func(t *testing.T) {
		dto, err := service.CreateRealization(ctx, inbound.CreateRealizationCommand{
			UserID:   userID,
			RecipeID: recipeID,
			Comment:  "  parfait  ",
		})

		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 4, 2, 19, 0, 0, 0, time.UTC), dto.RealizedAt)
		assert.Equal(t, "parfait", dto.Comment)
	})

	t.Run("unknown recipe is not found", func(t *testing.T) {
		_, err := service.CreateRealization(ctx, inbound.CreateRealizationCommand{
			UserID:   userID,
			RecipeID: uuid.New(),
		})

		assert.Equal(t, errors.CodeRecipeNotFound, errors.GetCode(err))
	})

	t.Run("recipe of another user is not found", func(t *testing.T) {
		_, err := service.CreateRealization(ctx, inbound.CreateRealizationCommand{
			UserID:   uuid.New(),
			RecipeID: recipeID,
		})

		assert.Equal(t, errors.CodeRecipeNotFound, errors.GetCode(err))
	})

	t.Run("missing recipe id", func(t *testing.T) {
		_, err := service.CreateRealization(ctx, inbound.CreateRealizationCommand{UserID: userID})

		assert.Equal(t, errors.CodeValidationFailed, errors.GetCode(err))
	})
}

func TestListRealizations(t *testing.T) {
	service, userID, recipeID := newTestService(t)
	ctx := context.Background()

	for _, day := range []int{3, 1, 2} {
		at := time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC)
		_, err := service.CreateRealization(ctx, inbound.CreateRealizationCommand{
			UserID: userID, RecipeID: recipeID, RealizedAt: &at,
		})
		require.NoError(t, err)
	}

	days := func(rows []inbound.RealizationDTO) []int {
		out := make([]int, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.RealizedAt.Day())
		}
		return out
	}

	t.Run("newest first by default", func(t *testing.T) {
		rows, err := service.ListRealizations(ctx, journal.Query{UserID: userID})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2, 1}, days(rows))
	})

	t.Run("ascending within a range", func(t *testing.T) {
		from := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
		rows, err := service.ListRealizations(ctx, journal.Query{UserID: userID, From: &from, Sort: journal.SortAscending})
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3}, days(rows))
	})

	t.Run("reversed range", func(t *testing.T) {
		from := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		_, err := service.ListRealizations(ctx, journal.Query{UserID: userID, From: &from, To: &to})
		assert.Equal(t, errors.CodeValidationFailed, errors.GetCode(err))
	})
}

func TestDeleteRealization(t *testing.T) {
	service, userID, recipeID := newTestService(t)
	ctx := context.Background()

	dto, err := service.CreateRealization(ctx, inbound.CreateRealizationCommand{UserID: userID, RecipeID: recipeID})
	require.NoError(t, err)

	assert.Equal(t, errors.CodeNotFound, errors.GetCode(service.DeleteRealization(ctx, uuid.New(), dto.ID)))
	require.NoError(t, service.DeleteRealization(ctx, userID, dto.ID))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(service.DeleteRealization(ctx, userID, dto.ID)))
}
