package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/test/testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestRecipeDocument_KeepsLineage(t *testing.T) {
	// Arrange
	factory := testutils.NewRecipeFactory(3)
	now := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	parent := factory.Recipe(uuid.New(), now)
	child := factory.Variation(parent, nil, now.Add(time.Hour))

	// Act
	doc := toRecipeDocument(child)
	restored, err := doc.toRecipe()

	// Assert
	require.NoError(t, err)
	require.NotNil(t, doc.ParentID)
	assert.Equal(t, parent.ID().String(), *doc.ParentID)
	assert.Equal(t, child.DishType(), doc.DishType)
	if diff := cmp.Diff(child.Snapshot(), restored.Snapshot(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestRecipeDocument_RejectsCorruptIdentifiers(t *testing.T) {
	doc := recipeDocument{ID: "not-a-uuid", UserID: uuid.NewString()}

	_, err := doc.toRecipe()

	assert.Error(t, err)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(mongo.ErrNoDocuments), outbound.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translateError(dup), outbound.ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))
}
