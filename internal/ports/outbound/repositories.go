// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when an owner-scoped lookup misses
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique key already exists
var ErrDuplicate = errors.New("record already exists")

// RecipeRepository defines the interface for recipe persistence
// Every lookup is scoped to the owning user
type RecipeRepository interface {
	Create(ctx context.Context, r *recipe.Recipe) error
	Update(ctx context.Context, r *recipe.Recipe) error
	// Delete removes the recipe and turns its direct children into lineage
	// roots in the same operation. It returns the number of detached children.
	Delete(ctx context.Context, userID, id uuid.UUID) (int, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*recipe.Recipe, error)
	FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*recipe.Recipe, error)
	// List applies the structural filters (user, parent, parents only, ids,
	// dish type) and returns every match, newest first
	List(ctx context.Context, filter recipe.ListFilter) ([]*recipe.Recipe, error)
	FindChildren(ctx context.Context, userID, parentID uuid.UUID) ([]*recipe.Recipe, error)
}

// RealizationRepository persists journal entries
type RealizationRepository interface {
	Create(ctx context.Context, r *journal.Realization) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*journal.Realization, error)
	FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*journal.Realization, error)
	// Find returns entries ordered by RealizedAt in q.Sort order
	Find(ctx context.Context, q journal.Query) ([]*journal.Realization, error)
}

// PlannedMealRepository persists calendar entries
type PlannedMealRepository interface {
	Create(ctx context.Context, m *planner.PlannedMeal) error
	Update(ctx context.Context, m *planner.PlannedMeal) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*planner.PlannedMeal, error)
	FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*planner.PlannedMeal, error)
	FindInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*planner.PlannedMeal, error)
}

// ShoppingItemRepository persists shopping list items
type ShoppingItemRepository interface {
	Create(ctx context.Context, items ...*shopping.Item) error
	Update(ctx context.Context, item *shopping.Item) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*shopping.Item, error)
	// List returns a user's items oldest first, optionally filtered on bought
	List(ctx context.Context, userID uuid.UUID, bought *bool) ([]*shopping.Item, error)
}

// IngredientRepository persists the shared ingredient gallery
type IngredientRepository interface {
	// Create returns ErrDuplicate when the canonical name is taken
	Create(ctx context.Context, ing *ingredient.Ingredient) error
	Update(ctx context.Context, ing *ingredient.Ingredient) error
	FindByID(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error)
	FindByName(ctx context.Context, canonicalName string) (*ingredient.Ingredient, error)
	FindByNames(ctx context.Context, canonicalNames []string) ([]*ingredient.Ingredient, error)
	// List returns every ingredient ordered by name
	List(ctx context.Context) ([]*ingredient.Ingredient, error)
}

// ErrCacheMiss is returned by CacheRepository.Get for absent keys
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository stores opaque values under string keys. A ttl of zero
// falls back to the implementation default.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
