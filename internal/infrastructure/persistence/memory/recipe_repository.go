package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/google/uuid"
)

// RecipeRepository keeps recipe snapshots in a map
type RecipeRepository struct {
	mu      sync.RWMutex
	recipes map[uuid.UUID]recipe.Snapshot
}

var _ outbound.RecipeRepository = (*RecipeRepository)(nil)

// NewRecipeRepository creates an empty recipe repository
func NewRecipeRepository() *RecipeRepository {
	return &RecipeRepository{recipes: make(map[uuid.UUID]recipe.Snapshot)}
}

func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.recipes[rec.ID()]; exists {
		return outbound.ErrDuplicate
	}
	r.recipes[rec.ID()] = rec.Snapshot()
	return nil
}

func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.recipes[rec.ID()]
	if !exists || current.UserID != rec.UserID() {
		return outbound.ErrNotFound
	}
	r.recipes[rec.ID()] = rec.Snapshot()
	return nil
}

// Delete removes the recipe and makes its direct children roots
func (r *RecipeRepository) Delete(ctx context.Context, userID, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.recipes[id]
	if !exists || current.UserID != userID {
		return 0, outbound.ErrNotFound
	}
	delete(r.recipes, id)

	detached := 0
	now := time.Now().UTC()
	for childID, child := range r.recipes {
		if child.UserID == userID && child.ParentID != nil && *child.ParentID == id {
			child.ParentID = nil
			child.UpdatedAt = now
			r.recipes[childID] = child
			detached++
		}
	}
	return detached, nil
}

func (r *RecipeRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*recipe.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, exists := r.recipes[id]
	if !exists || snap.UserID != userID {
		return nil, outbound.ErrNotFound
	}
	return recipe.Restore(snap), nil
}

func (r *RecipeRepository) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*recipe.Recipe, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		snap, exists := r.recipes[id]
		if !exists || snap.UserID != userID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, recipe.Restore(snap))
	}
	return out, nil
}

// List applies the structural filters, newest first
func (r *RecipeRepository) List(ctx context.Context, filter recipe.ListFilter) ([]*recipe.Recipe, error) {
	structural := recipe.ListFilter{
		UserID:      filter.UserID,
		ParentID:    filter.ParentID,
		ParentsOnly: filter.ParentsOnly,
		IDs:         filter.IDs,
		DishType:    filter.DishType,
	}

	r.mu.RLock()
	out := make([]*recipe.Recipe, 0)
	for _, snap := range r.recipes {
		rec := recipe.Restore(snap)
		if structural.Matches(rec) {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sortRecipes(out, false)
	return out, nil
}

// FindChildren returns direct children, oldest first
func (r *RecipeRepository) FindChildren(ctx context.Context, userID, parentID uuid.UUID) ([]*recipe.Recipe, error) {
	r.mu.RLock()
	out := make([]*recipe.Recipe, 0)
	for _, snap := range r.recipes {
		if snap.UserID == userID && snap.ParentID != nil && *snap.ParentID == parentID {
			out = append(out, recipe.Restore(snap))
		}
	}
	r.mu.RUnlock()

	sortRecipes(out, true)
	return out, nil
}

func sortRecipes(recipes []*recipe.Recipe, ascending bool) {
	sort.Slice(recipes, func(i, j int) bool {
		a, b := recipes[i], recipes[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			if ascending {
				return a.CreatedAt().Before(b.CreatedAt())
			}
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.ID().String() < b.ID().String()
	})
}
