package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/google/uuid"
)

// RealizationRepository keeps journal entries in a map
type RealizationRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]journal.Realization
}

var _ outbound.RealizationRepository = (*RealizationRepository)(nil)

func NewRealizationRepository() *RealizationRepository {
	return &RealizationRepository{rows: make(map[uuid.UUID]journal.Realization)}
}

func (r *RealizationRepository) Create(ctx context.Context, entry *journal.Realization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[entry.ID]; exists {
		return outbound.ErrDuplicate
	}
	r.rows[entry.ID] = *entry
	return nil
}

func (r *RealizationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, exists := r.rows[id]
	if !exists || row.UserID != userID {
		return outbound.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *RealizationRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*journal.Realization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, exists := r.rows[id]
	if !exists || row.UserID != userID {
		return nil, outbound.ErrNotFound
	}
	return &row, nil
}

func (r *RealizationRepository) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*journal.Realization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*journal.Realization, 0, len(ids))
	for _, id := range ids {
		if row, exists := r.rows[id]; exists && row.UserID == userID {
			out = append(out, &row)
		}
	}
	return out, nil
}

func (r *RealizationRepository) Find(ctx context.Context, q journal.Query) ([]*journal.Realization, error) {
	r.mu.RLock()
	out := make([]*journal.Realization, 0)
	for _, row := range r.rows {
		if q.Matches(&row) {
			out = append(out, &row)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if q.Sort == journal.SortAscending {
			return out[i].RealizedAt.Before(out[j].RealizedAt)
		}
		return out[i].RealizedAt.After(out[j].RealizedAt)
	})
	return out, nil
}

// PlannedMealRepository keeps planned meals in a map
type PlannedMealRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]planner.PlannedMeal
}

var _ outbound.PlannedMealRepository = (*PlannedMealRepository)(nil)

func NewPlannedMealRepository() *PlannedMealRepository {
	return &PlannedMealRepository{rows: make(map[uuid.UUID]planner.PlannedMeal)}
}

func (r *PlannedMealRepository) Create(ctx context.Context, m *planner.PlannedMeal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[m.ID]; exists {
		return outbound.ErrDuplicate
	}
	r.rows[m.ID] = *m
	return nil
}

func (r *PlannedMealRepository) Update(ctx context.Context, m *planner.PlannedMeal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, exists := r.rows[m.ID]
	if !exists || row.UserID != m.UserID {
		return outbound.ErrNotFound
	}
	r.rows[m.ID] = *m
	return nil
}

func (r *PlannedMealRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, exists := r.rows[id]
	if !exists || row.UserID != userID {
		return outbound.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *PlannedMealRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*planner.PlannedMeal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, exists := r.rows[id]
	if !exists || row.UserID != userID {
		return nil, outbound.ErrNotFound
	}
	return &row, nil
}

func (r *PlannedMealRepository) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*planner.PlannedMeal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*planner.PlannedMeal, 0, len(ids))
	for _, id := range ids {
		if row, exists := r.rows[id]; exists && row.UserID == userID {
			out = append(out, &row)
		}
	}
	return out, nil
}

func (r *PlannedMealRepository) FindInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*planner.PlannedMeal, error) {
	r.mu.RLock()
	out := make([]*planner.PlannedMeal, 0)
	for _, row := range r.rows {
		if row.UserID == userID && !row.Date.Before(from) && !row.Date.After(to) {
			out = append(out, &row)
		}
	}
	r.mu.RUnlock()

	planner.SortMeals(out)
	return out, nil
}

// ShoppingItemRepository keeps shopping items in a map
type ShoppingItemRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]shopping.Item
}

var _ outbound.ShoppingItemRepository = (*ShoppingItemRepository)(nil)

func NewShoppingItemRepository() *ShoppingItemRepository {
	return &ShoppingItemRepository{rows: make(map[uuid.UUID]shopping.Item)}
}

func (r *ShoppingItemRepository) Create(ctx context.Context, items ...*shopping.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		if _, exists := r.rows[item.ID]; exists {
			return outbound.ErrDuplicate
		}
	}
	for _, item := range items {
		r.rows[item.ID] = *item
	}
	return nil
}

func (r *ShoppingItemRepository) Update(ctx context.Context, item *shopping.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, exists := r.rows[item.ID]
	if !exists || row.UserID != item.UserID {
		return outbound.ErrNotFound
	}
	r.rows[item.ID] = *item
	return nil
}

func (r *ShoppingItemRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, exists := r.rows[id]
	if !exists || row.UserID != userID {
		return outbound.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *ShoppingItemRepository) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		if row, exists := r.rows[id]; exists && row.UserID == userID {
			delete(r.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *ShoppingItemRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*shopping.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, exists := r.rows[id]
	if !exists || row.UserID != userID {
		return nil, outbound.ErrNotFound
	}
	return &row, nil
}

func (r *ShoppingItemRepository) List(ctx context.Context, userID uuid.UUID, bought *bool) ([]*shopping.Item, error) {
	r.mu.RLock()
	out := make([]*shopping.Item, 0)
	for _, row := range r.rows {
		if row.UserID != userID || (bought != nil && row.Bought != *bought) {
			continue
		}
		out = append(out, &row)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// IngredientRepository keeps the shared gallery in a map, indexed by name
type IngredientRepository struct {
	mu     sync.RWMutex
	rows   map[uuid.UUID]ingredient.Ingredient
	byName map[string]uuid.UUID
}

var _ outbound.IngredientRepository = (*IngredientRepository)(nil)

func NewIngredientRepository() *IngredientRepository {
	return &IngredientRepository{
		rows:   make(map[uuid.UUID]ingredient.Ingredient),
		byName: make(map[string]uuid.UUID),
	}
}

func (r *IngredientRepository) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[ing.Name]; taken {
		return outbound.ErrDuplicate
	}
	r.rows[ing.ID] = *ing
	r.byName[ing.Name] = ing.ID
	return nil
}

func (r *IngredientRepository) Update(ctx context.Context, ing *ingredient.Ingredient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, exists := r.rows[ing.ID]
	if !exists {
		return outbound.ErrNotFound
	}
	if current.Name != ing.Name {
		if _, taken := r.byName[ing.Name]; taken {
			return outbound.ErrDuplicate
		}
		delete(r.byName, current.Name)
		r.byName[ing.Name] = ing.ID
	}
	r.rows[ing.ID] = *ing
	return nil
}

func (r *IngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, exists := r.rows[id]
	if !exists {
		return nil, outbound.ErrNotFound
	}
	return &row, nil
}

func (r *IngredientRepository) FindByName(ctx context.Context, canonicalName string) (*ingredient.Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, exists := r.byName[canonicalName]
	if !exists {
		return nil, outbound.ErrNotFound
	}
	row := r.rows[id]
	return &row, nil
}

func (r *IngredientRepository) FindByNames(ctx context.Context, canonicalNames []string) ([]*ingredient.Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ingredient.Ingredient, 0, len(canonicalNames))
	for _, name := range canonicalNames {
		if id, exists := r.byName[name]; exists {
			row := r.rows[id]
			out = append(out, &row)
		}
	}
	return out, nil
}

func (r *IngredientRepository) List(ctx context.Context) ([]*ingredient.Ingredient, error) {
	r.mu.RLock()
	out := make([]*ingredient.Ingredient, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, &row)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
