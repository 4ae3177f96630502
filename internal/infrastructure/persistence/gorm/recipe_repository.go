// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

var _ outbound.RecipeRepository = (*RecipeRepository)(nil)

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create creates a new recipe
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	model, err := RecipeToModel(rec)
	if err != nil {
		return err
	}

	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

// Update replaces the stored recipe, scoped to its owner
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	model, err := RecipeToModel(rec)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("id = ? AND user_id = ?", model.ID, model.UserID).
		Select("parent_id", "title", "dish_type", "content", "updated_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}

	return nil
}

// Delete removes a recipe and detaches its direct children in one transaction
func (r *RecipeRepository) Delete(ctx context.Context, userID, id uuid.UUID) (int, error) {
	detached := 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&RecipeModel{}).
			Where("user_id = ? AND parent_id = ?", userID, id).
			Updates(map[string]interface{}{
				"parent_id":  nil,
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		detached = int(result.RowsAffected)

		result = tx.Where("id = ? AND user_id = ?", id, userID).Delete(&RecipeModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return outbound.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, translateError(err)
	}

	return detached, nil
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}

	return ModelToRecipe(&model)
}

// FindByIDs returns the owner's recipes among ids; unknown ids are skipped
func (r *RecipeRepository) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*recipe.Recipe, error) {
	if len(ids) == 0 {
		return []*recipe.Recipe{}, nil
	}

	var models []RecipeModel
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return toRecipes(models)
}

// List applies the structural filters, newest first
func (r *RecipeRepository) List(ctx context.Context, filter recipe.ListFilter) ([]*recipe.Recipe, error) {
	query := r.db.WithContext(ctx).
		Model(&RecipeModel{}).
		Where("user_id = ?", filter.UserID)

	if filter.ParentsOnly {
		query = query.Where("parent_id IS NULL")
	}
	if filter.ParentID != nil {
		query = query.Where("parent_id = ?", *filter.ParentID)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.DishType != "" {
		query = query.Where("LOWER(dish_type) = LOWER(?)", filter.DishType)
	}

	var models []RecipeModel
	if err := query.Order("created_at DESC").Order("id").Find(&models).Error; err != nil {
		return nil, err
	}

	return toRecipes(models)
}

// FindChildren returns direct children, oldest first
func (r *RecipeRepository) FindChildren(ctx context.Context, userID, parentID uuid.UUID) ([]*recipe.Recipe, error) {
	var models []RecipeModel

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND parent_id = ?", userID, parentID).
		Order("created_at ASC").
		Order("id").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	return toRecipes(models)
}

func toRecipes(models []RecipeModel) ([]*recipe.Recipe, error) {
	recipes := make([]*recipe.Recipe, len(models))
	for i := range models {
		rec, err := ModelToRecipe(&models[i])
		if err != nil {
			return nil, err
		}
		recipes[i] = rec
	}
	return recipes, nil
}
