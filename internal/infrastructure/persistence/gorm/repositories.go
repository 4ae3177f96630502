package gorm

import (
	"context"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RealizationRepository persists journal entries
type RealizationRepository struct {
	db *gorm.DB
}

var _ outbound.RealizationRepository = (*RealizationRepository)(nil)

// NewRealizationRepository creates a new journal repository
func NewRealizationRepository(db *gorm.DB) *RealizationRepository {
	return &RealizationRepository{db: db}
}

func (r *RealizationRepository) Create(ctx context.Context, entry *journal.Realization) error {
	return translateError(r.db.WithContext(ctx).Create(RealizationToModel(entry)).Error)
}

func (r *RealizationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&RealizationModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *RealizationRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*journal.Realization, error) {
	var model RealizationModel
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return ModelToRealization(&model), nil
}

func (r *RealizationRepository) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*journal.Realization, error) {
	if len(ids) == 0 {
		return []*journal.Realization{}, nil
	}

	var models []RealizationModel
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*journal.Realization, len(models))
	for i := range models {
		out[i] = ModelToRealization(&models[i])
	}
	return out, nil
}

// Find applies the query; From and To are inclusive
func (r *RealizationRepository) Find(ctx context.Context, q journal.Query) ([]*journal.Realization, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", q.UserID)
	if q.RecipeID != nil {
		query = query.Where("recipe_id = ?", *q.RecipeID)
	}
	if q.From != nil {
		query = query.Where("realized_at >= ?", q.From.UTC())
	}
	if q.To != nil {
		query = query.Where("realized_at <= ?", q.To.UTC())
	}

	order := "realized_at DESC"
	if q.Sort == journal.SortAscending {
		order = "realized_at ASC"
	}

	var models []RealizationModel
	if err := query.Order(order).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*journal.Realization, len(models))
	for i := range models {
		out[i] = ModelToRealization(&models[i])
	}
	return out, nil
}

// PlannedMealRepository persists calendar entries
type PlannedMealRepository struct {
	db *gorm.DB
}

var _ outbound.PlannedMealRepository = (*PlannedMealRepository)(nil)

// NewPlannedMealRepository creates a new planner repository
func NewPlannedMealRepository(db *gorm.DB) *PlannedMealRepository {
	return &PlannedMealRepository{db: db}
}

func (r *PlannedMealRepository) Create(ctx context.Context, m *planner.PlannedMeal) error {
	return translateError(r.db.WithContext(ctx).Create(PlannedMealToModel(m)).Error)
}

func (r *PlannedMealRepository) Update(ctx context.Context, m *planner.PlannedMeal) error {
	model := PlannedMealToModel(m)
	result := r.db.WithContext(ctx).
		Model(&PlannedMealModel{}).
		Where("id = ? AND user_id = ?", model.ID, model.UserID).
		Select("date", "slot", "recipe_id", "recipe_title", "comment", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *PlannedMealRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&PlannedMealModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *PlannedMealRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*planner.PlannedMeal, error) {
	var model PlannedMealModel
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return ModelToPlannedMeal(&model), nil
}

func (r *PlannedMealRepository) FindByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*planner.PlannedMeal, error) {
	if len(ids) == 0 {
		return []*planner.PlannedMeal{}, nil
	}

	var models []PlannedMealModel
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Find(&models).Error; err != nil {
		return nil, err
	}
	return toPlannedMeals(models), nil
}

// FindInRange returns the meals whose day lies in [from, to]
func (r *PlannedMealRepository) FindInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*planner.PlannedMeal, error) {
	var models []PlannedMealModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from.UTC(), to.UTC()).
		Order("date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	meals := toPlannedMeals(models)
	planner.SortMeals(meals)
	return meals, nil
}

func toPlannedMeals(models []PlannedMealModel) []*planner.PlannedMeal {
	out := make([]*planner.PlannedMeal, len(models))
	for i := range models {
		out[i] = ModelToPlannedMeal(&models[i])
	}
	return out
}

// ShoppingItemRepository persists shopping list items
type ShoppingItemRepository struct {
	db *gorm.DB
}

var _ outbound.ShoppingItemRepository = (*ShoppingItemRepository)(nil)

// NewShoppingItemRepository creates a new shopping list repository
func NewShoppingItemRepository(db *gorm.DB) *ShoppingItemRepository {
	return &ShoppingItemRepository{db: db}
}

// Create inserts every item or none
func (r *ShoppingItemRepository) Create(ctx context.Context, items ...*shopping.Item) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]*ShoppingItemModel, len(items))
	for i, item := range items {
		models[i] = ShoppingItemToModel(item)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(models).Error
	})
	return translateError(err)
}

func (r *ShoppingItemRepository) Update(ctx context.Context, item *shopping.Item) error {
	model := ShoppingItemToModel(item)
	result := r.db.WithContext(ctx).
		Model(&ShoppingItemModel{}).
		Where("id = ? AND user_id = ?", model.ID, model.UserID).
		Select("name", "quantity", "unit", "bought", "source_realization_id", "updated_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *ShoppingItemRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&ShoppingItemModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *ShoppingItemRepository) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&ShoppingItemModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (r *ShoppingItemRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*shopping.Item, error) {
	var model ShoppingItemModel
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return ModelToShoppingItem(&model), nil
}

func (r *ShoppingItemRepository) List(ctx context.Context, userID uuid.UUID, bought *bool) ([]*shopping.Item, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if bought != nil {
		query = query.Where("bought = ?", *bought)
	}

	var models []ShoppingItemModel
	if err := query.Order("created_at ASC").Order("id").Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*shopping.Item, len(models))
	for i := range models {
		out[i] = ModelToShoppingItem(&models[i])
	}
	return out, nil
}

// IngredientRepository persists the shared gallery
type IngredientRepository struct {
	db *gorm.DB
}

var _ outbound.IngredientRepository = (*IngredientRepository)(nil)

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) *IngredientRepository {
	return &IngredientRepository{db: db}
}

// Create returns ErrDuplicate when the canonical name is taken
func (r *IngredientRepository) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&IngredientModel{}).Where("name = ?", ing.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return outbound.ErrDuplicate
		}
		return translateError(tx.Create(IngredientToModel(ing)).Error)
	})
}

func (r *IngredientRepository) Update(ctx context.Context, ing *ingredient.Ingredient) error {
	model := IngredientToModel(ing)
	result := r.db.WithContext(ctx).
		Model(&IngredientModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return outbound.ErrNotFound
	}
	return nil
}

func (r *IngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error) {
	var model IngredientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return ModelToIngredient(&model), nil
}

func (r *IngredientRepository) FindByName(ctx context.Context, canonicalName string) (*ingredient.Ingredient, error) {
	var model IngredientModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", canonicalName).Error; err != nil {
		return nil, translateError(err)
	}
	return ModelToIngredient(&model), nil
}

func (r *IngredientRepository) FindByNames(ctx context.Context, canonicalNames []string) ([]*ingredient.Ingredient, error) {
	if len(canonicalNames) == 0 {
		return []*ingredient.Ingredient{}, nil
	}

	var models []IngredientModel
	if err := r.db.WithContext(ctx).Where("name IN ?", canonicalNames).Find(&models).Error; err != nil {
		return nil, err
	}
	return toIngredients(models), nil
}

func (r *IngredientRepository) List(ctx context.Context) ([]*ingredient.Ingredient, error) {
	var models []IngredientModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return toIngredients(models), nil
}

func toIngredients(models []IngredientModel) []*ingredient.Ingredient {
	out := make([]*ingredient.Ingredient, len(models))
	for i := range models {
		out[i] = ModelToIngredient(&models[i])
	}
	return out
}
