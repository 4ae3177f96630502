package inbound

import (
	"context"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"github.com/google/uuid"
)

// JournalService manages the cooking journal
type JournalService interface {
	ListRealizations(ctx context.Context, q journal.Query) ([]RealizationDTO, error)
	CreateRealization(ctx context.Context, cmd CreateRealizationCommand) (*RealizationDTO, error)
	DeleteRealization(ctx context.Context, userID, id uuid.UUID) error
}

// CreateRealizationCommand records a cooked recipe
type CreateRealizationCommand struct {
	UserID     uuid.UUID
	RecipeID   uuid.UUID
	RealizedAt *time.Time
	Comment    string
}

// PlannerService manages planned meals and the calendar view
type PlannerService interface {
	GetCalendar(ctx context.Context, userID uuid.UUID, from, to time.Time) (*CalendarDTO, error)
	CreatePlannedMeal(ctx context.Context, cmd CreatePlannedMealCommand) (*PlannedMealDTO, error)
	UpdatePlannedMeal(ctx context.Context, cmd UpdatePlannedMealCommand) (*PlannedMealDTO, error)
	DeletePlannedMeal(ctx context.Context, userID, id uuid.UUID) error
}

// CreatePlannedMealCommand plans a meal
type CreatePlannedMealCommand struct {
	UserID      uuid.UUID
	Date        time.Time
	Slot        planner.Slot
	RecipeID    *uuid.UUID
	RecipeTitle string
	Comment     string
}

// UpdatePlannedMealCommand edits a planned meal
type UpdatePlannedMealCommand struct {
	UserID uuid.UUID
	ID     uuid.UUID
	Patch  planner.Patch
}

// ShoppingService manages the shopping list
type ShoppingService interface {
	// ListItems deletes expired items (source dated on an earlier UTC day)
	// before listing, so it is not idempotent
	ListItems(ctx context.Context, userID uuid.UUID, bought *bool) ([]ShoppingItemDTO, error)
	AddItems(ctx context.Context, userID uuid.UUID, items []CreateShoppingItemCommand) ([]ShoppingItemDTO, error)
	UpdateItem(ctx context.Context, cmd UpdateShoppingItemCommand) (*ShoppingItemDTO, error)
	DeleteItem(ctx context.Context, userID, id uuid.UUID) error
	CleanupExpired(ctx context.Context, userID uuid.UUID) (int, error)
}

// CreateShoppingItemCommand adds an item
type CreateShoppingItemCommand struct {
	Name                string
	Quantity            *float64
	Unit                string
	SourceRealizationID *uuid.UUID
}

// UpdateShoppingItemCommand edits an item
type UpdateShoppingItemCommand struct {
	UserID uuid.UUID
	ID     uuid.UUID
	Patch  shopping.Patch
}

// IngredientService manages the shared ingredient gallery
type IngredientService interface {
	// ListIngredients syncs names used by the user and backfills nutrition first
	ListIngredients(ctx context.Context, userID uuid.UUID) ([]IngredientDTO, error)
	// CreateIngredient returns the existing ingredient and created=false on a duplicate name
	CreateIngredient(ctx context.Context, name, displayName string) (dto *IngredientDTO, created bool, err error)
	UpdateIngredient(ctx context.Context, id uuid.UUID, patch ingredient.Patch) (*IngredientDTO, error)
	// EnrichFromUSDA with refresh set bypasses the cached USDA match
	EnrichFromUSDA(ctx context.Context, id uuid.UUID, refresh bool) (*IngredientDTO, error)
	SyncNames(ctx context.Context, userID uuid.UUID) (int, error)
	BackfillNutrition(ctx context.Context) (int, error)
}
