// Package gorm provides GORM model definitions for the application
package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RecipeModel represents the GORM model for recipes.
// Authored content lives in a single JSON column; the columns queried by the
// list filters are denormalized next to it.
type RecipeModel struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID      `gorm:"type:char(36);not null;index:idx_recipes_user_created,priority:1"`
	ParentID  *uuid.UUID     `gorm:"type:char(36);index"`
	Title     string         `gorm:"type:varchar(255);not null"`
	DishType  string         `gorm:"type:varchar(100);index"`
	Content   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null;index:idx_recipes_user_created,priority:2"`
	UpdatedAt time.Time      `gorm:"not null"`
}

// RealizationModel represents a journal entry
type RealizationModel struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID `gorm:"type:char(36);not null;index:idx_realizations_user_at,priority:1"`
	RecipeID   uuid.UUID `gorm:"type:char(36);not null;index"`
	RealizedAt time.Time `gorm:"not null;index:idx_realizations_user_at,priority:2"`
	Comment    string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
}

// PlannedMealModel represents a calendar entry
type PlannedMealModel struct {
	ID          uuid.UUID  `gorm:"type:char(36);primaryKey"`
	UserID      uuid.UUID  `gorm:"type:char(36);not null;index:idx_planned_meals_user_date,priority:1"`
	Date        time.Time  `gorm:"not null;index:idx_planned_meals_user_date,priority:2"`
	Slot        string     `gorm:"type:varchar(20);not null"`
	RecipeID    *uuid.UUID `gorm:"type:char(36);index"`
	RecipeTitle string     `gorm:"type:varchar(255)"`
	Comment     string     `gorm:"type:text"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// ShoppingItemModel represents a shopping list line
type ShoppingItemModel struct {
	ID                  uuid.UUID  `gorm:"type:char(36);primaryKey"`
	UserID              uuid.UUID  `gorm:"type:char(36);not null;index:idx_shopping_user_bought,priority:1"`
	Name                string     `gorm:"type:varchar(255);not null"`
	Quantity            *float64
	Unit                string     `gorm:"type:varchar(50)"`
	Bought              bool       `gorm:"not null;default:false;index:idx_shopping_user_bought,priority:2"`
	SourceRealizationID *uuid.UUID `gorm:"type:char(36);index"`
	CreatedAt           time.Time  `gorm:"not null"`
	UpdatedAt           time.Time  `gorm:"not null"`
}

// NutritionModel is embedded in IngredientModel; values are per 100 g
type NutritionModel struct {
	Calories      *float64
	Protein       *float64
	Carbohydrates *float64
	Fat           *float64
	Fiber         *float64
	Sugar         *float64
	Sodium        *float64
}

// IngredientModel represents a gallery entry
type IngredientModel struct {
	ID              uuid.UUID      `gorm:"type:char(36);primaryKey"`
	Name            string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	DisplayName     string         `gorm:"type:varchar(255);not null"`
	ImageURL        string         `gorm:"type:text"`
	Nutrition       NutritionModel `gorm:"embedded;embeddedPrefix:nutrition_"`
	NutritionSource string         `gorm:"type:varchar(20)"`
	USDAFdcID       *int64         `gorm:"column:usda_fdc_id"`
	USDADescription string         `gorm:"column:usda_description;type:text"`
	USDADataType    string         `gorm:"column:usda_data_type;type:varchar(100)"`
	USDASyncedAt    *time.Time     `gorm:"column:usda_synced_at"`
	CreatedAt       time.Time      `gorm:"not null"`
	UpdatedAt       time.Time      `gorm:"not null"`
}

// AllModels lists every model for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&RecipeModel{},
		&RealizationModel{},
		&PlannedMealModel{},
		&ShoppingItemModel{},
		&IngredientModel{},
	}
}

// BeforeCreate hook for RecipeModel
func (r *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for IngredientModel
func (i *IngredientModel) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (RecipeModel) TableName() string {
	return "recipes"
}

func (RealizationModel) TableName() string {
	return "realizations"
}

func (PlannedMealModel) TableName() string {
	return "planned_meals"
}

func (ShoppingItemModel) TableName() string {
	return "shopping_list_items"
}

func (IngredientModel) TableName() string {
	return "ingredients"
}
