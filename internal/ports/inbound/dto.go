package inbound

import (
	"encoding/json"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/shared"
	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"github.com/google/uuid"
)

// Data Transfer Objects

// IngredientLineDTO is an ingredient as written in a recipe
type IngredientLineDTO struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// StepDTO is one ordered instruction
type StepDTO struct {
	Order       int    `json:"order"`
	Instruction string `json:"instruction"`
}

// DurationDTO encodes as a plain number of minutes or as {prep,cook,total}
type DurationDTO struct {
	Minutes *float64
	Prep    *float64
	Cook    *float64
	Total   *float64
}

type durationBreakdown struct {
	Prep  *float64 `json:"prep,omitempty"`
	Cook  *float64 `json:"cook,omitempty"`
	Total *float64 `json:"total,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (d DurationDTO) MarshalJSON() ([]byte, error) {
	if d.Minutes != nil {
		return json.Marshal(*d.Minutes)
	}
	return json.Marshal(durationBreakdown{Prep: d.Prep, Cook: d.Cook, Total: d.Total})
}

// UnmarshalJSON accepts both encodings produced by MarshalJSON
func (d *DurationDTO) UnmarshalJSON(data []byte) error {
	var minutes float64
	if err := json.Unmarshal(data, &minutes); err == nil {
		*d = DurationDTO{Minutes: &minutes}
		return nil
	}
	var b durationBreakdown
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	*d = DurationDTO{Prep: b.Prep, Cook: b.Cook, Total: b.Total}
	return nil
}

// RecipeContentDTO is the authored part of a recipe
type RecipeContentDTO struct {
	Title         string              `json:"title"`
	VariationNote string              `json:"variationNote,omitempty"`
	Objective     string              `json:"objective,omitempty"`
	Ingredients   []IngredientLineDTO `json:"ingredients"`
	Steps         []StepDTO           `json:"steps"`
	Duration      *DurationDTO        `json:"duration,omitempty"`
	Portions      *int                `json:"portions,omitempty"`
	Tags          []string            `json:"tags"`
	Equipment     []string            `json:"equipment"`
	DishType      string              `json:"dishType,omitempty"`
	Images        []string            `json:"images"`
}

// RecipeDTO is a stored recipe
type RecipeDTO struct {
	ID       uuid.UUID  `json:"id"`
	UserID   uuid.UUID  `json:"userId"`
	ParentID *uuid.UUID `json:"parentId"`
	RecipeContentDTO
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewRecipeContentDTO maps domain content to its transport form
func NewRecipeContentDTO(c recipe.Content) RecipeContentDTO {
	dto := RecipeContentDTO{
		Title:         c.Title,
		VariationNote: c.VariationNote,
		Objective:     c.Objective,
		Ingredients:   make([]IngredientLineDTO, 0, len(c.Ingredients)),
		Steps:         make([]StepDTO, 0, len(c.Steps)),
		Portions:      c.Portions,
		Tags:          nonNil(c.Tags),
		Equipment:     nonNil(c.Equipment),
		DishType:      c.DishType,
		Images:        nonNil(c.Images),
	}
	for _, ing := range c.Ingredients {
		dto.Ingredients = append(dto.Ingredients, IngredientLineDTO{
			Name:     ing.Name,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Note:     ing.Note,
		})
	}
	for _, step := range c.Steps {
		dto.Steps = append(dto.Steps, StepDTO{Order: step.Order, Instruction: step.Instruction})
	}
	if c.Duration != nil {
		dto.Duration = &DurationDTO{
			Minutes: c.Duration.Minutes,
			Prep:    c.Duration.Prep,
			Cook:    c.Duration.Cook,
			Total:   c.Duration.Total,
		}
	}
	return dto
}

// NewRecipeDTO maps a recipe aggregate
func NewRecipeDTO(r *recipe.Recipe) RecipeDTO {
	return RecipeDTO{
		ID:               r.ID(),
		UserID:           r.UserID(),
		ParentID:         r.ParentID(),
		RecipeContentDTO: NewRecipeContentDTO(r.Content()),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
	}
}

// NewRecipeDTOs maps a slice of recipes, never returning nil
func NewRecipeDTOs(recipes []*recipe.Recipe) []RecipeDTO {
	out := make([]RecipeDTO, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, NewRecipeDTO(r))
	}
	return out
}

// NewLineageDTO maps a lineage tree
func NewLineageDTO(node *recipe.LineageNode) *LineageDTO {
	if node == nil {
		return nil
	}
	dto := &LineageDTO{
		Recipe:   NewRecipeDTO(node.Recipe),
		Children: make([]LineageDTO, 0, len(node.Children)),
	}
	for _, child := range node.Children {
		dto.Children = append(dto.Children, *NewLineageDTO(child))
	}
	return dto
}

// RealizationDTO is a journal entry
type RealizationDTO struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	RecipeID   uuid.UUID `json:"recipeId"`
	RealizedAt time.Time `json:"realizedAt"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewRealizationDTO maps a journal entry
func NewRealizationDTO(r *journal.Realization) RealizationDTO {
	return RealizationDTO{
		ID:         r.ID,
		UserID:     r.UserID,
		RecipeID:   r.RecipeID,
		RealizedAt: r.RealizedAt,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// PlannedMealDTO is a planned meal; Date is YYYY-MM-DD
type PlannedMealDTO struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"userId"`
	Date           string     `json:"date"`
	Slot           string     `json:"slot"`
	RecipeID       *uuid.UUID `json:"recipeId"`
	RecipeTitle    string     `json:"recipeTitle"`
	RecipeDishType string     `json:"recipeDishType,omitempty"`
	Comment        string     `json:"comment,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewPlannedMealDTO maps a planned meal
func NewPlannedMealDTO(m *planner.PlannedMeal) PlannedMealDTO {
	return PlannedMealDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		Date:        m.Date.UTC().Format(shared.DateLayout),
		Slot:        string(m.Slot),
		RecipeID:    m.RecipeID,
		RecipeTitle: m.RecipeTitle,
		Comment:     m.Comment,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CalendarRealizationDTO is a journal entry in the calendar; Date is YYYY-MM-DD
type CalendarRealizationDTO struct {
	RealizationDTO
	Date string `json:"date"`
}

// CalendarDTO is the merged calendar of a date range
type CalendarDTO struct {
	From         string                   `json:"from"`
	To           string                   `json:"to"`
	Realizations []CalendarRealizationDTO `json:"realizations"`
	PlannedMeals []PlannedMealDTO         `json:"plannedMeals"`
}

// NewCalendarDTO maps an aggregated calendar
func NewCalendarDTO(c planner.Calendar) CalendarDTO {
	dto := CalendarDTO{
		From:         c.Range.From.Format(shared.DateLayout),
		To:           c.Range.To.Format(shared.DateLayout),
		Realizations: make([]CalendarRealizationDTO, 0, len(c.Realizations)),
		PlannedMeals: make([]PlannedMealDTO, 0, len(c.PlannedMeals)),
	}
	for _, r := range c.Realizations {
		dto.Realizations = append(dto.Realizations, CalendarRealizationDTO{
			RealizationDTO: NewRealizationDTO(r),
			Date:           r.RealizedAt.UTC().Format(shared.DateLayout),
		})
	}
	for _, m := range c.PlannedMeals {
		meal := NewPlannedMealDTO(m.Meal)
		meal.RecipeDishType = m.RecipeDishType
		dto.PlannedMeals = append(dto.PlannedMeals, meal)
	}
	return dto
}

// ShoppingItemDTO is a shopping list item
type ShoppingItemDTO struct {
	ID                  uuid.UUID  `json:"id"`
	UserID              uuid.UUID  `json:"userId"`
	Name                string     `json:"name"`
	Quantity            *float64   `json:"quantity,omitempty"`
	Unit                string     `json:"unit,omitempty"`
	Bought              bool       `json:"bought"`
	SourceRealizationID *uuid.UUID `json:"sourceRealizationId,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// NewShoppingItemDTO maps a shopping item
func NewShoppingItemDTO(i *shopping.Item) ShoppingItemDTO {
	return ShoppingItemDTO{
		ID:                  i.ID,
		UserID:              i.UserID,
		Name:                i.Name,
		Quantity:            i.Quantity,
		Unit:                i.Unit,
		Bought:              i.Bought,
		SourceRealizationID: i.SourceRealizationID,
		CreatedAt:           i.CreatedAt,
		UpdatedAt:           i.UpdatedAt,
	}
}

// NutritionDTO holds values per 100 g
type NutritionDTO struct {
	Calories      *float64 `json:"calories"`
	Protein       *float64 `json:"protein"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Fat           *float64 `json:"fat"`
	Fiber         *float64 `json:"fiber"`
	Sugar         *float64 `json:"sugar"`
	Sodium        *float64 `json:"sodium"`
}

// ToDomain converts the transport form
func (n NutritionDTO) ToDomain() ingredient.Nutrition {
	return ingredient.Nutrition(n)
}

// IngredientDTO is a gallery ingredient
type IngredientDTO struct {
	ID              uuid.UUID    `json:"id"`
	Name            string       `json:"name"`
	DisplayName     string       `json:"displayName"`
	ImageURL        string       `json:"imageUrl,omitempty"`
	Nutrition       NutritionDTO `json:"nutrition"`
	NutritionSource string       `json:"nutritionSource,omitempty"`
	USDAFdcID       *int64       `json:"usdaFdcId,omitempty"`
	USDADescription string       `json:"usdaDescription,omitempty"`
	USDADataType    string       `json:"usdaDataType,omitempty"`
	USDASyncedAt    *time.Time   `json:"usdaSyncedAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// NewIngredientDTO maps an ingredient
func NewIngredientDTO(i *ingredient.Ingredient) IngredientDTO {
	return IngredientDTO{
		ID:              i.ID,
		Name:            i.Name,
		DisplayName:     i.DisplayName,
		ImageURL:        i.ImageURL,
		Nutrition:       NutritionDTO(i.Nutrition),
		NutritionSource: string(i.NutritionSource),
		USDAFdcID:       i.USDAFdcID,
		USDADescription: i.USDADescription,
		USDADataType:    i.USDADataType,
		USDASyncedAt:    i.USDASyncedAt,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
