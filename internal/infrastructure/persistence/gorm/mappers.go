// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"encoding/json"
	"fmt"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"gorm.io/datatypes"
)

// contentDocument is the JSON layout of RecipeModel.Content
type contentDocument struct {
	Title         string            `json:"title"`
	VariationNote string            `json:"variationNote,omitempty"`
	Objective     string            `json:"objective,omitempty"`
	Ingredients   []ingredientLine  `json:"ingredients"`
	Steps         []stepDocument    `json:"steps"`
	Duration      *durationDocument `json:"duration,omitempty"`
	Portions      *int              `json:"portions,omitempty"`
	Tags          []string          `json:"tags"`
	Equipment     []string          `json:"equipment"`
	DishType      string            `json:"dishType,omitempty"`
	Images        []string          `json:"images"`
}

type ingredientLine struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Note     string   `json:"note,omitempty"`
}

type stepDocument struct {
	Order       int    `json:"order"`
	Instruction string `json:"instruction"`
}

type durationDocument struct {
	Minutes *float64 `json:"minutes,omitempty"`
	Prep    *float64 `json:"prep,omitempty"`
	Cook    *float64 `json:"cook,omitempty"`
	Total   *float64 `json:"total,omitempty"`
}

func toContentDocument(c recipe.Content) contentDocument {
	doc := contentDocument{
		Title:         c.Title,
		VariationNote: c.VariationNote,
		Objective:     c.Objective,
		Ingredients:   make([]ingredientLine, 0, len(c.Ingredients)),
		Steps:         make([]stepDocument, 0, len(c.Steps)),
		Portions:      c.Portions,
		Tags:          append([]string{}, c.Tags...),
		Equipment:     append([]string{}, c.Equipment...),
		DishType:      c.DishType,
		Images:        append([]string{}, c.Images...),
	}
	for _, line := range c.Ingredients {
		doc.Ingredients = append(doc.Ingredients, ingredientLine(line))
	}
	for _, step := range c.Steps {
		doc.Steps = append(doc.Steps, stepDocument(step))
	}
	if c.Duration != nil {
		d := durationDocument(*c.Duration)
		doc.Duration = &d
	}
	return doc
}

func (d contentDocument) toContent() recipe.Content {
	c := recipe.Content{
		Title:         d.Title,
		VariationNote: d.VariationNote,
		Objective:     d.Objective,
		Portions:      d.Portions,
		Tags:          d.Tags,
		Equipment:     d.Equipment,
		DishType:      d.DishType,
		Images:        d.Images,
	}
	for _, line := range d.Ingredients {
		c.Ingredients = append(c.Ingredients, recipe.IngredientLine(line))
	}
	for _, step := range d.Steps {
		c.Steps = append(c.Steps, recipe.Step(step))
	}
	if d.Duration != nil {
		duration := recipe.Duration(*d.Duration)
		c.Duration = &duration
	}
	return c
}

// RecipeToModel converts a domain recipe to a GORM model
func RecipeToModel(r *recipe.Recipe) (*RecipeModel, error) {
	snap := r.Snapshot()
	content, err := json.Marshal(toContentDocument(snap.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to encode recipe content: %w", err)
	}

	return &RecipeModel{
		ID:        snap.ID,
		UserID:    snap.UserID,
		ParentID:  snap.ParentID,
		Title:     snap.Content.Title,
		DishType:  snap.Content.DishType,
		Content:   datatypes.JSON(content),
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}, nil
}

// ModelToRecipe converts a GORM model to a domain recipe
func ModelToRecipe(model *RecipeModel) (*recipe.Recipe, error) {
	var doc contentDocument
	if err := json.Unmarshal(model.Content, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode recipe %s content: %w", model.ID, err)
	}

	return recipe.Restore(recipe.Snapshot{
		ID:        model.ID,
		UserID:    model.UserID,
		ParentID:  model.ParentID,
		Content:   doc.toContent(),
		CreatedAt: model.CreatedAt.UTC(),
		UpdatedAt: model.UpdatedAt.UTC(),
	}), nil
}

// RealizationToModel converts a journal entry to a GORM model
func RealizationToModel(r *journal.Realization) *RealizationModel {
	return &RealizationModel{
		ID:         r.ID,
		UserID:     r.UserID,
		RecipeID:   r.RecipeID,
		RealizedAt: r.RealizedAt,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

// ModelToRealization converts a GORM model to a journal entry
func ModelToRealization(m *RealizationModel) *journal.Realization {
	return &journal.Realization{
		ID:         m.ID,
		UserID:     m.UserID,
		RecipeID:   m.RecipeID,
		RealizedAt: m.RealizedAt.UTC(),
		Comment:    m.Comment,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

// PlannedMealToModel converts a planned meal to a GORM model
func PlannedMealToModel(p *planner.PlannedMeal) *PlannedMealModel {
	return &PlannedMealModel{
		ID:          p.ID,
		UserID:      p.UserID,
		Date:        p.Date,
		Slot:        string(p.Slot),
		RecipeID:    p.RecipeID,
		RecipeTitle: p.RecipeTitle,
		Comment:     p.Comment,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ModelToPlannedMeal converts a GORM model to a planned meal
func ModelToPlannedMeal(m *PlannedMealModel) *planner.PlannedMeal {
	return &planner.PlannedMeal{
		ID:          m.ID,
		UserID:      m.UserID,
		Date:        m.Date.UTC(),
		Slot:        planner.Slot(m.Slot),
		RecipeID:    m.RecipeID,
		RecipeTitle: m.RecipeTitle,
		Comment:     m.Comment,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

// ShoppingItemToModel converts a shopping item to a GORM model
func ShoppingItemToModel(i *shopping.Item) *ShoppingItemModel {
	return &ShoppingItemModel{
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

// ModelToShoppingItem converts a GORM model to a shopping item
func ModelToShoppingItem(m *ShoppingItemModel) *shopping.Item {
	return &shopping.Item{
		ID:                  m.ID,
		UserID:              m.UserID,
		Name:                m.Name,
		Quantity:            m.Quantity,
		Unit:                m.Unit,
		Bought:              m.Bought,
		SourceRealizationID: m.SourceRealizationID,
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

// IngredientToModel converts a gallery entry to a GORM model
func IngredientToModel(i *ingredient.Ingredient) *IngredientModel {
	return &IngredientModel{
		ID:              i.ID,
		Name:            i.Name,
		DisplayName:     i.DisplayName,
		ImageURL:        i.ImageURL,
		Nutrition:       NutritionModel(i.Nutrition),
		NutritionSource: string(i.NutritionSource),
		USDAFdcID:       i.USDAFdcID,
		USDADescription: i.USDADescription,
		USDADataType:    i.USDADataType,
		USDASyncedAt:    i.USDASyncedAt,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

// ModelToIngredient converts a GORM model to a gallery entry
func ModelToIngredient(m *IngredientModel) *ingredient.Ingredient {
	return &ingredient.Ingredient{
		ID:              m.ID,
		Name:            m.Name,
		DisplayName:     m.DisplayName,
		ImageURL:        m.ImageURL,
		Nutrition:       ingredient.Nutrition(m.Nutrition),
		NutritionSource: ingredient.NutritionSource(m.NutritionSource),
		USDAFdcID:       m.USDAFdcID,
		USDADescription: m.USDADescription,
		USDADataType:    m.USDADataType,
		USDASyncedAt:    m.USDASyncedAt,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}
