// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// RecipeFactory creates recipe payloads and entities from a seeded faker
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{faker: gofakeit.New(seed)}
}

// Content returns valid recipe content with a few ingredients and steps
func (f *RecipeFactory) Content() recipe.Content {
	portions := f.faker.Number(1, 8)
	ingredients := make([]recipe.IngredientLine, 0, 3)
	for i := 0; i < 3; i++ {
		qty := float64(f.faker.Number(1, 500))
		ingredients = append(ingredients, recipe.IngredientLine{
			Name:     strings.ToLower(f.faker.Fruit()),
			Quantity: &qty,
			Unit:     "g",
		})
	}
	return recipe.Content{
		Title:       strings.TrimSuffix(f.faker.Sentence(3), "."),
		Objective:   f.faker.Sentence(6),
		Ingredients: ingredients,
		Steps: []recipe.Step{
			{Order: 1, Instruction: f.faker.Sentence(8)},
			{Order: 2, Instruction: f.faker.Sentence(8)},
		},
		Portions: &portions,
		Tags:     []string{"test"},
		DishType: "main",
	}
}

// Payload returns the loose map form accepted by the normalizer
func (f *RecipeFactory) Payload(title string) map[string]any {
	return map[string]any{
		"title": title,
		"ingredients": []any{
			map[string]any{"name": strings.ToLower(f.faker.Vegetable()), "quantity": 100.0, "unit": "g"},
		},
		"steps": []any{map[string]any{"order": 1, "instruction": f.faker.Sentence(6)}},
	}
}

// Recipe builds a root recipe for userID
func (f *RecipeFactory) Recipe(userID uuid.UUID, now time.Time) *recipe.Recipe {
	r, err := recipe.NewRecipe(userID, f.Content(), now)
	if err != nil {
		panic(err)
	}
	r.Events()
	return r
}

// Variation builds a recipe linked to parent with a variation note
func (f *RecipeFactory) Variation(parent *recipe.Recipe, ancestry []uuid.UUID, now time.Time) *recipe.Recipe {
	content := f.Content()
	content.VariationNote = f.faker.Sentence(5)
	r, err := recipe.NewRecipe(parent.UserID(), content, now)
	if err != nil {
		panic(err)
	}
	if err := r.LinkTo(parent, ancestry, now); err != nil {
		panic(err)
	}
	r.Events()
	return r
}

// Realization builds a journal entry at realizedAt
func Realization(userID, recipeID uuid.UUID, realizedAt time.Time) *journal.Realization {
	entry, err := journal.NewRealization(userID, recipeID, &realizedAt, gofakeit.Sentence(4), realizedAt)
	if err != nil {
		panic(err)
	}
	return entry
}

// PlannedMeal builds a free-text planned meal on day
func PlannedMeal(userID uuid.UUID, day time.Time, slot planner.Slot) *planner.PlannedMeal {
	m, err := planner.NewPlannedMeal(userID, day, slot, nil, gofakeit.Dessert(), "", day)
	if err != nil {
		panic(err)
	}
	return m
}

// ShoppingItem builds an item, optionally sourced from a realization or planned meal
func ShoppingItem(userID uuid.UUID, name string, source *uuid.UUID, now time.Time) *shopping.Item {
	item, err := shopping.NewItem(userID, name, nil, "", source, now)
	if err != nil {
		panic(err)
	}
	return item
}
