package mongo

import (
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"github.com/google/uuid"
)

// Identifiers are stored as their string form so documents stay readable
// from the shell.

type recipeDocument struct {
	ID        string          `bson:"_id"`
	UserID    string          `bson:"user_id"`
	ParentID  *string         `bson:"parent_id"`
	DishType  string          `bson:"dish_type"`
	Content   contentDocument `bson:"content"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

type contentDocument struct {
	Title         string            `bson:"title"`
	VariationNote string            `bson:"variation_note,omitempty"`
	Objective     string            `bson:"objective,omitempty"`
	Ingredients   []lineDocument    `bson:"ingredients"`
	Steps         []stepDocument    `bson:"steps"`
	Duration      *durationDocument `bson:"duration,omitempty"`
	Portions      *int              `bson:"portions,omitempty"`
	Tags          []string          `bson:"tags"`
	Equipment     []string          `bson:"equipment"`
	DishType      string            `bson:"dish_type,omitempty"`
	Images        []string          `bson:"images"`
}

type lineDocument struct {
	Name     string   `bson:"name"`
	Quantity *float64 `bson:"quantity,omitempty"`
	Unit     string   `bson:"unit,omitempty"`
	Note     string   `bson:"note,omitempty"`
}

type stepDocument struct {
	Order       int    `bson:"order"`
	Instruction string `bson:"instruction"`
}

type durationDocument struct {
	Minutes *float64 `bson:"minutes,omitempty"`
	Prep    *float64 `bson:"prep,omitempty"`
	Cook    *float64 `bson:"cook,omitempty"`
	Total   *float64 `bson:"total,omitempty"`
}

func toRecipeDocument(r *recipe.Recipe) recipeDocument {
	snap := r.Snapshot()
	c := snap.Content
	content := contentDocument{
		Title:         c.Title,
		VariationNote: c.VariationNote,
		Objective:     c.Objective,
		Ingredients:   make([]lineDocument, 0, len(c.Ingredients)),
		Steps:         make([]stepDocument, 0, len(c.Steps)),
		Portions:      c.Portions,
		Tags:          append([]string{}, c.Tags...),
		Equipment:     append([]string{}, c.Equipment...),
		DishType:      c.DishType,
		Images:        append([]string{}, c.Images...),
	}
	for _, line := range c.Ingredients {
		content.Ingredients = append(content.Ingredients, lineDocument(line))
	}
	for _, step := range c.Steps {
		content.Steps = append(content.Steps, stepDocument(step))
	}
	if c.Duration != nil {
		d := durationDocument(*c.Duration)
		content.Duration = &d
	}

	return recipeDocument{
		ID:        snap.ID.String(),
		UserID:    snap.UserID.String(),
		ParentID:  idPtrString(snap.ParentID),
		DishType:  c.DishType,
		Content:   content,
		CreatedAt: snap.CreatedAt.UTC(),
		UpdatedAt: snap.UpdatedAt.UTC(),
	}
}

func (d recipeDocument) toRecipe() (*recipe.Recipe, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	parentID, err := parseIDPtr(d.ParentID)
	if err != nil {
		return nil, err
	}

	c := recipe.Content{
		Title:         d.Content.Title,
		VariationNote: d.Content.VariationNote,
		Objective:     d.Content.Objective,
		Portions:      d.Content.Portions,
		Tags:          d.Content.Tags,
		Equipment:     d.Content.Equipment,
		DishType:      d.Content.DishType,
		Images:        d.Content.Images,
	}
	for _, line := range d.Content.Ingredients {
		c.Ingredients = append(c.Ingredients, recipe.IngredientLine(line))
	}
	for _, step := range d.Content.Steps {
		c.Steps = append(c.Steps, recipe.Step(step))
	}
	if d.Content.Duration != nil {
		duration := recipe.Duration(*d.Content.Duration)
		c.Duration = &duration
	}

	return recipe.Restore(recipe.Snapshot{
		ID:        id,
		UserID:    userID,
		ParentID:  parentID,
		Content:   c,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}), nil
}

type realizationDocument struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"user_id"`
	RecipeID   string    `bson:"recipe_id"`
	RealizedAt time.Time `bson:"realized_at"`
	Comment    string    `bson:"comment"`
	CreatedAt  time.Time `bson:"created_at"`
}

func toRealizationDocument(r *journal.Realization) realizationDocument {
	return realizationDocument{
		ID:         r.ID.String(),
		UserID:     r.UserID.String(),
		RecipeID:   r.RecipeID.String(),
		RealizedAt: r.RealizedAt.UTC(),
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

func (d realizationDocument) toRealization() *journal.Realization {
	return &journal.Realization{
		ID:         uuid.MustParse(d.ID),
		UserID:     uuid.MustParse(d.UserID),
		RecipeID:   uuid.MustParse(d.RecipeID),
		RealizedAt: d.RealizedAt.UTC(),
		Comment:    d.Comment,
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

type mealDocument struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"user_id"`
	Date        time.Time `bson:"date"`
	Slot        string    `bson:"slot"`
	RecipeID    *string   `bson:"recipe_id"`
	RecipeTitle string    `bson:"recipe_title"`
	Comment     string    `bson:"comment"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toMealDocument(m *planner.PlannedMeal) mealDocument {
	return mealDocument{
		ID:          m.ID.String(),
		UserID:      m.UserID.String(),
		Date:        m.Date.UTC(),
		Slot:        string(m.Slot),
		RecipeID:    idPtrString(m.RecipeID),
		RecipeTitle: m.RecipeTitle,
		Comment:     m.Comment,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (d mealDocument) toPlannedMeal() *planner.PlannedMeal {
	recipeID, _ := parseIDPtr(d.RecipeID)
	return &planner.PlannedMeal{
		ID:          uuid.MustParse(d.ID),
		UserID:      uuid.MustParse(d.UserID),
		Date:        d.Date.UTC(),
		Slot:        planner.Slot(d.Slot),
		RecipeID:    recipeID,
		RecipeTitle: d.RecipeTitle,
		Comment:     d.Comment,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type itemDocument struct {
	ID                  string    `bson:"_id"`
	UserID              string    `bson:"user_id"`
	Name                string    `bson:"name"`
	Quantity            *float64  `bson:"quantity"`
	Unit                string    `bson:"unit"`
	Bought              bool      `bson:"bought"`
	SourceRealizationID *string   `bson:"source_realization_id"`
	CreatedAt           time.Time `bson:"created_at"`
	UpdatedAt           time.Time `bson:"updated_at"`
}

func toItemDocument(i *shopping.Item) itemDocument {
	return itemDocument{
		ID:                  i.ID.String(),
		UserID:              i.UserID.String(),
		Name:                i.Name,
		Quantity:            i.Quantity,
		Unit:                i.Unit,
		Bought:              i.Bought,
		SourceRealizationID: idPtrString(i.SourceRealizationID),
		CreatedAt:           i.CreatedAt.UTC(),
		UpdatedAt:           i.UpdatedAt.UTC(),
	}
}

func (d itemDocument) toItem() *shopping.Item {
	source, _ := parseIDPtr(d.SourceRealizationID)
	return &shopping.Item{
		ID:                  uuid.MustParse(d.ID),
		UserID:              uuid.MustParse(d.UserID),
		Name:                d.Name,
		Quantity:            d.Quantity,
		Unit:                d.Unit,
		Bought:              d.Bought,
		SourceRealizationID: source,
		CreatedAt:           d.CreatedAt.UTC(),
		UpdatedAt:           d.UpdatedAt.UTC(),
	}
}

type nutritionDocument struct {
	Calories      *float64 `bson:"calories"`
	Protein       *float64 `bson:"protein"`
	Carbohydrates *float64 `bson:"carbohydrates"`
	Fat           *float64 `bson:"fat"`
	Fiber         *float64 `bson:"fiber"`
	Sugar         *float64 `bson:"sugar"`
	Sodium        *float64 `bson:"sodium"`
}

type ingredientDocument struct {
	ID              string            `bson:"_id"`
	Name            string            `bson:"name"`
	DisplayName     string            `bson:"display_name"`
	ImageURL        string            `bson:"image_url"`
	Nutrition       nutritionDocument `bson:"nutrition"`
	NutritionSource string            `bson:"nutrition_source"`
	USDAFdcID       *int64            `bson:"usda_fdc_id"`
	USDADescription string            `bson:"usda_description"`
	USDADataType    string            `bson:"usda_data_type"`
	USDASyncedAt    *time.Time        `bson:"usda_synced_at"`
	CreatedAt       time.Time         `bson:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at"`
}

func toIngredientDocument(i *ingredient.Ingredient) ingredientDocument {
	return ingredientDocument{
		ID:              i.ID.String(),
		Name:            i.Name,
		DisplayName:     i.DisplayName,
		ImageURL:        i.ImageURL,
		Nutrition:       nutritionDocument(i.Nutrition),
		NutritionSource: string(i.NutritionSource),
		USDAFdcID:       i.USDAFdcID,
		USDADescription: i.USDADescription,
		USDADataType:    i.USDADataType,
		USDASyncedAt:    i.USDASyncedAt,
		CreatedAt:       i.CreatedAt.UTC(),
		UpdatedAt:       i.UpdatedAt.UTC(),
	}
}

func (d ingredientDocument) toIngredient() *ingredient.Ingredient {
	var synced *time.Time
	if d.USDASyncedAt != nil {
		t := d.USDASyncedAt.UTC()
		synced = &t
	}
	return &ingredient.Ingredient{
		ID:              uuid.MustParse(d.ID),
		Name:            d.Name,
		DisplayName:     d.DisplayName,
		ImageURL:        d.ImageURL,
		Nutrition:       ingredient.Nutrition(d.Nutrition),
		NutritionSource: ingredient.NutritionSource(d.NutritionSource),
		USDAFdcID:       d.USDAFdcID,
		USDADescription: d.USDADescription,
		USDADataType:    d.USDADataType,
		USDASyncedAt:    synced,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

func idPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
