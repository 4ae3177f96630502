package recipe

import (
	"strings"
	"unicode/utf8"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
)

// Value Objects - Immutable objects that describe aspects of the domain

const (
	maxTitleLength       = 200
	maxInstructionLength = 4000
)

// IngredientLine is one ingredient as written in a recipe
type IngredientLine struct {
	Name     string
	Quantity *float64
	Unit     string
	Note     string
}

// Validate validates the ingredient line
func (i IngredientLine) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrIngredientNameRequired
	}
	if i.Quantity != nil && *i.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// Step is one instruction of a recipe, ordered from 1
type Step struct {
	Order       int
	Instruction string
}

// Validate validates the step
func (s Step) Validate() error {
	if strings.TrimSpace(s.Instruction) == "" {
		return ErrStepInstructionRequired
	}
	if utf8.RuneCountInString(s.Instruction) > maxInstructionLength {
		return ErrStepInstructionTooLong
	}
	return nil
}

// Duration is either a plain number of minutes or a prep/cook/total breakdown.
// Exactly one of the two forms is set.
type Duration struct {
	Minutes *float64
	Prep    *float64
	Cook    *float64
	Total   *float64
}

// IsEmpty reports whether the duration carries no usable value
func (d Duration) IsEmpty() bool {
	return d.Minutes == nil && d.Prep == nil && d.Cook == nil && d.Total == nil
}

// Content is everything about a recipe that a user or an LLM can author
type Content struct {
	Title         string
	VariationNote string
	Objective     string
	Ingredients   []IngredientLine
	Steps         []Step
	Duration      *Duration
	Portions      *int
	Tags          []string
	Equipment     []string
	DishType      string
	Images        []string
}

// Validate validates authored content
func (c Content) Validate() error {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	for _, ing := range c.Ingredients {
		if err := ing.Validate(); err != nil {
			return err
		}
	}
	for _, step := range c.Steps {
		if err := step.Validate(); err != nil {
			return err
		}
	}
	if c.Portions != nil && *c.Portions <= 0 {
		return ErrInvalidPortions
	}
	if c.Duration != nil && c.Duration.IsEmpty() {
		return ErrEmptyDuration
	}
	return nil
}

// HasIngredient reports whether an ingredient's canonical name equals the
// canonical query. "sel" does not match "persil".
func (c Content) HasIngredient(canonicalQuery string) bool {
	if canonicalQuery == "" {
		return false
	}
	for _, ing := range c.Ingredients {
		if ingredient.CanonicalName(ing.Name) == canonicalQuery {
			return true
		}
	}
	return false
}

// HasTag reports whether a tag equals value, ignoring case
func (c Content) HasTag(value string) bool {
	for _, tag := range c.Tags {
		if strings.EqualFold(strings.TrimSpace(tag), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

// Merge returns c with the fields present in p replaced by p's values
func (c Content) Merge(p Payload) Content {
	merged := c
	if p.Has(FieldTitle) {
		merged.Title = p.Content.Title
	}
	if p.Has(FieldVariationNote) {
		merged.VariationNote = p.Content.VariationNote
	}
	if p.Has(FieldObjective) {
		merged.Objective = p.Content.Objective
	}
	if p.Has(FieldIngredients) {
		merged.Ingredients = p.Content.Ingredients
	}
	if p.Has(FieldSteps) {
		merged.Steps = p.Content.Steps
	}
	if p.Has(FieldDuration) {
		merged.Duration = p.Content.Duration
	}
	if p.Has(FieldPortions) {
		merged.Portions = p.Content.Portions
	}
	if p.Has(FieldTags) {
		merged.Tags = p.Content.Tags
	}
	if p.Has(FieldEquipment) {
		merged.Equipment = p.Content.Equipment
	}
	if p.Has(FieldDishType) {
		merged.DishType = p.Content.DishType
	}
	if p.Has(FieldImages) {
		merged.Images = p.Content.Images
	}
	return merged
}

// clone copies the slices so callers cannot mutate aggregate state
func (c Content) clone() Content {
	out := c
	out.Ingredients = append([]IngredientLine(nil), c.Ingredients...)
	out.Steps = append([]Step(nil), c.Steps...)
	out.Tags = append([]string(nil), c.Tags...)
	out.Equipment = append([]string(nil), c.Equipment...)
	out.Images = append([]string(nil), c.Images...)
	if c.Duration != nil {
		d := *c.Duration
		out.Duration = &d
	}
	if c.Portions != nil {
		p := *c.Portions
		out.Portions = &p
	}
	return out
}
