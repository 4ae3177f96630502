// Package planner models the meal-planner calendar.
package planner

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrDateRequired  = errors.New("date is required")
	ErrInvalidSlot   = errors.New("slot must be one of breakfast, collation, lunch, dinner, sortie")
	ErrTitleRequired = errors.New("recipeTitle is required when no recipeId is given")
	ErrInvalidRange  = errors.New("from must not be after to")
	ErrRangeRequired = errors.New("from and to are required")
	ErrRangeTooLarge = errors.New("calendar range must not exceed 366 days")
)

const maxCalendarPeriod = 366 * 24 * time.Hour

// Slot is the meal of the day a planned meal occupies
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotCollation Slot = "collation"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotSortie    Slot = "sortie"
)

var slotOrder = map[Slot]int{
	SlotBreakfast: 0,
	SlotCollation: 1,
	SlotLunch:     2,
	SlotDinner:    3,
	SlotSortie:    4,
}

// ParseSlot parses a slot name, ignoring case
func ParseSlot(value string) (Slot, error) {
	s := Slot(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := slotOrder[s]; !ok {
		return "", ErrInvalidSlot
	}
	return s, nil
}

// Order is the position of the slot within a day
func (s Slot) Order() int {
	if o, ok := slotOrder[s]; ok {
		return o
	}
	return len(slotOrder)
}

// PlannedMeal is a calendar entry, bound to a recipe or free-form
type PlannedMeal struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Date        time.Time
	Slot        Slot
	RecipeID    *uuid.UUID
	RecipeTitle string
	Comment     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPlannedMeal creates a planned meal. The date is truncated to its UTC day.
func NewPlannedMeal(userID uuid.UUID, date time.Time, slot Slot, recipeID *uuid.UUID, recipeTitle, comment string, now time.Time) (*PlannedMeal, error) {
	m := &PlannedMeal{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        date,
		Slot:        slot,
		RecipeID:    recipeID,
		RecipeTitle: strings.TrimSpace(recipeTitle),
		Comment:     strings.TrimSpace(comment),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !date.IsZero() {
		m.Date = shared.StartOfDay(date)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the invariants of a planned meal
func (m *PlannedMeal) Validate() error {
	if m.Date.IsZero() {
		return ErrDateRequired
	}
	if _, ok := slotOrder[m.Slot]; !ok {
		return ErrInvalidSlot
	}
	if m.RecipeID == nil && m.RecipeTitle == "" {
		return ErrTitleRequired
	}
	return nil
}

// Patch holds editable fields; nil means unchanged. ClearRecipe unbinds the recipe.
type Patch struct {
	Date        *time.Time
	Slot        *Slot
	RecipeID    *uuid.UUID
	ClearRecipe bool
	RecipeTitle *string
	Comment     *string
}

// Apply applies p and re-validates; on error m is left unchanged
func (m *PlannedMeal) Apply(p Patch, now time.Time) error {
	next := *m
	if p.Date != nil {
		next.Date = shared.StartOfDay(*p.Date)
	}
	if p.Slot != nil {
		next.Slot = *p.Slot
	}
	if p.ClearRecipe {
		next.RecipeID = nil
	}
	if p.RecipeID != nil {
		id := *p.RecipeID
		next.RecipeID = &id
	}
	if p.RecipeTitle != nil {
		next.RecipeTitle = strings.TrimSpace(*p.RecipeTitle)
	}
	if p.Comment != nil {
		next.Comment = strings.TrimSpace(*p.Comment)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = now
	*m = next
	return nil
}

// SortMeals orders meals by day, then slot, then creation
func SortMeals(meals []*PlannedMeal) {
	sort.SliceStable(meals, func(i, j int) bool {
		a, b := meals[i], meals[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Slot.Order() != b.Slot.Order() {
			return a.Slot.Order() < b.Slot.Order()
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// Range is an inclusive calendar range: From is the start of its day and To
// the last instant of its day.
type Range struct {
	From time.Time
	To   time.Time
}

// NewRange normalizes both bounds to whole UTC days
func NewRange(from, to time.Time) (Range, error) {
	if from.IsZero() || to.IsZero() {
		return Range{}, ErrRangeRequired
	}
	r := Range{From: shared.StartOfDay(from), To: shared.EndOfDay(to)}
	if r.From.After(r.To) {
		return Range{}, ErrInvalidRange
	}
	if r.To.Sub(r.From) > maxCalendarPeriod {
		return Range{}, ErrRangeTooLarge
	}
	return r, nil
}

// Contains reports whether t falls inside the range
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// RecipeInfo is the recipe metadata joined onto planned meals
type RecipeInfo struct {
	Title    string
	DishType string
}

// CalendarMeal is a planned meal enriched with its recipe's dish type
type CalendarMeal struct {
	Meal           *PlannedMeal
	RecipeDishType string
}

// Calendar is the merged view of a date range
type Calendar struct {
	Range        Range
	Realizations []*journal.Realization
	PlannedMeals []CalendarMeal
}

// RecipeIDs returns the distinct recipe ids referenced by meals
func RecipeIDs(meals []*PlannedMeal) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, m := range meals {
		if m.RecipeID == nil {
			continue
		}
		if _, ok := seen[*m.RecipeID]; ok {
			continue
		}
		seen[*m.RecipeID] = struct{}{}
		ids = append(ids, *m.RecipeID)
	}
	return ids
}

// BuildCalendar sorts and enriches the fetched rows
func BuildCalendar(r Range, realizations []*journal.Realization, meals []*PlannedMeal, recipes map[uuid.UUID]RecipeInfo) Calendar {
	sort.SliceStable(realizations, func(i, j int) bool {
		return realizations[i].RealizedAt.Before(realizations[j].RealizedAt)
	})
	SortMeals(meals)

	enriched := make([]CalendarMeal, 0, len(meals))
	for _, m := range meals {
		cm := CalendarMeal{Meal: m}
		if m.RecipeID != nil {
			if info, ok := recipes[*m.RecipeID]; ok {
				cm.RecipeDishType = info.DishType
			}
		}
		enriched = append(enriched, cm)
	}

	if realizations == nil {
		realizations = []*journal.Realization{}
	}

	return Calendar{Range: r, Realizations: realizations, PlannedMeals: enriched}
}
