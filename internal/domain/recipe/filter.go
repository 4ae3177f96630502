package recipe

import (
	"strings"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ListFilter selects a user's recipes. UserID, ParentID, ParentsOnly, IDs and
// DishType are structural and pushed to storage; the ingredient, cuisine and
// diet filters are evaluated by Matches.
type ListFilter struct {
	UserID             uuid.UUID
	ParentID           *uuid.UUID
	ParentsOnly        bool
	IDs                []uuid.UUID
	DishType           string
	IncludeIngredients []string
	ExcludeIngredients []string
	Cuisine            string
	Diet               string
	Offset             int
	Limit              int
}

// Normalized clamps pagination and folds the ingredient names
func (f ListFilter) Normalized() ListFilter {
	out := f
	if out.Offset < 0 {
		out.Offset = 0
	}
	switch {
	case out.Limit <= 0:
		out.Limit = DefaultListLimit
	case out.Limit > MaxListLimit:
		out.Limit = MaxListLimit
	}
	out.DishType = strings.TrimSpace(out.DishType)
	out.Cuisine = strings.TrimSpace(out.Cuisine)
	out.Diet = strings.TrimSpace(out.Diet)
	out.IncludeIngredients = ingredient.CanonicalNames(f.IncludeIngredients)
	out.ExcludeIngredients = ingredient.CanonicalNames(f.ExcludeIngredients)
	return out
}

// Matches evaluates every filter against r. Call it on a Normalized filter.
func (f ListFilter) Matches(r *Recipe) bool {
	if r.userID != f.UserID {
		return false
	}
	if f.ParentsOnly && r.parentID != nil {
		return false
	}
	if f.ParentID != nil && (r.parentID == nil || *r.parentID != *f.ParentID) {
		return false
	}
	if len(f.IDs) > 0 && !containsID(f.IDs, r.id) {
		return false
	}
	if f.DishType != "" && !strings.EqualFold(r.content.DishType, f.DishType) {
		return false
	}
	for _, name := range f.IncludeIngredients {
		if !r.content.HasIngredient(name) {
			return false
		}
	}
	for _, name := range f.ExcludeIngredients {
		if r.content.HasIngredient(name) {
			return false
		}
	}
	if f.Cuisine != "" && !r.content.HasTag(f.Cuisine) {
		return false
	}
	if f.Diet != "" && !r.content.HasTag(f.Diet) {
		return false
	}
	return true
}

// Page applies offset and limit to an already ordered result
func (f ListFilter) Page(recipes []*Recipe) []*Recipe {
	if f.Offset >= len(recipes) {
		return []*Recipe{}
	}
	end := f.Offset + f.Limit
	if f.Limit <= 0 || end > len(recipes) {
		end = len(recipes)
	}
	return recipes[f.Offset:end]
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
