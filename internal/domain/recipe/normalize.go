package recipe

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Field names accepted in loose recipe payloads
const (
	FieldTitle         = "title"
	FieldVariationNote = "variationNote"
	FieldObjective     = "objective"
	FieldIngredients   = "ingredients"
	FieldSteps         = "steps"
	FieldDuration      = "duration"
	FieldPortions      = "portions"
	FieldTags          = "tags"
	FieldEquipment     = "equipment"
	FieldDishType      = "dishType"
	FieldImages        = "images"
	FieldParentID      = "parentId"
	FieldRecipeID      = "recipeId"
)

var contentFields = []string{
	FieldTitle, FieldVariationNote, FieldObjective, FieldIngredients, FieldSteps,
	FieldDuration, FieldPortions, FieldTags, FieldEquipment, FieldDishType, FieldImages,
}

// Payload is a normalized loose recipe payload. It remembers which keys the
// caller sent so that partial updates only touch those fields.
type Payload struct {
	Content  Content
	ParentID *uuid.UUID
	RecipeID *uuid.UUID
	fields   map[string]struct{}
}

// Has reports whether the caller sent field
func (p Payload) Has(field string) bool {
	_, ok := p.fields[field]
	return ok
}

// ClearsParent reports whether the caller explicitly asked for no parent
func (p Payload) ClearsParent() bool {
	return p.Has(FieldParentID) && p.ParentID == nil
}

// NormalizePayload coerces loosely typed input (usually LLM tool output) into
// well-formed recipe content. It never fails: malformed entries are dropped.
func NormalizePayload(raw map[string]any) Payload {
	p := Payload{fields: make(map[string]struct{})}
	if raw == nil {
		return p
	}

	for _, field := range contentFields {
		if _, ok := raw[field]; ok {
			p.fields[field] = struct{}{}
		}
	}

	c := &p.Content
	c.Title = asString(raw[FieldTitle])
	c.VariationNote = asString(raw[FieldVariationNote])
	c.Objective = asString(raw[FieldObjective])
	c.DishType = asString(raw[FieldDishType])
	c.Ingredients = normalizeIngredients(raw[FieldIngredients])
	c.Steps = normalizeSteps(raw[FieldSteps])
	c.Duration = normalizeDuration(raw[FieldDuration])
	c.Tags = normalizeStrings(raw[FieldTags])
	c.Equipment = normalizeStrings(raw[FieldEquipment])
	c.Images = normalizeStrings(raw[FieldImages])
	if v, ok := asNumber(raw[FieldPortions]); ok && v >= 1 && v <= math.MaxInt32 {
		portions := int(v)
		c.Portions = &portions
	}

	// An unparseable parent id is ignored rather than read as "detach"
	if value, ok := raw[FieldParentID]; ok {
		if id := asUUID(value); id != nil || isBlank(value) {
			p.fields[FieldParentID] = struct{}{}
			p.ParentID = id
		}
	}
	if value, ok := raw[FieldRecipeID]; ok {
		p.fields[FieldRecipeID] = struct{}{}
		p.RecipeID = asUUID(value)
	}

	return p
}

// NormalizeContent is NormalizePayload for callers that only need the content
func NormalizeContent(raw map[string]any) Content {
	return NormalizePayload(raw).Content
}

func normalizeIngredients(value any) []IngredientLine {
	items, ok := value.([]any)
	if !ok {
		return nil
	}

	out := make([]IngredientLine, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if name := strings.TrimSpace(v); name != "" {
				out = append(out, IngredientLine{Name: name})
			}
		case map[string]any:
			name := asString(v["name"])
			if name == "" {
				continue
			}
			line := IngredientLine{
				Name: name,
				Unit: asString(v["unit"]),
				Note: asString(v["note"]),
			}
			if q, ok := asNumber(v["quantity"]); ok && q >= 0 {
				line.Quantity = &q
			}
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeSteps(value any) []Step {
	items, ok := value.([]any)
	if !ok {
		return nil
	}

	out := make([]Step, 0, len(items))
	for i, item := range items {
		position := i + 1
		switch v := item.(type) {
		case string:
			if instruction := strings.TrimSpace(v); instruction != "" {
				out = append(out, Step{Order: position, Instruction: instruction})
			}
		case map[string]any:
			instruction := asString(v["instruction"])
			if instruction == "" {
				continue
			}
			order := position
			if n, ok := asNumber(v["order"]); ok && n >= 1 && n <= math.MaxInt32 {
				order = int(n)
			}
			out = append(out, Step{Order: order, Instruction: instruction})
		}
	}
	if len(out) == 0 {
		return nil
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func normalizeDuration(value any) *Duration {
	if minutes, ok := asNumber(value); ok {
		if minutes < 0 {
			return nil
		}
		return &Duration{Minutes: &minutes}
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	d := Duration{}
	for key, target := range map[string]**float64{"prep": &d.Prep, "cook": &d.Cook, "total": &d.Total} {
		if n, ok := asNumber(obj[key]); ok && n >= 0 {
			v := n
			*target = &v
		}
	}
	if d.IsEmpty() {
		return nil
	}
	return &d
}

func normalizeStrings(value any) []string {
	var parts []string
	switch v := value.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	case []string:
		parts = v
	}

	var out []string
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isBlank(value any) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

func asString(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// asNumber accepts JSON numbers, Go numeric types and numeric strings
func asNumber(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asUUID(value any) *uuid.UUID {
	s := asString(value)
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
