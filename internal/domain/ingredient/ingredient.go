// Package ingredient models the shared ingredient gallery and its nutrition data.
package ingredient

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNameRequired        = errors.New("ingredient name is required")
	ErrNegativeNutrient    = errors.New("nutrition values cannot be negative")
	ErrUSDAMatchIncomplete = errors.New("usda match requires an fdc id")
)

// NutritionSource records where an ingredient's nutrition values came from
type NutritionSource string

const (
	SourceNone    NutritionSource = ""
	SourceDataset NutritionSource = "dataset"
	SourceUSDA    NutritionSource = "usda"
	SourceManual  NutritionSource = "manual"
)

// Nutrition holds values per 100 g. Nil means unknown.
type Nutrition struct {
	Calories      *float64 `yaml:"calories"`
	Protein       *float64 `yaml:"protein"`
	Carbohydrates *float64 `yaml:"carbohydrates"`
	Fat           *float64 `yaml:"fat"`
	Fiber         *float64 `yaml:"fiber"`
	Sugar         *float64 `yaml:"sugar"`
	Sodium        *float64 `yaml:"sodium"`
}

func (n Nutrition) values() []*float64 {
	return []*float64{n.Calories, n.Protein, n.Carbohydrates, n.Fat, n.Fiber, n.Sugar, n.Sodium}
}

// IsEmpty reports whether no nutrient is known
func (n Nutrition) IsEmpty() bool {
	for _, v := range n.values() {
		if v != nil {
			return false
		}
	}
	return true
}

// Validate rejects negative values
func (n Nutrition) Validate() error {
	for _, v := range n.values() {
		if v != nil && *v < 0 {
			return ErrNegativeNutrient
		}
	}
	return nil
}

// USDAMatch is the subset of a FoodData Central record kept on an ingredient
type USDAMatch struct {
	FdcID       int64
	Description string
	DataType    string
	Nutrition   Nutrition
}

// Ingredient is a shared gallery entry, unique by canonical name
type Ingredient struct {
	ID              uuid.UUID
	Name            string
	DisplayName     string
	ImageURL        string
	Nutrition       Nutrition
	NutritionSource NutritionSource
	USDAFdcID       *int64
	USDADescription string
	USDADataType    string
	USDASyncedAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New creates an ingredient from a free-form name
func New(name, displayName string, now time.Time) (*Ingredient, error) {
	canonical := CanonicalName(name)
	if canonical == "" {
		return nil, ErrNameRequired
	}

	display := strings.Join(strings.Fields(displayName), " ")
	if display == "" {
		display = strings.Join(strings.Fields(name), " ")
	}

	return &Ingredient{
		ID:          uuid.New(),
		Name:        canonical,
		DisplayName: display,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// HasNutrition reports whether any nutrient is known
func (i *Ingredient) HasNutrition() bool {
	return !i.Nutrition.IsEmpty()
}

// Backfill sets dataset nutrition, but only when nothing is known yet
func (i *Ingredient) Backfill(n Nutrition, now time.Time) bool {
	if i.HasNutrition() || n.IsEmpty() || n.Validate() != nil {
		return false
	}
	i.Nutrition = n
	i.NutritionSource = SourceDataset
	i.UpdatedAt = now
	return true
}

// ApplyUSDA overwrites nutrition with a USDA record
func (i *Ingredient) ApplyUSDA(match USDAMatch, now time.Time) error {
	if match.FdcID <= 0 {
		return ErrUSDAMatchIncomplete
	}
	if err := match.Nutrition.Validate(); err != nil {
		return err
	}

	fdcID := match.FdcID
	synced := now
	i.USDAFdcID = &fdcID
	i.USDADescription = strings.TrimSpace(match.Description)
	i.USDADataType = strings.TrimSpace(match.DataType)
	i.USDASyncedAt = &synced
	if !match.Nutrition.IsEmpty() {
		i.Nutrition = match.Nutrition
		i.NutritionSource = SourceUSDA
	}
	i.UpdatedAt = now
	return nil
}

// Patch holds the user-editable fields; nil means unchanged
type Patch struct {
	DisplayName *string
	ImageURL    *string
	Nutrition   *Nutrition
}

// Apply applies a patch. Edited nutrition is marked manual.
func (i *Ingredient) Apply(p Patch, now time.Time) error {
	if p.Nutrition != nil {
		if err := p.Nutrition.Validate(); err != nil {
			return err
		}
	}
	if p.DisplayName != nil {
		display := strings.Join(strings.Fields(*p.DisplayName), " ")
		if display == "" {
			return ErrNameRequired
		}
		i.DisplayName = display
	}
	if p.ImageURL != nil {
		i.ImageURL = strings.TrimSpace(*p.ImageURL)
	}
	if p.Nutrition != nil {
		i.Nutrition = *p.Nutrition
		i.NutritionSource = SourceManual
		if p.Nutrition.IsEmpty() {
			i.NutritionSource = SourceNone
		}
	}
	i.UpdatedAt = now
	return nil
}

// CanonicalName folds a name for de-duplication: accents removed, lower case,
// whitespace collapsed.
func CanonicalName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// CanonicalNames folds, de-duplicates and drops empty names, keeping first-seen order
func CanonicalNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		c := CanonicalName(name)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
