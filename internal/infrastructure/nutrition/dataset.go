// Package nutrition serves the static nutrition table embedded in the binary
package nutrition

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"gopkg.in/yaml.v3"
)

//go:embed data/nutrition.yaml
var embeddedDataset []byte

// Dataset maps canonical ingredient names to nutrition per 100 g
type Dataset struct {
	entries map[string]ingredient.Nutrition
}

var _ outbound.NutritionDataset = (*Dataset)(nil)

// Default parses the embedded table
func Default() (*Dataset, error) {
	return Parse(embeddedDataset)
}

// Parse reads a YAML mapping of ingredient name to nutrition values.
// Names are canonicalized; two names folding to the same key are an error.
func Parse(data []byte) (*Dataset, error) {
	var raw map[string]ingredient.Nutrition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse nutrition dataset: %w", err)
	}

	entries := make(map[string]ingredient.Nutrition, len(raw))
	for name, values := range raw {
		key := ingredient.CanonicalName(name)
		if key == "" {
			continue
		}
		if _, dup := entries[key]; dup {
			return nil, fmt.Errorf("nutrition dataset: %q is listed twice", key)
		}
		if err := values.Validate(); err != nil {
			return nil, fmt.Errorf("nutrition dataset: %q: %w", key, err)
		}
		entries[key] = values
	}
	return &Dataset{entries: entries}, nil
}

// Lookup finds canonicalName, falling back to its singular form
func (d *Dataset) Lookup(canonicalName string) (ingredient.Nutrition, bool) {
	if n, ok := d.entries[canonicalName]; ok {
		return n, true
	}
	if singular := strings.TrimSuffix(canonicalName, "s"); singular != canonicalName {
		n, ok := d.entries[singular]
		return n, ok
	}
	return ingredient.Nutrition{}, false
}

// Len returns the number of entries
func (d *Dataset) Len() int {
	return len(d.entries)
}
