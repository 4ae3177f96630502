package outbound

import (
	"context"
	"errors"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/shared"
)

// ErrNotConfigured is returned by gateways whose credentials are absent
var ErrNotConfigured = errors.New("gateway is not configured")

// ErrNoMatch is returned by lookups that found nothing usable
var ErrNoMatch = errors.New("no matching record")

// RecipeStructurer turns free text into a loose recipe payload using an LLM
type RecipeStructurer interface {
	StructureRecipe(ctx context.Context, text string) (map[string]any, error)
}

// USDAClient looks up foods in USDA FoodData Central
type USDAClient interface {
	// SearchFood returns the best match for query, or ErrNoMatch
	SearchFood(ctx context.Context, query string) (*ingredient.USDAMatch, error)
}

// NutritionDataset is the static nutrition table used for backfills
type NutritionDataset interface {
	Lookup(canonicalName string) (ingredient.Nutrition, bool)
	Len() int
}

// ImageStorage stores recipe images and returns their public URL
type ImageStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// EventPublisher dispatches domain events after a successful write
type EventPublisher interface {
	Publish(ctx context.Context, events ...shared.DomainEvent) error
}
