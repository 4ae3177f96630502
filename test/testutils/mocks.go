// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/shared"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockRecipeStructurer mocks the LLM structuring gateway
type MockRecipeStructurer struct {
	mock.Mock
}

var _ outbound.RecipeStructurer = (*MockRecipeStructurer)(nil)

func (m *MockRecipeStructurer) StructureRecipe(ctx context.Context, text string) (map[string]any, error) {
	args := m.Called(ctx, text)
	if payload, ok := args.Get(0).(map[string]any); ok {
		return payload, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUSDAClient mocks the FoodData Central client
type MockUSDAClient struct {
	mock.Mock
}

var _ outbound.USDAClient = (*MockUSDAClient)(nil)

func (m *MockUSDAClient) SearchFood(ctx context.Context, query string) (*ingredient.USDAMatch, error) {
	args := m.Called(ctx, query)
	if match, ok := args.Get(0).(*ingredient.USDAMatch); ok {
		return match, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockImageStorage mocks the image store
type MockImageStorage struct {
	mock.Mock
}

var _ outbound.ImageStorage = (*MockImageStorage)(nil)

func (m *MockImageStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

// EventRecorder captures published events
type EventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
	Err    error
}

var _ outbound.EventPublisher = (*EventRecorder)(nil)

func (r *EventRecorder) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return r.Err
}

// Types lists the event types published so far, in order
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventName())
	}
	return out
}

// StaticDataset is a NutritionDataset backed by a map
type StaticDataset map[string]ingredient.Nutrition

var _ outbound.NutritionDataset = StaticDataset(nil)

func (d StaticDataset) Lookup(canonicalName string) (ingredient.Nutrition, bool) {
	n, ok := d[canonicalName]
	return n, ok
}

func (d StaticDataset) Len() int { return len(d) }

// CleanupCounter records shopping cleanup counts
type CleanupCounter struct {
	mu    sync.Mutex
	Total int
}

func (c *CleanupCounter) RecordShoppingCleanup(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Total += count
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }
