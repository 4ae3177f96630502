package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingRecorder) RecordEvent(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[name]++
}

func TestDispatcher_RunsNamedAndWildcardHandlers(t *testing.T) {
	// Arrange
	d := NewDispatcher(zap.NewNop())
	var got []string
	d.Register("recipe.created", func(ctx context.Context, e shared.DomainEvent) error {
		got = append(got, "named:"+e.EventName())
		return nil
	})
	d.Register(Wildcard, func(ctx context.Context, e shared.DomainEvent) error {
		got = append(got, "any:"+e.EventName())
		return nil
	})

	// Act
	err := d.Publish(context.Background(),
		recipe.RecipeCreatedEvent{RecipeID: uuid.New(), CreatedAt: time.Now()},
		recipe.RecipeDeletedEvent{RecipeID: uuid.New(), DeletedAt: time.Now()},
	)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"named:recipe.created", "any:recipe.created", "any:recipe.deleted"}, got)
}

func TestDispatcher_FailingHandlerDoesNotStopOthers(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	boom := errors.New("boom")
	calls := 0
	d.Register("recipe.created", func(ctx context.Context, e shared.DomainEvent) error { return boom })
	d.Register("recipe.created", func(ctx context.Context, e shared.DomainEvent) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), recipe.RecipeCreatedEvent{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRegisterDefaultHandlers_CountsEvents(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	counter := &countingRecorder{}
	RegisterDefaultHandlers(d, counter, zap.NewNop())

	err := d.Publish(context.Background(),
		recipe.VariationLinkedEvent{RecipeID: uuid.New(), ParentID: uuid.New()},
		recipe.RecipeDetachedEvent{RecipeID: uuid.New(), ParentID: uuid.New()},
		recipe.RecipeDeletedEvent{RecipeID: uuid.New(), DetachedChildren: 2},
		recipe.RecipeCreatedEvent{RecipeID: uuid.New()},
	)

	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"recipe.variation.linked": 1,
		"recipe.detached":         1,
		"recipe.deleted":          1,
		"recipe.created":          1,
	}, counter.counts)
}
