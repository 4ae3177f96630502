// Package events dispatches domain events to in-process handlers
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/domain/shared"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"go.uber.org/zap"
)

// Handler reacts to one domain event
type Handler func(ctx context.Context, event shared.DomainEvent) error

// Wildcard registers a handler for every event
const Wildcard = "*"

// Dispatcher implements outbound.EventPublisher
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *zap.Logger
}

var _ outbound.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher with no handlers
func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		log:      log.Named("events"),
	}
}

// Register adds a handler for the named event, or for every event with Wildcard
func (d *Dispatcher) Register(event string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], handler)
	d.log.Debug("Registered event handler", zap.String("event", event))
}

// Publish runs the handlers of every event in order. A failing handler does
// not stop the others; the failures are returned joined.
func (d *Dispatcher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	var errs []error
	for _, event := range events {
		handlers := d.handlersFor(event.EventName())
		if len(handlers) == 0 {
			d.log.Debug("No handlers registered for event", zap.String("event", event.EventName()))
			continue
		}

		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				d.log.Error("Failed to handle event",
					zap.String("event", event.EventName()),
					zap.Error(err),
				)
				errs = append(errs, fmt.Errorf("%s: %w", event.EventName(), err))
			}
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) handlersFor(name string) []Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Handler, 0, len(d.handlers[name])+len(d.handlers[Wildcard]))
	out = append(out, d.handlers[name]...)
	return append(out, d.handlers[Wildcard]...)
}

// EventCounter counts dispatched events by name
type EventCounter interface {
	RecordEvent(name string)
}

// RegisterDefaultHandlers wires the audit log and event metrics
func RegisterDefaultHandlers(d *Dispatcher, counter EventCounter, log *zap.Logger) {
	audit := log.Named("recipe-audit")

	d.Register(Wildcard, func(ctx context.Context, event shared.DomainEvent) error {
		counter.RecordEvent(event.EventName())
		return nil
	})

	d.Register("recipe.variation.linked", func(ctx context.Context, event shared.DomainEvent) error {
		e, ok := event.(recipe.VariationLinkedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", event)
		}
		audit.Info("Variation linked",
			zap.String("recipe_id", e.RecipeID.String()),
			zap.String("parent_id", e.ParentID.String()),
		)
		return nil
	})

	d.Register("recipe.detached", func(ctx context.Context, event shared.DomainEvent) error {
		e, ok := event.(recipe.RecipeDetachedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", event)
		}
		audit.Info("Variation detached",
			zap.String("recipe_id", e.RecipeID.String()),
			zap.String("former_parent_id", e.ParentID.String()),
		)
		return nil
	})

	d.Register("recipe.deleted", func(ctx context.Context, event shared.DomainEvent) error {
		e, ok := event.(recipe.RecipeDeletedEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", event)
		}
		audit.Info("Recipe deleted",
			zap.String("recipe_id", e.RecipeID.String()),
			zap.String("user_id", e.UserID.String()),
			zap.Int("detached_children", e.DetachedChildren),
		)
		return nil
	})
}
