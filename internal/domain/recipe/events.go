package recipe

import (
	"time"

	"github.com/google/uuid"
)

// Domain Events - Events that occur within the recipe domain

// RecipeCreatedEvent is raised when a new recipe is created
type RecipeCreatedEvent struct {
	RecipeID  uuid.UUID
	UserID    uuid.UUID
	Title     string
	CreatedAt time.Time
}

func (e RecipeCreatedEvent) EventName() string {
	return "recipe.created"
}

func (e RecipeCreatedEvent) OccurredAt() time.Time {
	return e.CreatedAt
}

// VariationLinkedEvent is raised when a recipe becomes a variation of another
type VariationLinkedEvent struct {
	RecipeID      uuid.UUID
	ParentID      uuid.UUID
	VariationNote string
	LinkedAt      time.Time
}

func (e VariationLinkedEvent) EventName() string {
	return "recipe.variation.linked"
}

func (e VariationLinkedEvent) OccurredAt() time.Time {
	return e.LinkedAt
}

// RecipeDetachedEvent is raised when a variation becomes a lineage root
type RecipeDetachedEvent struct {
	RecipeID   uuid.UUID
	ParentID   uuid.UUID
	DetachedAt time.Time
}

func (e RecipeDetachedEvent) EventName() string {
	return "recipe.detached"
}

func (e RecipeDetachedEvent) OccurredAt() time.Time {
	return e.DetachedAt
}

// RecipeDeletedEvent is raised when a recipe is deleted
type RecipeDeletedEvent struct {
	RecipeID         uuid.UUID
	UserID           uuid.UUID
	DetachedChildren int
	DeletedAt        time.Time
}

func (e RecipeDeletedEvent) EventName() string {
	return "recipe.deleted"
}

func (e RecipeDeletedEvent) OccurredAt() time.Time {
	return e.DeletedAt
}
