// Package recipe contains the recipe aggregate, its lineage rules and the
// normalization of loosely typed recipe payloads.
package recipe

import (
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/shared"
	"github.com/google/uuid"
)

// Recipe is the aggregate root for the recipe domain
// Following DDD principles, all business logic related to recipes is encapsulated here
type Recipe struct {
	shared.AggregateRoot

	id        uuid.UUID
	userID    uuid.UUID
	parentID  *uuid.UUID
	content   Content
	createdAt time.Time
	updatedAt time.Time
}

// Snapshot is the persisted state of a recipe
type Snapshot struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ParentID  *uuid.UUID
	Content   Content
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecipe creates a root recipe. Link it with LinkTo to make it a variation.
func NewRecipe(userID uuid.UUID, content Content, now time.Time) (*Recipe, error) {
	content = tidy(content.clone())
	if err := content.Validate(); err != nil {
		return nil, err
	}

	r := &Recipe{
		id:        uuid.New(),
		userID:    userID,
		content:   content,
		createdAt: now,
		updatedAt: now,
	}

	r.AddEvent(RecipeCreatedEvent{
		RecipeID:  r.id,
		UserID:    userID,
		Title:     content.Title,
		CreatedAt: now,
	})

	return r, nil
}

// Restore rebuilds a recipe from persisted state without raising events
func Restore(s Snapshot) *Recipe {
	return &Recipe{
		id:        s.ID,
		userID:    s.UserID,
		parentID:  s.ParentID,
		content:   s.Content.clone(),
		createdAt: s.CreatedAt,
		updatedAt: s.UpdatedAt,
	}
}

// Snapshot returns a copy of the recipe state for persistence
func (r *Recipe) Snapshot() Snapshot {
	return Snapshot{
		ID:        r.id,
		UserID:    r.userID,
		ParentID:  r.ParentID(),
		Content:   r.content.clone(),
		CreatedAt: r.createdAt,
		UpdatedAt: r.updatedAt,
	}
}

// Getters

func (r *Recipe) ID() uuid.UUID        { return r.id }
func (r *Recipe) UserID() uuid.UUID    { return r.userID }
func (r *Recipe) Title() string        { return r.content.Title }
func (r *Recipe) DishType() string     { return r.content.DishType }
func (r *Recipe) Content() Content     { return r.content.clone() }
func (r *Recipe) CreatedAt() time.Time { return r.createdAt }
func (r *Recipe) UpdatedAt() time.Time { return r.updatedAt }

// ParentID returns a copy of the parent id, nil for lineage roots
func (r *Recipe) ParentID() *uuid.UUID {
	if r.parentID == nil {
		return nil
	}
	id := *r.parentID
	return &id
}

// IsRoot reports whether the recipe starts a lineage
func (r *Recipe) IsRoot() bool {
	return r.parentID == nil
}

// IsOwnedBy reports whether userID owns the recipe
func (r *Recipe) IsOwnedBy(userID uuid.UUID) bool {
	return r.userID == userID
}

// Business methods

// Revise replaces the authored content
func (r *Recipe) Revise(content Content, now time.Time) error {
	content = tidy(content.clone())
	if err := content.Validate(); err != nil {
		return err
	}
	if r.parentID != nil && content.VariationNote == "" {
		return ErrVariationNoteRequired
	}

	r.content = content
	r.updatedAt = now
	return nil
}

// LinkTo makes the recipe a variation of parent. parentAncestry lists the ids
// from parent's own parent up to its lineage root.
func (r *Recipe) LinkTo(parent *Recipe, parentAncestry []uuid.UUID, now time.Time) error {
	if parent == nil {
		return ErrParentNotFound
	}
	if parent.id == r.id {
		return ErrSelfParent
	}
	if parent.userID != r.userID {
		return ErrParentNotOwned
	}
	for _, ancestor := range parentAncestry {
		if ancestor == r.id {
			return ErrLineageCycle
		}
	}
	if len(parentAncestry) >= MaxLineageDepth {
		return ErrLineageTooDeep
	}
	if r.content.VariationNote == "" {
		return ErrVariationNoteRequired
	}

	if r.parentID != nil && *r.parentID == parent.id {
		return nil
	}

	id := parent.id
	r.parentID = &id
	r.updatedAt = now

	r.AddEvent(VariationLinkedEvent{
		RecipeID:      r.id,
		ParentID:      parent.id,
		VariationNote: r.content.VariationNote,
		LinkedAt:      now,
	})

	return nil
}

// Detach turns the recipe into a lineage root
func (r *Recipe) Detach(now time.Time) {
	if r.parentID == nil {
		return
	}
	previous := *r.parentID
	r.parentID = nil
	r.updatedAt = now

	r.AddEvent(RecipeDetachedEvent{
		RecipeID:   r.id,
		ParentID:   previous,
		DetachedAt: now,
	})
}

// AddImage appends an image URL
func (r *Recipe) AddImage(url string, now time.Time) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	r.content.Images = append(r.content.Images, url)
	r.updatedAt = now
}

// MarkDeleted records the deletion; the repository detaches the children
func (r *Recipe) MarkDeleted(detachedChildren int, now time.Time) {
	r.AddEvent(RecipeDeletedEvent{
		RecipeID:         r.id,
		UserID:           r.userID,
		DetachedChildren: detachedChildren,
		DeletedAt:        now,
	})
}

// tidy trims the free-text fields so validation sees what will be stored
func tidy(c Content) Content {
	c.Title = strings.TrimSpace(c.Title)
	c.VariationNote = strings.TrimSpace(c.VariationNote)
	c.Objective = strings.TrimSpace(c.Objective)
	c.DishType = strings.TrimSpace(c.DishType)
	return c
}
