// Package journal records when a user actually cooked a recipe.
package journal

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRecipeRequired = errors.New("recipeId is required")
	ErrInvalidRange   = errors.New("fromDate must not be after toDate")
	ErrInvalidSort    = errors.New("sort must be asc or desc")
)

const maxCommentLength = 2000

// Realization is a journal entry: recipe RecipeID was cooked at RealizedAt
type Realization struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	RecipeID   uuid.UUID
	RealizedAt time.Time
	Comment    string
	CreatedAt  time.Time
}

// NewRealization creates an entry; a nil realizedAt means now
func NewRealization(userID, recipeID uuid.UUID, realizedAt *time.Time, comment string, now time.Time) (*Realization, error) {
	if recipeID == uuid.Nil {
		return nil, ErrRecipeRequired
	}

	at := now
	if realizedAt != nil {
		at = *realizedAt
	}

	comment = strings.TrimSpace(comment)
	if r := []rune(comment); len(r) > maxCommentLength {
		comment = string(r[:maxCommentLength])
	}

	return &Realization{
		ID:         uuid.New(),
		UserID:     userID,
		RecipeID:   recipeID,
		RealizedAt: at.UTC(),
		Comment:    comment,
		CreatedAt:  now,
	}, nil
}

// SortOrder orders entries by RealizedAt
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// ParseSortOrder defaults to newest first
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortDescending:
		return SortDescending, nil
	case SortAscending:
		return SortAscending, nil
	}
	return "", ErrInvalidSort
}

// Query selects a user's journal entries. From and To are inclusive.
type Query struct {
	UserID   uuid.UUID
	RecipeID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Sort     SortOrder
}

// Validate checks the range
func (q Query) Validate() error {
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return ErrInvalidRange
	}
	return nil
}

// Matches evaluates the query against a single entry
func (q Query) Matches(r *Realization) bool {
	if r.UserID != q.UserID {
		return false
	}
	if q.RecipeID != nil && r.RecipeID != *q.RecipeID {
		return false
	}
	if q.From != nil && r.RealizedAt.Before(*q.From) {
		return false
	}
	if q.To != nil && r.RealizedAt.After(*q.To) {
		return false
	}
	return true
}
