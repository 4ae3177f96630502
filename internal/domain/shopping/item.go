// Package shopping models the shopping list and its expiry rule.
package shopping

import (
	"errors"
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrNameRequired     = errors.New("item name is required")
	ErrNegativeQuantity = errors.New("quantity cannot be negative")
)

// Item is one line of a user's shopping list
type Item struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	Name                string
	Quantity            *float64
	Unit                string
	Bought              bool
	SourceRealizationID *uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewItem creates a shopping list item
func NewItem(userID uuid.UUID, name string, quantity *float64, unit string, sourceID *uuid.UUID, now time.Time) (*Item, error) {
	item := &Item{
		ID:                  uuid.New(),
		UserID:              userID,
		Name:                strings.TrimSpace(name),
		Quantity:            quantity,
		Unit:                strings.TrimSpace(unit),
		SourceRealizationID: sourceID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks the item invariants
func (i *Item) Validate() error {
	if i.Name == "" {
		return ErrNameRequired
	}
	if i.Quantity != nil && *i.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// Patch holds editable fields; nil means unchanged
type Patch struct {
	Name          *string
	Quantity      *float64
	ClearQuantity bool
	Unit          *string
	Bought        *bool
}

// Apply applies p and re-validates; on error i is left unchanged
func (i *Item) Apply(p Patch, now time.Time) error {
	next := *i
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if p.ClearQuantity {
		next.Quantity = nil
	}
	if p.Quantity != nil {
		q := *p.Quantity
		next.Quantity = &q
	}
	if p.Unit != nil {
		next.Unit = strings.TrimSpace(*p.Unit)
	}
	if p.Bought != nil {
		next.Bought = *p.Bought
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = now
	*i = next
	return nil
}

// IsExpired reports whether an item sourced on sourceDay is stale at now:
// the source's UTC day is strictly before today's.
func IsExpired(sourceDay, now time.Time) bool {
	return shared.StartOfDay(sourceDay).Before(shared.StartOfDay(now))
}

// SourceIDs returns the distinct source ids of items
func SourceIDs(items []*Item) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, item := range items {
		if item.SourceRealizationID == nil {
			continue
		}
		if _, ok := seen[*item.SourceRealizationID]; ok {
			continue
		}
		seen[*item.SourceRealizationID] = struct{}{}
		ids = append(ids, *item.SourceRealizationID)
	}
	return ids
}

// Expired selects the items whose source date is in the past. sourceDates maps
// a source id to the date of the realization or planned meal it names; items
// whose source is unknown are kept.
func Expired(items []*Item, sourceDates map[uuid.UUID]time.Time, now time.Time) []*Item {
	var out []*Item
	for _, item := range items {
		if item.SourceRealizationID == nil {
			continue
		}
		day, ok := sourceDates[*item.SourceRealizationID]
		if !ok {
			continue
		}
		if IsExpired(day, now) {
			out = append(out, item)
		}
	}
	return out
}
