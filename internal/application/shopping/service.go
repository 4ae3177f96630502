// Package shopping provides the shopping list use cases
package shopping

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBulkItems = 200

// CleanupRecorder counts items removed by the expiry rule
type CleanupRecorder interface {
	RecordShoppingCleanup(count int)
}

// ShoppingService implements inbound.ShoppingService
type ShoppingService struct {
	items        outbound.ShoppingItemRepository
	realizations outbound.RealizationRepository
	meals        outbound.PlannedMealRepository
	metrics      CleanupRecorder
	logger       *zap.Logger
	now          func() time.Time
}

var _ inbound.ShoppingService = (*ShoppingService)(nil)

// NewShoppingService creates a new shopping service
func NewShoppingService(
	items outbound.ShoppingItemRepository,
	realizations outbound.RealizationRepository,
	meals outbound.PlannedMealRepository,
	metrics CleanupRecorder,
	logger *zap.Logger,
) *ShoppingService {
	return &ShoppingService{
		items:        items,
		realizations: realizations,
		meals:        meals,
		metrics:      metrics,
		logger:       logger.Named("shopping-service"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ListItems removes expired items, then lists the rest. Reading the list
// therefore changes it over time. Expiry is decided per UTC day: an item
// whose source realization or planned meal falls on an earlier day than
// today is removed, one sourced earlier today is kept.
func (s *ShoppingService) ListItems(ctx context.Context, userID uuid.UUID, bought *bool) ([]inbound.ShoppingItemDTO, error) {
	if _, err := s.CleanupExpired(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.items.List(ctx, userID, bought)
	if err != nil {
		return nil, errors.NewDatabaseError("list shopping items", err)
	}
	return toDTOs(rows), nil
}

// CleanupExpired deletes items whose source realization or planned meal is
// dated before today. Realizations are looked up first; planned meals cover
// the ids no realization claimed. Items whose source is gone are kept.
func (s *ShoppingService) CleanupExpired(ctx context.Context, userID uuid.UUID) (int, error) {
	rows, err := s.items.List(ctx, userID, nil)
	if err != nil {
		return 0, errors.NewDatabaseError("list shopping items", err)
	}

	sourceIDs := shopping.SourceIDs(rows)
	if len(sourceIDs) == 0 {
		return 0, nil
	}

	dates := make(map[uuid.UUID]time.Time, len(sourceIDs))

	realizations, err := s.realizations.FindByIDs(ctx, userID, sourceIDs)
	if err != nil {
		return 0, errors.NewDatabaseError("load shopping sources", err)
	}
	for _, r := range realizations {
		dates[r.ID] = r.RealizedAt
	}

	var remaining []uuid.UUID
	for _, id := range sourceIDs {
		if _, ok := dates[id]; !ok {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) > 0 {
		meals, err := s.meals.FindByIDs(ctx, userID, remaining)
		if err != nil {
			return 0, errors.NewDatabaseError("load shopping sources", err)
		}
		for _, m := range meals {
			dates[m.ID] = m.Date
		}
	}

	expired := shopping.Expired(rows, dates, s.now())
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(expired))
	for _, item := range expired {
		ids = append(ids, item.ID)
	}

	deleted, err := s.items.DeleteByIDs(ctx, userID, ids)
	if err != nil {
		return 0, errors.NewDatabaseError("delete expired shopping items", err)
	}

	if s.metrics != nil {
		s.metrics.RecordShoppingCleanup(deleted)
	}
	s.logger.Info("Expired shopping items removed",
		zap.String("user_id", userID.String()),
		zap.Int("count", deleted),
	)

	return deleted, nil
}

// AddItems adds one or more items
func (s *ShoppingService) AddItems(ctx context.Context, userID uuid.UUID, cmds []inbound.CreateShoppingItemCommand) ([]inbound.ShoppingItemDTO, error) {
	if len(cmds) == 0 {
		return nil, errors.NewValidationError("at least one item is required")
	}
	if len(cmds) > maxBulkItems {
		return nil, errors.NewValidationError("too many items")
	}

	now := s.now()
	items := make([]*shopping.Item, 0, len(cmds))
	for _, cmd := range cmds {
		item, err := shopping.NewItem(userID, cmd.Name, cmd.Quantity, cmd.Unit, cmd.SourceRealizationID, now)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		items = append(items, item)
	}

	if err := s.items.Create(ctx, items...); err != nil {
		return nil, errors.NewDatabaseError("create shopping items", err)
	}

	s.logger.Info("Shopping items added",
		zap.String("user_id", userID.String()),
		zap.Int("count", len(items)),
	)

	return toDTOs(items), nil
}

// UpdateItem edits an item
func (s *ShoppingService) UpdateItem(ctx context.Context, cmd inbound.UpdateShoppingItemCommand) (*inbound.ShoppingItemDTO, error) {
	item, err := s.items.FindByID(ctx, cmd.UserID, cmd.ID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewNotFoundError("shopping list item")
		}
		return nil, errors.NewDatabaseError("find shopping item", err)
	}

	if err := item.Apply(cmd.Patch, s.now()); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, errors.NewDatabaseError("update shopping item", err)
	}

	dto := inbound.NewShoppingItemDTO(item)
	return &dto, nil
}

// DeleteItem deletes an item
func (s *ShoppingService) DeleteItem(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.items.Delete(ctx, userID, id); err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return errors.NewNotFoundError("shopping list item")
		}
		return errors.NewDatabaseError("delete shopping item", err)
	}
	return nil
}

func toDTOs(items []*shopping.Item) []inbound.ShoppingItemDTO {
	out := make([]inbound.ShoppingItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, inbound.NewShoppingItemDTO(item))
	}
	return out
}
