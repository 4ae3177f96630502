// Package journal provides the cooking journal use cases
package journal

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JournalService implements inbound.JournalService
type JournalService struct {
	realizations outbound.RealizationRepository
	recipes      outbound.RecipeRepository
	logger       *zap.Logger
	now          func() time.Time
}

var _ inbound.JournalService = (*JournalService)(nil)

// NewJournalService creates a new journal service
func NewJournalService(
	realizations outbound.RealizationRepository,
	recipes outbound.RecipeRepository,
	logger *zap.Logger,
) *JournalService {
	return &JournalService{
		realizations: realizations,
		recipes:      recipes,
		logger:       logger.Named("journal-service"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ListRealizations lists journal entries
func (s *JournalService) ListRealizations(ctx context.Context, q journal.Query) ([]inbound.RealizationDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if q.Sort == "" {
		q.Sort = journal.SortDescending
	}

	rows, err := s.realizations.Find(ctx, q)
	if err != nil {
		return nil, errors.NewDatabaseError("list realizations", err)
	}

	out := make([]inbound.RealizationDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, inbound.NewRealizationDTO(r))
	}
	return out, nil
}

// CreateRealization records that a recipe was cooked. The recipe must belong to the user.
func (s *JournalService) CreateRealization(ctx context.Context, cmd inbound.CreateRealizationCommand) (*inbound.RealizationDTO, error) {
	entry, err := journal.NewRealization(cmd.UserID, cmd.RecipeID, cmd.RealizedAt, cmd.Comment, s.now())
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if _, err := s.recipes.FindByID(ctx, cmd.UserID, cmd.RecipeID); err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewRecipeNotFoundError(cmd.RecipeID.String())
		}
		return nil, errors.NewDatabaseError("find recipe", err)
	}

	if err := s.realizations.Create(ctx, entry); err != nil {
		return nil, errors.NewDatabaseError("create realization", err)
	}

	s.logger.Info("Realization recorded",
		zap.String("realization_id", entry.ID.String()),
		zap.String("recipe_id", entry.RecipeID.String()),
		zap.Time("realized_at", entry.RealizedAt),
	)

	dto := inbound.NewRealizationDTO(entry)
	return &dto, nil
}

// DeleteRealization deletes a journal entry
func (s *JournalService) DeleteRealization(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.realizations.Delete(ctx, userID, id); err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return errors.NewNotFoundError("realization")
		}
		return errors.NewDatabaseError("delete realization", err)
	}
	s.logger.Info("Realization deleted", zap.String("realization_id", id.String()))
	return nil
}
