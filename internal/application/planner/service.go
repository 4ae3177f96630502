// Package planner provides the meal-planner use cases, including the
// calendar aggregation of planned meals and journal entries
package planner

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PlannerService implements inbound.PlannerService
type PlannerService struct {
	meals        outbound.PlannedMealRepository
	realizations outbound.RealizationRepository
	recipes      outbound.RecipeRepository
	logger       *zap.Logger
	now          func() time.Time
}

var _ inbound.PlannerService = (*PlannerService)(nil)

// NewPlannerService creates a new planner service
func NewPlannerService(
	meals outbound.PlannedMealRepository,
	realizations outbound.RealizationRepository,
	recipes outbound.RecipeRepository,
	logger *zap.Logger,
) *PlannerService {
	return &PlannerService{
		meals:        meals,
		realizations: realizations,
		recipes:      recipes,
		logger:       logger.Named("planner-service"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// GetCalendar merges journal entries and planned meals of an inclusive day
// range. Both reads run concurrently; any failure fails the whole request.
func (s *PlannerService) GetCalendar(ctx context.Context, userID uuid.UUID, from, to time.Time) (*inbound.CalendarDTO, error) {
	r, err := planner.NewRange(from, to)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	var (
		realizations []*journal.Realization
		meals        []*planner.PlannedMeal
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		rows, err := s.realizations.Find(egCtx, journal.Query{
			UserID: userID,
			From:   &r.From,
			To:     &r.To,
			Sort:   journal.SortAscending,
		})
		if err != nil {
			return errors.NewDatabaseError("list realizations", err)
		}
		realizations = rows
		return nil
	})
	eg.Go(func() error {
		rows, err := s.meals.FindInRange(egCtx, userID, r.From, r.To)
		if err != nil {
			return errors.NewDatabaseError("list planned meals", err)
		}
		meals = rows
		return nil
	})
	if err := eg.Wait(); err != nil {
		s.logger.Error("Calendar fetch failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}

	info, err := s.recipeInfo(ctx, userID, planner.RecipeIDs(meals))
	if err != nil {
		return nil, err
	}

	dto := inbound.NewCalendarDTO(planner.BuildCalendar(r, realizations, meals, info))

	s.logger.Debug("Calendar built",
		zap.String("user_id", userID.String()),
		zap.Int("realizations", len(dto.Realizations)),
		zap.Int("planned_meals", len(dto.PlannedMeals)),
	)

	return &dto, nil
}

// recipeInfo batch-loads the dish type and title of the referenced recipes
func (s *PlannerService) recipeInfo(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]planner.RecipeInfo, error) {
	info := make(map[uuid.UUID]planner.RecipeInfo, len(ids))
	if len(ids) == 0 {
		return info, nil
	}

	recipes, err := s.recipes.FindByIDs(ctx, userID, ids)
	if err != nil {
		return nil, errors.NewDatabaseError("load recipe metadata", err)
	}
	for _, r := range recipes {
		info[r.ID()] = planner.RecipeInfo{Title: r.Title(), DishType: r.DishType()}
	}
	return info, nil
}

// CreatePlannedMeal plans a meal. A recipe-bound meal without a title takes the recipe's title.
func (s *PlannerService) CreatePlannedMeal(ctx context.Context, cmd inbound.CreatePlannedMealCommand) (*inbound.PlannedMealDTO, error) {
	title := cmd.RecipeTitle
	var dishType string
	if cmd.RecipeID != nil {
		r, err := s.recipes.FindByID(ctx, cmd.UserID, *cmd.RecipeID)
		if err != nil {
			if stderrors.Is(err, outbound.ErrNotFound) {
				return nil, errors.NewRecipeNotFoundError(cmd.RecipeID.String())
			}
			return nil, errors.NewDatabaseError("find recipe", err)
		}
		if title == "" {
			title = r.Title()
		}
		dishType = r.DishType()
	}

	meal, err := planner.NewPlannedMeal(cmd.UserID, cmd.Date, cmd.Slot, cmd.RecipeID, title, cmd.Comment, s.now())
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, errors.NewDatabaseError("create planned meal", err)
	}

	s.logger.Info("Meal planned",
		zap.String("planned_meal_id", meal.ID.String()),
		zap.String("slot", string(meal.Slot)),
		zap.Time("date", meal.Date),
	)

	dto := inbound.NewPlannedMealDTO(meal)
	dto.RecipeDishType = dishType
	return &dto, nil
}

// UpdatePlannedMeal edits a planned meal
func (s *PlannerService) UpdatePlannedMeal(ctx context.Context, cmd inbound.UpdatePlannedMealCommand) (*inbound.PlannedMealDTO, error) {
	meal, err := s.meals.FindByID(ctx, cmd.UserID, cmd.ID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewNotFoundError("planned meal")
		}
		return nil, errors.NewDatabaseError("find planned meal", err)
	}

	if cmd.Patch.RecipeID != nil {
		if _, err := s.recipes.FindByID(ctx, cmd.UserID, *cmd.Patch.RecipeID); err != nil {
			if stderrors.Is(err, outbound.ErrNotFound) {
				return nil, errors.NewRecipeNotFoundError(cmd.Patch.RecipeID.String())
			}
			return nil, errors.NewDatabaseError("find recipe", err)
		}
	}

	if err := meal.Apply(cmd.Patch, s.now()); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.meals.Update(ctx, meal); err != nil {
		return nil, errors.NewDatabaseError("update planned meal", err)
	}

	dto := inbound.NewPlannedMealDTO(meal)
	// dish type of the bound recipe, matching the calendar
	if meal.RecipeID != nil {
		info, err := s.recipeInfo(ctx, cmd.UserID, []uuid.UUID{*meal.RecipeID})
		if err != nil {
			return nil, err
		}
		dto.RecipeDishType = info[*meal.RecipeID].DishType
	}
	return &dto, nil
}

// DeletePlannedMeal deletes a planned meal
func (s *PlannerService) DeletePlannedMeal(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.meals.Delete(ctx, userID, id); err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return errors.NewNotFoundError("planned meal")
		}
		return errors.NewDatabaseError("delete planned meal", err)
	}
	s.logger.Info("Planned meal deleted", zap.String("planned_meal_id", id.String()))
	return nil
}
