// Package ingredient provides the shared ingredient gallery use cases
package ingredient

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultUSDACacheTTL is how long a FoodData Central match is cached
const DefaultUSDACacheTTL = 24 * time.Hour

// IngredientService implements inbound.IngredientService
type IngredientService struct {
	ingredients outbound.IngredientRepository
	recipes     outbound.RecipeRepository
	shopping    outbound.ShoppingItemRepository
	dataset     outbound.NutritionDataset
	usda        outbound.USDAClient
	cache       outbound.CacheRepository
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

var _ inbound.IngredientService = (*IngredientService)(nil)

// NewIngredientService creates a new ingredient service
func NewIngredientService(
	ingredients outbound.IngredientRepository,
	recipes outbound.RecipeRepository,
	shopping outbound.ShoppingItemRepository,
	dataset outbound.NutritionDataset,
	usda outbound.USDAClient,
	cache outbound.CacheRepository,
	logger *zap.Logger,
) *IngredientService {
	return &IngredientService{
		ingredients: ingredients,
		recipes:     recipes,
		shopping:    shopping,
		dataset:     dataset,
		usda:        usda,
		cache:       cache,
		cacheTTL:    DefaultUSDACacheTTL,
		logger:      logger.Named("ingredient-service"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithUSDACacheTTL overrides how long USDA matches are cached
func (s *IngredientService) WithUSDACacheTTL(ttl time.Duration) *IngredientService {
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// ListIngredients syncs the caller's ingredient names, backfills nutrition,
// then returns the whole gallery
func (s *IngredientService) ListIngredients(ctx context.Context, userID uuid.UUID) ([]inbound.IngredientDTO, error) {
	if _, err := s.SyncNames(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.BackfillNutrition(ctx); err != nil {
		return nil, err
	}

	rows, err := s.ingredients.List(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list ingredients", err)
	}

	out := make([]inbound.IngredientDTO, 0, len(rows))
	for _, ing := range rows {
		out = append(out, inbound.NewIngredientDTO(ing))
	}
	return out, nil
}

// CreateIngredient adds an ingredient. A name that folds onto an existing
// entry returns that entry instead.
func (s *IngredientService) CreateIngredient(ctx context.Context, name, displayName string) (*inbound.IngredientDTO, bool, error) {
	ing, err := ingredient.New(name, displayName, s.now())
	if err != nil {
		return nil, false, errors.NewValidationError(err.Error())
	}

	existing, err := s.ingredients.FindByName(ctx, ing.Name)
	switch {
	case err == nil:
		dto := inbound.NewIngredientDTO(existing)
		return &dto, false, nil
	case !stderrors.Is(err, outbound.ErrNotFound):
		return nil, false, errors.NewDatabaseError("find ingredient", err)
	}

	if s.dataset != nil {
		if n, ok := s.dataset.Lookup(ing.Name); ok {
			ing.Backfill(n, s.now())
		}
	}

	if err := s.ingredients.Create(ctx, ing); err != nil {
		if stderrors.Is(err, outbound.ErrDuplicate) {
			// lost a race with a concurrent create
			existing, findErr := s.ingredients.FindByName(ctx, ing.Name)
			if findErr == nil {
				dto := inbound.NewIngredientDTO(existing)
				return &dto, false, nil
			}
			return nil, false, errors.NewConflictError("Ingredient " + ing.Name + " already exists")
		}
		return nil, false, errors.NewDatabaseError("create ingredient", err)
	}

	s.logger.Info("Ingredient created", zap.String("ingredient_id", ing.ID.String()), zap.String("name", ing.Name))

	dto := inbound.NewIngredientDTO(ing)
	return &dto, true, nil
}

// UpdateIngredient applies user edits
func (s *IngredientService) UpdateIngredient(ctx context.Context, id uuid.UUID, patch ingredient.Patch) (*inbound.IngredientDTO, error) {
	ing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ing.Apply(patch, s.now()); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := s.ingredients.Update(ctx, ing); err != nil {
		return nil, errors.NewDatabaseError("update ingredient", err)
	}

	dto := inbound.NewIngredientDTO(ing)
	return &dto, nil
}

// EnrichFromUSDA overwrites an ingredient's nutrition with its best USDA match.
// Matches are cached by canonical name; refresh evicts the cached match first.
func (s *IngredientService) EnrichFromUSDA(ctx context.Context, id uuid.UUID, refresh bool) (*inbound.IngredientDTO, error) {
	ing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if refresh && s.cache != nil {
		if err := s.cache.Delete(ctx, usdaCacheKey(ing.Name)); err != nil {
			s.logger.Warn("USDA cache eviction failed", zap.Error(err))
		}
	}
	match, err := s.searchUSDA(ctx, ing.Name)
	if err != nil {
		return nil, err
	}

	if err := ing.ApplyUSDA(*match, s.now()); err != nil {
		return nil, errors.NewExternalServiceError("usda", err)
	}
	if err := s.ingredients.Update(ctx, ing); err != nil {
		return nil, errors.NewDatabaseError("update ingredient", err)
	}

	s.logger.Info("Ingredient enriched from USDA",
		zap.String("ingredient_id", ing.ID.String()),
		zap.Int64("fdc_id", match.FdcID),
	)

	dto := inbound.NewIngredientDTO(ing)
	return &dto, nil
}

func (s *IngredientService) searchUSDA(ctx context.Context, name string) (*ingredient.USDAMatch, error) {
	if s.usda == nil {
		return nil, errors.NewServiceUnavailableError("usda")
	}

	key := usdaCacheKey(name)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached ingredient.USDAMatch
			if err := json.Unmarshal(raw, &cached); err == nil {
				s.logger.Debug("USDA cache hit", zap.String("name", name))
				return &cached, nil
			}
		} else if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("USDA cache read failed", zap.Error(err))
		}
	}

	match, err := s.usda.SearchFood(ctx, name)
	if err != nil {
		switch {
		case stderrors.Is(err, outbound.ErrNotConfigured):
			return nil, errors.NewServiceUnavailableError("usda")
		case stderrors.Is(err, outbound.ErrNoMatch):
			return nil, errors.NewNotFoundError("usda food").WithMetadata("query", name)
		}
		return nil, errors.NewExternalServiceError("usda", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(match); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
				s.logger.Warn("USDA cache write failed", zap.Error(err))
			}
		}
	}
	return match, nil
}

func usdaCacheKey(name string) string {
	return "usda:" + name
}

// SyncNames creates gallery entries for every ingredient name used in the
// user's recipes and shopping list. It returns the number created.
func (s *IngredientService) SyncNames(ctx context.Context, userID uuid.UUID) (int, error) {
	recipes, err := s.recipes.List(ctx, recipe.ListFilter{UserID: userID})
	if err != nil {
		return 0, errors.NewDatabaseError("list recipes", err)
	}
	items, err := s.shopping.List(ctx, userID, nil)
	if err != nil {
		return 0, errors.NewDatabaseError("list shopping items", err)
	}

	display := make(map[string]string)
	var names []string
	add := func(name string) {
		c := ingredient.CanonicalName(name)
		if c == "" {
			return
		}
		if _, ok := display[c]; !ok {
			display[c] = name
			names = append(names, c)
		}
	}
	for _, r := range recipes {
		for _, line := range r.Content().Ingredients {
			add(line.Name)
		}
	}
	for _, item := range items {
		add(item.Name)
	}
	if len(names) == 0 {
		return 0, nil
	}

	existing, err := s.ingredients.FindByNames(ctx, names)
	if err != nil {
		return 0, errors.NewDatabaseError("find ingredients", err)
	}
	known := make(map[string]bool, len(existing))
	for _, ing := range existing {
		known[ing.Name] = true
	}

	created := 0
	now := s.now()
	for _, name := range names {
		if known[name] {
			continue
		}
		ing, err := ingredient.New(name, display[name], now)
		if err != nil {
			continue
		}
		if err := s.ingredients.Create(ctx, ing); err != nil {
			if stderrors.Is(err, outbound.ErrDuplicate) {
				continue
			}
			return created, errors.NewDatabaseError("create ingredient", err)
		}
		created++
	}

	if created > 0 {
		s.logger.Info("Ingredient names synced",
			zap.String("user_id", userID.String()),
			zap.Int("created", created),
		)
	}
	return created, nil
}

// BackfillNutrition fills nutrition from the static dataset for every
// ingredient that has none. It returns the number updated.
func (s *IngredientService) BackfillNutrition(ctx context.Context) (int, error) {
	if s.dataset == nil || s.dataset.Len() == 0 {
		return 0, nil
	}

	rows, err := s.ingredients.List(ctx)
	if err != nil {
		return 0, errors.NewDatabaseError("list ingredients", err)
	}

	updated := 0
	now := s.now()
	for _, ing := range rows {
		if ing.HasNutrition() {
			continue
		}
		n, ok := s.dataset.Lookup(ing.Name)
		if !ok || !ing.Backfill(n, now) {
			continue
		}
		if err := s.ingredients.Update(ctx, ing); err != nil {
			return updated, errors.NewDatabaseError("update ingredient", err)
		}
		updated++
	}

	if updated > 0 {
		s.logger.Info("Nutrition backfilled", zap.Int("updated", updated))
	}
	return updated, nil
}

func (s *IngredientService) find(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error) {
	ing, err := s.ingredients.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewIngredientNotFoundError(id.String())
		}
		return nil, errors.NewDatabaseError("find ingredient", err)
	}
	return ing, nil
}
