// Package recipe provides the application layer for recipe management
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxImageBytes = 8 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// RecipeService implements the recipe use cases
type RecipeService struct {
	recipes    outbound.RecipeRepository
	structurer outbound.RecipeStructurer
	images     outbound.ImageStorage
	events     outbound.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

var _ inbound.RecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new recipe service
func NewRecipeService(
	recipes outbound.RecipeRepository,
	structurer outbound.RecipeStructurer,
	images outbound.ImageStorage,
	events outbound.EventPublisher,
	logger *zap.Logger,
) *RecipeService {
	return &RecipeService{
		recipes:    recipes,
		structurer: structurer,
		images:     images,
		events:     events,
		logger:     logger.Named("recipe-service"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateRecipe creates a recipe, linking it to its parent when one is given
func (s *RecipeService) CreateRecipe(ctx context.Context, userID uuid.UUID, payload recipe.Payload) (*inbound.RecipeDTO, error) {
	s.logger.Info("Creating recipe",
		zap.String("user_id", userID.String()),
		zap.String("title", payload.Content.Title),
	)

	now := s.now()
	entity, err := recipe.NewRecipe(userID, payload.Content, now)
	if err != nil {
		return nil, validation(err)
	}

	if payload.ParentID != nil {
		if err := s.link(ctx, entity, *payload.ParentID, now); err != nil {
			return nil, err
		}
	}

	if err := s.recipes.Create(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("create recipe", err)
	}
	s.publish(ctx, entity)

	dto := inbound.NewRecipeDTO(entity)
	s.logger.Info("Recipe created successfully",
		zap.String("recipe_id", dto.ID.String()),
		zap.Bool("variation", dto.ParentID != nil),
	)
	return &dto, nil
}

// UpdateRecipe applies the fields present in payload. A parentId of null
// detaches the recipe; a parentId value (re)links it.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, payload recipe.Payload) (*inbound.RecipeDTO, error) {
	entity, err := s.find(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	content := entity.Content().Merge(payload)

	// Detach before revising so a former variation may drop its note
	if payload.ClearsParent() {
		entity.Detach(now)
	}
	if err := entity.Revise(content, now); err != nil {
		return nil, validation(err)
	}
	if payload.Has(recipe.FieldParentID) && payload.ParentID != nil {
		if err := s.link(ctx, entity, *payload.ParentID, now); err != nil {
			return nil, err
		}
	}

	if err := s.recipes.Update(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("update recipe", err)
	}
	s.publish(ctx, entity)

	s.logger.Info("Recipe updated", zap.String("recipe_id", recipeID.String()))

	dto := inbound.NewRecipeDTO(entity)
	return &dto, nil
}

// DeleteRecipe deletes a recipe; its variations become lineage roots
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*inbound.DeleteRecipeResult, error) {
	entity, err := s.find(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	detached, err := s.recipes.Delete(ctx, userID, recipeID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewRecipeNotFoundError(recipeID.String())
		}
		return nil, errors.NewDatabaseError("delete recipe", err)
	}

	entity.MarkDeleted(detached, s.now())
	s.publish(ctx, entity)

	s.logger.Info("Recipe deleted",
		zap.String("recipe_id", recipeID.String()),
		zap.Int("detached_children", detached),
	)

	return &inbound.DeleteRecipeResult{Deleted: true, DetachedChildren: detached}, nil
}

// AddImage stores an image and appends its URL to the recipe
func (s *RecipeService) AddImage(ctx context.Context, cmd inbound.AddImageCommand) (*inbound.RecipeDTO, error) {
	if len(cmd.Data) == 0 {
		return nil, errors.NewValidationError("image data is required")
	}
	if len(cmd.Data) > maxImageBytes {
		return nil, errors.NewValidationError("image must not exceed 8 MiB")
	}

	contentType := strings.ToLower(strings.TrimSpace(cmd.ContentType))
	if contentType == "" {
		contentType = http.DetectContentType(cmd.Data)
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("unsupported image type %q", contentType))
	}

	entity, err := s.find(ctx, cmd.UserID, cmd.RecipeID)
	if err != nil {
		return nil, err
	}

	if fileExt := strings.ToLower(path.Ext(cmd.Filename)); fileExt != "" && len(fileExt) <= 5 {
		ext = fileExt
	}
	key := fmt.Sprintf("recipes/%s/%s%s", entity.ID(), uuid.New(), ext)

	url, err := s.images.Upload(ctx, key, cmd.Data, contentType)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotConfigured) {
			return nil, errors.NewServiceUnavailableError("image storage")
		}
		return nil, errors.NewExternalServiceError("image storage", err)
	}

	entity.AddImage(url, s.now())
	if err := s.recipes.Update(ctx, entity); err != nil {
		return nil, errors.NewDatabaseError("update recipe", err)
	}

	s.logger.Info("Recipe image stored",
		zap.String("recipe_id", entity.ID().String()),
		zap.String("key", key),
		zap.Int("bytes", len(cmd.Data)),
	)

	dto := inbound.NewRecipeDTO(entity)
	return &dto, nil
}

// GetRecipe returns a single recipe
func (s *RecipeService) GetRecipe(ctx context.Context, userID, recipeID uuid.UUID) (*inbound.RecipeDTO, error) {
	entity, err := s.find(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	dto := inbound.NewRecipeDTO(entity)
	return &dto, nil
}

// ListRecipes lists a user's recipes. Storage applies the structural filters;
// the content filters run here so every backend answers the same way.
func (s *RecipeService) ListRecipes(ctx context.Context, filter recipe.ListFilter) (*inbound.RecipeList, error) {
	f := filter.Normalized()

	rows, err := s.recipes.List(ctx, f)
	if err != nil {
		return nil, errors.NewDatabaseError("list recipes", err)
	}

	matched := make([]*recipe.Recipe, 0, len(rows))
	for _, r := range rows {
		if f.Matches(r) {
			matched = append(matched, r)
		}
	}

	return &inbound.RecipeList{
		Recipes: inbound.NewRecipeDTOs(f.Page(matched)),
		Total:   len(matched),
		Offset:  f.Offset,
		Limit:   f.Limit,
	}, nil
}

func (s *RecipeService) find(ctx context.Context, userID, recipeID uuid.UUID) (*recipe.Recipe, error) {
	entity, err := s.recipes.FindByID(ctx, userID, recipeID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return nil, errors.NewRecipeNotFoundError(recipeID.String())
		}
		return nil, errors.NewDatabaseError("find recipe", err)
	}
	return entity, nil
}

// link validates and applies a parent assignment
func (s *RecipeService) link(ctx context.Context, entity *recipe.Recipe, parentID uuid.UUID, now time.Time) error {
	parent, err := s.recipes.FindByID(ctx, entity.UserID(), parentID)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotFound) {
			return validation(recipe.ErrParentNotFound).WithMetadata("parent_id", parentID.String())
		}
		return errors.NewDatabaseError("find parent recipe", err)
	}

	ancestry, err := s.ancestry(ctx, parent)
	if err != nil {
		return err
	}

	if err := entity.LinkTo(parent, ancestry, now); err != nil {
		return validation(err)
	}
	return nil
}

// ancestry lists the ids above r, nearest first. A dangling parent ends the
// walk; so does a repeated id.
func (s *RecipeService) ancestry(ctx context.Context, r *recipe.Recipe) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	seen := map[uuid.UUID]bool{r.ID(): true}

	current := r
	for len(ids) < recipe.MaxLineageDepth && current.ParentID() != nil {
		parentID := *current.ParentID()
		if seen[parentID] {
			ids = append(ids, parentID)
			break
		}
		seen[parentID] = true
		ids = append(ids, parentID)

		next, err := s.recipes.FindByID(ctx, r.UserID(), parentID)
		if err != nil {
			if stderrors.Is(err, outbound.ErrNotFound) {
				break
			}
			return nil, errors.NewDatabaseError("walk recipe lineage", err)
		}
		current = next
	}
	return ids, nil
}

func (s *RecipeService) publish(ctx context.Context, entity *recipe.Recipe) {
	events := entity.Events()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish events",
			zap.String("recipe_id", entity.ID().String()),
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

// validation turns a domain rule violation into a 400
func validation(err error) *errors.AppError {
	return errors.NewValidationError(err.Error()).WithCause(err)
}
