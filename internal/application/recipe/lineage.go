package recipe

import (
	"context"
	stderrors "errors"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListChildren returns the direct variations of a recipe
func (s *RecipeService) ListChildren(ctx context.Context, userID, recipeID uuid.UUID) ([]inbound.RecipeDTO, error) {
	if _, err := s.find(ctx, userID, recipeID); err != nil {
		return nil, err
	}

	children, err := s.recipes.FindChildren(ctx, userID, recipeID)
	if err != nil {
		return nil, errors.NewDatabaseError("list recipe children", err)
	}
	return inbound.NewRecipeDTOs(children), nil
}

// GetLineage builds the lineage tree around a recipe from one-level queries.
// In ancestor mode the tree starts at the lineage root and holds every
// descendant; in branch mode it is the parent with its direct children.
func (s *RecipeService) GetLineage(ctx context.Context, userID, recipeID uuid.UUID, mode recipe.LineageMode) (*inbound.LineageDTO, error) {
	entity, err := s.find(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}

	var tree *recipe.LineageNode
	switch mode {
	case recipe.LineageBranch:
		tree, err = s.branch(ctx, entity)
	case recipe.LineageAncestor, "":
		tree, err = s.fullLineage(ctx, entity)
	default:
		return nil, validation(recipe.ErrInvalidLineageMode)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Lineage built",
		zap.String("recipe_id", recipeID.String()),
		zap.String("mode", string(mode)),
		zap.Int("size", tree.Size()),
	)

	return inbound.NewLineageDTO(tree), nil
}

func (s *RecipeService) branch(ctx context.Context, entity *recipe.Recipe) (*recipe.LineageNode, error) {
	base := entity
	if parentID := entity.ParentID(); parentID != nil {
		parent, err := s.recipes.FindByID(ctx, entity.UserID(), *parentID)
		switch {
		case err == nil:
			base = parent
		case !stderrors.Is(err, outbound.ErrNotFound):
			return nil, errors.NewDatabaseError("find parent recipe", err)
		}
	}

	children, err := s.recipes.FindChildren(ctx, entity.UserID(), base.ID())
	if err != nil {
		return nil, errors.NewDatabaseError("list recipe children", err)
	}
	return recipe.BuildTree(base, children, 1), nil
}

func (s *RecipeService) fullLineage(ctx context.Context, entity *recipe.Recipe) (*recipe.LineageNode, error) {
	root, err := s.root(ctx, entity)
	if err != nil {
		return nil, err
	}

	members := []*recipe.Recipe{root}
	seen := map[uuid.UUID]bool{root.ID(): true}
	level := []*recipe.Recipe{root}

	for depth := 0; depth < recipe.MaxLineageDepth && len(level) > 0; depth++ {
		var next []*recipe.Recipe
		for _, r := range level {
			children, err := s.recipes.FindChildren(ctx, root.UserID(), r.ID())
			if err != nil {
				return nil, errors.NewDatabaseError("list recipe children", err)
			}
			for _, child := range children {
				if seen[child.ID()] {
					continue
				}
				seen[child.ID()] = true
				next = append(next, child)
			}
		}
		members = append(members, next...)
		level = next
	}

	return recipe.BuildTree(root, members, recipe.MaxLineageDepth), nil
}

// root walks up to the lineage root; a dangling parent id makes the last
// reachable recipe the root
func (s *RecipeService) root(ctx context.Context, entity *recipe.Recipe) (*recipe.Recipe, error) {
	current := entity
	seen := map[uuid.UUID]bool{entity.ID(): true}

	for depth := 0; depth < recipe.MaxLineageDepth; depth++ {
		parentID := current.ParentID()
		if parentID == nil || seen[*parentID] {
			return current, nil
		}
		seen[*parentID] = true

		parent, err := s.recipes.FindByID(ctx, entity.UserID(), *parentID)
		if err != nil {
			if stderrors.Is(err, outbound.ErrNotFound) {
				return current, nil
			}
			return nil, errors.NewDatabaseError("walk recipe lineage", err)
		}
		current = parent
	}
	return current, nil
}
