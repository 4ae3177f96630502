package recipe

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxImportCandidates = 100
	maxStructureText    = 20000
)

// StructureRecipe asks the LLM to structure free text and normalizes the result.
// Nothing is persisted.
func (s *RecipeService) StructureRecipe(ctx context.Context, text string) (*inbound.RecipeContentDTO, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewValidationError("text is required")
	}
	if len(text) > maxStructureText {
		return nil, errors.NewValidationError("text is too long")
	}

	raw, err := s.structurer.StructureRecipe(ctx, text)
	if err != nil {
		if stderrors.Is(err, outbound.ErrNotConfigured) {
			return nil, errors.NewServiceUnavailableError("recipe structuring")
		}
		return nil, errors.NewExternalServiceError("recipe structuring", err)
	}

	dto := inbound.NewRecipeContentDTO(recipe.NormalizeContent(raw))
	return &dto, nil
}

// PlanImport suggests a chronological lineage for recipes found in an
// imported conversation
func (s *RecipeService) PlanImport(ctx context.Context, candidates []inbound.ImportCandidateInput) (*inbound.ImportPlanDTO, error) {
	plan, err := buildPlan(candidates)
	if err != nil {
		return nil, err
	}

	dto := &inbound.ImportPlanDTO{Items: make([]inbound.ImportPlanItemDTO, 0, len(plan))}
	for _, item := range plan {
		dto.Items = append(dto.Items, inbound.ImportPlanItemDTO{
			ImportIndex:          item.ImportIndex,
			SuggestedParentIndex: item.SuggestedParentIndex,
			Index:                item.Candidate.Index,
			Recipe:               inbound.NewRecipeContentDTO(item.Candidate.Payload.Content),
		})
	}
	return dto, nil
}

// CommitImport creates the recipes of a plan in import order. Parents and
// variation notes are checked for every item before the first write.
func (s *RecipeService) CommitImport(ctx context.Context, cmd inbound.CommitImportCommand) ([]inbound.RecipeDTO, error) {
	plan, err := buildPlan(cmd.Candidates)
	if err != nil {
		return nil, err
	}

	parents, err := recipe.ResolveParents(plan, cmd.Selections)
	if err != nil {
		return nil, validation(err)
	}
	if err := recipe.ValidatePlanContent(plan, parents); err != nil {
		return nil, validation(err)
	}

	now := s.now()
	created := make([]*recipe.Recipe, len(plan))
	for i, item := range plan {
		entity, err := recipe.NewRecipe(cmd.UserID, item.Candidate.Payload.Content, now)
		if err != nil {
			return nil, validation(err)
		}

		if parents[i] != nil {
			parent := created[*parents[i]]
			if err := entity.LinkTo(parent, importAncestry(created, parents, *parents[i]), now); err != nil {
				return nil, validation(err)
			}
		}

		if err := s.recipes.Create(ctx, entity); err != nil {
			s.logger.Error("Import aborted",
				zap.Int("import_index", i),
				zap.Int("created", i),
				zap.Error(err),
			)
			return nil, errors.NewDatabaseError("create imported recipe", err)
		}
		s.publish(ctx, entity)
		created[i] = entity
	}

	s.logger.Info("Import committed",
		zap.String("user_id", cmd.UserID.String()),
		zap.Int("recipes", len(created)),
	)

	return inbound.NewRecipeDTOs(created), nil
}

func buildPlan(candidates []inbound.ImportCandidateInput) ([]recipe.PlannedImport, error) {
	if len(candidates) == 0 {
		return nil, errors.NewValidationError("at least one candidate is required")
	}
	if len(candidates) > maxImportCandidates {
		return nil, errors.NewValidationError("too many import candidates")
	}

	seen := make(map[int]bool, len(candidates))
	domainCandidates := make([]recipe.ImportCandidate, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.Index] {
			return nil, validation(recipe.ErrDuplicateImport)
		}
		seen[c.Index] = true
		domainCandidates = append(domainCandidates, recipe.ImportCandidate{
			Index:   c.Index,
			Payload: recipe.NormalizePayload(c.Recipe),
		})
	}
	return recipe.BuildImportPlan(domainCandidates), nil
}

// importAncestry lists the ids above the import at index, nearest first
func importAncestry(created []*recipe.Recipe, parents []*int, index int) []uuid.UUID {
	var ids []uuid.UUID
	for p := parents[index]; p != nil && len(ids) < recipe.MaxLineageDepth; p = parents[*p] {
		ids = append(ids, created[*p].ID())
	}
	return ids
}
