package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecipeHandlers serves /api/recipes
type RecipeHandlers struct {
	responder
	recipes inbound.RecipeService
}

// NewRecipeHandlers creates the recipe handlers
func NewRecipeHandlers(recipes inbound.RecipeService, validator *security.Validator, logger *zap.Logger) *RecipeHandlers {
	return &RecipeHandlers{
		responder: responder{validator: validator, logger: logger.Named("recipe-api")},
		recipes:   recipes,
	}
}

// Routes mounts the recipe routes
func (h *RecipeHandlers) Routes(r chi.Router) {
	r.Get("/", h.ListRecipes)
	r.Post("/", h.CreateRecipe)
	r.Post("/structure", h.StructureRecipe)
	r.Post("/import/plan", h.PlanImport)
	r.Post("/import/commit", h.CommitImport)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetRecipe)
		r.Patch("/", h.UpdateRecipe)
		r.Delete("/", h.DeleteRecipe)
		r.Get("/children", h.ListChildren)
		r.Get("/lineage", h.GetLineage)
		r.Post("/images", h.AddImage)
	})
}

// ListRecipes handles GET /api/recipes
func (h *RecipeHandlers) ListRecipes(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filter, err := parseListFilter(r, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.recipes.ListRecipes(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func parseListFilter(r *http.Request, userID uuid.UUID) (recipe.ListFilter, error) {
	q := r.URL.Query()
	filter := recipe.ListFilter{
		UserID:             userID,
		DishType:           q.Get("dishType"),
		Cuisine:            q.Get("cuisine"),
		Diet:               q.Get("diet"),
		IncludeIngredients: queryList(r, "include"),
		ExcludeIngredients: queryList(r, "exclude"),
	}

	if value := q.Get("parentsOnly"); value != "" {
		parentsOnly, err := strconv.ParseBool(value)
		if err != nil {
			return filter, errors.NewValidationError("parentsOnly must be a boolean")
		}
		filter.ParentsOnly = parentsOnly
	}

	parentID, err := queryID(r, "parentId")
	if err != nil {
		return filter, err
	}
	filter.ParentID = parentID

	for _, value := range queryList(r, "ids") {
		id, err := uuid.Parse(value)
		if err != nil {
			return filter, errors.NewValidationError("ids must contain valid ids")
		}
		filter.IDs = append(filter.IDs, id)
	}

	for name, dst := range map[string]*int{"offset": &filter.Offset, "limit": &filter.Limit} {
		value := q.Get(name)
		if value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return filter, errors.NewValidationError(name + " must be a non-negative integer")
		}
		*dst = n
	}
	return filter, nil
}

// CreateRecipe handles POST /api/recipes
func (h *RecipeHandlers) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	raw, err := h.decodeRaw(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.recipes.CreateRecipe(r.Context(), userID, recipe.NormalizePayload(raw))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// GetRecipe handles GET /api/recipes/{id}
func (h *RecipeHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	userID, recipeID, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	found, err := h.recipes.GetRecipe(r.Context(), userID, recipeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, found)
}

// UpdateRecipe handles PATCH /api/recipes/{id}
func (h *RecipeHandlers) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, recipeID, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	raw, err := h.decodeRaw(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.recipes.UpdateRecipe(r.Context(), userID, recipeID, recipe.NormalizePayload(raw))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// DeleteRecipe handles DELETE /api/recipes/{id}
func (h *RecipeHandlers) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	userID, recipeID, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.recipes.DeleteRecipe(r.Context(), userID, recipeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// ListChildren handles GET /api/recipes/{id}/children
func (h *RecipeHandlers) ListChildren(w http.ResponseWriter, r *http.Request) {
	userID, recipeID, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	children, err := h.recipes.ListChildren(r.Context(), userID, recipeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"recipes": children})
}

// GetLineage handles GET /api/recipes/{id}/lineage
func (h *RecipeHandlers) GetLineage(w http.ResponseWriter, r *http.Request) {
	userID, recipeID, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	mode, err := recipe.ParseLineageMode(r.URL.Query().Get("mode"))
	if err != nil {
		h.writeError(w, r, errors.NewValidationError(err.Error()))
		return
	}

	tree, err := h.recipes.GetLineage(r.Context(), userID, recipeID, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tree)
}

type addImageRequest struct {
	Filename    string `json:"filename" validate:"required,safe_filename"`
	ContentType string `json:"contentType" validate:"required"`
	Data        string `json:"data" validate:"required"`
}

// AddImage handles POST /api/recipes/{id}/images
func (h *RecipeHandlers) AddImage(w http.ResponseWriter, r *http.Request) {
	userID, recipeID, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req addImageRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	// Accept data URLs as produced by browsers
	encoded := req.Data
	if _, after, ok := strings.Cut(encoded, ";base64,"); ok {
		encoded = after
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		h.writeError(w, r, errors.NewValidationError("data must be base64 encoded"))
		return
	}

	updated, err := h.recipes.AddImage(r.Context(), inbound.AddImageCommand{
		UserID:      userID,
		RecipeID:    recipeID,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Data:        data,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, updated)
}

type structureRequest struct {
	Text string `json:"text" validate:"required"`
}

// StructureRecipe handles POST /api/recipes/structure
func (h *RecipeHandlers) StructureRecipe(w http.ResponseWriter, r *http.Request) {
	var req structureRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	content, err := h.recipes.StructureRecipe(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, content)
}

type importPlanRequest struct {
	Candidates []inbound.ImportCandidateInput `json:"candidates" validate:"required,min=1"`
}

// PlanImport handles POST /api/recipes/import/plan
func (h *RecipeHandlers) PlanImport(w http.ResponseWriter, r *http.Request) {
	var req importPlanRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	plan, err := h.recipes.PlanImport(r.Context(), req.Candidates)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, plan)
}

type importCommitRequest struct {
	Candidates       []inbound.ImportCandidateInput `json:"candidates" validate:"required,min=1"`
	ParentSelections map[string]*int                `json:"parentSelections"`
}

// CommitImport handles POST /api/recipes/import/commit
func (h *RecipeHandlers) CommitImport(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req importCommitRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	selections := make(map[int]*int, len(req.ParentSelections))
	for key, parent := range req.ParentSelections {
		index, err := strconv.Atoi(key)
		if err != nil {
			h.writeError(w, r, errors.NewValidationError("parentSelections keys must be import indexes"))
			return
		}
		selections[index] = parent
	}

	created, err := h.recipes.CommitImport(r.Context(), inbound.CommitImportCommand{
		UserID:     userID,
		Candidates: req.Candidates,
		Selections: selections,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"recipes": created})
}

func userAndPath(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUser(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := pathID(r, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, id, nil
}
