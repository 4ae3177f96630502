package handlers

import (
	"net/http"
	"strconv"

	"github.com/alchemorsel/cookbook/internal/domain/ingredient"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IngredientHandlers serves /api/ingredients
type IngredientHandlers struct {
	responder
	ingredients inbound.IngredientService
}

// NewIngredientHandlers creates the ingredient gallery handlers
func NewIngredientHandlers(ingredients inbound.IngredientService, validator *security.Validator, logger *zap.Logger) *IngredientHandlers {
	return &IngredientHandlers{
		responder:   responder{validator: validator, logger: logger.Named("ingredient-api")},
		ingredients: ingredients,
	}
}

// Routes mounts the ingredient routes
func (h *IngredientHandlers) Routes(r chi.Router) {
	r.Get("/", h.ListIngredients)
	r.Post("/", h.CreateIngredient)
	r.Patch("/{id}", h.UpdateIngredient)
	r.Post("/{id}/enrich-usda", h.EnrichFromUSDA)
}

// ListIngredients handles GET /api/ingredients
func (h *IngredientHandlers) ListIngredients(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.ingredients.ListIngredients(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"ingredients": list})
}

type createIngredientRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	DisplayName string `json:"displayName" validate:"max=200"`
}

// CreateIngredient handles POST /api/ingredients; an existing name answers 200
func (h *IngredientHandlers) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	var req createIngredientRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	dto, created, err := h.ingredients.CreateIngredient(r.Context(), req.Name, req.DisplayName)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, dto)
}

type updateIngredientRequest struct {
	DisplayName optional[string]               `json:"displayName"`
	ImageURL    optional[string]               `json:"imageUrl"`
	Nutrition   optional[inbound.NutritionDTO] `json:"nutrition"`
}

func (req updateIngredientRequest) patch() ingredient.Patch {
	p := ingredient.Patch{
		DisplayName: req.DisplayName.ptr(),
		ImageURL:    req.ImageURL.ptr(),
	}
	if req.ImageURL.Null {
		empty := ""
		p.ImageURL = &empty
	}
	if req.Nutrition.Set {
		n := req.Nutrition.Value.ToDomain()
		p.Nutrition = &n
	}
	return p
}

// UpdateIngredient handles PATCH /api/ingredients/{id}
func (h *IngredientHandlers) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateIngredientRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.ingredients.UpdateIngredient(r.Context(), id, req.patch())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// EnrichFromUSDA handles POST /api/ingredients/{id}/enrich-usda[?refresh=true]
func (h *IngredientHandlers) EnrichFromUSDA(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	refresh := false
	if raw := r.URL.Query().Get("refresh"); raw != "" {
		if refresh, err = strconv.ParseBool(raw); err != nil {
			h.writeError(w, r, errors.NewValidationError("refresh must be a boolean"))
			return
		}
	}

	enriched, err := h.ingredients.EnrichFromUSDA(r.Context(), id, refresh)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, enriched)
}
