package handlers

import (
	"net/http"

	"github.com/alchemorsel/cookbook/internal/domain/planner"
	"github.com/alchemorsel/cookbook/internal/domain/shared"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlannerHandlers serves /api/meal-planner
type PlannerHandlers struct {
	responder
	planner inbound.PlannerService
}

// NewPlannerHandlers creates the meal planner handlers
func NewPlannerHandlers(planner inbound.PlannerService, validator *security.Validator, logger *zap.Logger) *PlannerHandlers {
	return &PlannerHandlers{
		responder: responder{validator: validator, logger: logger.Named("planner-api")},
		planner:   planner,
	}
}

// Routes mounts the meal planner routes
func (h *PlannerHandlers) Routes(r chi.Router) {
	r.Get("/calendar", h.GetCalendar)
	r.Post("/planned-meals", h.CreatePlannedMeal)
	r.Patch("/planned-meals/{id}", h.UpdatePlannedMeal)
	r.Delete("/planned-meals/{id}", h.DeletePlannedMeal)
}

// GetCalendar handles GET /api/meal-planner/calendar
func (h *PlannerHandlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	if q.Get("from") == "" || q.Get("to") == "" {
		h.writeError(w, r, errors.NewValidationError("from and to are required"))
		return
	}
	from, err := shared.ParseDay(q.Get("from"))
	if err != nil {
		h.writeError(w, r, errors.NewValidationError("from must be a date (YYYY-MM-DD)"))
		return
	}
	to, err := shared.ParseDay(q.Get("to"))
	if err != nil {
		h.writeError(w, r, errors.NewValidationError("to must be a date (YYYY-MM-DD)"))
		return
	}

	calendar, err := h.planner.GetCalendar(r.Context(), userID, from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, calendar)
}

type createPlannedMealRequest struct {
	Date        string  `json:"date" validate:"required"`
	Slot        string  `json:"slot" validate:"required,meal_slot"`
	RecipeID    *string `json:"recipeId" validate:"omitempty,uuid"`
	RecipeTitle string  `json:"recipeTitle" validate:"max=200"`
	Comment     string  `json:"comment" validate:"max=2000"`
}

// CreatePlannedMeal handles POST /api/meal-planner/planned-meals
func (h *PlannerHandlers) CreatePlannedMeal(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req createPlannedMealRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	date, err := shared.ParseDay(req.Date)
	if err != nil {
		h.writeError(w, r, errors.NewValidationError("date must be a date (YYYY-MM-DD)"))
		return
	}
	slot, _ := planner.ParseSlot(req.Slot)

	cmd := inbound.CreatePlannedMealCommand{
		UserID:      userID,
		Date:        date,
		Slot:        slot,
		RecipeTitle: req.RecipeTitle,
		Comment:     req.Comment,
	}
	if req.RecipeID != nil {
		id := uuid.MustParse(*req.RecipeID)
		cmd.RecipeID = &id
	}

	created, err := h.planner.CreatePlannedMeal(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

type updatePlannedMealRequest struct {
	Date        optional[string] `json:"date"`
	Slot        optional[string] `json:"slot"`
	RecipeID    optional[string] `json:"recipeId"`
	RecipeTitle optional[string] `json:"recipeTitle"`
	Comment     optional[string] `json:"comment"`
}

func (req updatePlannedMealRequest) patch() (planner.Patch, error) {
	var p planner.Patch
	if v := req.Date.ptr(); v != nil {
		date, err := shared.ParseDay(*v)
		if err != nil {
			return p, errors.NewValidationError("date must be a date (YYYY-MM-DD)")
		}
		p.Date = &date
	}
	if v := req.Slot.ptr(); v != nil {
		slot, err := planner.ParseSlot(*v)
		if err != nil {
			return p, errors.NewValidationError(err.Error())
		}
		p.Slot = &slot
	}
	if req.RecipeID.Set {
		if v := req.RecipeID.ptr(); v != nil && *v != "" {
			id, err := uuid.Parse(*v)
			if err != nil {
				return p, errors.NewValidationError("recipeId must be a valid id")
			}
			p.RecipeID = &id
		} else {
			p.ClearRecipe = true
		}
	}
	p.RecipeTitle = req.RecipeTitle.ptr()
	if req.RecipeTitle.Null {
		empty := ""
		p.RecipeTitle = &empty
	}
	p.Comment = req.Comment.ptr()
	if req.Comment.Null {
		empty := ""
		p.Comment = &empty
	}
	return p, nil
}

// UpdatePlannedMeal handles PATCH /api/meal-planner/planned-meals/{id}
func (h *PlannerHandlers) UpdatePlannedMeal(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updatePlannedMealRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.planner.UpdatePlannedMeal(r.Context(), inbound.UpdatePlannedMealCommand{
		UserID: userID,
		ID:     id,
		Patch:  patch,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// DeletePlannedMeal handles DELETE /api/meal-planner/planned-meals/{id}
func (h *PlannerHandlers) DeletePlannedMeal(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.planner.DeletePlannedMeal(r.Context(), userID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, deletedResponse{Deleted: true})
}
