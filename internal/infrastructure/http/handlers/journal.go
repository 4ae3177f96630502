package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/journal"
	"github.com/alchemorsel/cookbook/internal/domain/shared"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JournalHandlers serves /api/journal
type JournalHandlers struct {
	responder
	journal inbound.JournalService
}

// NewJournalHandlers creates the journal handlers
func NewJournalHandlers(journal inbound.JournalService, validator *security.Validator, logger *zap.Logger) *JournalHandlers {
	return &JournalHandlers{
		responder: responder{validator: validator, logger: logger.Named("journal-api")},
		journal:   journal,
	}
}

// Routes mounts the journal routes
func (h *JournalHandlers) Routes(r chi.Router) {
	r.Get("/", h.ListRealizations)
	r.Post("/", h.CreateRealization)
	r.Delete("/{id}", h.DeleteRealization)
}

// ListRealizations handles GET /api/journal
func (h *JournalHandlers) ListRealizations(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := journal.Query{UserID: userID}
	if q.RecipeID, err = queryID(r, "recipeId"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if q.From, err = queryInstant(r, "fromDate", false); err != nil {
		h.writeError(w, r, err)
		return
	}
	if q.To, err = queryInstant(r, "toDate", true); err != nil {
		h.writeError(w, r, err)
		return
	}
	if q.Sort, err = journal.ParseSortOrder(r.URL.Query().Get("sort")); err != nil {
		h.writeError(w, r, errors.NewValidationError(err.Error()))
		return
	}

	entries, err := h.journal.ListRealizations(r.Context(), q)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"realizations": entries})
}

// queryInstant parses a bound of a range. A bare day used as an upper bound
// covers the whole day.
func queryInstant(r *http.Request, name string, upper bool) (*time.Time, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return nil, nil
	}
	t, err := shared.ParseInstant(value)
	if err != nil {
		return nil, errors.NewValidationError(name + " must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
	}
	if upper && len(value) == len(shared.DateLayout) {
		t = shared.EndOfDay(t)
	}
	return &t, nil
}

type createRealizationRequest struct {
	RecipeID   string `json:"recipeId" validate:"required,uuid"`
	RealizedAt string `json:"realizedAt"`
	Comment    string `json:"comment" validate:"max=2000"`
}

// CreateRealization handles POST /api/journal
func (h *JournalHandlers) CreateRealization(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req createRealizationRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	cmd := inbound.CreateRealizationCommand{
		UserID:   userID,
		RecipeID: uuid.MustParse(req.RecipeID),
		Comment:  req.Comment,
	}
	if req.RealizedAt != "" {
		realizedAt, err := shared.ParseInstant(req.RealizedAt)
		if err != nil {
			h.writeError(w, r, errors.NewValidationError("realizedAt must be an RFC 3339 timestamp"))
			return
		}
		cmd.RealizedAt = &realizedAt
	}

	created, err := h.journal.CreateRealization(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// DeleteRealization handles DELETE /api/journal/{id}
func (h *JournalHandlers) DeleteRealization(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.journal.DeleteRealization(r.Context(), userID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, deletedResponse{Deleted: true})
}
