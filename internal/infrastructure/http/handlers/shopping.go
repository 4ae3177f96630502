package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alchemorsel/cookbook/internal/domain/shopping"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShoppingHandlers serves /api/shopping-list
type ShoppingHandlers struct {
	responder
	shopping inbound.ShoppingService
}

// NewShoppingHandlers creates the shopping list handlers
func NewShoppingHandlers(shopping inbound.ShoppingService, validator *security.Validator, logger *zap.Logger) *ShoppingHandlers {
	return &ShoppingHandlers{
		responder: responder{validator: validator, logger: logger.Named("shopping-api")},
		shopping:  shopping,
	}
}

// Routes mounts the shopping list routes
func (h *ShoppingHandlers) Routes(r chi.Router) {
	r.Get("/", h.ListItems)
	r.Post("/", h.AddItems)
	r.Patch("/{id}", h.UpdateItem)
	r.Delete("/{id}", h.DeleteItem)
}

// ListItems handles GET /api/shopping-list. Expired items are removed first.
func (h *ShoppingHandlers) ListItems(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var bought *bool
	if value := r.URL.Query().Get("bought"); value != "" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			h.writeError(w, r, errors.NewValidationError("bought must be a boolean"))
			return
		}
		bought = &b
	}

	items, err := h.shopping.ListItems(r.Context(), userID, bought)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

type shoppingItemRequest struct {
	Name                string   `json:"name" validate:"required,max=200"`
	Quantity            *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit                string   `json:"unit" validate:"max=50"`
	SourceRealizationID *string  `json:"sourceRealizationId" validate:"omitempty,uuid"`
}

func (req shoppingItemRequest) command() inbound.CreateShoppingItemCommand {
	cmd := inbound.CreateShoppingItemCommand{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	}
	if req.SourceRealizationID != nil {
		id := uuid.MustParse(*req.SourceRealizationID)
		cmd.SourceRealizationID = &id
	}
	return cmd
}

type shoppingBatchRequest struct {
	Items []shoppingItemRequest `json:"items" validate:"required,min=1,dive"`
}

// AddItems handles POST /api/shopping-list with either one item or {items:[...]}
func (h *ShoppingHandlers) AddItems(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var body map[string]json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		h.writeError(w, r, err)
		return
	}
	raw, err := json.Marshal(body)
	if err != nil {
		h.writeError(w, r, errors.NewBadRequestError("Invalid JSON body"))
		return
	}

	if _, batch := body["items"]; batch {
		var req shoppingBatchRequest
		if err := h.unmarshal(raw, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
		cmds := make([]inbound.CreateShoppingItemCommand, 0, len(req.Items))
		for _, item := range req.Items {
			cmds = append(cmds, item.command())
		}

		created, err := h.shopping.AddItems(r.Context(), userID, cmds)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusCreated, map[string]interface{}{"items": created})
		return
	}

	var req shoppingItemRequest
	if err := h.unmarshal(raw, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.shopping.AddItems(r.Context(), userID, []inbound.CreateShoppingItemCommand{req.command()})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created[0])
}

func (h *ShoppingHandlers) unmarshal(raw []byte, dst interface{}) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.NewBadRequestError("Invalid JSON body").WithCause(err)
	}
	return h.validator.Struct(dst)
}

type updateShoppingItemRequest struct {
	Name     optional[string]  `json:"name"`
	Quantity optional[float64] `json:"quantity"`
	Unit     optional[string]  `json:"unit"`
	Bought   optional[bool]    `json:"bought"`
}

func (req updateShoppingItemRequest) patch() shopping.Patch {
	p := shopping.Patch{
		Name:          req.Name.ptr(),
		Quantity:      req.Quantity.ptr(),
		ClearQuantity: req.Quantity.Null,
		Unit:          req.Unit.ptr(),
		Bought:        req.Bought.ptr(),
	}
	if req.Unit.Null {
		empty := ""
		p.Unit = &empty
	}
	return p
}

// UpdateItem handles PATCH /api/shopping-list/{id}
func (h *ShoppingHandlers) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateShoppingItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.shopping.UpdateItem(r.Context(), inbound.UpdateShoppingItemCommand{
		UserID: userID,
		ID:     id,
		Patch:  req.patch(),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// DeleteItem handles DELETE /api/shopping-list/{id}
func (h *ShoppingHandlers) DeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, id, err := userAndPath(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.shopping.DeleteItem(r.Context(), userID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, deletedResponse{Deleted: true})
}
