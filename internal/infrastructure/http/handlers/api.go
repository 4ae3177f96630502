// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/pkg/errors"
	"github.com/alchemorsel/cookbook/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// responder holds what every handler group needs to read requests and
// write responses
type responder struct {
	validator *security.Validator
	logger    *zap.Logger
}

// writeJSON writes a JSON response
func (h responder) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError maps err onto the error envelope. Server errors are logged with
// their cause and only expose the generic message.
func (h responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.Wrap(err, "Internal server error")
	requestID := chimiddleware.GetReqID(r.Context())

	if appErr.IsServerError() {
		logger.FromContext(r.Context(), h.logger).Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.Error(appErr.Cause),
		)
	}
	h.writeJSON(w, appErr.StatusCode(), errors.ToErrorResponse(appErr, requestID))
}

// decode reads a JSON body into the struct dst and validates it
func (h responder) decode(r *http.Request, dst interface{}) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	if h.validator != nil {
		return h.validator.Struct(dst)
	}
	return nil
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.NewBadRequestError("Request body too large")
		case stderrors.Is(err, io.EOF):
			return errors.NewBadRequestError("Request body is required")
		default:
			return errors.NewBadRequestError("Invalid JSON body").WithCause(err)
		}
	}
	return nil
}

// decodeRaw reads a loose JSON object
func (h responder) decodeRaw(r *http.Request) (map[string]any, error) {
	var raw map[string]any
	if err := decodeJSON(r, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.NewBadRequestError("Request body must be a JSON object")
	}
	return raw, nil
}

func currentUser(r *http.Request) (uuid.UUID, error) {
	userID, ok := security.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, errors.NewUnauthorizedError("")
	}
	return userID, nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errors.NewValidationError(name + " must be a valid id")
	}
	return id, nil
}

func queryID(r *http.Request, name string) (*uuid.UUID, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, errors.NewValidationError(name + " must be a valid id")
	}
	return &id, nil
}

// queryList splits repeated and comma separated values
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, value := range r.URL.Query()[name] {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

type deletedResponse struct {
	Deleted bool `json:"deleted"`
}
