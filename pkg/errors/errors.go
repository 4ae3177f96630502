// Package errors defines the application error type returned by services
// and its mapping onto HTTP statuses and the JSON error envelope
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"
)

// AppError is a service failure with a stable code. Details and Metadata
// reach the client only for 4xx codes.
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Details != "" {
		fmt.Fprintf(&b, " (%s)", e.Details)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for the error code
func (e *AppError) StatusCode() int {
	return HTTPStatus(e.Code)
}

// IsServerError reports whether the error maps to a 5xx status
func (e *AppError) IsServerError() bool {
	return e.StatusCode() >= http.StatusInternalServerError
}

// WithMetadata sets key in the error metadata and returns e
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// WithCause records the underlying failure and returns e
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates an error with an explicit code
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError reports invalid input; details names what was wrong
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return NewAppError(CodeUnauthorized, message, "")
}

// NewNotFoundError builds "<Resource> not found", e.g. "Planned meal not found"
func NewNotFoundError(resource string) *AppError {
	if resource == "" {
		return NewAppError(CodeNotFound, "Resource not found", "")
	}
	first, size := utf8.DecodeRuneInString(resource)
	return NewAppError(CodeNotFound, string(unicode.ToUpper(first))+resource[size:]+" not found", "")
}

func NewConflictError(message string) *AppError {
	return NewAppError(CodeConflict, message, "")
}

func NewTooManyRequestsError() *AppError {
	return NewAppError(CodeTooManyRequests, "Rate limit exceeded", "")
}

func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewDatabaseError wraps a store failure; operation reads like "list items"
func NewDatabaseError(operation string, cause error) *AppError {
	return NewAppError(CodeDatabaseError, "Database operation failed", "Failed to "+operation).WithCause(cause)
}

// NewExternalServiceError wraps a failed call to service, e.g. "USDA API"
func NewExternalServiceError(service string, cause error) *AppError {
	return NewAppError(CodeExternalServiceError, "External service error",
		"Failed to communicate with "+service).WithCause(cause)
}

// NewServiceUnavailableError reports a dependency that is not configured
func NewServiceUnavailableError(service string) *AppError {
	return NewAppError(CodeServiceUnavailable, "Service unavailable", service+" is not configured").
		WithMetadata("service", service)
}

func NewRecipeNotFoundError(recipeID string) *AppError {
	return NewAppError(CodeRecipeNotFound, "Recipe not found", "No recipe with ID "+recipeID).
		WithMetadata("recipe_id", recipeID)
}

func NewIngredientNotFoundError(ingredientID string) *AppError {
	return NewAppError(CodeIngredientNotFound, "Ingredient not found", "No ingredient with ID "+ingredientID).
		WithMetadata("ingredient_id", ingredientID)
}

// Wrap returns the AppError found in err's chain, or an internal error
// carrying message and err as its cause. A nil err stays nil.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// As extracts an AppError from an error chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// Is reports whether err carries an AppError with code
func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// GetCode returns the code of the AppError in err's chain, CodeInternal
// when there is none
func GetCode(err error) ErrorCode {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}
