package errors

import "net/http"

// ErrorCode is the machine readable code sent in the error envelope
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	CodeRecipeNotFound     ErrorCode = "RECIPE_NOT_FOUND"
	CodeIngredientNotFound ErrorCode = "INGREDIENT_NOT_FOUND"
)

// Codes missing from this table answer 500.
var statusByCode = map[ErrorCode]int{
	CodeBadRequest:         http.StatusBadRequest,
	CodeValidationFailed:   http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeRecipeNotFound:     http.StatusNotFound,
	CodeIngredientNotFound: http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeTooManyRequests:    http.StatusTooManyRequests,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
}

// HTTPStatus returns the response status for code
func HTTPStatus(code ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
