package errors

import (
	"strings"
	"time"
)

// ValidationError describes one rejected request field
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationErrors joins field messages with "; "
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(v))
	for i, fe := range v {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// NewValidationErrors turns field errors into a VALIDATION_FAILED error
// listing them under the validation_errors metadata key
func NewValidationErrors(fields []ValidationError) *AppError {
	errs := ValidationErrors(fields)
	return NewValidationError(errs.Error()).WithMetadata("validation_errors", errs)
}

// ErrorResponse is the JSON envelope of every failed API call
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse builds the envelope for err. Server-side failures only
// expose the code and the generic message, except SERVICE_UNAVAILABLE which
// names the missing dependency.
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	details := ErrorDetails{
		Code:      err.Code,
		Message:   err.Message,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if !err.IsServerError() || err.Code == CodeServiceUnavailable {
		details.Details = err.Details
		details.Metadata = err.Metadata
	}
	return ErrorResponse{Error: details}
}
