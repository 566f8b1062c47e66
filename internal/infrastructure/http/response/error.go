package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/ledger/internal/application/ledger"
	"github.com/rezkam/ledger/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, field, issue string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: []ErrorField{
				{Field: field, Issue: issue},
			},
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, "CONFLICT", message, http.StatusConflict)
}

// InternalError sends a 500 Internal Server Error.
// The error is logged with request context; the client only sees a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "Internal server error", "error", err)
	}

	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: []ErrorField{},
		},
	})
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Validation errors (400)
	case errors.Is(err, domain.ErrInvalidFrequency):
		ValidationError(w, "frequency", "must be one of daily, weekly, monthly, yearly")
	case errors.Is(err, domain.ErrInvalidTransactionType):
		ValidationError(w, "type", "must be income or expense")
	case errors.Is(err, domain.ErrInvalidAmount):
		ValidationError(w, "amount", "must be a decimal greater than zero")
	case errors.Is(err, domain.ErrDescriptionRequired):
		ValidationError(w, "description", "required field missing")
	case errors.Is(err, domain.ErrDescriptionTooLong):
		ValidationError(w, "description", "must be 255 characters or less")
	case errors.Is(err, domain.ErrAccountRequired):
		ValidationError(w, "account", "required field missing")
	case errors.Is(err, domain.ErrStartDateRequired):
		ValidationError(w, "start_date", "required field missing")
	case errors.Is(err, domain.ErrInvalidEndDate):
		ValidationError(w, "end_date", "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	case errors.Is(err, domain.ErrInvalidMaxOccurrences):
		ValidationError(w, "max_occurrences", "must be greater than zero")
	case errors.Is(err, domain.ErrInvalidTimezone):
		ValidationError(w, "timezone", "unknown IANA timezone")
	case errors.Is(err, domain.ErrInvalidTargetDay):
		ValidationError(w, "original_target_day", "must be between 1 and 31")
	case errors.Is(err, domain.ErrInvalidTimeOfDay):
		ValidationError(w, "original_time_of_day", "must be within one day")
	case errors.Is(err, domain.ErrInvalidHorizon):
		ValidationError(w, "horizon_months", err.Error())
	case errors.Is(err, domain.ErrEmptyUpdateMask),
		errors.Is(err, domain.ErrImmutableField),
		errors.Is(err, domain.ErrUnknownUpdateMaskField):
		ValidationError(w, "update_mask", err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		ValidationError(w, "id", "invalid ID format")

	// Not found errors (404)
	case errors.Is(err, domain.ErrTemplateNotFound):
		NotFound(w, "recurring template")
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "resource")

	// Concurrency errors (409)
	case errors.Is(err, domain.ErrVersionConflict):
		Conflict(w, err.Error())

	case errors.Is(err, ledger.ErrExportsDisabled):
		Error(w, "EXPORTS_DISABLED", err.Error(), http.StatusNotImplemented)

	// Unknown errors (500) - Log server-side, return generic message to client
	default:
		InternalError(w, r, err)
	}
}
