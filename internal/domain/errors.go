package domain

import "errors"

// Domain errors returned by the engine, services, and repository implementations.

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrTemplateNotFound indicates the recurring template does not exist.
	ErrTemplateNotFound = errors.New("recurring template not found")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")

	// ErrVersionConflict indicates a concurrent modification was detected.
	// Returned when an etag does not match or a schedule was already advanced by another runner.
	ErrVersionConflict = errors.New("version conflict")
)

// Validation errors.
var (
	ErrInvalidFrequency       = errors.New("invalid frequency")
	ErrInvalidTargetDay       = errors.New("original target day must be between 1 and 31")
	ErrInvalidTimeOfDay       = errors.New("original time of day must be within one day")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrDescriptionTooLong     = errors.New("description must be 255 characters or less")
	ErrAccountRequired        = errors.New("account is required")
	ErrStartDateRequired      = errors.New("start date is required")
	ErrInvalidEndDate         = errors.New("invalid end date")
	ErrInvalidMaxOccurrences  = errors.New("max occurrences must be greater than zero")
	ErrInvalidTimezone        = errors.New("invalid timezone")
	ErrInvalidHorizon         = errors.New("horizon must be between 1 and 120 months")
	ErrEmptyUpdateMask        = errors.New("update mask cannot be empty")
	ErrImmutableField         = errors.New("field cannot be updated")
	ErrUnknownUpdateMaskField = errors.New("unknown field in update mask")
)
