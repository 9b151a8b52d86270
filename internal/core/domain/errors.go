package domain

import "errors"

var (
	ErrNotFound            = errors.New("car not found")
	ErrValidation          = errors.New("validation failed")
	ErrStoreUnavailable    = errors.New("record store unavailable")
	ErrUploadFailure       = errors.New("image upload failed")
	ErrNotAuthorized       = errors.New("administrator capability required")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrSubmissionFailed    = errors.New("failed to add car")
	ErrDeletionFailed      = errors.New("failed to delete car")
	ErrDeletionCancelled   = errors.New("deletion not confirmed")
)

// ValidationError reports a missing or malformed admin form field.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
