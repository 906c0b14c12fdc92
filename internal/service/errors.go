package service

import "errors"

var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied means the actor lacks rights over the target.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrAuthRequired means an anonymous caller hit an authenticated-only
	// operation.
	ErrAuthRequired = errors.New("authentication required")
)

// ValidationError reports malformed or out-of-range input. The reason is
// surfaced verbatim to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ConflictError reports that current state already satisfies or contradicts
// the request, e.g. a duplicate marker or follow edge.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
