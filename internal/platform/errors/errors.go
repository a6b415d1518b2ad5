package apperrors

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidState      = errors.New("invalid state")
	ErrUpload            = errors.New("upload error")
	ErrStore             = errors.New("store error")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNoActiveBatch     = errors.New("no active batch")
	ErrInvariantViolated = errors.New("invariant violated")
)

// Classify reports the most specific sentinel err carries, or nil.
func Classify(err error) error {
	for _, sentinel := range []error{
		ErrValidation,
		ErrInvalidState,
		ErrNoActiveBatch,
		ErrForbidden,
		ErrNotFound,
		ErrUpload,
		ErrInvariantViolated,
		ErrStore,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}
