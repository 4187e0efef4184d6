package docstore

import (
	"errors"
	"fmt"
)

// Error kinds returned by the store and by the repositories built on it.
// Callers match them with errors.Is; the original cause stays in the chain.
var (
	// ErrValidation marks a missing or malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidID marks an identifier that does not match the store's id grammar.
	ErrInvalidID = errors.New("invalid id")
	// ErrNotFound marks a well-formed id that resolves to no document.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey marks a uniqueness violation.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrStorage marks an unreachable or failing backing medium. It is the only
	// kind a caller may reasonably retry.
	ErrStorage = errors.New("storage error")
)

// ValidationError describes which field of an input was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports ErrValidation so that errors.Is(err, ErrValidation) matches.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Required returns a ValidationError for a missing field.
func Required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// Kind returns a short label for the error class of err, used for metrics
// labels and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateKey):
		return "duplicate_key"
	default:
		return "storage"
	}
}
