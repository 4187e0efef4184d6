package docstore

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// NewID returns a fresh document identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is in the store's canonical form: a lower-case,
// hyphenated RFC 4122 UUID. uuid.Parse alone also accepts braces, urn
// prefixes and the 32-digit form, so the round trip is compared too.
func ValidID(id string) bool {
	if len(id) != 36 {
		return false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	return parsed.String() == id
}

func checkID(id string) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// checkName guards collection and field names, which end up in JSON paths.
func checkName(kind, name string) error {
	if !namePattern.MatchString(name) {
		return &ValidationError{Field: kind, Reason: fmt.Sprintf("%q is not a valid name", name)}
	}
	return nil
}
