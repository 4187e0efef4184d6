package docstore

import (
	"fmt"
)

// Driver names accepted by New. They match the database/sql driver names
// registered by lib/pq and modernc.org/sqlite.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// dialect renders the store's fixed access patterns for one backing medium.
// Each append is a single UPDATE using the medium's native JSON array
// append, so concurrent appends to one parent serialize on the row.
type dialect interface {
	insert(collection, id string, body []byte) (string, []any)
	findByID(collection, id string) (string, []any)
	findAll(collection string, filter Filter) (string, []any, error)
	appendChild(collection, id, field string, child []byte) (string, []any)
	// appendStamped appends child with stampField set to the medium's clock
	// and returns the stored element. The clock is read while the parent row
	// is locked, so stamps follow append order.
	appendStamped(collection, id, field, stampField string, child []byte) (string, []any)
	children(collection, id, field string) (string, []any)
	childCount(collection, id, field string) (string, []any)
	// isUniqueViolation reports whether err is the medium's unique-constraint failure.
	isUniqueViolation(err error) bool
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverPostgres:
		return postgresDialect{}, nil
	case DriverSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// classify maps a medium error onto the store's error kinds.
func classify(d dialect, op string, err error) error {
	if d.isUniqueViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicateKey, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
