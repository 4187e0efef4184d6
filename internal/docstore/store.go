// Package docstore provides a generic document store over a SQL backing
// medium. Documents are JSON objects keyed by a UUID and partitioned into
// named collections; child arrays are grown with a single atomic UPDATE per
// append, never with an application-level read-modify-write.
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/catalog/internal/metrics"
)

// Store implements document operations against a *sql.DB. It is safe for
// concurrent use; the handle is shared process-wide and owned by the caller.
type Store struct {
	// DB is the shared database handle.
	DB      *sql.DB
	dialect dialect
}

// New creates a Store for db. driver selects the SQL dialect and must be
// DriverPostgres or DriverSQLite.
func New(db *sql.DB, driver string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db, dialect: d}, nil
}

// track starts timing an operation; the returned func records it with the
// final error.
func track(op, collection string) func(*error) {
	started := time.Now()
	return func(errp *error) {
		metrics.ObserveStoreOp(op, collection, Kind(*errp), started)
	}
}

// Insert assigns a fresh identifier to doc, persists it into collection and
// returns the identifier.
func (s *Store) Insert(ctx context.Context, collection string, doc any) (id string, err error) {
	id = NewID()
	if err := s.InsertWithID(ctx, collection, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

// InsertWithID persists doc into collection under the caller-chosen id.
// An existing document with the same id yields ErrDuplicateKey.
func (s *Store) InsertWithID(ctx context.Context, collection, id string, doc any) (err error) {
	defer track("insert", collection)(&err)
	if err := checkName("collection", collection); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	body, err := encodeObject(doc)
	if err != nil {
		return err
	}

	query, args := s.dialect.insert(collection, id, body)
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return classify(s.dialect, "insert", err)
	}
	return nil
}

// FindByID returns the document with id from collection. A malformed id is
// rejected with ErrInvalidID before the medium is queried.
func (s *Store) FindByID(ctx context.Context, collection, id string) (doc Document, err error) {
	defer track("find_by_id", collection)(&err)
	if err := checkName("collection", collection); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	query, args := s.dialect.findByID(collection, id)
	var raw []byte
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find %s/%s: %w", collection, id, ErrNotFound)
		}
		return nil, classify(s.dialect, "find", err)
	}
	return Document(raw), nil
}

// FindAll returns a snapshot of the documents in collection matching filter.
// A nil filter matches everything.
func (s *Store) FindAll(ctx context.Context, collection string, filter Filter) (docs []Document, err error) {
	defer track("find_all", collection)(&err)
	if err := checkName("collection", collection); err != nil {
		return nil, err
	}
	if err := filter.validate(); err != nil {
		return nil, err
	}

	query, args, err := s.dialect.findAll(collection, filter)
	if err != nil {
		return nil, &ValidationError{Field: "filter", Reason: err.Error()}
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(s.dialect, "find all", err)
	}
	defer rows.Close()

	docs = make([]Document, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, classify(s.dialect, "scan", err)
		}
		docs = append(docs, Document(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, classify(s.dialect, "rows", err)
	}
	return docs, nil
}

// AppendChild atomically appends child to the array stored at field on the
// document identified by parentID. A missing field is created. Concurrent
// appends to the same parent each contribute exactly one element; their
// relative order is unspecified.
func (s *Store) AppendChild(ctx context.Context, collection, parentID, field string, child any) (err error) {
	defer track("append_child", collection)(&err)
	if err := checkName("collection", collection); err != nil {
		return err
	}
	if err := checkName("field", field); err != nil {
		return err
	}
	if err := checkID(parentID); err != nil {
		return err
	}
	raw, err := encodeValue(child)
	if err != nil {
		return err
	}

	query, args := s.dialect.appendChild(collection, parentID, field, raw)
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(s.dialect, "append", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(s.dialect, "append", err)
	}
	if n == 0 {
		return fmt.Errorf("append to %s/%s: %w", collection, parentID, ErrNotFound)
	}
	return nil
}

// AppendChildStamped appends the JSON object child to the array at field,
// setting stampField on the stored element to the backing medium's clock at
// the moment of the append, and returns the stored element. Stamps therefore
// agree with append order even across server instances.
func (s *Store) AppendChildStamped(ctx context.Context, collection, parentID, field, stampField string, child any) (doc Document, err error) {
	defer track("append_child", collection)(&err)
	if err := checkName("collection", collection); err != nil {
		return nil, err
	}
	if err := checkName("field", field); err != nil {
		return nil, err
	}
	if err := checkName("field", stampField); err != nil {
		return nil, err
	}
	if err := checkID(parentID); err != nil {
		return nil, err
	}
	raw, err := encodeValue(child)
	if err != nil {
		return nil, err
	}
	if !isObject(raw) {
		return nil, &ValidationError{Field: "child", Reason: "must encode to a JSON object"}
	}

	query, args := s.dialect.appendStamped(collection, parentID, field, stampField, raw)
	var stored []byte
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("append to %s/%s: %w", collection, parentID, ErrNotFound)
		}
		return nil, classify(s.dialect, "append", err)
	}
	return Document(stored), nil
}

// Parent addresses the child array of one document.
type Parent struct {
	Collection string
	ID         string
	Field      string
}

// InsertWithParent stores doc under id in collection and appends child to
// the parent's array in one transaction: either both writes become visible
// or neither does. A missing parent yields ErrNotFound and nothing is
// written.
func (s *Store) InsertWithParent(ctx context.Context, collection, id string, doc any, parent Parent, child any) (err error) {
	defer track("insert_with_parent", collection)(&err)
	for _, n := range []struct{ kind, name string }{
		{"collection", collection},
		{"collection", parent.Collection},
		{"field", parent.Field},
	} {
		if err := checkName(n.kind, n.name); err != nil {
			return err
		}
	}
	if err := checkID(id); err != nil {
		return err
	}
	if err := checkID(parent.ID); err != nil {
		return err
	}
	body, err := encodeObject(doc)
	if err != nil {
		return err
	}
	rawChild, err := encodeValue(child)
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return classify(s.dialect, "begin", err)
	}
	rollback := func(e error) error {
		_ = tx.Rollback()
		return e
	}

	query, args := s.dialect.appendChild(parent.Collection, parent.ID, parent.Field, rawChild)
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return rollback(classify(s.dialect, "append", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return rollback(classify(s.dialect, "append", err))
	}
	if n == 0 {
		return rollback(fmt.Errorf("append to %s/%s: %w", parent.Collection, parent.ID, ErrNotFound))
	}

	query, args = s.dialect.insert(collection, id, body)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return rollback(classify(s.dialect, "insert", err))
	}
	if err := tx.Commit(); err != nil {
		return classify(s.dialect, "commit", err)
	}
	return nil
}

// Children returns the JSON array stored at field on the document, or an
// empty array when the field is absent.
func (s *Store) Children(ctx context.Context, collection, parentID, field string) (doc Document, err error) {
	defer track("children", collection)(&err)
	if err := checkName("collection", collection); err != nil {
		return nil, err
	}
	if err := checkName("field", field); err != nil {
		return nil, err
	}
	if err := checkID(parentID); err != nil {
		return nil, err
	}

	query, args := s.dialect.children(collection, parentID, field)
	var raw []byte
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("children of %s/%s: %w", collection, parentID, ErrNotFound)
		}
		return nil, classify(s.dialect, "children", err)
	}
	return Document(raw), nil
}

// ChildCount returns the length of the array stored at field without
// transferring its elements.
func (s *Store) ChildCount(ctx context.Context, collection, parentID, field string) (n int, err error) {
	defer track("child_count", collection)(&err)
	if err := checkName("collection", collection); err != nil {
		return 0, err
	}
	if err := checkName("field", field); err != nil {
		return 0, err
	}
	if err := checkID(parentID); err != nil {
		return 0, err
	}

	query, args := s.dialect.childCount(collection, parentID, field)
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("count children of %s/%s: %w", collection, parentID, ErrNotFound)
		}
		return 0, classify(s.dialect, "count", err)
	}
	return n, nil
}

// Ping checks that the backing medium is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", ErrStorage, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}
