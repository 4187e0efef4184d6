// Package db opens the backing medium of the document store and keeps an eye
// on its reachability.
package db

import (
	"database/sql"
	"fmt"

	"github.com/atinyakov/catalog/internal/docstore"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
    seq BIGSERIAL NOT NULL,
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    body JSONB NOT NULL,
    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS documents_collection_seq_idx ON documents (collection, seq);

CREATE UNIQUE INDEX IF NOT EXISTS documents_users_email_key
    ON documents ((body->>'email')) WHERE collection = 'users';
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    body TEXT NOT NULL,
    UNIQUE (collection, id)
);

CREATE UNIQUE INDEX IF NOT EXISTS documents_users_email_key
    ON documents (json_extract(body, '$.email')) WHERE collection = 'users';
`

// Init opens a connection pool for driver, verifies it and creates the
// documents table if needed.
func Init(driver, dsn string) (*sql.DB, error) {
	var schema string
	switch driver {
	case docstore.DriverPostgres:
		schema = postgresSchema
	case docstore.DriverSQLite:
		schema = sqliteSchema
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == docstore.DriverSQLite {
		// One writer at a time; a single connection also keeps ":memory:"
		// databases alive and shared across callers.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if driver == docstore.DriverSQLite {
		if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
