package docstore

import (
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// sqliteDialect stores bodies as TEXT and relies on the JSON1 functions.
type sqliteDialect struct{}

func jsonPath(field string) string {
	return "$." + field
}

func (sqliteDialect) insert(collection, id string, body []byte) (string, []any) {
	return `INSERT INTO documents (collection, id, body) VALUES (?, ?, json(?))`,
		[]any{collection, id, string(body)}
}

func (sqliteDialect) findByID(collection, id string) (string, []any) {
	return `SELECT json_set(body, '$.id', id) FROM documents WHERE collection = ? AND id = ?`,
		[]any{collection, id}
}

func (sqliteDialect) findAll(collection string, filter Filter) (string, []any, error) {
	var b strings.Builder
	b.WriteString(`SELECT json_set(body, '$.id', id) FROM documents WHERE collection = ?`)
	args := []any{collection}
	for _, k := range filter.keys() {
		b.WriteString(` AND json_extract(body, ?) = ?`)
		v := filter[k]
		// json_extract yields 1/0 for JSON booleans.
		if bv, ok := v.(bool); ok {
			v = 0
			if bv {
				v = 1
			}
		}
		args = append(args, jsonPath(k), v)
	}
	b.WriteString(` ORDER BY seq`)
	return b.String(), args, nil
}

func (sqliteDialect) appendChild(collection, id, field string, child []byte) (string, []any) {
	path := jsonPath(field)
	return `UPDATE documents SET body = json_set(
			body,
			?,
			json_insert(
				CASE WHEN json_type(body, ?) = 'array' THEN json_extract(body, ?) ELSE '[]' END,
				'$[#]',
				json(?)))
		WHERE collection = ? AND id = ?`,
		[]any{path, path, path, string(child), collection, id}
}

// sqliteNow is the statement time as an RFC 3339 UTC string with
// millisecond precision. Writers are serialized, so it is non-decreasing in
// append order.
const sqliteNow = `strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`

func (sqliteDialect) appendStamped(collection, id, field, stampField string, child []byte) (string, []any) {
	path := jsonPath(field)
	return `UPDATE documents SET body = json_set(
			body,
			?,
			json_insert(
				CASE WHEN json_type(body, ?) = 'array' THEN json_extract(body, ?) ELSE '[]' END,
				'$[#]',
				json_set(json(?), ?, ` + sqliteNow + `)))
		WHERE collection = ? AND id = ?
		RETURNING json_extract(body, ?)`,
		[]any{path, path, path, string(child), jsonPath(stampField), collection, id, path + "[#-1]"}
}

func (sqliteDialect) children(collection, id, field string) (string, []any) {
	path := jsonPath(field)
	return `SELECT CASE WHEN json_type(body, ?) = 'array' THEN json_extract(body, ?) ELSE '[]' END
		FROM documents WHERE collection = ? AND id = ?`,
		[]any{path, path, collection, id}
}

func (sqliteDialect) childCount(collection, id, field string) (string, []any) {
	path := jsonPath(field)
	return `SELECT CASE WHEN json_type(body, ?) = 'array' THEN json_array_length(body, ?) ELSE 0 END
		FROM documents WHERE collection = ? AND id = ?`,
		[]any{path, path, collection, id}
}

func (sqliteDialect) isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
