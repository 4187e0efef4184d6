package docstore

import (
	"encoding/json"
	"errors"

	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// postgresDialect stores bodies as JSONB.
type postgresDialect struct{}

func (postgresDialect) insert(collection, id string, body []byte) (string, []any) {
	return `INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb)`,
		[]any{collection, id, string(body)}
}

func (postgresDialect) findByID(collection, id string) (string, []any) {
	return `SELECT body || jsonb_build_object('id', id) FROM documents WHERE collection = $1 AND id = $2`,
		[]any{collection, id}
}

// findAll matches the filter by JSONB containment, which for scalar values
// is field equality.
func (postgresDialect) findAll(collection string, filter Filter) (string, []any, error) {
	match := []byte("{}")
	if len(filter) > 0 {
		var err error
		if match, err = json.Marshal(filter); err != nil {
			return "", nil, err
		}
	}
	return `SELECT body || jsonb_build_object('id', id) FROM documents
		WHERE collection = $1 AND body @> $2::jsonb ORDER BY seq`,
		[]any{collection, string(match)}, nil
}

func (postgresDialect) appendChild(collection, id, field string, child []byte) (string, []any) {
	return `UPDATE documents SET body = jsonb_set(
			body,
			ARRAY[$3::text],
			CASE WHEN jsonb_typeof(body->$3::text) = 'array' THEN body->$3::text ELSE '[]'::jsonb END
				|| jsonb_build_array($4::jsonb),
			true)
		WHERE collection = $1 AND id = $2`,
		[]any{collection, id, field, string(child)}
}

// pgNow renders clock_timestamp() as an RFC 3339 UTC string. Unlike now(),
// it is evaluated when the row is written, after any wait for its lock.
const pgNow = `to_jsonb(to_char(clock_timestamp() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"'))`

func (postgresDialect) appendStamped(collection, id, field, stampField string, child []byte) (string, []any) {
	return `UPDATE documents SET body = jsonb_set(
			body,
			ARRAY[$3::text],
			CASE WHEN jsonb_typeof(body->$3::text) = 'array' THEN body->$3::text ELSE '[]'::jsonb END
				|| jsonb_build_array(jsonb_set($4::jsonb, ARRAY[$5::text], ` + pgNow + `, true)),
			true)
		WHERE collection = $1 AND id = $2
		RETURNING (body->$3::text)->(-1)`,
		[]any{collection, id, field, string(child), stampField}
}

func (postgresDialect) children(collection, id, field string) (string, []any) {
	return `SELECT CASE WHEN jsonb_typeof(body->$3::text) = 'array' THEN body->$3::text ELSE '[]'::jsonb END
		FROM documents WHERE collection = $1 AND id = $2`,
		[]any{collection, id, field}
}

func (postgresDialect) childCount(collection, id, field string) (string, []any) {
	return `SELECT CASE WHEN jsonb_typeof(body->$3::text) = 'array' THEN jsonb_array_length(body->$3::text) ELSE 0 END
		FROM documents WHERE collection = $1 AND id = $2`,
		[]any{collection, id, field}
}

func (postgresDialect) isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
