package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
)

// Store is a docstore.Store keeping every collection in the JSONB `documents` table.
// Each write is a single statement, so array primitives are atomic without explicit locking.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ docstore.Store = (*Store)(nil)

const columns = "id, data, created_at, updated_at"

// arrayOf is the array field $3 of the row, or an empty array.
const arrayOf = `(CASE WHEN jsonb_typeof(data -> $3::text) = 'array' THEN data -> $3::text ELSE '[]'::jsonb END)`

type row struct {
	ID        string    `db:"id"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r row) document() docstore.Document {
	return docstore.Document{
		ID:        r.ID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		Data:      json.RawMessage(r.Data),
	}
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func checkCollection(coll string) error {
	if !docstore.IsValidCollection(coll) {
		return errors.Wrapf(core.ErrInvalidArgument, "unknown collection %q", coll)
	}
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().Truncate(time.Microsecond)
}

func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(core.ErrInvalidArgument, err.Error())
	}
	return string(b), nil
}

// one runs a statement returning a single document row.
func (s *Store) one(ctx context.Context, query string, args ...interface{}) (docstore.Document, error) {
	var r row
	if err := s.db.GetContext(ctx, &r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, errors.Wrap(err, "querying document")
	}
	return r.document(), nil
}

func (s *Store) Get(ctx context.Context, coll, id string) (docstore.Document, error) {
	if err := checkCollection(coll); err != nil {
		return docstore.Document{}, err
	}
	return s.one(ctx, "SELECT "+columns+" FROM documents WHERE collection = $1 AND id = $2", coll, id)
}

// buildQuery returns the SELECT statement of q over coll with its arguments.
func buildQuery(coll string, q docstore.Query) (string, []interface{}, error) {
	args := []interface{}{coll}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds := []string{"collection = $1"}
	for _, f := range q.Filters {
		switch f.Op {
		case docstore.OpEq:
			v, err := encodeJSON(f.Value)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, fmt.Sprintf("data -> %s::text = %s::jsonb", arg(f.Field), arg(v)))
		case docstore.OpIn:
			values, _ := f.Value.([]interface{})
			encoded := make([]string, 0, len(values))
			for _, value := range values {
				v, err := encodeJSON(value)
				if err != nil {
					return "", nil, err
				}
				encoded = append(encoded, v)
			}
			conds = append(conds, fmt.Sprintf("data -> %s::text = ANY(%s::jsonb[])", arg(f.Field), arg(pq.Array(encoded))))
		case docstore.OpArrayContains:
			v, err := encodeJSON([]interface{}{f.Value})
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, fmt.Sprintf("data -> %s::text @> %s::jsonb", arg(f.Field), arg(v)))
		default:
			return "", nil, errors.Wrapf(core.ErrInvalidArgument, "unknown filter op %d", f.Op)
		}
	}

	dir, cmp := "DESC", "<"
	if q.Ascending {
		dir, cmp = "ASC", ">"
	}
	if q.After != nil {
		conds = append(conds, fmt.Sprintf("(created_at, id) %s (%s, %s)", cmp, arg(q.After.CreatedAt), arg(q.After.ID)))
	}

	query := fmt.Sprintf("SELECT %s FROM documents WHERE %s ORDER BY created_at %s, id %s",
		columns, strings.Join(conds, " AND "), dir, dir)
	if q.Limit > 0 {
		query += " LIMIT " + arg(q.Limit)
	}
	return query, args, nil
}

func (s *Store) Query(ctx context.Context, coll string, q docstore.Query) ([]docstore.Document, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	query, args, err := buildQuery(coll, q)
	if err != nil {
		return nil, err
	}

	var rows []row
	if err = s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}
	docs := make([]docstore.Document, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r.document())
	}
	return docs, nil
}

func (s *Store) Create(ctx context.Context, coll string, doc docstore.Document) (docstore.Document, error) {
	if err := checkCollection(coll); err != nil {
		return docstore.Document{}, err
	}
	data := []byte(doc.Data)
	if len(data) == 0 {
		data = []byte("{}")
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return docstore.Document{}, errors.Wrap(core.ErrInvalidArgument, "document body must be a JSON object")
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := s.timestamp()
	createdAt := now
	if !doc.CreatedAt.IsZero() {
		createdAt = doc.CreatedAt.UTC().Truncate(time.Microsecond)
	}

	created, err := s.one(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5)
		ON CONFLICT (collection, id) DO NOTHING
		RETURNING `+columns,
		coll, doc.ID, string(data), createdAt, now,
	)
	if errors.Is(err, docstore.ErrNotFound) {
		return docstore.Document{}, docstore.ErrConflict
	}
	return created, err
}

// update runs `UPDATE documents SET data = <set>` on the document; $1 and $2 are the collection and id.
func (s *Store) update(ctx context.Context, coll, id, set string, args ...interface{}) (docstore.Document, error) {
	if err := checkCollection(coll); err != nil {
		return docstore.Document{}, err
	}
	args = append([]interface{}{coll, id}, args...)
	args = append(args, s.timestamp())
	query := fmt.Sprintf(`
		UPDATE documents SET data = %s, updated_at = $%d
		WHERE collection = $1 AND id = $2
		RETURNING %s`, set, len(args), columns)
	return s.one(ctx, query, args...)
}

func (s *Store) MergeUpdate(ctx context.Context, coll, id string, fields map[string]interface{}) (docstore.Document, error) {
	patch, err := encodeJSON(fields)
	if err != nil {
		return docstore.Document{}, err
	}
	return s.update(ctx, coll, id, "data || $3::jsonb", patch)
}

func (s *Store) ArrayUnion(ctx context.Context, coll, id, field string, values ...interface{}) (docstore.Document, error) {
	v, err := encodeJSON(values)
	if err != nil {
		return docstore.Document{}, err
	}
	return s.update(ctx, coll, id, `jsonb_set(data, ARRAY[$3::text], `+arrayOf+` || COALESCE((
		SELECT jsonb_agg(n.v ORDER BY n.first)
		FROM (
			SELECT v, MIN(i) AS first FROM jsonb_array_elements($4::jsonb) WITH ORDINALITY AS t(v, i) GROUP BY v
		) AS n
		WHERE NOT EXISTS (SELECT 1 FROM jsonb_array_elements(`+arrayOf+`) AS e WHERE e = n.v)
	), '[]'::jsonb))`, field, v)
}

func (s *Store) ArrayRemove(ctx context.Context, coll, id, field string, values ...interface{}) (docstore.Document, error) {
	v, err := encodeJSON(values)
	if err != nil {
		return docstore.Document{}, err
	}
	return s.update(ctx, coll, id, `jsonb_set(data, ARRAY[$3::text], COALESCE((
		SELECT jsonb_agg(e ORDER BY i)
		FROM jsonb_array_elements(`+arrayOf+`) WITH ORDINALITY AS t(e, i)
		WHERE NOT EXISTS (SELECT 1 FROM jsonb_array_elements($4::jsonb) AS r WHERE r = e)
	), '[]'::jsonb))`, field, v)
}

func (s *Store) ArrayReplace(ctx context.Context, coll, id, field, key string, value interface{}) (docstore.Document, error) {
	v, err := encodeJSON(value)
	if err != nil {
		return docstore.Document{}, err
	}
	if !strings.HasPrefix(v, "{") {
		return docstore.Document{}, errors.Wrap(core.ErrInvalidArgument, "array replace value must be an object")
	}
	return s.update(ctx, coll, id, `jsonb_set(data, ARRAY[$3::text], COALESCE((
		SELECT jsonb_agg(e ORDER BY i)
		FROM jsonb_array_elements(`+arrayOf+`) WITH ORDINALITY AS t(e, i)
		WHERE (e -> $4::text) IS DISTINCT FROM ($5::jsonb -> $4::text)
	), '[]'::jsonb) || jsonb_build_array($5::jsonb))`, field, key, v)
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	if err := checkCollection(coll); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = $1 AND id = $2", coll, id)
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	if n == 0 {
		return docstore.ErrNotFound
	}
	return nil
}
