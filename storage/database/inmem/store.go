package inmemdb

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
)

type (
	DB struct {
		tables map[string]*table
		mutex  sync.RWMutex
		now    func() time.Time
	}

	table struct {
		t map[string]*record
	}

	record struct {
		id        string
		createdAt time.Time
		updatedAt time.Time
		data      map[string]interface{}
	}
)

var _ docstore.Store = (*DB)(nil)

// Open returns an empty in-memory document store. All mutations are serialized under one lock.
func Open() *DB {
	db := &DB{
		tables: make(map[string]*table),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, coll := range []string{
		docstore.Resources,
		docstore.Lectures,
		docstore.Users,
		docstore.Notifications,
		docstore.Comments,
	} {
		db.tables[coll] = &table{t: make(map[string]*record)}
	}
	return db
}

func (db *DB) table(coll string) (*table, error) {
	tbl, ok := db.tables[coll]
	if !ok {
		return nil, errors.Wrapf(core.ErrInvalidArgument, "unknown collection %q", coll)
	}
	return tbl, nil
}

func (db *DB) find(coll, id string) (*record, error) {
	tbl, err := db.table(coll)
	if err != nil {
		return nil, err
	}
	rec, ok := tbl.t[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return rec, nil
}

func (db *DB) Get(_ context.Context, coll, id string) (docstore.Document, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	rec, err := db.find(coll, id)
	if err != nil {
		return docstore.Document{}, err
	}
	return rec.document()
}

func (db *DB) Query(_ context.Context, coll string, q docstore.Query) ([]docstore.Document, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	tbl, err := db.table(coll)
	if err != nil {
		return nil, err
	}
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return nil, err
	}

	recs := make([]*record, 0, len(tbl.t))
	for _, rec := range tbl.t {
		if q.After != nil {
			pos := docstore.Cursor{CreatedAt: rec.createdAt, ID: rec.id}
			if q.Ascending && !docstore.Before(pos, *q.After) {
				continue
			}
			if !q.Ascending && !docstore.Before(*q.After, pos) {
				continue
			}
		}
		if rec.matches(filters) {
			recs = append(recs, rec)
		}
	}

	sort.Slice(recs, func(i, j int) bool {
		a := docstore.Cursor{CreatedAt: recs[i].createdAt, ID: recs[i].id}
		b := docstore.Cursor{CreatedAt: recs[j].createdAt, ID: recs[j].id}
		if q.Ascending {
			return docstore.Before(b, a)
		}
		return docstore.Before(a, b)
	})
	if q.Limit > 0 && len(recs) > q.Limit {
		recs = recs[:q.Limit]
	}

	docs := make([]docstore.Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := rec.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (db *DB) Create(_ context.Context, coll string, doc docstore.Document) (docstore.Document, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	tbl, err := db.table(coll)
	if err != nil {
		return docstore.Document{}, err
	}

	data := make(map[string]interface{})
	if len(doc.Data) > 0 {
		if err = json.Unmarshal(doc.Data, &data); err != nil {
			return docstore.Document{}, errors.Wrap(core.ErrInvalidArgument, "document body must be a JSON object")
		}
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if _, exists := tbl.t[doc.ID]; exists {
		return docstore.Document{}, docstore.ErrConflict
	}

	now := db.now().Truncate(time.Microsecond)
	rec := &record{id: doc.ID, createdAt: now, updatedAt: now, data: data}
	if !doc.CreatedAt.IsZero() {
		rec.createdAt = doc.CreatedAt.UTC().Truncate(time.Microsecond)
	}
	tbl.t[rec.id] = rec
	return rec.document()
}

// mutate applies fn to the record body under the write lock.
func (db *DB) mutate(coll, id string, fn func(data map[string]interface{}) error) (docstore.Document, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	rec, err := db.find(coll, id)
	if err != nil {
		return docstore.Document{}, err
	}
	if err = fn(rec.data); err != nil {
		return docstore.Document{}, err
	}
	rec.updatedAt = db.now().Truncate(time.Microsecond)
	return rec.document()
}

func (db *DB) MergeUpdate(_ context.Context, coll, id string, fields map[string]interface{}) (docstore.Document, error) {
	norm := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		nv, err := normalize(v)
		if err != nil {
			return docstore.Document{}, err
		}
		norm[k] = nv
	}
	return db.mutate(coll, id, func(data map[string]interface{}) error {
		for k, v := range norm {
			data[k] = v
		}
		return nil
	})
}

func (db *DB) ArrayUnion(_ context.Context, coll, id, field string, values ...interface{}) (docstore.Document, error) {
	norm, err := normalizeAll(values)
	if err != nil {
		return docstore.Document{}, err
	}
	return db.mutate(coll, id, func(data map[string]interface{}) error {
		arr := asArray(data[field])
		for _, v := range norm {
			if !contains(arr, v) {
				arr = append(arr, v)
			}
		}
		data[field] = arr
		return nil
	})
}

func (db *DB) ArrayRemove(_ context.Context, coll, id, field string, values ...interface{}) (docstore.Document, error) {
	norm, err := normalizeAll(values)
	if err != nil {
		return docstore.Document{}, err
	}
	return db.mutate(coll, id, func(data map[string]interface{}) error {
		arr := asArray(data[field])
		kept := make([]interface{}, 0, len(arr))
		for _, elem := range arr {
			if !contains(norm, elem) {
				kept = append(kept, elem)
			}
		}
		data[field] = kept
		return nil
	})
}

func (db *DB) ArrayReplace(_ context.Context, coll, id, field, key string, value interface{}) (docstore.Document, error) {
	nv, err := normalize(value)
	if err != nil {
		return docstore.Document{}, err
	}
	obj, ok := nv.(map[string]interface{})
	if !ok {
		return docstore.Document{}, errors.Wrap(core.ErrInvalidArgument, "array replace value must be an object")
	}
	keyVal := obj[key]

	return db.mutate(coll, id, func(data map[string]interface{}) error {
		arr := asArray(data[field])
		kept := make([]interface{}, 0, len(arr)+1)
		for _, elem := range arr {
			if m, ok := elem.(map[string]interface{}); ok && reflect.DeepEqual(m[key], keyVal) {
				continue
			}
			kept = append(kept, elem)
		}
		data[field] = append(kept, obj)
		return nil
	})
}

func (db *DB) Delete(_ context.Context, coll, id string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	tbl, err := db.table(coll)
	if err != nil {
		return err
	}
	if _, ok := tbl.t[id]; !ok {
		return docstore.ErrNotFound
	}
	delete(tbl.t, id)
	return nil
}

func (rec *record) document() (docstore.Document, error) {
	data, err := json.Marshal(rec.data)
	if err != nil {
		return docstore.Document{}, errors.Wrap(err, "encoding document")
	}
	return docstore.Document{
		ID:        rec.id,
		CreatedAt: rec.createdAt,
		UpdatedAt: rec.updatedAt,
		Data:      data,
	}, nil
}

func (rec *record) matches(filters []docstore.Filter) bool {
	for _, f := range filters {
		val := rec.data[f.Field]
		switch f.Op {
		case docstore.OpEq:
			if !reflect.DeepEqual(val, f.Value) {
				return false
			}
		case docstore.OpIn:
			if !contains(asArray(f.Value), val) {
				return false
			}
		case docstore.OpArrayContains:
			if !contains(asArray(val), f.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func normalizeFilters(filters []docstore.Filter) ([]docstore.Filter, error) {
	norm := make([]docstore.Filter, 0, len(filters))
	for _, f := range filters {
		v, err := normalize(f.Value)
		if err != nil {
			return nil, err
		}
		norm = append(norm, docstore.Filter{Field: f.Field, Op: f.Op, Value: v})
	}
	return norm, nil
}

// normalize round-trips v through JSON so values compare the same way they are stored.
func normalize(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(core.ErrInvalidArgument, err.Error())
	}
	var out interface{}
	if err = json.Unmarshal(b, &out); err != nil {
		return nil, errors.Wrap(core.ErrInvalidArgument, err.Error())
	}
	return out, nil
}

func normalizeAll(values []interface{}) ([]interface{}, error) {
	norm := make([]interface{}, 0, len(values))
	for _, v := range values {
		nv, err := normalize(v)
		if err != nil {
			return nil, err
		}
		norm = append(norm, nv)
	}
	return norm, nil
}

func asArray(v interface{}) []interface{} {
	arr, _ := v.([]interface{})
	return arr
}

func contains(arr []interface{}, v interface{}) bool {
	for _, elem := range arr {
		if reflect.DeepEqual(elem, v) {
			return true
		}
	}
	return false
}
