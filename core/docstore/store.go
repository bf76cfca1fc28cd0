// Package docstore defines the document store the domain services persist to.
//
// Documents live in named collections and carry an opaque id, a creation time and a JSON body.
// Shared arrays inside a document are only changed through the atomic primitives
// (ArrayUnion, ArrayRemove, ArrayReplace) so concurrent writers never lose each other's updates.
package docstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
)

// Collections
const (
	Resources     = "resources"
	Lectures      = "lectures"
	Users         = "users"
	Notifications = "notifications"
	Comments      = "comments"
)

var (
	ErrNotFound = core.NewError(core.KindNotFound, "document not found")
	ErrConflict = core.NewError(core.KindConflict, "document already exists")
)

type (
	Document struct {
		ID        string
		CreatedAt time.Time // UTC
		UpdatedAt time.Time // UTC
		Data      json.RawMessage
	}

	Op uint8

	Filter struct {
		Field string
		Op    Op
		Value interface{}
	}

	// Cursor is the position of the last document of a page.
	Cursor struct {
		CreatedAt time.Time `json:"t"`
		ID        string    `json:"id"`
	}

	// Query returns documents matching all Filters, newest first unless Ascending is set.
	// Ties on CreatedAt are broken by ID in the same direction.
	Query struct {
		Filters   []Filter
		Ascending bool
		After     *Cursor
		Limit     int // 0 = no limit
	}

	Store interface {
		Get(ctx context.Context, coll, id string) (Document, error)
		Query(ctx context.Context, coll string, q Query) ([]Document, error)
		// Create stores doc, generating its ID when empty and its CreatedAt when zero.
		Create(ctx context.Context, coll string, doc Document) (Document, error)
		// MergeUpdate sets the top-level fields of the document body.
		MergeUpdate(ctx context.Context, coll, id string, fields map[string]interface{}) (Document, error)
		// ArrayUnion appends the values missing from the array field.
		ArrayUnion(ctx context.Context, coll, id, field string, values ...interface{}) (Document, error)
		// ArrayRemove removes every element of the array field equal to one of values.
		ArrayRemove(ctx context.Context, coll, id, field string, values ...interface{}) (Document, error)
		// ArrayReplace removes the objects of the array field whose key equals value's key, then appends value.
		ArrayReplace(ctx context.Context, coll, id, field, key string, value interface{}) (Document, error)
		Delete(ctx context.Context, coll, id string) error
	}
)

const (
	OpEq Op = iota
	OpIn
	OpArrayContains
)

func Eq(field string, value interface{}) Filter { return Filter{Field: field, Op: OpEq, Value: value} }

// In matches documents whose field equals one of values.
func In(field string, values ...interface{}) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}

func ArrayContains(field string, value interface{}) Filter {
	return Filter{Field: field, Op: OpArrayContains, Value: value}
}

func (doc Document) Decode(v interface{}) error {
	return json.Unmarshal(doc.Data, v)
}

func (doc Document) Cursor() *Cursor {
	return &Cursor{CreatedAt: doc.CreatedAt, ID: doc.ID}
}

// Before reports whether a sorts before b in newest-first order.
func Before(a, b Cursor) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// IsValidCollection reports whether coll is one of the known collections.
func IsValidCollection(coll string) bool {
	switch coll {
	case Resources, Lectures, Users, Notifications, Comments:
		return true
	}
	return false
}
