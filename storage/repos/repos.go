// Package docrepos implements the domain repositories on top of a docstore.Store.
//
// Each collection has an explicit record type. Records are validated before they are written
// and after they are read, so a malformed stored document never becomes a domain value.
package docrepos

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
)

// ErrMalformedRecord is returned when a stored document does not match its record schema.
var ErrMalformedRecord = core.NewError(core.KindUnavailable, "malformed record")

type (
	// Repositories groups the repositories sharing one store.
	Repositories struct {
		Items         *ItemRepository
		Votes         *VoteRepository
		Users         *UserRepository
		Notifications *NotificationRepository
		Comments      *CommentRepository
	}

	base struct {
		store    docstore.Store
		validate *validator.Validate
		log      core.Logger
	}
)

func New(store docstore.Store, validate *validator.Validate, logger core.Logger) *Repositories {
	InitValidators(validate)
	b := base{store: store, validate: validate, log: logger}
	return &Repositories{
		Items:         &ItemRepository{b},
		Votes:         &VoteRepository{b},
		Users:         &UserRepository{b},
		Notifications: &NotificationRepository{b},
		Comments:      &CommentRepository{b},
	}
}

// InitValidators teaches validate to look inside the null types used by the records.
func InitValidators(validate *validator.Validate) {
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		switch n := v.Interface().(type) {
		case null.String:
			return n.String
		case null.Int:
			return n.Int
		}
		return nil
	}, null.String{}, null.Int{})
}

// encode validates the record and returns its JSON body.
func (b base) encode(rec interface{}) (json.RawMessage, error) {
	if err := b.validate.Struct(rec); err != nil {
		return nil, errors.Wrap(err, "invalid record")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}
	return data, nil
}

// decode reads the document body into rec and validates it.
func (b base) decode(doc docstore.Document, rec interface{}) error {
	if err := doc.Decode(rec); err != nil {
		return errors.Wrapf(ErrMalformedRecord, "%s: %v", doc.ID, err)
	}
	if err := b.validate.Struct(rec); err != nil {
		return errors.Wrapf(ErrMalformedRecord, "%s: %v", doc.ID, err)
	}
	return nil
}

// fields returns the top-level fields of the record, without the excluded ones.
func (b base) fields(rec interface{}, exclude ...string) (map[string]interface{}, error) {
	data, err := b.encode(rec)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]interface{})
	if err = json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}
	for _, f := range exclude {
		delete(fields, f)
	}
	return fields, nil
}

// skipMalformed logs and drops the documents of a listing that do not match their schema.
func (b base) skipMalformed(coll string, err error) bool {
	if errors.Is(err, ErrMalformedRecord) {
		b.log.Warning("skipping malformed "+coll+" record", err)
		return true
	}
	return false
}

// scan queries coll and passes each document to keep, in order. Documents keep rejects as
// malformed are skipped and do not count toward q.Limit: the store is queried again past
// them until q.Limit documents were kept or the collection is exhausted.
func (b base) scan(ctx context.Context, coll string, q docstore.Query, keep func(doc docstore.Document) error) error {
	limit, kept := q.Limit, 0
	for {
		docs, err := b.store.Query(ctx, coll, q)
		if err != nil {
			return trap(err, nil, "querying "+coll)
		}
		for _, doc := range docs {
			if err := keep(doc); err != nil {
				if b.skipMalformed(coll, err) {
					continue
				}
				return err
			}
			kept++
		}
		if limit <= 0 || kept >= limit || len(docs) < q.Limit {
			return nil
		}
		q.After = docs[len(docs)-1].Cursor()
		q.Limit = limit - kept
	}
}

// trap maps store failures: not found becomes notFound, conflicts and invalid
// arguments are kept, anything else is reported as unavailable.
func trap(err error, notFound error, msg string) error {
	switch core.KindOf(err) {
	case core.KindNotFound:
		if notFound != nil {
			return notFound
		}
		return errors.Wrap(err, msg)
	case core.KindConflict, core.KindInvalidArgument:
		return errors.Wrap(err, msg)
	}
	if errors.Is(err, ErrMalformedRecord) {
		return err
	}
	return core.Unavailable(err, msg)
}
