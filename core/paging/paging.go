// Package paging serves bounded pages over newest-first sequences using opaque cursor tokens.
//
// A token carries the query shape and the position of the last entry returned, so a page
// request only needs the token. Tokens are signed with the application secret. Entries inserted while a client pages may be missed or
// returned twice: the store offers no snapshot across requests.
package paging

import (
	"context"
	"net/url"
	"sync"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
)

var (
	ErrInvalidCursor = core.NewError(core.KindInvalidArgument, "invalid cursor")
	ErrUnknownQuery  = core.NewError(core.KindInvalidArgument, "unknown query")
)

type (
	// Shape names a query and its parameters. Shapes with the same Key page the same sequence.
	Shape struct {
		Name   string            `json:"n"`
		Params map[string]string `json:"p,omitempty"`
	}

	Entry struct {
		Position docstore.Cursor
		Value    interface{}
	}

	// Fetcher returns up to limit entries of shape strictly after `after` (from the start when nil), newest first.
	Fetcher interface {
		Fetch(ctx context.Context, shape Shape, after *docstore.Cursor, limit int) ([]Entry, error)
	}

	FetcherFunc func(ctx context.Context, shape Shape, after *docstore.Cursor, limit int) ([]Entry, error)

	Page struct {
		Items   []interface{} `json:"items"`
		Cursor  string        `json:"cursor,omitempty"`
		HasMore bool          `json:"hasMore"`
	}

	token struct {
		Shape    Shape            `json:"s"`
		Position *docstore.Cursor `json:"c,omitempty"`
	}

	Manager struct {
		fetchers    map[string]Fetcher
		mutex       sync.RWMutex
		cursors     CursorStore
		secret      []byte
		defaultSize int
		maxSize     int
	}
)

func (f FetcherFunc) Fetch(ctx context.Context, shape Shape, after *docstore.Cursor, limit int) ([]Entry, error) {
	return f(ctx, shape, after, limit)
}

// NewShape builds a Shape, dropping empty parameters.
func NewShape(name string, params map[string]string) Shape {
	s := Shape{Name: name}
	for k, v := range params {
		if v == "" {
			continue
		}
		if s.Params == nil {
			s.Params = make(map[string]string)
		}
		s.Params[k] = v
	}
	return s
}

func (s Shape) Param(key string) string { return s.Params[key] }

// Key is the canonical form of the shape: its name and its parameters sorted by key.
func (s Shape) Key() string {
	q := make(url.Values, len(s.Params))
	for k, v := range s.Params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return s.Name
	}
	return s.Name + "?" + q.Encode()
}

// Valid makes token a jwt.Claims. Cursors do not expire.
func (t token) Valid() error { return nil }

func (m *Manager) encodeToken(t token) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, t).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "encoding cursor")
	}
	return s, nil
}

func (m *Manager) decodeToken(s string) (token, error) {
	var t token
	parsed, err := jwt.ParseWithClaims(s, &t, func(jt *jwt.Token) (interface{}, error) {
		if _, ok := jt.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidCursor
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid || t.Shape.Name == "" {
		return token{}, ErrInvalidCursor
	}
	return t, nil
}

func NewManager(conf *core.Config, cursors CursorStore) *Manager {
	return &Manager{
		fetchers:    make(map[string]Fetcher),
		cursors:     cursors,
		secret:      []byte(conf.SecretKey),
		defaultSize: conf.Catalog.DefaultPageSize,
		maxSize:     conf.Catalog.MaxPageSize,
	}
}

// Register makes the shapes named `name` pageable through f.
func (m *Manager) Register(name string, f Fetcher) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.fetchers[name] = f
}

func (m *Manager) pageSize(size int) int {
	if size <= 0 {
		size = m.defaultSize
	}
	if m.maxSize > 0 && size > m.maxSize {
		size = m.maxSize
	}
	if size <= 0 {
		size = 10
	}
	return size
}

func (m *Manager) fetch(ctx context.Context, shape Shape, after *docstore.Cursor, size int) (Page, error) {
	m.mutex.RLock()
	f, ok := m.fetchers[shape.Name]
	m.mutex.RUnlock()
	if !ok {
		return Page{}, errors.Wrap(ErrUnknownQuery, shape.Name)
	}

	size = m.pageSize(size)
	entries, err := f.Fetch(ctx, shape, after, size+1) // one more to know if there is a next page
	if err != nil {
		return Page{}, err
	}

	page := Page{Items: make([]interface{}, 0, size)}
	if len(entries) > size {
		entries = entries[:size]
		page.HasMore = true
	}
	for _, e := range entries {
		page.Items = append(page.Items, e.Value)
	}

	last := after
	if len(entries) > 0 {
		pos := entries[len(entries)-1].Position
		last = &pos
	}
	if last != nil {
		if page.Cursor, err = m.encodeToken(token{Shape: shape, Position: last}); err != nil {
			return Page{}, err
		}
	}
	return page, nil
}

func (m *Manager) FirstPage(ctx context.Context, shape Shape, size int) (Page, error) {
	return m.fetch(ctx, shape, nil, size)
}

// NextPage returns the entries following the cursor, which must have been issued for a
// shape named `name`. An exhausted cursor yields an empty page.
func (m *Manager) NextPage(ctx context.Context, name, cursor string, size int) (Page, error) {
	t, err := m.decodeToken(cursor)
	if err != nil {
		return Page{}, err
	}
	if t.Shape.Name != name {
		return Page{}, errors.Wrap(ErrInvalidCursor, "cursor belongs to another query")
	}
	return m.fetch(ctx, t.Shape, t.Position, size)
}

// PageOf returns the first page of shape, or the page following cursor when set.
// The cursor must have been issued for the same shape.
func (m *Manager) PageOf(ctx context.Context, shape Shape, cursor string, size int) (Page, error) {
	if cursor == "" {
		return m.FirstPage(ctx, shape, size)
	}
	t, err := m.decodeToken(cursor)
	if err != nil {
		return Page{}, err
	}
	if t.Shape.Key() != shape.Key() {
		return Page{}, errors.Wrap(ErrInvalidCursor, "cursor belongs to another query")
	}
	return m.fetch(ctx, shape, t.Position, size)
}

// LoadMore continues paging shape from the last cursor recorded for owner.
func (m *Manager) LoadMore(ctx context.Context, owner string, shape Shape, size int) (Page, error) {
	key := shape.Key()
	cursor, ok, err := m.cursors.Get(ctx, owner, key)
	if err != nil {
		return Page{}, err
	}

	var page Page
	if ok {
		page, err = m.PageOf(ctx, shape, cursor, size)
	} else {
		page, err = m.FirstPage(ctx, shape, size)
	}
	if err != nil {
		return Page{}, err
	}

	if page.Cursor != "" {
		if err = m.cursors.Set(ctx, owner, key, page.Cursor); err != nil {
			return Page{}, err
		}
	}
	return page, nil
}

// Reset forgets the cursor of owner for shape; the next LoadMore starts over.
func (m *Manager) Reset(ctx context.Context, owner string, shape Shape) error {
	return m.cursors.Delete(ctx, owner, shape.Key())
}
