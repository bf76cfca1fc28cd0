package paging

import (
	"context"
	"sync"
	"time"
)

// CursorStore records the last cursor each owner reached per query shape.
type CursorStore interface {
	Get(ctx context.Context, owner, key string) (cursor string, ok bool, err error)
	Set(ctx context.Context, owner, key, cursor string) error
	Delete(ctx context.Context, owner, key string) error
}

type (
	memoryCursorStore struct {
		ttl     time.Duration
		now     func() time.Time
		mutex   sync.Mutex
		cursors map[string]memoryCursor
	}

	memoryCursor struct {
		cursor  string
		expires time.Time
	}
)

// NewMemoryCursorStore returns a process-local CursorStore. Cursors expire after ttl (never when ttl <= 0).
func NewMemoryCursorStore(ttl time.Duration) CursorStore {
	return &memoryCursorStore{
		ttl:     ttl,
		now:     time.Now,
		cursors: make(map[string]memoryCursor),
	}
}

func memoryKey(owner, key string) string { return owner + "\x00" + key }

func (s *memoryCursorStore) Get(_ context.Context, owner, key string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	k := memoryKey(owner, key)
	c, ok := s.cursors[k]
	if !ok {
		return "", false, nil
	}
	if !c.expires.IsZero() && s.now().After(c.expires) {
		delete(s.cursors, k)
		return "", false, nil
	}
	return c.cursor, true, nil
}

func (s *memoryCursorStore) Set(_ context.Context, owner, key, cursor string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c := memoryCursor{cursor: cursor}
	if s.ttl > 0 {
		c.expires = s.now().Add(s.ttl)
	}
	s.cursors[memoryKey(owner, key)] = c
	return nil
}

func (s *memoryCursorStore) Delete(_ context.Context, owner, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.cursors, memoryKey(owner, key))
	return nil
}
