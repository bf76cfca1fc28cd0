// Package rediscursors keeps the load-more cursors of each user in Redis, so they survive restarts
// and are shared by every API instance.
package rediscursors

import (
	"context"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/paging"
)

const (
	keyPrefix = "cursor"
	delimiter = "__"
)

type CursorStore struct {
	inner *redis.Client
	ttl   time.Duration
}

var _ paging.CursorStore = (*CursorStore)(nil)

// Open connects to the Redis server of conf and checks it answers.
func Open(ctx context.Context, conf *core.Config) (*CursorStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return New(client, conf.Redis.CursorTTL), nil
}

// New returns a CursorStore on client. Cursors expire after ttl (never when ttl <= 0).
func New(client *redis.Client, ttl time.Duration) *CursorStore {
	return &CursorStore{inner: client, ttl: ttl}
}

// Key returns the Redis key of the cursor of owner for the query shape key.
func Key(owner, shapeKey string) string {
	return strings.Join([]string{keyPrefix, owner, shapeKey}, delimiter)
}

func (s *CursorStore) Get(ctx context.Context, owner, key string) (string, bool, error) {
	cursor, err := s.inner.Get(ctx, Key(owner, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, core.Unavailable(err, "reading cursor")
	}
	return cursor, true, nil
}

func (s *CursorStore) Set(ctx context.Context, owner, key, cursor string) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.inner.Set(ctx, Key(owner, key), cursor, ttl).Err(); err != nil {
		return core.Unavailable(err, "saving cursor")
	}
	return nil
}

func (s *CursorStore) Delete(ctx context.Context, owner, key string) error {
	if err := s.inner.Del(ctx, Key(owner, key)).Err(); err != nil {
		return core.Unavailable(err, "deleting cursor")
	}
	return nil
}

func (s *CursorStore) Close() error {
	return s.inner.Close()
}
