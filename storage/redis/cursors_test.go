package rediscursors

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/paging"
)

func TestKey(t *testing.T) {
	shape := paging.NewShape("catalog", map[string]string{"category": "Math", "section": "lecture"})
	assert.Equal(t, "cursor__ada__catalog?category=Math&section=lecture", Key("ada", shape.Key()))
	assert.NotEqual(t, Key("ada", shape.Key()), Key("bob", shape.Key()))
}

func TestCursorStore_Unavailable(t *testing.T) {
	// nothing listens on port 1
	s := New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}), time.Minute)
	defer func() { _ = s.Close() }()

	_, _, err := s.Get(context.Background(), "ada", "catalog")
	assert.Equal(t, core.KindUnavailable, core.KindOf(err))
	assert.Equal(t, core.KindUnavailable, core.KindOf(s.Set(context.Background(), "ada", "catalog", "c")))
}

// TestCursorStore runs against a live server when TEST_REDIS_ADDR is set.
func TestCursorStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	conf := core.NewTestConfig()
	conf.Redis.Address = addr
	ctx := context.Background()

	s, err := Open(ctx, conf)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Delete(ctx, "ada", "catalog"))

	_, ok, err := s.Get(ctx, "ada", "catalog")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "ada", "catalog", "c1"))
	cursor, ok, err := s.Get(ctx, "ada", "catalog")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c1", cursor)

	_, ok, err = s.Get(ctx, "bob", "catalog")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "ada", "catalog"))
	_, ok, err = s.Get(ctx, "ada", "catalog")
	require.NoError(t, err)
	assert.False(t, ok)
}
