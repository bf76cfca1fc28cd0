package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
)

func TestBuildQuery(t *testing.T) {
	after := &docstore.Cursor{CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), ID: "x"}

	tests := []struct {
		name      string
		q         docstore.Query
		wantQuery string
		wantArgs  int
	}{
		{
			name:      "all",
			q:         docstore.Query{},
			wantQuery: "SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 ORDER BY created_at DESC, id DESC",
			wantArgs:  1,
		},
		{
			name: "filters",
			q: docstore.Query{Filters: []docstore.Filter{
				docstore.Eq("category", "Math"),
				docstore.In("kind", "text", "video"),
				docstore.ArrayContains("completedItems", "a"),
			}},
			wantQuery: "SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1" +
				" AND data -> $2::text = $3::jsonb" +
				" AND data -> $4::text = ANY($5::jsonb[])" +
				" AND data -> $6::text @> $7::jsonb" +
				" ORDER BY created_at DESC, id DESC",
			wantArgs: 7,
		},
		{
			name: "cursor descending",
			q:    docstore.Query{After: after, Limit: 11},
			wantQuery: "SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1" +
				" AND (created_at, id) < ($2, $3) ORDER BY created_at DESC, id DESC LIMIT $4",
			wantArgs: 4,
		},
		{
			name: "cursor ascending",
			q:    docstore.Query{After: after, Ascending: true},
			wantQuery: "SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1" +
				" AND (created_at, id) > ($2, $3) ORDER BY created_at ASC, id ASC",
			wantArgs: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildQuery(docstore.Resources, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			assert.Len(t, args, tt.wantArgs)
			assert.Equal(t, docstore.Resources, args[0])
		})
	}

	_, args, err := buildQuery(docstore.Users, docstore.Query{Filters: []docstore.Filter{docstore.Eq("role", "admin")}})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{docstore.Users, "role", `"admin"`}, args)

	_, _, err = buildQuery(docstore.Users, docstore.Query{Filters: []docstore.Filter{{Field: "x", Op: 42}}})
	assert.Equal(t, core.KindInvalidArgument, core.KindOf(err))
}

// TestStore runs against a live database when TEST_POSTGRES is set,
// e.g. `ENV=test TEST_POSTGRES=1 go test ./storage/database/...`.
func TestStore(t *testing.T) {
	if os.Getenv("TEST_POSTGRES") == "" {
		t.Skip("TEST_POSTGRES not set")
	}
	conf := core.NewConfig()
	require.NoError(t, CreateIfNotExist(conf))
	db, err := Open(conf)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	require.NoError(t, Migrate(db))
	_, err = db.Exec("DELETE FROM documents WHERE collection = $1", docstore.Comments)
	require.NoError(t, err)

	ctx := context.Background()
	s := NewStore(db)

	doc, err := s.Create(ctx, docstore.Comments, docstore.Document{ID: "c1", Data: []byte(`{"itemId":"a","tags":["x"],"votes":[]}`)})
	require.NoError(t, err)
	assert.Equal(t, "c1", doc.ID)
	_, err = s.Create(ctx, docstore.Comments, docstore.Document{ID: "c1"})
	assert.ErrorIs(t, err, docstore.ErrConflict)

	doc, err = s.ArrayUnion(ctx, docstore.Comments, "c1", "tags", "y", "x", "y")
	require.NoError(t, err)
	assert.JSONEq(t, `{"itemId":"a","tags":["x","y"],"votes":[]}`, string(doc.Data))

	doc, err = s.ArrayRemove(ctx, docstore.Comments, "c1", "tags", "x")
	require.NoError(t, err)
	assert.JSONEq(t, `{"itemId":"a","tags":["y"],"votes":[]}`, string(doc.Data))

	_, err = s.ArrayReplace(ctx, docstore.Comments, "c1", "votes", "userId", map[string]interface{}{"userId": "u", "rating": 2})
	require.NoError(t, err)
	doc, err = s.ArrayReplace(ctx, docstore.Comments, "c1", "votes", "userId", map[string]interface{}{"userId": "u", "rating": 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"itemId":"a","tags":["y"],"votes":[{"userId":"u","rating":5}]}`, string(doc.Data))

	doc, err = s.MergeUpdate(ctx, docstore.Comments, "c1", map[string]interface{}{"body": "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"itemId":"a","body":"hi","tags":["y"],"votes":[{"userId":"u","rating":5}]}`, string(doc.Data))

	docs, err := s.Query(ctx, docstore.Comments, docstore.Query{Filters: []docstore.Filter{docstore.ArrayContains("tags", "y")}})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, s.Delete(ctx, docstore.Comments, "c1"))
	assert.ErrorIs(t, s.Delete(ctx, docstore.Comments, "c1"), docstore.ErrNotFound)
	_, err = s.Get(ctx, docstore.Comments, "c1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
