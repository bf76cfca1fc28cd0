package paging

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
)

// sliceFetcher pages over entries sorted newest first.
func sliceFetcher(entries []Entry) Fetcher {
	return FetcherFunc(func(_ context.Context, _ Shape, after *docstore.Cursor, limit int) ([]Entry, error) {
		res := make([]Entry, 0, limit)
		for _, e := range entries {
			if after != nil && !docstore.Before(*after, e.Position) {
				continue
			}
			res = append(res, e)
			if len(res) == limit {
				break
			}
		}
		return res, nil
	})
}

func makeEntries(n int) []Entry {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]Entry, 0, n)
	for i := n - 1; i >= 0; i-- {
		// pairs share a timestamp so the id tiebreak is exercised
		pos := docstore.Cursor{CreatedAt: base.Add(time.Duration(i/2) * time.Minute), ID: fmt.Sprintf("item%02d", i)}
		entries = append(entries, Entry{Position: pos, Value: pos.ID})
	}
	return entries
}

func newManager(t *testing.T, entries []Entry) *Manager {
	t.Helper()
	m := NewManager(core.NewTestConfig(), NewMemoryCursorStore(time.Minute))
	m.Register("items", sliceFetcher(entries))
	return m
}

func TestManager_Pages(t *testing.T) {
	ctx := context.Background()
	entries := makeEntries(25)
	m := newManager(t, entries)
	shape := NewShape("items", nil)

	first, err := m.FirstPage(ctx, shape, 10)
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.True(t, first.HasMore)
	assert.NotEmpty(t, first.Cursor)

	all := append([]interface{}(nil), first.Items...)
	cursor := first.Cursor
	wantSizes := []int{10, 5, 0}
	wantMore := []bool{true, false, false}
	for i := range wantSizes {
		page, err := m.NextPage(ctx, "items", cursor, 10)
		require.NoError(t, err)
		assert.Len(t, page.Items, wantSizes[i], "page %d", i+2)
		assert.Equal(t, wantMore[i], page.HasMore, "page %d", i+2)
		all = append(all, page.Items...)
		cursor = page.Cursor
	}

	want := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		want = append(want, e.Value)
	}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_ExactMultiple(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, makeEntries(20))

	first, err := m.FirstPage(ctx, NewShape("items", nil), 10)
	require.NoError(t, err)
	assert.True(t, first.HasMore)

	second, err := m.NextPage(ctx, "items", first.Cursor, 10)
	require.NoError(t, err)
	assert.Len(t, second.Items, 10)
	assert.False(t, second.HasMore)
}

func TestManager_Empty(t *testing.T) {
	m := newManager(t, nil)
	page, err := m.FirstPage(context.Background(), NewShape("items", nil), 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
	assert.Empty(t, page.Cursor)
}

func TestManager_PageSize(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, makeEntries(100))
	conf := core.NewTestConfig()

	page, err := m.FirstPage(ctx, NewShape("items", nil), 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, conf.Catalog.DefaultPageSize)

	page, err = m.FirstPage(ctx, NewShape("items", nil), 1000)
	require.NoError(t, err)
	assert.Len(t, page.Items, conf.Catalog.MaxPageSize)
}

func TestManager_Errors(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, makeEntries(5))
	m.Register("secrets", sliceFetcher(makeEntries(5)))
	first, err := m.FirstPage(ctx, NewShape("items", map[string]string{"category": "Math"}), 2)
	require.NoError(t, err)
	secrets, err := m.FirstPage(ctx, NewShape("secrets", map[string]string{"userId": "bob"}), 2)
	require.NoError(t, err)

	otherConf := core.NewTestConfig()
	otherConf.SecretKey = "another secret"
	other := NewManager(otherConf, NewMemoryCursorStore(time.Minute))
	other.Register("items", sliceFetcher(makeEntries(5)))
	foreign, err := other.FirstPage(ctx, NewShape("items", nil), 2)
	require.NoError(t, err)

	// a well-formed token that was never signed
	unsigned := base64.RawURLEncoding.EncodeToString([]byte(`{"s":{"n":"items"}}`))

	tests := []struct {
		name string
		fn   func() error
	}{
		{name: "unknown query", fn: func() error {
			_, err := m.FirstPage(ctx, NewShape("lol", nil), 2)
			return err
		}},
		{name: "not base64", fn: func() error {
			_, err := m.NextPage(ctx, "items", "%%%", 2)
			return err
		}},
		{name: "not json", fn: func() error {
			_, err := m.NextPage(ctx, "items", "bG9s", 2)
			return err
		}},
		{name: "unsigned token", fn: func() error {
			_, err := m.NextPage(ctx, "items", unsigned, 2)
			return err
		}},
		{name: "signed with another secret", fn: func() error {
			_, err := m.NextPage(ctx, "items", foreign.Cursor, 2)
			return err
		}},
		{name: "cursor of another query", fn: func() error {
			_, err := m.NextPage(ctx, "items", secrets.Cursor, 2)
			return err
		}},
		{name: "cursor of another shape", fn: func() error {
			_, err := m.PageOf(ctx, NewShape("items", map[string]string{"category": "Science"}), first.Cursor, 2)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, core.KindInvalidArgument, core.KindOf(tt.fn()))
		})
	}

	page, err := m.PageOf(ctx, NewShape("items", map[string]string{"category": "Math", "board": ""}), first.Cursor, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestManager_LoadMore(t *testing.T) {
	ctx := context.Background()
	entries := makeEntries(7)
	m := newManager(t, entries)
	shape := NewShape("items", nil)

	var got []interface{}
	for i := 0; i < 3; i++ {
		page, err := m.LoadMore(ctx, "alice", shape, 3)
		require.NoError(t, err)
		got = append(got, page.Items...)
	}
	assert.Len(t, got, 7)
	assert.Equal(t, entries[0].Value, got[0])
	assert.Equal(t, entries[6].Value, got[6])

	// other owners page independently
	page, err := m.LoadMore(ctx, "bob", shape, 3)
	require.NoError(t, err)
	assert.Equal(t, entries[0].Value, page.Items[0])

	require.NoError(t, m.Reset(ctx, "alice", shape))
	page, err = m.LoadMore(ctx, "alice", shape, 3)
	require.NoError(t, err)
	assert.Equal(t, entries[0].Value, page.Items[0])
}

func TestShape_Key(t *testing.T) {
	a := NewShape("catalog", map[string]string{"section": "lecture", "category": "Math", "board": ""})
	b := NewShape("catalog", map[string]string{"category": "Math", "section": "lecture"})
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "catalog?category=Math&section=lecture", a.Key())
	assert.Equal(t, "catalog", NewShape("catalog", nil).Key())
}

func TestMemoryCursorStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCursorStore(time.Minute).(*memoryCursorStore)
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "u", "k", "c"))
	c, ok, err := s.Get(ctx, "u", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c", c)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok, err = s.Get(ctx, "u", "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
