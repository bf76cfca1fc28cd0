package echoapi_test

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/AnjishnuSengupta/Hackathon-AI-Edu/apps/api/echo"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/comment"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/notification"
	testutil "github.com/AnjishnuSengupta/Hackathon-AI-Edu/tests"
)

// item is the subset of the item JSON the tests look at.
type item struct {
	ID         string          `json:"id"`
	Section    catalog.Section `json:"section"`
	Kind       catalog.Kind    `json:"kind"`
	Title      string          `json:"title"`
	Category   string          `json:"category"`
	ClassLevel int             `json:"classLevel"`
}

type page struct {
	Items   []item `json:"items"`
	Cursor  string `json:"cursor"`
	HasMore bool   `json:"hasMore"`
}

func newItem(section, title, category string) map[string]interface{} {
	return map[string]interface{}{
		"section":  section,
		"title":    title,
		"category": category,
		"kind":     "text",
		"content":  "All about " + title,
	}
}

func TestCatalogAPI_Permissions(t *testing.T) {
	server, env := setup(t)
	adminToken := profileToken(t, env, "root", core.RoleAdmin)
	userToken := profileToken(t, env, "ada", "")
	testutil.CreateItem(t, env, "atoms", catalog.SectionResource, "Science")

	runHTTPTests(t, server, []httpTest{
		{"user cannot create", http.MethodPost, "/v1/catalog/items", newItem("lecture", "Atoms", "Science"), userToken, http.StatusForbidden},
		{"user cannot update", http.MethodPut, "/v1/catalog/items/atoms", newItem("resource", "Atoms", "Science"), userToken, http.StatusForbidden},
		{"user cannot delete", http.MethodDelete, "/v1/catalog/items/atoms", nil, userToken, http.StatusForbidden},
		{"admin creates", http.MethodPost, "/v1/catalog/items", newItem("lecture", "Cells", "Biology"), adminToken, http.StatusCreated},
		{"invalid section", http.MethodPost, "/v1/catalog/items", newItem("course", "Cells", "Biology"), adminToken, http.StatusBadRequest},
		{"update missing", http.MethodPut, "/v1/catalog/items/lol", newItem("resource", "Atoms", "Science"), adminToken, http.StatusNotFound},
		{"section change", http.MethodPut, "/v1/catalog/items/atoms", newItem("lecture", "Atoms", "Science"), adminToken, http.StatusBadRequest},
		{"admin deletes", http.MethodDelete, "/v1/catalog/items/atoms", nil, adminToken, http.StatusNoContent},
		{"delete missing", http.MethodDelete, "/v1/catalog/items/atoms", nil, adminToken, http.StatusNotFound},
	})
}

func TestCatalogAPI_CRUD(t *testing.T) {
	server, env := setup(t)
	adminToken := profileToken(t, env, "root", core.RoleAdmin)
	userToken := profileToken(t, env, "ada", "")

	// field errors are keyed by JSON name
	var fldErrs map[string]string
	body := newItem("lecture", "", "Science")
	code := do(t, server, http.MethodPost, "/v1/catalog/items", adminToken, body, &fldErrs)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, fldErrs, "title")

	var created item
	body = newItem("lecture", "Atoms", "Science")
	body["classLevel"] = 9
	code = do(t, server, http.MethodPost, "/v1/catalog/items", adminToken, body, &created)
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, catalog.SectionLecture, created.Section)
	assert.Equal(t, catalog.KindText, created.Kind)
	assert.Equal(t, 9, created.ClassLevel)

	var got item
	code = do(t, server, http.MethodGet, "/v1/catalog/items/"+created.ID, userToken, nil, &got)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, created, got)

	var herr httpErr
	code = do(t, server, http.MethodGet, "/v1/catalog/items/lol", userToken, nil, &herr)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "item not found", herr.Error)

	body = newItem("", "Atoms and Molecules", "Chemistry")
	code = do(t, server, http.MethodPut, "/v1/catalog/items/"+created.ID, adminToken, body, &got)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Atoms and Molecules", got.Title)
	assert.Equal(t, catalog.SectionLecture, got.Section)

	var cats []string
	code = do(t, server, http.MethodGet, "/v1/catalog/categories", userToken, nil, &cats)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Chemistry"}, cats)

	var groups []struct {
		ClassLevel int          `json:"classLevel"`
		Kind       catalog.Kind `json:"kind"`
		Items      []item       `json:"items"`
	}
	code = do(t, server, http.MethodGet, "/v1/catalog/categories/Chemistry/groups", userToken, nil, &groups)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, groups, 1)
	assert.Equal(t, catalog.KindText, groups[0].Kind)
	assert.Equal(t, 0, groups[0].ClassLevel)
	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, created.ID, groups[0].Items[0].ID)
}

func TestCatalogAPI_Query(t *testing.T) {
	server, env := setup(t)
	token := profileToken(t, env, "ada", "")
	testutil.CreateItem(t, env, "atoms", catalog.SectionResource, "Science")
	testutil.CreateItem(t, env, "cells", catalog.SectionLecture, "Biology")
	testutil.CreateItem(t, env, "genes", catalog.SectionLecture, "Biology")

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"atoms", "cells", "genes"}},
		{"?category=Biology", []string{"cells", "genes"}},
		{"?section=resource", []string{"atoms"}},
		{"?search=GEN", []string{"genes"}},
		{"?category=History", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var items []item
			code := do(t, server, http.MethodGet, "/v1/catalog/items"+tt.query, token, nil, &items)
			require.Equal(t, http.StatusOK, code)
			ids := make([]string, 0, len(items))
			for _, it := range items {
				ids = append(ids, it.ID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}

	runHTTPTests(t, server, []httpTest{
		{"invalid section", http.MethodGet, "/v1/catalog/items?section=course", nil, token, http.StatusBadRequest},
		{"invalid class level", http.MethodGet, "/v1/catalog/items?classLevel=13", nil, token, http.StatusBadRequest},
		{"class level not a number", http.MethodGet, "/v1/catalog/items?classLevel=x", nil, token, http.StatusBadRequest},
	})
}

func TestCatalogAPI_Static(t *testing.T) {
	server, env := setup(t)
	token := profileToken(t, env, "ada", "")

	var cur catalog.Curriculum
	code := do(t, server, http.MethodGet, "/v1/catalog/curriculum", token, nil, &cur)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, catalog.GetCurriculum(), cur)

	testutil.CreateItem(t, env, "atoms", catalog.SectionResource, "Science")
	var tree []catalog.TreeNode
	code = do(t, server, http.MethodGet, "/v1/catalog/tree", token, nil, &tree)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, tree, 1)
	assert.Equal(t, 1, tree[0].Count)
}

func TestCatalogAPI_MalformedItem(t *testing.T) {
	server, env := setup(t)
	token := profileToken(t, env, "ada", "")
	_, err := env.Store.Create(ctx, docstore.Resources, docstore.Document{
		ID:   "bad",
		Data: []byte(`{"title":"","category":"Math","kind":"text"}`),
	})
	require.NoError(t, err)

	var e httpErr
	code := do(t, server, http.MethodGet, "/v1/catalog/items/bad", token, nil, &e)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "service unavailable", e.Error)

	var items []item
	code = do(t, server, http.MethodGet, "/v1/catalog/items", token, nil, &items)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, items)
}

func createItems(t *testing.T, env *testutil.Env, n int) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		section := catalog.SectionResource
		if i%2 == 1 {
			section = catalog.SectionLecture
		}
		testutil.CreateItem(t, env, fmt.Sprintf("item-%02d", i), section, "Science", start.Add(time.Duration(i)*time.Minute))
	}
}

func TestCatalogAPI_Pages(t *testing.T) {
	server, env := setup(t)
	token := profileToken(t, env, "ada", "")
	createItems(t, env, 25)

	var seen []string
	var sizes []int
	path := "/v1/catalog/pages?size=10"
	for i := 0; i < 4; i++ {
		var p page
		code := do(t, server, http.MethodGet, path, token, nil, &p)
		require.Equal(t, http.StatusOK, code)
		sizes = append(sizes, len(p.Items))
		for _, it := range p.Items {
			seen = append(seen, it.ID)
		}
		if p.Cursor == "" {
			break
		}
		path = "/v1/catalog/pages?size=10&cursor=" + p.Cursor
	}
	assert.Equal(t, []int{10, 10, 5, 0}, sizes)
	require.Len(t, seen, 25)
	assert.Equal(t, "item-24", seen[0])
	assert.Equal(t, "item-00", seen[24])

	var p page
	code := do(t, server, http.MethodGet, "/v1/catalog/pages?section=lecture&size=50", token, nil, &p)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, p.Items, 12)
	assert.False(t, p.HasMore)

	runHTTPTests(t, server, []httpTest{
		{"invalid cursor", http.MethodGet, "/v1/catalog/pages?cursor=lol", nil, token, http.StatusBadRequest},
		{"invalid size", http.MethodGet, "/v1/catalog/pages?size=-1", nil, token, http.StatusBadRequest},
		{"invalid section", http.MethodGet, "/v1/catalog/pages?section=course", nil, token, http.StatusBadRequest},
	})
}

func TestCatalogAPI_PagesRejectForeignCursors(t *testing.T) {
	server, env := setup(t)
	alice := profileToken(t, env, "alice", "")
	profileToken(t, env, "bob", "")
	createItems(t, env, 3)

	for _, msg := range []string{"bob secret", "bob other secret"} {
		_, err := env.Notifications.Create(ctx, testutil.AdminSession("root"), notification.NewNotification{UserID: "bob", Message: msg})
		require.NoError(t, err)
	}
	bobPage, err := env.Notifications.Page(ctx, core.Session{UserID: "bob", Role: core.RoleUser}, "bob", "", 1)
	require.NoError(t, err)
	require.NotEmpty(t, bobPage.Cursor)

	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"s":{"n":"notifications","p":{"userId":"bob"}}}`))
	forgedCatalog := base64.RawURLEncoding.EncodeToString([]byte(`{"s":{"n":"` + catalog.PageQuery + `"}}`))

	for name, cursor := range map[string]string{
		"notification cursor":    bobPage.Cursor,
		"forged notifications":   forged,
		"forged catalog listing": forgedCatalog,
	} {
		t.Run(name, func(t *testing.T) {
			req, rec := newAuthRequest(t, http.MethodGet, "/v1/catalog/pages?cursor="+cursor, alice)
			server.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotContains(t, rec.Body.String(), "secret")
		})
	}

	// a genuine catalog cursor still works
	var p page
	code := do(t, server, http.MethodGet, "/v1/catalog/pages?size=2", alice, nil, &p)
	require.Equal(t, http.StatusOK, code)
	code = do(t, server, http.MethodGet, "/v1/catalog/pages?size=2&cursor="+p.Cursor, alice, nil, &p)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, p.Items, 1)
}

func TestCatalogAPI_LoadMore(t *testing.T) {
	server, env := setup(t)
	ada := profileToken(t, env, "ada", "")
	bob := profileToken(t, env, "bob", "")
	createItems(t, env, 7)

	more := func(token, query string) []string {
		var p page
		code := do(t, server, http.MethodGet, "/v1/catalog/more?size=3"+query, token, nil, &p)
		require.Equal(t, http.StatusOK, code)
		ids := make([]string, 0, len(p.Items))
		for _, it := range p.Items {
			ids = append(ids, it.ID)
		}
		return ids
	}

	assert.Equal(t, []string{"item-06", "item-05", "item-04"}, more(ada, ""))
	assert.Equal(t, []string{"item-03", "item-02", "item-01"}, more(ada, ""))

	// cursors are per user and per filter
	assert.Equal(t, []string{"item-06", "item-05", "item-04"}, more(bob, ""))
	assert.Equal(t, []string{"item-05", "item-03", "item-01"}, more(ada, "&section=lecture"))

	assert.Equal(t, []string{"item-00"}, more(ada, ""))

	code := do(t, server, http.MethodDelete, "/v1/catalog/more", ada, nil, nil)
	require.Equal(t, http.StatusNoContent, code)
	assert.Equal(t, []string{"item-06", "item-05", "item-04"}, more(ada, ""))
}

func TestCatalogAPI_Votes(t *testing.T) {
	server, env := setup(t)
	ada := profileToken(t, env, "ada", "")
	bob := profileToken(t, env, "bob", "")
	testutil.CreateItem(t, env, "atoms", catalog.SectionResource, "Science")

	var votes echoapi.VotesResponse
	code := do(t, server, http.MethodGet, "/v1/catalog/items/atoms/votes", ada, nil, &votes)
	require.Equal(t, http.StatusOK, code)
	assert.Zero(t, votes.Summary.Count)
	assert.Nil(t, votes.Vote)

	for _, v := range []struct {
		token  string
		rating int
	}{{ada, 2}, {bob, 5}, {ada, 4}} {
		code = do(t, server, http.MethodPost, "/v1/catalog/items/atoms/votes", v.token, echoapi.VoteRequest{Rating: v.rating}, &votes)
		require.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, 2, votes.Summary.Count)
	assert.Equal(t, 4.5, votes.Summary.Display)

	code = do(t, server, http.MethodGet, "/v1/catalog/items/atoms/votes", ada, nil, &votes)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, votes.Vote)
	assert.Equal(t, 4, *votes.Vote)

	// the indexed item carries the new rating
	var it struct {
		Rating struct {
			Count int `json:"count"`
		} `json:"rating"`
	}
	code = do(t, server, http.MethodGet, "/v1/catalog/items/atoms", ada, nil, &it)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, it.Rating.Count)

	runHTTPTests(t, server, []httpTest{
		{"out of range", http.MethodPost, "/v1/catalog/items/atoms/votes", echoapi.VoteRequest{Rating: 6}, ada, http.StatusBadRequest},
		{"missing item", http.MethodPost, "/v1/catalog/items/lol/votes", echoapi.VoteRequest{Rating: 3}, ada, http.StatusNotFound},
	})
}

func TestCatalogAPI_Comments(t *testing.T) {
	server, env := setup(t)
	ada := profileToken(t, env, "ada", "")
	testutil.CreateItem(t, env, "atoms", catalog.SectionResource, "Science")

	var c comment.Comment
	code := do(t, server, http.MethodPost, "/v1/catalog/items/atoms/comments", ada, comment.NewComment{Body: " Neat! "}, &c)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "ada", c.AuthorID)
	assert.Equal(t, "ada", c.AuthorName)
	assert.Equal(t, "Neat!", c.Body)

	var comments []comment.Comment
	code = do(t, server, http.MethodGet, "/v1/catalog/items/atoms/comments", ada, nil, &comments)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, comments, 1)
	assert.Equal(t, c.ID, comments[0].ID)

	runHTTPTests(t, server, []httpTest{
		{"blank comment", http.MethodPost, "/v1/catalog/items/atoms/comments", comment.NewComment{Body: "  "}, ada, http.StatusBadRequest},
		{"missing item", http.MethodPost, "/v1/catalog/items/lol/comments", comment.NewComment{Body: "hi"}, ada, http.StatusNotFound},
		{"list missing item", http.MethodGet, "/v1/catalog/items/lol/comments", nil, ada, http.StatusNotFound},
	})
}
