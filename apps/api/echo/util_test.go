package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/AnjishnuSengupta/Hackathon-AI-Edu/apps/api/echo"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/user"
	testutil "github.com/AnjishnuSengupta/Hackathon-AI-Edu/tests"
)

var ctx = context.Background()

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     interface{}
	token    string
	wantCode int
}

func setup(t *testing.T) (*echoapi.Server, *testutil.Env) {
	env := testutil.NewEnv(t)
	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:          env.Conf,
		Logger:        env.Logger,
		Translator:    env.Translator,
		Pager:         env.Pager,
		Catalog:       env.Catalog,
		Users:         env.Users,
		Ratings:       env.Ratings,
		Recommend:     env.Recommend,
		Notifications: env.Notifications,
		Comments:      env.Comments,
	})
	return server, env
}

func newAuthRequest(t *testing.T, method, path, token string, data ...interface{}) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 && data[0] != nil {
		if err := json.NewEncoder(&body).Encode(data[0]); err != nil {
			t.Fatalf("newAuthRequest() failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

// do serves the request and decodes the JSON response into out, when given.
func do(t *testing.T, server http.Handler, method, path, token string, body, out interface{}) int {
	t.Helper()
	req, rec := newAuthRequest(t, method, path, token, body)
	server.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func getToken(t *testing.T, conf *core.Config, ident user.Identity) string {
	token, err := echoapi.GenerateToken(conf, echoapi.NewClaims(conf, ident))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

// profileToken stores a profile with the role and returns a token for it.
func profileToken(t *testing.T, env *testutil.Env, id string, role core.Role) string {
	p := testutil.CreateProfile(t, env, id, id, id+"@test.com", role)
	return getToken(t, env.Conf, user.Identity{UserID: p.ID, Email: p.Email, DisplayName: p.DisplayName})
}

func runHTTPTests(t *testing.T, server http.Handler, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(t, tt.method, tt.path, tt.token, tt.body)
			server.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}
