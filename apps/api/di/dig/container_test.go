package dig_container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/AnjishnuSengupta/Hackathon-AI-Edu/apps/api/echo"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	inmemdb "github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/database/inmem"
)

func TestNew_InMemory(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_DATABASE_ENGINE", engineMemory)
	t.Setenv("TEST_REDIS_ADDRESS", "")

	c := New()
	err := c.Invoke(func(conf *core.Config, store docstore.Store, server *echoapi.Server, closers ClosersParam) {
		assert.True(t, conf.TestMode)
		assert.IsType(t, &inmemdb.DB{}, store)
		assert.Len(t, closers.Closers, 2)
		for _, closer := range closers.Closers {
			assert.NoError(t, closer.Close())
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	require.NoError(t, err)
}
