package recommend_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/recommend"
	testutil "github.com/AnjishnuSengupta/Hackathon-AI-Edu/tests"
)

var ctx = context.Background()

func ids(items []catalog.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestService_Recommend(t *testing.T) {
	env := testutil.NewEnv(t)
	now := time.Now().UTC()
	testutil.CreateItem(t, env, "math-1", catalog.SectionLecture, "Math", now.Add(-5*time.Hour))
	testutil.CreateItem(t, env, "math-2", catalog.SectionResource, "Math", now.Add(-4*time.Hour))
	testutil.CreateItem(t, env, "sci-1", catalog.SectionLecture, "Science", now.Add(-3*time.Hour))
	testutil.CreateItem(t, env, "art-1", catalog.SectionLecture, "Art", now.Add(-2*time.Hour))
	testutil.CreateItem(t, env, "sci-2", catalog.SectionResource, "Science", now.Add(-1*time.Hour))

	ada := testutil.CreateProfile(t, env, "ada", "Ada", "ada@test.com", "").Session()

	// no preferences
	items, err := env.Recommend.Recommend(ctx, ada, "ada", 0)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	_, err = env.Users.SetPreferences(ctx, ada, "ada", []string{"Math", "Science", "Math"})
	require.NoError(t, err)
	_, err = env.Users.MarkCompleted(ctx, ada, "ada", "math-2")
	require.NoError(t, err)

	items, err = env.Recommend.Recommend(ctx, ada, "ada", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"sci-2", "sci-1", "math-1"}, ids(items))

	items, err = env.Recommend.Recommend(ctx, ada, "ada", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"sci-2", "sci-1"}, ids(items))

	// unknown categories recommend nothing
	_, err = env.Users.SetPreferences(ctx, ada, "ada", []string{"Cooking"})
	require.NoError(t, err)
	items, err = env.Recommend.Recommend(ctx, ada, "ada", 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_Recommend_Permissions(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.CreateProfile(t, env, "ada", "Ada", "ada@test.com", "")
	bob := testutil.CreateProfile(t, env, "bob", "Bob", "bob@test.com", "").Session()

	_, err := env.Recommend.Recommend(ctx, bob, "ada", 0)
	assert.Equal(t, core.KindPermissionDenied, core.KindOf(err))

	_, err = env.Recommend.Recommend(ctx, testutil.AdminSession("root"), "ada", 0)
	assert.NoError(t, err)

	_, err = env.Recommend.Recommend(ctx, testutil.AdminSession("root"), "lol", 0)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestService_Recommend_DefaultLimit(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := recommend.NewService(env.Conf, env.Catalog, env.Users)
	for i := 0; i < env.Conf.Catalog.RecommendationLimit+3; i++ {
		testutil.CreateItem(t, env, "", catalog.SectionResource, "Math")
	}
	ada := testutil.CreateProfile(t, env, "ada", "Ada", "ada@test.com", "").Session()
	_, err := env.Users.SetPreferences(ctx, ada, "ada", []string{"Math"})
	require.NoError(t, err)

	items, err := svc.Recommend(ctx, ada, "ada", -1)
	require.NoError(t, err)
	assert.Len(t, items, env.Conf.Catalog.RecommendationLimit)
}
