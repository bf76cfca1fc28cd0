package notification_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/notification"
	emailsvc "github.com/AnjishnuSengupta/Hackathon-AI-Edu/services/email"
	testutil "github.com/AnjishnuSengupta/Hackathon-AI-Edu/tests"
)

var ctx = context.Background()

func TestService_Create(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Notifications
	admin := testutil.CreateProfile(t, env, "root", "Root", "root@test.com", core.RoleAdmin).Session()
	ada := testutil.CreateProfile(t, env, "ada", "Ada", "ada@test.com", "").Session()
	testutil.CreateProfile(t, env, "nomail", "No Mail", "", "")

	n, err := svc.Create(ctx, admin, notification.NewNotification{UserID: "ada", Message: "  Quiz on Friday "})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "ada", n.UserID)
	assert.Equal(t, "Quiz on Friday", n.Message)
	assert.False(t, n.Read)

	sent := emailsvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@test.com", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Quiz on Friday")

	_, err = svc.Create(ctx, admin, notification.NewNotification{UserID: "nomail", Message: "hi"})
	require.NoError(t, err)
	assert.Len(t, emailsvc.Sent(), 1)

	tests := []struct {
		name string
		sess core.Session
		nn   notification.NewNotification
		want core.Kind
	}{
		{"not admin", ada, notification.NewNotification{UserID: "ada", Message: "hi"}, core.KindPermissionDenied},
		{"blank message", admin, notification.NewNotification{UserID: "ada", Message: "   "}, core.KindInvalidArgument},
		{"missing user id", admin, notification.NewNotification{Message: "hi"}, core.KindInvalidArgument},
		{"unknown user", admin, notification.NewNotification{UserID: "lol", Message: "hi"}, core.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.sess, tt.nn)
			require.Error(t, err)
			assert.Equal(t, tt.want, core.KindOf(err), err.Error())
		})
	}
}

func TestService_ReadState(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Notifications
	admin := testutil.AdminSession("root")
	ada := testutil.CreateProfile(t, env, "ada", "Ada", "ada@test.com", "").Session()
	bob := testutil.CreateProfile(t, env, "bob", "Bob", "bob@test.com", "").Session()

	var created []notification.Notification
	for _, msg := range []string{"one", "two", "three"} {
		n, err := svc.Create(ctx, admin, notification.NewNotification{UserID: "ada", Message: msg})
		require.NoError(t, err)
		created = append(created, n)
	}

	count, err := svc.UnreadCount(ctx, ada, "ada")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = svc.MarkRead(ctx, bob, created[0].ID)
	assert.Equal(t, core.KindPermissionDenied, core.KindOf(err))
	_, err = svc.MarkRead(ctx, core.Anonymous, created[0].ID)
	assert.Equal(t, core.KindPermissionDenied, core.KindOf(err))
	_, err = svc.MarkRead(ctx, ada, "lol")
	assert.ErrorIs(t, err, notification.ErrNotFound)

	n, err := svc.MarkRead(ctx, ada, created[0].ID)
	require.NoError(t, err)
	assert.True(t, n.Read)
	n, err = svc.MarkRead(ctx, ada, created[0].ID)
	require.NoError(t, err)
	assert.True(t, n.Read)

	count, err = svc.UnreadCount(ctx, ada, "ada")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err := svc.List(ctx, ada, "ada")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	_, err = svc.List(ctx, bob, "ada")
	assert.Equal(t, core.KindPermissionDenied, core.KindOf(err))
	_, err = svc.UnreadCount(ctx, bob, "ada")
	assert.Equal(t, core.KindPermissionDenied, core.KindOf(err))

	list, err = svc.List(ctx, admin, "ada")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestService_Page(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Notifications
	admin := testutil.AdminSession("root")
	ada := testutil.CreateProfile(t, env, "ada", "Ada", "ada@test.com", "").Session()
	bob := testutil.CreateProfile(t, env, "bob", "Bob", "bob@test.com", "").Session()

	want := make(map[string]bool)
	for i := 0; i < 7; i++ {
		n, err := svc.Create(ctx, admin, notification.NewNotification{UserID: "ada", Message: "msg"})
		require.NoError(t, err)
		want[n.ID] = true
	}
	_, err := svc.Create(ctx, admin, notification.NewNotification{UserID: "bob", Message: "msg"})
	require.NoError(t, err)

	got := make(map[string]bool)
	page, err := svc.Page(ctx, ada, "ada", "", 3)
	require.NoError(t, err)
	pages := 1
	for {
		for _, v := range page.Items {
			n := v.(notification.Notification)
			assert.Equal(t, "ada", n.UserID)
			assert.False(t, got[n.ID], "duplicate %s", n.ID)
			got[n.ID] = true
		}
		if !page.HasMore {
			break
		}
		page, err = svc.Page(ctx, ada, "ada", page.Cursor, 3)
		require.NoError(t, err)
		pages++
	}
	assert.Equal(t, 3, pages)
	assert.Equal(t, want, got)

	// cursors are bound to their user
	first, err := svc.Page(ctx, ada, "ada", "", 3)
	require.NoError(t, err)
	_, err = svc.Page(ctx, bob, "bob", first.Cursor, 3)
	assert.Equal(t, core.KindInvalidArgument, core.KindOf(err))

	_, err = svc.Page(ctx, bob, "ada", "", 3)
	assert.Equal(t, core.KindPermissionDenied, core.KindOf(err))
}
