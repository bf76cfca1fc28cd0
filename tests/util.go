package testutil

import (
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/comment"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/notification"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/paging"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/rating"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/recommend"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/user"
	emailsvc "github.com/AnjishnuSengupta/Hackathon-AI-Edu/services/email"
	logsvc "github.com/AnjishnuSengupta/Hackathon-AI-Edu/services/logger"
	inmemdb "github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/database/inmem"
	docrepos "github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/repos"
)

// Env holds every service wired on a fresh in-memory store.
type Env struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Store      *inmemdb.DB
	Repos      *docrepos.Repositories
	MailSvc    core.EmailService
	Pager      *paging.Manager

	Catalog       *catalog.Service
	Users         *user.Service
	Ratings       *rating.Service
	Recommend     *recommend.Service
	Notifications *notification.Service
	Comments      *comment.Service
}

func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
}

// NewValidator returns a validator with the validators of every package registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	catalog.InitValidators(validate, translator)
	docrepos.InitValidators(validate)
	return validate, translator
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	env := &Env{Conf: core.NewTestConfig()}
	env.Logger = NewLogger(env.Conf)
	env.Validate, env.Translator = NewValidator()
	env.Store = inmemdb.Open()
	env.Repos = docrepos.New(env.Store, env.Validate, env.Logger)
	env.MailSvc = emailsvc.NewConsoleServiceMock(env.Conf, env.Logger)
	env.Pager = paging.NewManager(env.Conf, paging.NewMemoryCursorStore(env.Conf.Redis.CursorTTL))

	env.Catalog = catalog.NewService(env.Repos.Items, env.Validate)
	env.Pager.Register(catalog.PageQuery, env.Catalog)
	env.Users = user.NewService(env.Repos.Users, env.Validate)
	env.Ratings = rating.NewService(env.Repos.Votes, env.Catalog.ApplyRating)
	env.Recommend = recommend.NewService(env.Conf, env.Catalog, env.Users)
	env.Notifications = notification.NewService(env.Repos.Notifications, env.Users, env.MailSvc, env.Pager, env.Validate)
	env.Comments = comment.NewService(env.Repos.Comments, env.Catalog, env.Validate)

	emailsvc.ResetSentMessages()
	return env
}

func AdminSession(id string) core.Session {
	return core.Session{UserID: id, DisplayName: "Admin " + id, Role: core.RoleAdmin}
}

// CreateProfile stores a profile with the given role.
func CreateProfile(t *testing.T, env *Env, id, name, email string, role core.Role) user.Profile {
	t.Helper()
	p, err := env.Users.EnsureProfile(context.Background(), user.Identity{UserID: id, Email: email, DisplayName: name})
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	if role != "" && role != p.Role {
		if p, err = env.Repos.Users.SetRole(context.Background(), id, role); err != nil {
			t.Fatalf("CreateProfile() failed: %v", err)
		}
	}
	return p
}

// CreateItem stores a text item in the section, bypassing the catalog index.
func CreateItem(t *testing.T, env *Env, id string, section catalog.Section, category string, createdAt ...time.Time) catalog.Item {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	title := id
	if title == "" {
		title = fmt.Sprintf("%s item", category)
	}
	it, err := env.Repos.Items.CreateItem(context.Background(), catalog.Item{
		ID:          id,
		Section:     section,
		Title:       title,
		Description: "About " + category,
		Category:    category,
		Body:        catalog.TextBody{Content: "content of " + title},
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateItem() failed: %v", err)
	}
	return it
}
