package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/AnjishnuSengupta/Hackathon-AI-Edu/apps/api/echo"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/comment"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/notification"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/paging"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/rating"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/recommend"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/user"
	emailsvc "github.com/AnjishnuSengupta/Hackathon-AI-Edu/services/email"
	logsvc "github.com/AnjishnuSengupta/Hackathon-AI-Edu/services/logger"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/database"
	inmemdb "github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/database/inmem"
	rediscursors "github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/redis"
	docrepos "github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/repos"
)

const engineMemory = "memory"

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// ClosersParam collects the resources to release on shutdown.
	ClosersParam struct {
		dig.In
		Closers []io.Closer `group:"closers"`
	}

	storeResult struct {
		dig.Out
		Store  docstore.Store
		Closer io.Closer `group:"closers"`
	}

	cursorStoreResult struct {
		dig.Out
		Cursors paging.CursorStore
		Closer  io.Closer `group:"closers"`
	}

	serverParams struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		Translator    ut.Translator
		Pager         *paging.Manager
		Catalog       *catalog.Service
		Users         *user.Service
		Ratings       *rating.Service
		Recommend     *recommend.Service
		Notifications *notification.Service
		Comments      *comment.Service
	}

	closerFunc func() error
)

func (fn closerFunc) Close() error { return fn() }

var nopCloser = closerFunc(func() error { return nil })

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	catalog.InitValidators(validate, translator)
	docrepos.InitValidators(validate)
	return validate, translator
}

// newStore opens the document store selected by conf.Database.Engine.
func newStore(conf *core.Config, loggerParam DBLoggerParam) storeResult {
	if conf.Database.Engine == engineMemory {
		loggerParam.Logger.Info("using the in-memory document store")
		return storeResult{Store: inmemdb.Open(), Closer: nopCloser}
	}

	setUp := func() (*database.Store, io.Closer, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, err
		}

		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return database.NewStore(db), db, nil
	}

	store, closer, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return storeResult{Store: store, Closer: closer}
}

// newCursorStore keeps load-more cursors in Redis when an address is configured, in memory otherwise.
func newCursorStore(conf *core.Config, logger core.Logger) cursorStoreResult {
	if conf.Redis.Address == "" {
		return cursorStoreResult{Cursors: paging.NewMemoryCursorStore(conf.Redis.CursorTTL), Closer: nopCloser}
	}
	cursors, err := rediscursors.Open(context.Background(), conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	return cursorStoreResult{Cursors: cursors, Closer: cursors}
}

func newCatalogService(repos *docrepos.Repositories, validate *validator.Validate, pager *paging.Manager) *catalog.Service {
	svc := catalog.NewService(repos.Items, validate)
	pager.Register(catalog.PageQuery, svc)
	return svc
}

func newUserService(repos *docrepos.Repositories, validate *validator.Validate) *user.Service {
	return user.NewService(repos.Users, validate)
}

func newRatingService(repos *docrepos.Repositories, catalogSvc *catalog.Service) *rating.Service {
	return rating.NewService(repos.Votes, catalogSvc.ApplyRating)
}

func newRecommendService(conf *core.Config, catalogSvc *catalog.Service, userSvc *user.Service) *recommend.Service {
	return recommend.NewService(conf, catalogSvc, userSvc)
}

func newNotificationService(
	repos *docrepos.Repositories,
	userSvc *user.Service,
	mailSvc core.EmailService,
	pager *paging.Manager,
	validate *validator.Validate,
) *notification.Service {
	return notification.NewService(repos.Notifications, userSvc, mailSvc, pager, validate)
}

func newCommentService(repos *docrepos.Repositories, catalogSvc *catalog.Service, validate *validator.Validate) *comment.Service {
	return comment.NewService(repos.Comments, catalogSvc, validate)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Translator:    p.Translator,
		Pager:         p.Pager,
		Catalog:       p.Catalog,
		Users:         p.Users,
		Ratings:       p.Ratings,
		Recommend:     p.Recommend,
		Notifications: p.Notifications,
		Comments:      p.Comments,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newValidator))
	must(c.Provide(newStore))
	must(c.Provide(newCursorStore))
	must(c.Provide(paging.NewManager))
	must(c.Provide(emailsvc.NewEmailService))
	must(c.Provide(docrepos.New))
	must(c.Provide(newCatalogService))
	must(c.Provide(newUserService))
	must(c.Provide(newRatingService))
	must(c.Provide(newRecommendService))
	must(c.Provide(newNotificationService))
	must(c.Provide(newCommentService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
