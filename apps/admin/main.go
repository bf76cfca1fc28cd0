package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/catalog"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/docstore"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/notification"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/paging"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/core/user"
	emailsvc "github.com/AnjishnuSengupta/Hackathon-AI-Edu/services/email"
	logsvc "github.com/AnjishnuSengupta/Hackathon-AI-Edu/services/logger"
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/database"
	inmemdb "github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/database/inmem"
	docrepos "github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/repos"
)

const engineMemory = "memory"

var logger core.Logger

func main() {
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()
	logger = logsvc.NewRollbarLogger(stdLogger, conf)

	// set up store
	var (
		store docstore.Store
		db    *sql.DB
	)
	if conf.Database.Engine == engineMemory {
		store = inmemdb.Open()
	} else {
		xdb, err := database.Open(conf)
		errAndDie(err)
		defer xdb.Close()
		store, db = database.NewStore(xdb), xdb.DB
	}

	validate, translator := core.NewValidator()
	catalog.InitValidators(validate, translator)
	docrepos.InitValidators(validate)
	repos := docrepos.New(store, validate, logger)
	pager := paging.NewManager(conf, paging.NewMemoryCursorStore(conf.Redis.CursorTTL))

	catalogSvc := catalog.NewService(repos.Items, validate)
	pager.Register(catalog.PageQuery, catalogSvc)
	userSvc := user.NewService(repos.Users, validate)

	// start CLI
	cli := commandLine{
		conf:          conf,
		db:            db,
		catalog:       catalogSvc,
		users:         userSvc,
		notifications: notification.NewService(repos.Notifications, userSvc, emailsvc.NewEmailService(conf, logger), pager, validate),
		out:           os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
