package main

import (
	"github.com/AnjishnuSengupta/Hackathon-AI-Edu/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil || cli.conf.Database.Engine == engineMemory {
		return errNeedsDB
	}
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}
