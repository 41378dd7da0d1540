package main

import (
	"fmt"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewConsoleLogger(os.Stderr, "ADMIN", conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(sqlxrepos.NewUserRepository(db), nil /* no mails */, conf),
		out:    os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		logger.Error("command failed", err)
		os.Exit(1)
	}
}
