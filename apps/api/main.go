package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/submission"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	relaysvc "github.com/trezcool/darasa/services/relay"
	"github.com/trezcool/darasa/storage/database"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

type repositories struct {
	users       user.Repository
	courses     course.Repository
	assignments assignment.Repository
	submissions submission.Repository
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(logsvc.NewConsoleLogger(os.Stdout, "API", conf.Debug), conf)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(logsvc.NewConsoleLogger(os.Stdout, "DB", conf.Debug), conf)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	var repos repositories
	if conf.TestMode {
		db := inmemdb.Open()
		repos = repositories{
			users:       inmemdb.NewUserRepository(db),
			courses:     inmemdb.NewCourseRepository(db),
			assignments: inmemdb.NewAssignmentRepository(db),
			submissions: inmemdb.NewSubmissionRepository(db),
		}
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				dbLogger.Error("Failed to close", err)
			}
		}()
		repos = repositories{
			users:       sqlxrepos.NewUserRepository(db),
			courses:     sqlxrepos.NewCourseRepository(db),
			assignments: sqlxrepos.NewAssignmentRepository(db),
			submissions: sqlxrepos.NewSubmissionRepository(db),
		}
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	relayClient := relaysvc.NewClient(conf, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			UserSvc:       user.NewService(repos.users, mailSvc, conf),
			CourseSvc:     course.NewService(repos.courses),
			AssignmentSvc: assignment.NewService(repos.assignments),
			SubmissionSvc: submission.NewService(repos.submissions, relayClient, conf.Relay.MaxConcurrency),
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests (and their relay calls) a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
