package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	echoapi "github.com/tmwangi/kazi/apps/api/echo"
	"github.com/tmwangi/kazi/core"
	"github.com/tmwangi/kazi/core/homework"
	emailsvc "github.com/tmwangi/kazi/services/email"
	logsvc "github.com/tmwangi/kazi/services/logger"
	"github.com/tmwangi/kazi/storage/database"
	inmemstore "github.com/tmwangi/kazi/storage/inmem"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up services
	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	// set up the store
	var store core.KVStore
	if core.Conf.Database.Enabled() {
		db, err := database.Open(core.Conf)
		errAndDie(std, err)
		defer db.Close()
		errAndDie(std, database.Ping(db))
		errAndDie(std, database.Migrate(db))
		store = database.NewKVStore(db)
	} else {
		std.Print("no database configured; using in-memory store")
		store = inmemstore.New()
	}

	hwSvc, err := homework.NewService(store, mailSvc)
	errAndDie(std, err)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:     core.Conf.Server.Addr(),
			Logger:      logger,
			HomeworkSvc: hwSvc,
		},
	)

	serverErrs := make(chan error, 1)
	go func() { serverErrs <- app.Start() }()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrs:
		errAndDie(std, err)
	case sig := <-shutdown:
		std.Printf("caught %v; shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			std.Printf("graceful shutdown failed: %v", err)
		}
	}
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
