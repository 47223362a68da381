package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	echoweb "github.com/trezcool/gradebook/apps/web/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/catalog"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/user"
	logsvc "github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/storage/database"
	inmemdb "github.com/trezcool/gradebook/storage/database/inmem"
	"github.com/trezcool/gradebook/storage/database/sqlxrepos"
)

type repositories struct {
	users   user.Repository
	catalog catalog.Repository
	grades  grade.Repository
	ping    func(ctx context.Context) error
	close   func() error
}

func main() {
	std := log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if err := run(std); err != nil {
		std.Fatalf("%+v", err)
	}
}

func run(std *log.Logger) error {
	conf, err := core.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	logger := logsvc.NewRollbarLogger(std, conf)
	defer logger.Close()

	repos, err := openRepositories(conf)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	validate, translator := core.NewValidator()
	usrSvc := user.NewService(repos.users, validate, translator)
	catSvc := catalog.NewService(repos.catalog, validate, translator)
	gradeSvc := grade.NewService(repos.grades, usrSvc, catSvc, validate, translator)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app, err := echoweb.NewServer(&echoweb.Options{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		UserSvc:     usrSvc,
		CatalogSvc:  catSvc,
		GradeSvc:    gradeSvc,
		HealthCheck: repos.ping,
	})
	if err != nil {
		return errors.Wrap(err, "setting up server")
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening on " + conf.Server.Address)
		serverErrors <- app.Start()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "server error")
		}
		return nil
	case sig := <-shutdown:
		logger.Info("shutdown started: " + sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
		logger.Info("shutdown complete")
	}
	return nil
}

// openRepositories picks the storage engine named by database.engine.
func openRepositories(conf *core.Config) (*repositories, error) {
	if conf.Database.Engine == "inmem" {
		db := inmemdb.Open()
		return &repositories{
			users:   inmemdb.NewUserRepository(db),
			catalog: inmemdb.NewCatalogRepository(db),
			grades:  inmemdb.NewGradeRepository(db),
			ping:    func(context.Context) error { return nil },
			close:   func() error { return nil },
		}, nil
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = database.Migrate(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &repositories{
		users:   sqlxrepos.NewUserRepository(db),
		catalog: sqlxrepos.NewCatalogRepository(db),
		grades:  sqlxrepos.NewGradeRepository(db),
		ping:    db.PingContext,
		close:   db.Close,
	}, nil
}
