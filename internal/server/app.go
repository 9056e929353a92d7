// Package server initializes and runs the userbase server: it opens and
// migrates the database, builds the authentication components and serves
// the HTTP API until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/userbase/internal/logging"
	"github.com/dmitrijs2005/userbase/internal/server/auth"
	"github.com/dmitrijs2005/userbase/internal/server/config"
	"github.com/dmitrijs2005/userbase/internal/server/httpapi"
	"github.com/dmitrijs2005/userbase/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userbase/internal/server/services"
	"github.com/gin-gonic/gin"
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server runner
}

// NewApp connects to PostgreSQL, applies migrations and wires the HTTP stack.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app, err := newApp(c, logger, db, rm)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

// newApp builds everything above the storage handle.
func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if c.SecretKey == "" {
		return nil, fmt.Errorf("token codec: secret key is empty")
	}

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey), auth.WithValidity(c.TokenValidityDuration))
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	us := services.NewUserService(db, rm, auth.NewPasswordHasher(), codec)

	gin.SetMode(c.GinMode)
	metrics := httpapi.NewMetrics()
	router := httpapi.NewRouter(httpapi.NewHandler(us, logger, metrics), auth.NewGuard(codec), logger, metrics)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: httpapi.NewServer(c.EndpointAddrHTTP, router, logger),
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")

	return runErr
}
