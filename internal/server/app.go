// Package server wires the row store server together: Postgres storage,
// the gRPC row service, the HTTP surface and poster presigning.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/cal/internal/logging"
	"github.com/dmitrijs2005/cal/internal/rowstore"
	"github.com/dmitrijs2005/cal/internal/server/auth"
	"github.com/dmitrijs2005/cal/internal/server/config"
	"github.com/dmitrijs2005/cal/internal/server/httpapi"
	"github.com/dmitrijs2005/cal/internal/server/posters"
	"github.com/dmitrijs2005/cal/internal/server/storage"

	gs "github.com/dmitrijs2005/cal/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	store  rowstore.Store
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := storage.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if c.RunMigrations {
		n, err := storage.RunMigrations(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		logger.Info(ctx, "migrations applied", "count", n)
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		store:  storage.NewPostgresStore(db, rowstore.DefaultSchema),
	}, nil
}

// PrintKeys writes a fresh anon and service API key to w.
func PrintKeys(w io.Writer, c *config.Config) error {
	for _, role := range []string{auth.RoleAnon, auth.RoleService} {
		key, err := auth.GenerateAPIKey(role, []byte(c.SecretKey), 0)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", role, key); err != nil {
			return err
		}
	}
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.store,
		posters.NewPresigner(app.config), app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := httpapi.NewRouter(app.store, app.logger.With("module", "http_server"))
	if err := httpapi.Serve(ctx, app.config.EndpointAddrHTTP, h, app.logger); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
