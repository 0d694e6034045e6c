// Package server wires configuration, storage, services and the HTTP
// transport together and runs them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/server/auth"
	"github.com/dmitrijs2005/gophstore/internal/server/config"
	"github.com/dmitrijs2005/gophstore/internal/server/httpapi"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophstore/internal/server/services"
	"github.com/dmitrijs2005/gophstore/internal/server/storage"
)

// seams for tests
var (
	openPostgres = repomanager.OpenPostgres
	newStore     = storage.New
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// NewApp validates c, connects to the database, applies migrations and
// builds the HTTP server.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSON(os.Stdout, level)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := openPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	store, err := newStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("image store: %w", err)
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.TokenTTL)
	hasher := auth.NewBcryptHasher(c.BcryptCost)

	users := services.NewUserService(db, rm, hasher, tokens, c, logger)
	items := services.NewItemService(db, rm, c, logger)
	images := services.NewImageService(store, users, c, logger)

	deps := httpapi.Deps{
		Users:  users,
		Items:  items,
		Images: images,
		Tokens: tokens,
		Ready:  db.PingContext,
	}
	if c.UploadBackend == config.UploadBackendLocal {
		deps.StaticDir = c.UploadDir
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		server: httpapi.NewServer(c, logger, deps),
	}, nil
}

// Run serves until SIGINT/SIGTERM or until ctx is cancelled, then closes
// the database pool.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.logger.Info(ctx, "Starting app...")
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "close database", "error", err.Error())
		}
		app.logger.Info(context.Background(), "App stopped")
	}()

	return app.server.Run(ctx)
}
