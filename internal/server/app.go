// Package server wires configuration, storage, services and transports into
// the civicdesk application and runs it until a shutdown signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/civicdesk/internal/dbx"
	"github.com/dmitrijs2005/civicdesk/internal/logging"
	"github.com/dmitrijs2005/civicdesk/internal/server/api"
	"github.com/dmitrijs2005/civicdesk/internal/server/auth"
	"github.com/dmitrijs2005/civicdesk/internal/server/config"
	"github.com/dmitrijs2005/civicdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/civicdesk/internal/server/services"
	"github.com/dmitrijs2005/civicdesk/internal/server/storage"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/civicdesk/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	pool        *dbx.Pool
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	handler     *api.Handler
}

// NewApp builds the application. Nothing connects yet: the database pool and
// the storage client open on first use.
func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.NewLogger(c.LogFormat, c.LogLevel, os.Stdout)

	hasher, err := auth.NewHasher(c.PasswordHashScheme)
	if err != nil {
		return nil, fmt.Errorf("hasher: %w", err)
	}
	tokens := auth.NewTokenService(c.AccessTokenSecret, c.RefreshTokenSecret,
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)

	pool := dbx.NewPool(dbx.PoolConfig{
		DSN:            c.DatabaseDSN,
		MaxOpenConns:   c.DatabaseMaxConns,
		ConnectTimeout: c.DatabaseConnectTimeout,
		IdleTimeout:    c.DatabaseIdleTimeout,
	})

	st, err := storage.NewProvider(c.StorageBackend, storage.Options{
		Region:    c.S3Region,
		Endpoint:  c.S3BaseEndpoint,
		PublicURL: c.S3PublicURL,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	us := services.NewUserService(pool, rm, hasher, tokens, st, c, logger)
	es := services.NewEventService(pool, rm, logger)
	cs := services.NewComplaintService(pool, rm, st, c, logger)

	h := api.NewHandler(us, es, cs, pool, api.Limits{
		MaxUploadSize: c.MaxUploadSize,
		MaxPhotos:     c.MaxComplaintPhotos,
	}, logger.With("module", "api"))

	return &App{
		config:      c,
		logger:      logger,
		pool:        pool,
		repomanager: rm,
		tokens:      tokens,
		handler:     h,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// migrate applies pending schema migrations. It is the first use of the pool.
func (app *App) migrate(ctx context.Context) error {
	db, err := app.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	if err := app.repomanager.RunMigrations(ctx, db.DB); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Run migrates the schema, then serves HTTP and gRPC health until ctx is
// cancelled or a signal arrives. A failing server stops the other one.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	defer func() {
		if err := app.pool.Close(); err != nil {
			app.logger.Error(ctx, "closing database", "error", err)
		}
	}()

	if err := app.migrate(ctx); err != nil {
		return err
	}

	router := api.NewRouter(app.handler, app.tokens, app.logger.With("module", "http"))
	httpServer := api.NewServer(app.config.EndpointAddrHTTP, router, app.logger)
	grpcServer := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.pool)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(gctx) })
	g.Go(func() error { return grpcServer.Run(gctx) })

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}
