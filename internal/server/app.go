// Package server wires configuration, storage, the revocation registry and
// the services together, and runs the HTTP API and the gRPC health endpoint
// until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/auth"
	"github.com/dmitrijs2005/movieapi/internal/server/config"
	"github.com/dmitrijs2005/movieapi/internal/server/httpapi"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/movieapi/internal/server/revocation"
	"github.com/dmitrijs2005/movieapi/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/movieapi/internal/server/grpc"
)

const healthProbeInterval = 15 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	closers  []io.Closer
	handlers *httpapi.Handlers
	gate     *httpapi.Gate
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db, closers: []io.Closer{db}}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	registry, err := app.newRegistry(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	codec, err := auth.NewCodec([]byte(c.SecretKey))
	if err != nil {
		app.close()
		return nil, err
	}

	creds := services.NewCredentialStore(db, rm, c.BcryptCost)
	sessions := services.NewSessionService(creds, codec, registry, services.TTLs{
		Access:  c.AccessTokenValidityDuration,
		Refresh: c.RefreshTokenValidityDuration,
	})

	app.handlers = httpapi.NewHandlers(sessions, services.NewProfileService(db, rm), services.NewPeopleService(db, rm), logger)
	app.gate = httpapi.NewGate(codec, registry, logger)

	return app, nil
}

// newRegistry picks the shared Redis registry when an address is configured
// and the process-local one otherwise.
func (app *App) newRegistry(ctx context.Context) (revocation.Registry, error) {
	if app.config.RedisAddr == "" {
		app.logger.Warn(ctx, "REDIS_ADDR not set, revoked tokens are kept in memory and lost on restart")
		return revocation.NewMemory(), nil
	}

	client, err := revocation.Dial(ctx, app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.closers = append(app.closers, client)
	return revocation.NewRedis(client), nil
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		_ = app.closers[i].Close()
	}
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

// Run blocks until ctx is cancelled, a signal arrives or one of the servers
// fails, then releases the database and Redis connections.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		router := httpapi.NewRouter(app.handlers, app.gate, app.logger)
		return httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger, app.config.ShutdownTimeout).Run(ctx)
	})
	g.Go(func() error {
		return gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.db.PingContext, healthProbeInterval).Run(ctx)
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server failed", "error", err)
	}

	app.close()
	app.logger.Info(context.Background(), "App stopped")
	return err
}
