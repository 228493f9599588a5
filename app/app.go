package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"horoscope-api/api"
	"horoscope-api/cache"
	"horoscope-api/config"
	"horoscope-api/database"
	"horoscope-api/filestore"
	"horoscope-api/forecast"
)

// App represents the main application
type App struct {
	config  *config.Config
	logger  *zap.Logger
	db      *database.Database
	redis   *cache.RedisClient
	service *forecast.Service
}

// New creates a new application instance
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		config: cfg,
		logger: logger,
	}
}

// Init connects the configured backend and builds the forecast service.
func (a *App) Init() error {
	if a.service != nil {
		return nil
	}

	switch a.config.Backend {
	case config.BackendCSV:
		a.logger.Info("using csv backend", zap.String("data_dir", a.config.DataDir))
		loadCache := filestore.NewLoadCache(filestore.WithCacheLogger(a.logger.Named("loadcache")))
		store := filestore.New(a.config.DataDir, loadCache, filestore.WithLogger(a.logger.Named("filestore")))
		a.service = forecast.NewService(store)

	case config.BackendDB:
		a.logger.Info("connecting to database", zap.String("driver", a.config.Database.Driver))
		db, err := database.Connect(a.config.Database)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		a.db = db
		repo := database.NewForecastRepository(db)

		var store forecast.Store = repo
		if a.config.Redis.Enabled() {
			a.redis = cache.NewRedisClient(a.config.Redis.Host, a.config.Redis.Port, a.config.Redis.Password, a.logger)
			if a.redis != nil {
				store = cache.NewForecastCache(repo, a.redis, a.config.Redis.TTL, a.logger.Named("cache"))
			}
		}
		a.service = forecast.NewService(store, forecast.WithAvailability(repo))

	default:
		return fmt.Errorf("unknown backend %q", a.config.Backend)
	}
	return nil
}

// Service returns the forecast service; Init must have succeeded.
func (a *App) Service() *forecast.Service {
	return a.service
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return api.NewServer(a.service, a.logger.Named("api")).Handler()
}

// Start runs the server until SIGINT or SIGTERM.
func (a *App) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}

// Run listens on the configured port and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(a.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves the API on ln until ctx is done, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.Init(); err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          zap.NewStdLog(a.logger.Named("http")),
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("api server starting", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		a.Close()
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutdown signal received, initiating graceful shutdown")
	}

	return a.gracefulShutdown(srv)
}

// gracefulShutdown handles graceful shutdown with timeout
func (a *App) gracefulShutdown(srv *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	a.Close()

	if errors.Is(err, context.DeadlineExceeded) {
		a.logger.Warn("shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout: %w", err)
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("graceful shutdown completed")
	return nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("error closing database", zap.Error(err))
		} else {
			a.logger.Info("database connection closed")
		}
		a.db = nil
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("error closing redis", zap.Error(err))
		} else {
			a.logger.Info("redis connection closed")
		}
		a.redis = nil
	}
}
