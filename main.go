package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"blogapi/internal/cache"
	"blogapi/internal/config"
	"blogapi/internal/handler"
	"blogapi/internal/logger"
	"blogapi/internal/metrics"
	custommiddleware "blogapi/internal/middleware"
	"blogapi/internal/repository"
	"blogapi/internal/requestid"
	"blogapi/internal/service"
	"blogapi/internal/tracing"
	"blogapi/internal/validation"
	"blogapi/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		// Restore default signal handling so a second signal kills a stuck shutdown.
		<-ctx.Done()
		stop()
	}()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Environment())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error("application failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

// deps are the long-lived collaborators built before the server starts.
// serve owns their shutdown.
type deps struct {
	registry *metrics.Registry
	tracer   *tracing.Manager
	repo     repository.UserRepository
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	registry, err := metrics.NewRegistry(log)
	if err != nil {
		return fmt.Errorf("failed to create metrics registry: %w", err)
	}

	tracer := tracing.NewManager(cfg.Tracing, cfg.App.Environment(), log)
	// A tracing failure is already logged and only disables tracing.
	_ = tracer.Start(ctx)

	repo, err := repository.Open(ctx, cfg, tracer.TracerProvider())
	if err != nil {
		return errors.Join(
			fmt.Errorf("failed to open repository: %w", err),
			shutdownTracing(cfg, tracer),
		)
	}
	d := deps{registry: registry, tracer: tracer, repo: repo}

	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return errors.Join(
			fmt.Errorf("failed to create HTTP listener: %w", err),
			shutdownTracing(cfg, tracer),
			closeRepository(cfg, repo),
		)
	}
	if cfg.Server.MaxConnections > 0 {
		httpListener = netutil.LimitListener(httpListener, cfg.Server.MaxConnections)
	}

	log.Info("starting HTTP server",
		zap.String("addr", httpAddr),
		zap.String("environment", cfg.App.Environment()),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Int("max_connections", cfg.Server.MaxConnections))

	return serve(ctx, cfg, log, d, httpListener)
}

// serve handles requests on ln until ctx is done or the server fails, then
// shuts everything in d down. Each shutdown step has its own deadline.
func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, d deps, ln net.Listener) error {
	userCache, err := cache.New(cfg.Cache.MaxSizePow2, cfg.Cache.TTL)
	if err != nil {
		_ = ln.Close()
		return errors.Join(fmt.Errorf("failed to create cache: %w", err), shutdown(cfg, log, nil, d))
	}
	defer userCache.Close()

	for _, c := range userCache.Collectors() {
		if err := d.registry.Register(c); err != nil {
			_ = ln.Close()
			return errors.Join(fmt.Errorf("failed to register cache metrics: %w", err), shutdown(cfg, log, nil, d))
		}
	}

	ids, err := requestid.New()
	if err != nil {
		_ = ln.Close()
		return errors.Join(fmt.Errorf("failed to create request id generator: %w", err), shutdown(cfg, log, nil, d))
	}

	userService := service.NewUserService(d.repo, userCache, d.registry)
	h := handler.New(userService, validation.NewUserValidator(), d.registry.Handler(), cfg.Tracing.ServiceName, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = view.NewErrorHandler(cfg.App.IsDevelopment(), log).Handle

	e.Use(custommiddleware.Metrics(d.registry))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: ids.Next}))
	e.Use(custommiddleware.RequestLogger(log))
	e.Use(custommiddleware.Tracing(d.tracer.TracerProvider()))
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(cfg.Validation.MaxRequestBodySize))
	if cfg.RateLimit.Enabled {
		e.Use(custommiddleware.RateLimit(&cfg.RateLimit, log))
	}
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{Root: cfg.Static.PublicDir}))
	e.Group("/uploads", middleware.StaticWithConfig(middleware.StaticConfig{Root: cfg.Static.UploadsDir}))

	h.Register(e)
	custommiddleware.Pprof(e, &cfg.Pprof, log)

	httpServer := &http.Server{
		Handler: otelhttp.NewHandler(e, "http.server",
			otelhttp.WithTracerProvider(d.tracer.TracerProvider()),
			otelhttp.WithPropagators(d.tracer.Propagator()),
		),
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 14, // 16KB
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var errs []error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		errs = append(errs, fmt.Errorf("http server error: %w", err))
	}

	errs = append(errs, shutdown(cfg, log, httpServer, d))
	return errors.Join(errs...)
}

// shutdown stops the HTTP server, then tracing, then the repository.
func shutdown(cfg *config.Config, log *zap.Logger, srv *http.Server, d deps) error {
	var errs []error
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("http server did not drain in time", zap.Error(err))
			errs = append(errs, fmt.Errorf("http server shutdown failed: %w", err))
		}
		cancel()
	}
	errs = append(errs,
		shutdownTracing(cfg, d.tracer),
		closeRepository(cfg, d.repo),
	)
	return errors.Join(errs...)
}

func shutdownTracing(cfg *config.Config, tracer *tracing.Manager) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Tracing.ShutdownTimeout)
	defer cancel()
	return tracer.Shutdown(ctx)
}

// closeRepository gives the backend cfg.Server.ShutdownTimeout to close. A
// handler still holding a connection must not keep the process alive.
func closeRepository(cfg *config.Config, repo repository.UserRepository) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- repo.Close(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to close repository: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to close repository: %w", ctx.Err())
	}
}
