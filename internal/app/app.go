package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"benchmarkapi/internal/benchmark"
	"benchmarkapi/internal/config"
	apierrors "benchmarkapi/internal/errors"
	"benchmarkapi/internal/infrastructure"
	customMiddleware "benchmarkapi/internal/middleware"
	"benchmarkapi/internal/services"
	handlers "benchmarkapi/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Table         *benchmark.Table
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Benchmark *services.BenchmarkService
	Health    *services.HealthService
}

// NewApplication loads configuration, initializes the logger and builds the
// application. A dataset that cannot be loaded is fatal.
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(ctx, cfg, logger)
}

// New builds the application from an already validated configuration
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.Version),
		slog.String("commit", config.Commit))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.loadDataset(ctx); err != nil {
		app.shutdownTelemetry(ctx)
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		app.shutdownTelemetry(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.setupRouter(); err != nil {
		app.shutdownTelemetry(ctx)
		return nil, fmt.Errorf("failed to setup router: %w", err)
	}

	app.createServer()

	return app, nil
}

// loadDataset reads the benchmark table once; it is shared read-only by
// every request afterwards.
func (a *Application) loadDataset(ctx context.Context) error {
	table, err := benchmark.Load(ctx, benchmark.LoaderOptions{
		Dir:        a.Config.Data.Dir,
		Candidates: a.Config.Data.Candidates,
		Logger:     a.Logger.With(slog.String("component", "loader")),
	})
	if err != nil {
		return fmt.Errorf("failed to load benchmark dataset: %w", err)
	}
	a.Table = table

	rows := int64(table.Len())
	if err := infrastructure.RegisterDatasetGauge(a.OTelProviders.Meter, func() int64 { return rows }); err != nil {
		return fmt.Errorf("failed to register dataset gauge: %w", err)
	}
	return nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	model := a.Config.Model.PotentialModel()
	if err := model.Validate(); err != nil {
		return fmt.Errorf("invalid potential model: %w", err)
	}

	estimator := benchmark.NewEstimator(a.Table, model)

	a.Services = &ServiceContainer{
		Benchmark: services.NewBenchmarkService(
			estimator,
			a.Config.Model.DefaultYear,
			a.OTelProviders.Tracer,
			a.Metrics,
			a.Logger,
		),
		Health: services.NewHealthService(
			config.Version,
			config.Commit,
			config.BuildTime,
			a.Table,
			a.Logger,
		),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Middleware order: RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}
	r.Use(otelMiddleware.Handler)

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Prometheus scrapes are neither rate limited nor body limited
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, a.ErrorHandler).Handler)
		}
		if a.Config.Server.RequestTimeout > 0 {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger, a.ErrorHandler))
		}
		r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxBodyBytes))

		a.setupAPIRoutes(r)
	})

	a.Router = r
	return nil
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	benchmarkHandler := handlers.NewBenchmarkHandler(a.Services.Benchmark, a.Logger, a.ErrorHandler)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	r.With(render.SetContentType(render.ContentTypeJSON)).Post("/berakna", benchmarkHandler.Compute)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Mount("/benchmark", benchmarkHandler.Routes())
	})
}

// getCORSConfig returns the CORS configuration. The default "*" lets any
// front end call the API without credentials.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowCredentials: a.Config.Security.AllowCredentials,
		Logger:           a.Logger,
	}
	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", cfg.AllowedOrigins),
		slog.Bool("allow_credentials", cfg.AllowCredentials))
	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		a.shutdownTelemetry(ctx)
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln until ctx is done
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "Application started",
			slog.String("address", ln.Addr().String()),
			slog.Int("rows", a.Table.Len()),
			slog.String("dataset", a.Table.Source().Path))

		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(context.Background(), "Shutdown requested")
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	start := time.Now()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.shutdownTelemetry(shutdownCtx)
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.shutdownTelemetry(shutdownCtx)

	a.Logger.InfoContext(ctx, "Application shutdown complete",
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (a *Application) shutdownTelemetry(ctx context.Context) {
	if a.OTelProviders == nil {
		return
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
}
