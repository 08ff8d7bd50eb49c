package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"enrolpulse/internal/config"
	"enrolpulse/internal/dataset"
	"enrolpulse/internal/errors"
	"enrolpulse/internal/forecast"
	"enrolpulse/internal/infrastructure"
	customMiddleware "enrolpulse/internal/middleware"
	"enrolpulse/internal/services"
	handlers "enrolpulse/internal/transport/http"
	"enrolpulse/internal/validation"
	ws "enrolpulse/internal/websocket"
	"enrolpulse/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *errors.ErrorHandler
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dataset    *dataset.Cache
	Forecaster *forecast.Forecaster
	Dashboard  *services.DashboardService
	Health     *services.HealthService
	WebSocket  *ws.Hub
}

// NewApplication initializes the global logger from cfg and builds the
// application
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New builds the application with an explicit logger
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("dataset", cfg.GetDatasetPath()))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
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
		ErrorHandler:  handlers.RegisterDomainErrors(errors.NewErrorHandler(logger, false)),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the dataset cache, the dashboard and the live
// session hub
func (a *Application) initializeServices() {
	loader := dataset.NewLoader(dataset.OptionsFromConfig(a.Config.Dataset), a.Logger)
	cache := dataset.NewCache(loader, a.Config.GetDatasetPath(), a.Metrics, a.Logger)
	forecaster := forecast.FromConfig(a.Config.Forecast)

	dashboard := services.NewDashboardService(cache, forecaster, a.Config.Forecast.DefaultHorizon, a.Metrics, a.Logger)
	hub := ws.NewHub(dashboard, a.ErrorHandler, ws.OptionsFromConfig(a.Config.WebSocket), a.Metrics, a.Logger)

	a.Services = &ServiceContainer{
		Dataset:    cache,
		Forecaster: forecaster,
		Dashboard:  dashboard,
		Health:     services.NewHealthService(contracts.Version, cache, hub, a.Logger),
		WebSocket:  hub,
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Nothing here may wrap the ResponseWriter, the upgrade needs the raw one
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).
		Handle("/ws/dashboard", ws.NewHandler(a.Services.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	// Scrapes skip the middleware group
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		r.Mount("/regions", handlers.NewRegionHandler(a.Services.Dashboard, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/dashboard", handlers.NewDashboardHandler(a.Services.Dashboard, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/export", handlers.NewExportHandler(a.Services.Dashboard, a.Logger, a.ErrorHandler).Routes())
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub, begins loading the dataset and serves HTTP in the
// background. cancel is called if the listener fails.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Services.WebSocket.Start()

	go a.warmDataset(ctx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// warmDataset loads the dataset ahead of the first request. A failure is
// retried by the next request that needs the data.
func (a *Application) warmDataset(ctx context.Context) {
	path := a.Services.Dataset.Path()
	if err := validation.NewFileValidator(a.Logger).ValidateDatasetFile(path); err != nil {
		a.Logger.WarnContext(ctx, "Dataset not loaded at startup",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}

	start := time.Now()
	ds, err := a.Services.Dataset.Get(ctx)
	if err != nil {
		a.Logger.WarnContext(ctx, "Dataset not loaded at startup",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	a.Logger.InfoContext(ctx, "Dataset ready",
		slog.Int("records", ds.Info.Records),
		slog.Int("dropped", ds.Info.Dropped),
		slog.Duration("duration", time.Since(start)))
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Live sessions are hijacked connections and are not drained by Shutdown
	a.Services.WebSocket.Stop()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "Error closing log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
