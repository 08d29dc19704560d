// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/karthiBP/aegis-incidents/internal/config"
	"github.com/karthiBP/aegis-incidents/internal/drafts"
	draftspostgres "github.com/karthiBP/aegis-incidents/internal/drafts/postgres"
	"github.com/karthiBP/aegis-incidents/internal/export"
	"github.com/karthiBP/aegis-incidents/internal/generation"
	"github.com/karthiBP/aegis-incidents/internal/generation/openai"
	"github.com/karthiBP/aegis-incidents/internal/identity"
	"github.com/karthiBP/aegis-incidents/internal/identity/jwt"
	identitypostgres "github.com/karthiBP/aegis-incidents/internal/identity/postgres"
	"github.com/karthiBP/aegis-incidents/internal/incidents"
	incidentspostgres "github.com/karthiBP/aegis-incidents/internal/incidents/postgres"
	"github.com/karthiBP/aegis-incidents/internal/pkg/ctxlog"
	"github.com/karthiBP/aegis-incidents/internal/pkg/httputil"
	"github.com/karthiBP/aegis-incidents/internal/pkg/metrics"
	"github.com/karthiBP/aegis-incidents/internal/pkg/postgres"
	"github.com/karthiBP/aegis-incidents/internal/version"
	"github.com/karthiBP/aegis-incidents/internal/wizard"
	wizardpostgres "github.com/karthiBP/aegis-incidents/internal/wizard/postgres"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App represents the application instance.
type App struct {
	config           *config.Config
	logger           *slog.Logger
	db               *pgxpool.Pool
	server           *http.Server
	metricsServer    *http.Server
	backgroundCancel context.CancelFunc
}

// New creates a new application instance: connects to the database,
// applies migrations and builds the HTTP servers.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := postgres.Migrate(cfg.Database.URL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())

	app := &App{
		config:           cfg,
		logger:           logger,
		db:               db,
		backgroundCancel: backgroundCancel,
	}

	go app.collectDBMetrics(backgroundCtx)

	router, err := app.setupRouter(backgroundCtx)
	if err != nil {
		db.Close()
		backgroundCancel()
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.backgroundCancel()

	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	a.db.Close()

	return errors.Join(errs...)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) collectDBMetrics(ctx context.Context) {
	metrics.RecordDBPoolMetrics(a.db)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics(a.db)
		case <-ctx.Done():
			return
		}
	}
}

// sweepCooldowns drops expired cooldown entries so the per-user map does
// not grow without bound.
func (a *App) sweepCooldowns(ctx context.Context, limiter *generation.CooldownLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) setupRouter(ctx context.Context) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, "api/openapi/openapi.yaml")
	})

	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>AEGIS INCIDENTS API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: "/api/openapi.yaml",
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
            layout: "BaseLayout"
        });
    </script>
</body>
</html>`))
	})

	// Identity
	identityRepo := identitypostgres.NewRepository(a.db)
	jwtAuth, err := jwt.NewAuthenticator(jwt.Config{
		SecretKey:  a.config.JWT.SecretKey,
		AccessTTL:  a.config.JWT.AccessTokenDuration,
		RefreshTTL: a.config.JWT.RefreshTokenDuration,
	}, identityRepo)
	if err != nil {
		return nil, fmt.Errorf("create authenticator: %w", err)
	}
	identityService := identity.NewService(identityRepo, jwtAuth)
	identityHandler := identity.NewHandler(identityService)

	// Wizard
	wizardRepo := wizardpostgres.NewRepository(a.db)
	wizardService := wizard.NewService(wizardRepo)
	wizardHandler := wizard.NewHandler(wizardService)

	// Generation
	generator, err := a.buildGenerator()
	if err != nil {
		return nil, err
	}
	cooldowns := generation.NewCooldownLimiter(a.config.Generation.Cooldown)
	go a.sweepCooldowns(ctx, cooldowns)
	workflow := generation.NewWorkflow(generator, cooldowns)

	// Incidents
	incidentsRepo := incidentspostgres.NewRepository(a.db)
	incidentsService := incidents.NewService(incidentsRepo, wizardService, workflow, a.config.Share.BaseURL)
	incidentsHandler := incidents.NewHandler(incidentsService)

	// Drafts
	draftsRepo := draftspostgres.NewRepository(a.db)
	draftsService := drafts.NewService(draftsRepo, wizardService, workflow)
	draftsHandler := drafts.NewHandler(draftsService)

	// Export
	markdownRenderer, err := export.NewMarkdownRenderer()
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	exportHandler := export.NewHandler(incidentsService, markdownRenderer, export.NewPDFRenderer())

	r.Route("/api/v1", func(r chi.Router) {
		identityHandler.RegisterRoutes(r)
		incidentsHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(httputil.AuthMiddleware(jwtAuth))

			identityHandler.RegisterProtectedRoutes(r)
			wizardHandler.RegisterRoutes(r)
			incidentsHandler.RegisterRoutes(r)
			draftsHandler.RegisterRoutes(r)
			exportHandler.RegisterRoutes(r)
		})
	})

	return r, nil
}

// buildGenerator selects the report generator. Without an API key the
// deterministic mock is used, which keeps local development offline.
func (a *App) buildGenerator() (generation.Generator, error) {
	if a.config.Generation.OpenAI.APIKey == "" {
		a.logger.Info("report generation using mock generator")
		return generation.NewMockGenerator(), nil
	}

	gen, err := openai.NewGenerator(openai.Config{
		APIKey:    a.config.Generation.OpenAI.APIKey,
		Model:     a.config.Generation.OpenAI.Model,
		BaseURL:   a.config.Generation.OpenAI.BaseURL,
		Timeout:   a.config.Generation.OpenAI.Timeout,
		RateLimit: a.config.Generation.OpenAI.RateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai generator: %w", err)
	}
	a.logger.Info("report generation using openai", "model", a.config.Generation.OpenAI.Model)
	return gen, nil
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
