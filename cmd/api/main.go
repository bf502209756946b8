// Package main is the entrypoint for the Jooba catalog API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/jooba/jooba/internal/cache"
	"github.com/jooba/jooba/internal/config"
	"github.com/jooba/jooba/internal/handler"
	"github.com/jooba/jooba/internal/identity"
	"github.com/jooba/jooba/internal/metrics"
	"github.com/jooba/jooba/internal/middleware"
	"github.com/jooba/jooba/internal/server"
	"github.com/jooba/jooba/internal/service"
	"github.com/jooba/jooba/internal/store"
)

func main() {
	ctx := context.Background()

	// A missing .env is fine outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	srv := &app{cfg: cfg, logger: logger}
	if err := srv.run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// app carries the wired components from startup to shutdown.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) run(ctx context.Context) error {
	catalog, closeCatalog := a.openCatalog(ctx)
	a.logger.Info("catalog store ready", "driver", a.cfg.StoreDriver)

	provider, providerHealth := a.openIdentity()
	a.logger.Info("identity provider ready", "provider", a.cfg.IdentityProvider)

	var cacheClient *cache.Cache
	if a.cfg.RedisURL != "" && a.cfg.RateLimitEnabled {
		c, err := cache.New(ctx, a.cfg.RedisURL)
		if err != nil {
			a.logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, a.cfg.RedisURL)),
				slog.String("redis_url", redactURL(a.cfg.RedisURL)),
			)
			os.Exit(1)
		}
		cacheClient = c
		a.logger.Info("connected to Redis")
	}

	recorder := metrics.NewInMemory()
	catalogService := service.NewCatalogService(catalog, provider, recorder)
	accountService := service.NewAccountService(provider, catalog, recorder)

	h := handler.New()
	var cacheHealth handler.HealthChecker
	if cacheClient != nil {
		cacheHealth = cacheClient
	}
	healthHandler := handler.NewHealthHandler(catalog, providerHealth, cacheHealth)
	metricsHandler := handler.NewMetricsHandler(recorder)
	productHandler := handler.NewProductHandler(catalogService, a.logger)
	accountHandler := handler.NewAccountHandler(accountService, a.logger)

	router := a.setupRouter(h, healthHandler, metricsHandler, productHandler, accountHandler, cacheClient)

	srv := server.New(
		router,
		a.cfg.AppPort,
		a.cfg.ReadTimeout,
		a.cfg.WriteTimeout,
		a.cfg.ShutdownTimeout,
		a.logger,
	)

	if closeCatalog != nil {
		srv.OnShutdown("catalog store", func(ctx context.Context) error {
			return closeCatalog()
		})
	}
	if cacheClient != nil {
		srv.OnShutdown("redis cache", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	a.logger.Info("starting server",
		"port", a.cfg.AppPort,
		"env", a.cfg.AppEnv,
	)

	return srv.Run()
}

// openCatalog builds the catalog store backend selected by STORE_DRIVER.
// Connection failures are fatal at startup.
func (a *app) openCatalog(ctx context.Context) (store.Catalog, func() error) {
	switch a.cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pg, err := store.NewPostgres(ctx, a.cfg.PostgresURL)
		if err != nil {
			a.logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, a.cfg.PostgresURL)),
				slog.String("database_url", redactURL(a.cfg.PostgresURL)),
			)
			os.Exit(1)
		}
		return pg, func() error { pg.Close(); return nil }

	case config.StoreDriverRedis:
		rd, err := store.NewRedis(ctx, a.cfg.RedisURL)
		if err != nil {
			a.logger.Error(
				"failed to connect to Redis store",
				slog.String("error", sanitizeError(err, a.cfg.RedisURL)),
				slog.String("redis_url", redactURL(a.cfg.RedisURL)),
			)
			os.Exit(1)
		}
		return rd, rd.Close

	case config.StoreDriverMemory:
		return store.NewMemory(), nil
	}

	// config.Load already rejected unknown drivers.
	return store.NewRTDB(a.cfg.DatabaseURL, a.cfg.CatalogPath), nil
}

// openIdentity builds the identity provider selected by IDENTITY_PROVIDER.
func (a *app) openIdentity() (identity.Provider, handler.HealthChecker) {
	if a.cfg.IdentityProvider == config.IdentityProviderLocal {
		local := identity.NewLocalProvider()
		a.logger.Warn("using in-process identity provider; accounts will not survive a restart")
		return local, local
	}
	remote := identity.NewHTTPProvider(a.cfg.IdentityBaseURL, a.cfg.IdentityAPIKey)
	return remote, remote
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func (a *app) setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	metricsHandler *handler.MetricsHandler,
	productHandler *handler.ProductHandler,
	accountHandler *handler.AccountHandler,
	cacheClient *cache.Cache,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(a.logger))
	r.Use(middleware.Recoverer(a.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: a.cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(a.cfg.MaxRequestBodySize))

	// Health and metrics endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	// Root info endpoint
	r.Get("/", h.Hello)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  a.logger,
		Cache:   cacheClient,
		Enabled: a.cfg.RateLimitEnabled,
		RPS:     a.cfg.RateLimitRPS,
		Burst:   a.cfg.RateLimitBurst,
	}

	// The whole public surface shares one per-IP limiter.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Post("/register", accountHandler.Register)
		r.Post("/login", accountHandler.Login)
		r.Post("/logout", accountHandler.Logout)

		r.Post("/upload_product", productHandler.Upload)
		r.Get("/user_products", productHandler.Mine)
		r.Get("/all_products", productHandler.All)
		r.Get("/search_products", productHandler.Search)
		r.Get("/product_info/{id}", productHandler.Info)
		r.Get("/products_by_category", productHandler.ByCategory)
		r.Put("/update_product/{id}", productHandler.Update)
		r.Delete("/delete_product/{id}", productHandler.Delete)
		r.Post("/bulk_upload_products", productHandler.BulkUpload)
		r.Delete("/bulk_delete_products", productHandler.BulkDelete)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
