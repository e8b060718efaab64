// Package main is the entrypoint for the Finance Tracker API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/authz"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/cache"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/config"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/handler"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/metrics"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/middleware"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/model"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/ratelimit"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/repository"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/server"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/service"
	"github.com/Preethambhavirisetty/Finance-Tracker-Personal/internal/session"
)

// dependencies are the stores the router is built on.
type dependencies struct {
	users    service.UserStore
	ledger   service.LedgerStore
	resolver authz.Resolver
	db       handler.HealthChecker
	// cache stays nil unless Redis is configured.
	cache    handler.HealthChecker
	sessions session.Store
	limiter  ratelimit.Limiter
	recorder *metrics.InMemoryRecorder
}

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	deps := dependencies{
		users:    repo,
		ledger:   repo,
		resolver: repo,
		db:       repo,
		recorder: metrics.NewInMemory(),
	}

	// Background sweepers for the in-memory backend stop on shutdown.
	sweepCtx, stopSweepers := context.WithCancel(ctx)
	defer stopSweepers()

	switch cfg.StoreBackend {
	case config.BackendRedis:
		cacheClient, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		defer cacheClient.Close()
		logger.Info("connected to Redis")

		deps.cache = cacheClient
		deps.sessions = cacheClient.NewSessionStore()
		deps.limiter = cacheClient.NewRateLimiter()
	default:
		sessions := session.NewMemoryStore(nil)
		limiter := ratelimit.NewMemory(ratelimit.WithLogger(logger))
		go sessions.Run(sweepCtx, cfg.SessionSweepInterval, logger)
		go limiter.Run(sweepCtx, cfg.RateLimitSweepInterval)

		deps.sessions = sessions
		deps.limiter = limiter
		logger.Info("using in-memory session and rate limit stores")
	}

	// Setup router
	r := setupRouter(cfg, deps, logger)

	// Create and run server
	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("sweepers", func(context.Context) error {
		stopSweepers()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store_backend", cfg.StoreBackend,
		"trust_proxy", cfg.TrustProxy,
	)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
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
func setupRouter(cfg *config.Config, deps dependencies, logger *slog.Logger) *chi.Mux {
	sessions := session.NewManager(deps.sessions, session.Config{
		IdleTimeout:      cfg.SessionIdleTimeout,
		AbsoluteLifetime: cfg.SessionAbsoluteLifetime,
	}, logger)
	cookie := session.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
		MaxAge: cfg.SessionAbsoluteLifetime,
	}

	authService := service.NewAuthService(deps.users, sessions, deps.recorder, logger)
	ledgerService := service.NewLedgerService(deps.ledger, deps.recorder)
	guard := authz.NewGuard(deps.resolver, logger)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(deps.db, deps.cache, logger)
	metricsHandler := handler.NewMetricsHandler(deps.recorder)
	authHandler := handler.NewAuthHandler(authService, cookie, logger)
	ledgerHandler := handler.NewLedgerHandler(ledgerService, logger)

	r := chi.NewRouter()

	// Global middleware. Forwarding headers are client-controlled, so they
	// only replace the socket address behind a trusted proxy.
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger, deps.recorder))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.GetCORSAllowedOrigins())))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health and info endpoints (no auth required)
	r.Get("/", h.Root)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/api/health", healthHandler.Healthz)
	r.Get("/metrics", metricsHandler.Metrics)

	requireSession := middleware.RequireSession(middleware.SessionConfig{
		Logger:   logger,
		Sessions: sessions,
		Cookie:   cookie,
		Metrics:  deps.recorder,
	})
	limit := func(endpoint string, policy ratelimit.Policy, key func(*http.Request) (string, error)) func(http.Handler) http.Handler {
		return middleware.RateLimit(middleware.RateLimitConfig{
			Logger:   logger,
			Limiter:  deps.limiter,
			Metrics:  deps.recorder,
			Enabled:  cfg.RateLimitEnabled,
			Endpoint: endpoint,
			Policy:   policy,
			Key:      key,
		})
	}
	owns := func(kind model.ResourceKind, param string) func(http.Handler) http.Handler {
		return middleware.RequireOwnership(guard, kind, param, logger)
	}

	r.Route("/api", func(r chi.Router) {
		// Auth endpoints
		r.With(limit("register", ratelimit.Policy{
			MaxAttempts: cfg.RateLimitRegisterMax,
			Window:      cfg.RateLimitRegisterWindow,
		}, middleware.RegisterKey)).Post("/register", authHandler.Register)
		r.With(limit("login", ratelimit.Policy{
			MaxAttempts: cfg.RateLimitLoginMax,
			Window:      cfg.RateLimitLoginWindow,
		}, middleware.LoginKey)).Post("/login", authHandler.Login)
		r.With(requireSession).Post("/logout", authHandler.Logout)
		r.Get("/check-auth", authHandler.CheckAuth)

		// Ledger endpoints (require a session; ownership is checked per resource)
		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/profiles", ledgerHandler.ListProfiles)
			r.Post("/profiles", ledgerHandler.CreateProfile)

			r.Route("/profiles/{profile_id}", func(r chi.Router) {
				r.Use(owns(model.ResourceProfile, "profile_id"))
				r.Get("/", ledgerHandler.GetProfile)
				r.Patch("/", ledgerHandler.RenameProfile)
				r.Delete("/", ledgerHandler.DeleteProfile)

				r.Get("/transactions", ledgerHandler.ListTransactions)
				r.Post("/transactions", ledgerHandler.CreateTransaction)
				r.Get("/transactions/export", ledgerHandler.ExportTransactions)
				r.Get("/categories", ledgerHandler.ListCategories)
				r.Post("/categories", ledgerHandler.CreateCategory)
				r.Get("/accounts", ledgerHandler.ListAccounts)
				r.Post("/accounts", ledgerHandler.CreateAccount)
				r.Get("/budgets", ledgerHandler.ListBudgets)
				r.Post("/budgets", ledgerHandler.CreateBudget)
				r.Get("/tags", ledgerHandler.ListTags)
				r.Post("/tags", ledgerHandler.CreateTag)
			})

			r.Route("/transactions/{transaction_id}", func(r chi.Router) {
				r.Use(owns(model.ResourceTransaction, "transaction_id"))
				r.Get("/", ledgerHandler.GetTransaction)
				r.Delete("/", ledgerHandler.DeleteTransaction)
			})
			r.Route("/categories/{category_id}", func(r chi.Router) {
				r.Use(owns(model.ResourceCategory, "category_id"))
				r.Get("/", ledgerHandler.GetCategory)
				r.Patch("/", ledgerHandler.UpdateCategory)
				r.Delete("/", ledgerHandler.DeleteCategory)
			})
			r.Route("/accounts/{account_id}", func(r chi.Router) {
				r.Use(owns(model.ResourceAccount, "account_id"))
				r.Get("/", ledgerHandler.GetAccount)
				r.Patch("/", ledgerHandler.UpdateAccount)
				r.Delete("/", ledgerHandler.DeleteAccount)
			})
			r.Route("/budgets/{budget_id}", func(r chi.Router) {
				r.Use(owns(model.ResourceBudget, "budget_id"))
				r.Get("/", ledgerHandler.GetBudget)
				r.Patch("/", ledgerHandler.UpdateBudget)
				r.Delete("/", ledgerHandler.DeleteBudget)
			})
			r.Route("/tags/{tag_id}", func(r chi.Router) {
				r.Use(owns(model.ResourceTag, "tag_id"))
				r.Get("/", ledgerHandler.GetTag)
				r.Delete("/", ledgerHandler.DeleteTag)
			})
		})
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
