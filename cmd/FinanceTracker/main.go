package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sebuszqo/FinanceTracker/internal/auth"
	"github.com/sebuszqo/FinanceTracker/internal/cache"
	"github.com/sebuszqo/FinanceTracker/internal/config"
	database "github.com/sebuszqo/FinanceTracker/internal/db"
	"github.com/sebuszqo/FinanceTracker/internal/events"
	"github.com/sebuszqo/FinanceTracker/internal/finance/application"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	"github.com/sebuszqo/FinanceTracker/internal/finance/infrastructure"
	"github.com/sebuszqo/FinanceTracker/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceTracker/internal/log"
	"github.com/sebuszqo/FinanceTracker/internal/respond"
	"github.com/sebuszqo/FinanceTracker/internal/user"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	router      http.Handler
	db          *database.DBService
	authHandler *auth.Handler
	userHandler *user.Handler
	authService *auth.Service
	finance     interfaces.Handlers
	logger      *log.Logger
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	respond.Error(w, http.StatusNotFound, "Path not found")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := s.db.Health(ctx)
	if health["status"] != "up" {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "unavailable",
			"database": health,
		})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"database": health,
	})
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.HandleFunc("POST /api/auth/register", s.userHandler.HandleRegister)
	publicRoutes.HandleFunc("POST /api/auth/login", s.authHandler.HandleLogin)
	publicRoutes.HandleFunc("POST /api/auth/2fa/verify", s.authHandler.HandleVerifyTwoFactor)
	publicRoutes.HandleFunc("POST /api/auth/logout", s.authHandler.HandleLogout)
	publicRoutes.HandleFunc("GET /api/ready", s.handleReady)

	// Protected routes (JWT access token)
	protect := s.authService.AccessTokenMiddleware
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("GET /api/protected/profile", protect(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))
	protectedRoutes.Handle("POST /api/protected/change-password", protect(http.HandlerFunc(s.userHandler.HandleChangePassword)))
	protectedRoutes.Handle("POST /api/protected/2fa/register", protect(http.HandlerFunc(s.authHandler.HandleRegisterTwoFactor)))
	protectedRoutes.Handle("POST /api/protected/2fa/verify-registration", protect(http.HandlerFunc(s.authHandler.HandleVerifyTwoFactorRegistration)))
	protectedRoutes.Handle("DELETE /api/protected/2fa/disable", protect(http.HandlerFunc(s.authHandler.HandleDisableTwoFactor)))
	s.finance.RegisterRoutes(protectedRoutes, protect)

	// Refresh token routes
	refreshTokenRoutes := http.NewServeMux()
	refreshTokenRoutes.Handle("PUT /api/refresh/token", s.authService.RefreshTokenMiddleware(http.HandlerFunc(s.authHandler.HandleRefreshAccessToken)))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/api/refresh/", refreshTokenRoutes)
	mainRouter.HandleFunc("/", notFoundHandler)

	s.router = log.Middleware(s.logger.WithComponent(log.ComponentHTTP))(mainRouter)
}

// StartScheduler purges expired summary cache entries and pending 2FA sessions.
func StartScheduler(schedule string, summaries *application.SummaryService, authService *auth.Service, logger *log.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		purged := summaries.CleanExpired()
		sessions := authService.CleanExpiredSessions()
		logger.Debug("Cleanup finished", "summaries", purged, "sessions", sessions)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

func newPublisher(cfg *config.Config, logger *log.Logger) events.Publisher {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL not set, change events disabled")
		return events.NoopPublisher{}
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Error("Could not connect to AMQP broker, change events disabled", "error", err)
		return events.NoopPublisher{}
	}
	logger.Info("Publishing change events", "exchange", cfg.AMQPExchange)
	return publisher
}

func main() {
	cfg := config.Load()
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := log.New(log.Config{Level: level, Component: "app", Output: os.Stdout})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Missing configuration, update to start server", "error", err)
		os.Exit(1)
	}

	dbLogger := logger.WithComponent(log.ComponentDatabase)
	if err := database.RunMigrations(cfg.DBConnectionString); err != nil {
		dbLogger.Error("Could not run migrations", "error", err)
		os.Exit(1)
	}
	dbService, err := database.NewDBService(context.Background(), cfg.DBConnectionString)
	if err != nil {
		dbLogger.Error("Could not initialize database", "error", err)
		os.Exit(1)
	}
	defer dbService.Close()

	publisher := newPublisher(cfg, logger.WithComponent(log.ComponentEvents))
	defer publisher.Close()

	// Identity
	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo, logger.WithComponent(log.ComponentAuth))
	userHandler := user.NewHandler(userService)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := auth.NewAuthService(
		auth.NewTwoFactorRepository(dbService.DB),
		userService,
		auth.NewSessionManager(),
		jwtManager,
		auth.NewAuthenticator(cfg.TOTPIssuer),
		logger.WithComponent(log.ComponentAuth),
	)
	authHandler := auth.NewHandler(authService, cfg.SecureCookies)

	// Finance
	summaryService := application.NewSummaryService(
		infrastructure.NewSummaryRepository(dbService.DB),
		cache.NewLRUCache[domain.Summary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL),
		application.SeriesWindow(cfg.SummarySeriesWindow),
		logger.WithComponent(log.ComponentSummary),
	)
	invalidator := application.NewInvalidator(summaryService, publisher, logger.WithComponent(log.ComponentFinance))

	accountRepo := infrastructure.NewAccountRepository(dbService.DB)
	categoryRepo := infrastructure.NewCategoryRepository(dbService.DB)
	accountService := application.NewAccountService(accountRepo, invalidator)
	categoryService := application.NewCategoryService(categoryRepo, invalidator)
	transactionService := application.NewTransactionService(
		infrastructure.NewTransactionRepository(dbService.DB), accountRepo, categoryRepo, invalidator)

	server := &Server{
		db:          dbService,
		authHandler: authHandler,
		userHandler: userHandler,
		authService: authService,
		logger:      logger,
		finance: interfaces.Handlers{
			Accounts:     interfaces.NewNamedHandler[domain.Account](accountService, "accounts", respond.JSON, respond.Error),
			Categories:   interfaces.NewNamedHandler[domain.Category](categoryService, "categories", respond.JSON, respond.Error),
			Transactions: interfaces.NewTransactionHandler(transactionService, respond.JSON, respond.Error),
			Summary:      interfaces.NewSummaryHandler(summaryService, respond.JSON, respond.Error),
		},
	}
	server.RegisterRoutes()

	scheduler, err := StartScheduler(cfg.CacheCleanupSchedule, summaryService, authService, logger.WithComponent(log.ComponentCron))
	if err != nil {
		logger.Error("Scheduler didn't start, stopping the app", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
