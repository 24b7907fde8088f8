package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/civicsetu/civicsetu-backend/internal/ai"
	"github.com/civicsetu/civicsetu-backend/internal/config"
	"github.com/civicsetu/civicsetu-backend/internal/database"
	"github.com/civicsetu/civicsetu-backend/internal/handlers"
	"github.com/civicsetu/civicsetu-backend/internal/logging"
	"github.com/civicsetu/civicsetu-backend/internal/middleware"
	"github.com/civicsetu/civicsetu-backend/internal/ratelimit"
	"github.com/civicsetu/civicsetu-backend/internal/routes"
	"github.com/civicsetu/civicsetu-backend/internal/services"
	"github.com/civicsetu/civicsetu-backend/internal/storage"
	"github.com/civicsetu/civicsetu-backend/internal/upload"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewFanout(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// External collaborators
	var oracle ai.Oracle = ai.Disabled{}
	if cfg.AIAPIKey != "" {
		oracle = ai.NewClient(cfg.AIAPIURL, cfg.AIAPIKey, cfg.AIModel, cfg.AITimeout)
		slog.Info("AI oracle enabled", "model", cfg.AIModel)
	} else {
		slog.Info("AI oracle disabled, reports will not be auto-categorized")
	}

	var blobs storage.BlobStore
	if cfg.StorageURL != "" && cfg.StorageServiceKey != "" {
		blobs = storage.NewSupabaseStore(cfg.StorageURL, cfg.StorageServiceKey, cfg.StorageBucket, cfg.StorageTimeout)
	} else {
		slog.Warn("blob storage not configured, evidence uploads will fail")
		blobs = storage.NewMemoryStore()
	}

	limiter := ratelimit.New(ratelimit.NewCacheStore())

	// Services
	auditService := services.NewAuditService(database.DB)
	authService := services.NewAuthService(database.DB, cfg, auditService)
	reportService := services.NewReportService(database.DB, oracle, blobs, limiter, auditService)
	evidenceService := services.NewEvidenceService(database.DB, blobs, limiter, cfg, auditService)
	commentService := services.NewCommentService(database.DB, limiter)
	notificationService := services.NewNotificationService(database.DB)
	projectService := services.NewProjectService(database.DB, auditService)
	transparencyService := services.NewTransparencyService(database.DB, oracle)
	userService := services.NewUserService(database.DB, auditService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, limiter)
	healthHandler := handlers.NewHealthHandler()
	reportHandler := handlers.NewReportHandler(reportService)
	evidenceHandler := handlers.NewEvidenceHandler(evidenceService)
	commentHandler := handlers.NewCommentHandler(commentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	projectHandler := handlers.NewProjectHandler(projectService)
	transparencyHandler := handlers.NewTransparencyHandler(transparencyService)
	userHandler := handlers.NewUserHandler(userService, auditService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app; body limit leaves headroom over the evidence file ceiling
	app := fiber.New(fiber.Config{
		BodyLimit:    upload.MaxFileSize + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB,
		authHandler, healthHandler, reportHandler, evidenceHandler,
		commentHandler, notificationHandler, projectHandler,
		transparencyHandler, userHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
