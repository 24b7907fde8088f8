package routes

import (
	"time"

	"github.com/civicsetu/civicsetu-backend/internal/config"
	"github.com/civicsetu/civicsetu-backend/internal/handlers"
	"github.com/civicsetu/civicsetu-backend/internal/middleware"
	"github.com/civicsetu/civicsetu-backend/internal/roles"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	evidenceHandler *handlers.EvidenceHandler,
	commentHandler *handlers.CommentHandler,
	notificationHandler *handlers.NotificationHandler,
	projectHandler *handlers.ProjectHandler,
	transparencyHandler *handlers.TransparencyHandler,
	userHandler *handlers.UserHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter per-IP budget on top of the
	// per-account action limits inside the handlers.
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/forgot-password", authHandler.ForgotPassword)
	auth.Post("/reset-password", authHandler.ResetPassword)

	jwtAuth := middleware.JWTProtected(cfg)
	identity := middleware.ResolveIdentity(db)

	api.Post("/auth/logout", jwtAuth, identity, authHandler.Logout)
	api.Get("/users/me", jwtAuth, identity, authHandler.Me)
	api.Patch("/users/me", jwtAuth, identity, authHandler.UpdateMe)

	// Reports — submission accepts tokenless requests, so middleware goes on
	// individual routes rather than the group prefix. Every other report
	// resource requires a session.
	reports := api.Group("/reports")
	reports.Post("/", middleware.OptionalJWT(cfg), identity, reportHandler.Create)
	reports.Get("/mine", jwtAuth, identity, reportHandler.ListMine)
	reports.Get("/", jwtAuth, identity, middleware.RequireCapability(roles.CanModerateReports), reportHandler.List)
	reports.Get("/:id", jwtAuth, identity, reportHandler.Get)
	reports.Get("/:id/detail", jwtAuth, identity, reportHandler.Detail)
	reports.Get("/:id/timeline", jwtAuth, identity, reportHandler.Timeline)
	reports.Patch("/:id", jwtAuth, identity, middleware.RequireCapability(roles.CanModerateReports), reportHandler.Update)
	reports.Delete("/:id", jwtAuth, identity, middleware.RequireCapability(roles.CanDeleteReports), reportHandler.Delete)

	reports.Post("/:id/evidence", jwtAuth, identity, evidenceHandler.Upload)
	reports.Get("/:id/evidence", jwtAuth, identity, evidenceHandler.List)
	reports.Post("/:id/comments", jwtAuth, identity, commentHandler.Create)
	reports.Get("/:id/comments", jwtAuth, identity, commentHandler.List)

	api.Get("/evidence/:id/url", jwtAuth, identity, evidenceHandler.SignedURL)

	notifications := api.Group("/notifications", jwtAuth, identity)
	notifications.Get("/", notificationHandler.List)
	notifications.Patch("/:id/read", notificationHandler.MarkRead)
	notifications.Patch("/read-all", notificationHandler.MarkAllRead)

	// Transparency portal — public reads.
	projects := api.Group("/projects")
	projects.Get("/", projectHandler.List)
	projects.Get("/:id", projectHandler.Get)
	projects.Get("/:id/transactions", projectHandler.ListTransactions)
	projects.Get("/:id/updates", projectHandler.ListUpdates)

	transparency := api.Group("/transparency")
	transparency.Get("/summary", transparencyHandler.Summary)
	transparency.Post("/custom", transparencyHandler.Custom)
	transparency.Post("/query", transparencyHandler.Query)

	// Project management — officials record money and progress, admins own
	// the project records themselves. Middleware goes on individual routes so
	// the public GETs above stay public.
	projects.Post("/", jwtAuth, identity, middleware.RequireCapability(roles.CanManageProjects), projectHandler.Create)
	projects.Patch("/:id", jwtAuth, identity, middleware.RequireCapability(roles.CanManageProjects), projectHandler.Update)
	projects.Post("/:id/transactions", jwtAuth, identity, middleware.RequireCapability(roles.CanRecordTransactions), projectHandler.AddTransaction)
	projects.Post("/:id/updates", jwtAuth, identity, middleware.RequireCapability(roles.CanRecordTransactions), projectHandler.AddUpdate)

	// Admin panel
	admin := api.Group("/admin", jwtAuth, identity, middleware.RequireCapability(roles.CanManageUsers))
	admin.Get("/users", userHandler.List)
	admin.Get("/users/:id", userHandler.Get)
	admin.Patch("/users/:id/role", userHandler.SetRole)
	admin.Patch("/users/:id/active", userHandler.SetActive)
	admin.Get("/dashboard", userHandler.Dashboard)
	admin.Get("/audit-logs", userHandler.AuditLogs)
}
