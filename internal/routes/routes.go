package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	auth middleware.Authenticator,
	healthHandler *handlers.HealthHandler,
	legalHandler *handlers.LegalHandler,
	webhookHandler *handlers.WebhookHandler,
	userHandler *handlers.UserHandler,
	adminHandler *handlers.AdminHandler,
	plugins []apps.Plugin,
) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Public
	api.Get("/health", healthHandler.Check)
	api.Get("/legal-documents/:type", legalHandler.Document)

	// Webhooks authenticate with the shared processor secret, not a user token
	webhooks := api.Group("/webhooks")
	webhooks.Post("/billing", webhookHandler.HandleBilling)

	identity := middleware.IdentityRequired(auth)

	api.Get("/user", identity, userHandler.Me)
	api.Patch("/user", identity, userHandler.Update)

	// Admin: X-Admin-Token, or a synced user passing AdminRequired
	admin := api.Group("/admin", middleware.IdentityOrAdminToken(cfg, identity), middleware.AdminRequired(cfg))
	admin.Get("/overview", adminHandler.Overview)

	// Each dashboard gets its own group so role checks never leak between them
	for _, p := range plugins {
		guards := []fiber.Handler{identity}
		if roles := p.Roles(); len(roles) > 0 {
			guards = append(guards, middleware.RequireRole(roles...))
		}
		p.RegisterRoutes(api.Group("/"+p.ID(), guards...), db, cfg)

		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, db, cfg)
		}
	}
}
