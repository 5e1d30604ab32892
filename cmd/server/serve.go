package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/go-extras/cobraflags"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/sqb-backend/internal/storage"
)

const portFlag = "port"

var serveFlags = map[string]cobraflags.Flag{
	portFlag: &cobraflags.StringFlag{
		Name:  portFlag,
		Value: "",
		Usage: "Listen port (overrides PORT)",
	},
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	cobraflags.RegisterMap(cmd, commonFlags)
	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if port := serveFlags[portFlag].GetString(); port != "" {
		cfg.Port = port
	}

	// Identity provider client, built once for the process
	verifier, err := identity.New(ctx, cfg)
	if err != nil {
		return err
	}
	slog.Info("identity provider configured", "mode", cfg.IdentityMode())

	// Database
	if err := database.Connect(cfg); err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}()

	publisher := newPublisher(cfg)
	defer publisher.Close()

	presigner, err := storage.NewS3Presigner(ctx, cfg)
	if err != nil {
		return err
	}
	var signer storage.URLSigner
	if presigner != nil {
		signer = presigner
	}

	plugins := newPlugins(publisher, signer, services.NewContentFilter())
	if err := migrate(plugins); err != nil {
		return err
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.AttachDB(database.DB)
	defer pgLogHandler.Stop()

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)
	defer close(cleanupDone)

	// Services
	authenticator := services.NewAuthenticator(verifier, services.NewIdentitySyncService(services.NewGormUserStore(database.DB)))
	subscriptionService := services.NewSubscriptionService(database.DB, publisher)

	// Handlers
	healthHandler := handlers.NewHealthHandler(database.DB, publisher)
	legalHandler := handlers.NewLegalHandler(database.DB)
	webhookHandler := handlers.NewWebhookHandler(subscriptionService, cfg)
	userHandler := handlers.NewUserHandler(services.NewUserService(database.DB))
	adminHandler := handlers.NewAdminHandler(services.NewOverviewService(database.DB))

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
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
	app.Use(metrics.Middleware())
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, authenticator, healthHandler, legalHandler, webhookHandler, userHandler, adminHandler, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-quit:
	}
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

// newPublisher falls back to a no-op publisher when NATS is unset or down;
// events never block serving requests.
func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.NATSURL == "" {
		slog.Info("NATS_URL not set, domain events disabled")
		return events.Noop{}
	}
	publisher, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix)
	if err != nil {
		slog.Warn("event broker unavailable, domain events disabled", "error", err)
		return events.Noop{}
	}
	slog.Info("event broker connected", "subject_prefix", cfg.NATSSubjectPrefix)
	return publisher
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":       true,
		"message":     message,
		"status_code": code,
	})
}
