package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/logging"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/maintenance"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/routes"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/session"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		return err
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		return err
	}

	// Errors also go to system_logs (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logging.ParseLevel(cfg.LogLevel)}),
		dbLogHandler,
	)))

	transport := session.NewBearerTransport(cfg.SessionSecret, cfg.SessionTTL)

	// Services
	sessionService := services.NewSessionService(db, cfg.SessionTTL)
	userService := services.NewUserService(db, sessionService, transport.Seal)
	mealService := services.NewMealService(db)

	// Expired sessions and old system logs
	janitorDone := make(chan struct{})
	maintenance.NewJanitor(db, sessionService, cfg.LogRetention).Start(24*time.Hour, janitorDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(metrics.Middleware())
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app,
		middleware.SessionRequired(transport.Secret(), transport, sessionService),
		handlers.NewUserHandler(userService, transport),
		handlers.NewMealHandler(mealService),
		handlers.NewHealthHandler(db),
	)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "env", cfg.Env)
		listenErr <- app.Listen(cfg.Addr())
	}()

	select {
	case <-quit:
		slog.Info("shutting down server...")
	case err := <-listenErr:
		slog.Error("server failed to start", "error", err)
		close(janitorDone)
		dbLogHandler.Stop()
		return err
	}

	close(janitorDone)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
	return nil
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
