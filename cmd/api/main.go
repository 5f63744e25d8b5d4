package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/stringdesk/stringing-service/internal/api/http"
	"github.com/stringdesk/stringing-service/internal/api/http/handlers"
	"github.com/stringdesk/stringing-service/internal/auth"
	"github.com/stringdesk/stringing-service/internal/bootstrap"
	"github.com/stringdesk/stringing-service/internal/config"
	"github.com/stringdesk/stringing-service/internal/observability"
	"github.com/stringdesk/stringing-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{})
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer c.Close()

	var reminders *worker.ReminderWorker
	if cfg.Reminder.Enabled {
		reminders = worker.NewReminderWorker(c.Reminders, cfg.Reminder.Interval(), logger)
		reminders.Start(ctx)
	}

	authMiddleware := auth.NewAuthMiddleware(c.Auth.TokenManager(), c.StaffRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, c.Metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, healthChecks(c)...),
		Auth:           handlers.NewAuthHandler(c.Auth),
		Staff:          handlers.NewStaffHandler(c.Staff),
		Intake:         handlers.NewIntakeHandler(c.Jobs),
		Jobs:           handlers.NewJobsHandler(c.Jobs),
		Payments:       handlers.NewPaymentsHandler(c.Payments),
		Reminders:      handlers.NewRemindersHandler(c.Reminders),
		Attachments:    handlers.NewAttachmentsHandler(c.Attachments),
		Strings:        handlers.NewStringsHandler(c.Strings),
		Metrics:        c.Metrics,
		AuthMiddleware: authMiddleware.Handle,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if reminders != nil {
		reminders.Stop()
	}
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

// healthChecks probes Postgres always and Redis only when configured. Redis
// gates readiness only when reminders depend on it for the shared rate limit.
func healthChecks(c *bootstrap.Container) []handlers.DependencyCheck {
	checks := []handlers.DependencyCheck{{Name: "postgres", Pinger: c.Postgres}}
	if c.Redis.Configured() {
		checks = append(checks, handlers.DependencyCheck{
			Name:     "redis",
			Pinger:   c.Redis,
			Optional: !c.Config.Reminder.UseRedis,
		})
	}
	return checks
}
