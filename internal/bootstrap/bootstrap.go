// Package bootstrap builds the service graph shared by the API server and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/stringdesk/stringing-service/internal/clock"
	"github.com/stringdesk/stringing-service/internal/config"
	"github.com/stringdesk/stringing-service/internal/events"
	"github.com/stringdesk/stringing-service/internal/ledger"
	"github.com/stringdesk/stringing-service/internal/notify"
	"github.com/stringdesk/stringing-service/internal/observability"
	"github.com/stringdesk/stringing-service/internal/persistence"
	"github.com/stringdesk/stringing-service/internal/pricing"
	"github.com/stringdesk/stringing-service/internal/ratelimit"
	"github.com/stringdesk/stringing-service/internal/repository"
	"github.com/stringdesk/stringing-service/internal/service"
	"github.com/stringdesk/stringing-service/migrations"
)

// Container holds every long-lived dependency.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Postgres   *persistence.Postgres
	Redis      *persistence.Redis
	Dispatcher events.Dispatcher

	StaffRepo repository.StaffRepository

	Auth          *service.AuthService
	Staff         *service.StaffService
	Jobs          *service.JobService
	Payments      *service.PaymentService
	Reminders     *service.ReminderService
	Strings       *service.StringService
	Attachments   *service.AttachmentService
	Activity      *service.ActivityLog
}

// Options tweaks how the container is built.
type Options struct {
	// SkipMigrations leaves the schema untouched even when POSTGRES_RUN_MIGRATIONS is set.
	SkipMigrations bool
}

// New connects to Postgres and Redis and wires the services. Callers must Close the container.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*Container, error) {
	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
		Dispatcher: events.NewInMemoryDispatcher(logger),
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.Postgres = pg

	if cfg.Postgres.RunMigrations && !opts.SkipMigrations {
		if _, err := c.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
	}

	rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Redis = rdb

	loc, err := cfg.Workflow.Location()
	if err != nil {
		c.Close()
		return nil, err
	}
	fees, err := pricing.LoadFeeTable(cfg.Workflow.PricingFile)
	if err != nil {
		c.Close()
		return nil, err
	}

	pool := pg.PoolHandle()
	jobRepo := repository.NewJobRepository(pool)
	statusRepo := repository.NewStatusEventRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	stringRepo := repository.NewStringRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	templateRepo := repository.NewMessageTemplateRepository(pool)
	c.StaffRepo = repository.NewStaffRepository(pool)

	clk := clock.SystemClock{}
	c.Auth = service.NewAuthService(*cfg, c.StaffRepo)
	c.Staff = service.NewStaffService(*cfg, c.StaffRepo)
	c.Jobs = service.NewJobService(service.JobDependencies{
		JobRepo:         jobRepo,
		StatusEventRepo: statusRepo,
		PaymentRepo:     paymentRepo,
		StringRepo:      stringRepo,
		AttachmentRepo:  attachmentRepo,
		Dispatcher:      c.Dispatcher,
		Clock:           clk,
		Fees:            fees,
		Policy:          ledger.Policy{ZeroDueCountsAsPaid: cfg.Workflow.ZeroDueCountsAsPaid},
		Location:        loc,
		PickupDays:      cfg.Workflow.DefaultPickupDays,
		Logger:          logger,
		Metrics:         c.Metrics,
	})
	c.Payments = service.NewPaymentService(service.PaymentDependencies{
		JobRepo:         jobRepo,
		PaymentRepo:     paymentRepo,
		StatusEventRepo: statusRepo,
		Dispatcher:      c.Dispatcher,
		Clock:           clk,
		Logger:          logger,
		Metrics:         c.Metrics,
	})
	c.Reminders = service.NewReminderService(service.ReminderDependencies{
		JobRepo:         jobRepo,
		StatusEventRepo: statusRepo,
		TemplateRepo:    templateRepo,
		Notifier:        newNotifier(cfg.Notification, logger),
		Limiter:         c.newLimiter(ctx, clk),
		Dispatcher:      c.Dispatcher,
		Clock:           clk,
		Location:        loc,
		ShopName:        cfg.Notification.ShopName,
		EmailFrom:       cfg.Notification.EmailFrom,
		Logger:          logger,
		Metrics:         c.Metrics,
	})
	c.Strings = service.NewStringService(stringRepo)
	c.Attachments = service.NewAttachmentService(jobRepo, attachmentRepo)
	c.Activity = service.NewActivityLog(logger, c.Metrics)
	c.Activity.Register(c.Dispatcher)

	return c, nil
}

// Migrate applies pending schema migrations.
func (c *Container) Migrate(ctx context.Context) (int, error) {
	applied, err := persistence.RunMigrations(ctx, c.Postgres.PoolHandle(), migrations.FS, c.Logger)
	if err != nil {
		return applied, fmt.Errorf("run migrations: %w", err)
	}
	return applied, nil
}

// Close releases connections.
func (c *Container) Close() {
	c.Redis.Close()
	c.Postgres.Close()
}

// newLimiter shares the reminder rate limit through Redis when asked to and
// Redis answers, otherwise each process keeps its own buckets.
func (c *Container) newLimiter(ctx context.Context, clk clock.Clock) ratelimit.Limiter {
	cfg := ratelimit.Config{
		PerMinute: c.Config.Reminder.RateLimitPerMinute,
		Burst:     c.Config.Reminder.RateLimitBurst,
	}
	if c.Config.Reminder.UseRedis && c.Redis.Configured() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := c.Redis.Ping(pingCtx); err == nil {
			return ratelimit.NewRedisWindow(c.Redis.Client, c.Config.App.Name+":notify", cfg)
		}
		c.Logger.Warn("redis unavailable; using in-process rate limit")
	}
	return ratelimit.NewTokenBucket(cfg, clk)
}

func newNotifier(cfg config.NotificationConfig, logger *zap.Logger) notify.Notifier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	var sms, email notify.Notifier = notify.NewLogNotifier(logger), notify.NewLogNotifier(logger)
	if cfg.SMSWebhookURL != "" {
		sms = notify.NewWebhookNotifier(cfg.SMSWebhookURL, timeout)
	}
	if cfg.EmailWebhookURL != "" {
		email = notify.NewWebhookNotifier(cfg.EmailWebhookURL, timeout)
	}
	return notify.NewRouter(sms, email)
}
