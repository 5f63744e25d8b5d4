package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret"

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Workflow     WorkflowConfig
	Reminder     ReminderConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32

	// ConnectAttempts bounds startup retries while the database comes up.
	ConnectAttempts int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	// URL takes precedence over Addr, Password and DB when set.
	URL      string
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// NotificationConfig selects delivery gateways. Empty webhook URLs log messages instead of sending them.
type NotificationConfig struct {
	SMSWebhookURL   string
	EmailWebhookURL string
	EmailFrom       string
	ShopName        string
	TimeoutSeconds  int
}

// WorkflowConfig holds shop policy for the job workflow.
type WorkflowConfig struct {
	ShopTimezone        string
	DefaultPickupDays   int
	ZeroDueCountsAsPaid bool
	PricingFile         string
}

// ReminderConfig controls pickup reminders and their rate limit.
type ReminderConfig struct {
	Enabled            bool
	IntervalMinutes    int
	RateLimitPerMinute int
	RateLimitBurst     int
	UseRedis           bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "stringing-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,

			ConnectAttempts: getEnvAsInt("POSTGRES_CONNECT_ATTEMPTS", 5),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", devJWTSecret),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Notification: NotificationConfig{
			SMSWebhookURL:   getEnv("NOTIFY_SMS_WEBHOOK_URL", ""),
			EmailWebhookURL: getEnv("NOTIFY_EMAIL_WEBHOOK_URL", ""),
			EmailFrom:       getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			ShopName:        getEnv("SHOP_NAME", "The Stringing Desk"),
			TimeoutSeconds:  getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 10),
		},
		Workflow: WorkflowConfig{
			ShopTimezone:        getEnv("SHOP_TIMEZONE", "America/Toronto"),
			DefaultPickupDays:   getEnvAsInt("WORKFLOW_DEFAULT_PICKUP_DAYS", 3),
			ZeroDueCountsAsPaid: getEnvAsBool("WORKFLOW_ZERO_DUE_COUNTS_AS_PAID", false),
			PricingFile:         os.Getenv("PRICING_FILE"),
		},
		Reminder: ReminderConfig{
			Enabled:            getEnvAsBool("REMINDERS_ENABLED", false),
			IntervalMinutes:    getEnvAsInt("REMINDERS_INTERVAL_MINUTES", 60),
			RateLimitPerMinute: getEnvAsInt("NOTIFY_RATE_LIMIT_PER_MINUTE", 5),
			RateLimitBurst:     getEnvAsInt("NOTIFY_RATE_LIMIT_BURST", 5),
			UseRedis:           getEnvAsBool("NOTIFY_RATE_LIMIT_REDIS", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Workflow.DefaultPickupDays < 0 {
		return fmt.Errorf("invalid WORKFLOW_DEFAULT_PICKUP_DAYS: %d", c.Workflow.DefaultPickupDays)
	}
	if _, err := c.Workflow.Location(); err != nil {
		return fmt.Errorf("invalid SHOP_TIMEZONE: %w", err)
	}
	if c.App.IsProduction() && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == devJWTSecret) {
		return errors.New("AUTH_JWT_SECRET must be set in production")
	}
	if c.Reminder.UseRedis && c.Redis.URL == "" && c.Redis.Addr == "" {
		return errors.New("NOTIFY_RATE_LIMIT_REDIS requires REDIS_URL or REDIS_ADDR")
	}
	return nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production") || strings.EqualFold(a.Env, "prod")
}

// Location resolves the shop timezone used for calendar-day comparisons.
func (w WorkflowConfig) Location() (*time.Location, error) {
	if w.ShopTimezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(w.ShopTimezone)
}

// Interval returns the reminder sweep period.
func (r ReminderConfig) Interval() time.Duration {
	if r.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(r.IntervalMinutes) * time.Minute
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
