package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Stripe  StripeConfig
	Email   EmailConfig
	Loyalty LoyaltyConfig
	Outbox  OutboxConfig

	RateLimit RateLimitConfig

	Business BusinessConfig

	PortalBaseURL string
}

// BusinessConfig identifies the company on rendered invoices.
type BusinessConfig struct {
	Name    string
	Address string
	Email   string
}

// StripeConfig carries the payment provider webhook credentials.
type StripeConfig struct {
	WebhookSecret string
}

// EmailConfig carries SMTP provider settings.
type EmailConfig struct {
	Enabled      bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// LoyaltyConfig controls point accrual. EarnRate is points per whole
// dollar of a settled payment.
type LoyaltyConfig struct {
	EarnRate      int64
	PointValueUSD float64
	RedeemRate    float64
	RedeemBurst   int
}

// OutboxConfig controls the email outbox dispatcher.
type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// RateLimitConfig configures the Redis-backed limiter.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "portal"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "portal"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 25)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 60)),

		Stripe: StripeConfig{
			WebhookSecret: strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", "")),
		},
		Email: EmailConfig{
			Enabled:      getenvBool("EMAIL_ENABLED", true),
			SMTPHost:     getenv("SMTP_HOST", "localhost"),
			SMTPPort:     int(getenvInt64("SMTP_PORT", 587)),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "noreply@dirtfreecarpet.com"),
		},
		Loyalty: LoyaltyConfig{
			EarnRate:      getenvInt64("LOYALTY_EARN_RATE", 10),
			PointValueUSD: getenvFloat("LOYALTY_POINT_VALUE_USD", 0.1),
			RedeemRate:    getenvFloat("LOYALTY_REDEEM_RATE", 5.0/60.0),
			RedeemBurst:   int(getenvInt64("LOYALTY_REDEEM_BURST", 5)),
		},
		Outbox: OutboxConfig{
			PollInterval: time.Duration(getenvInt64("OUTBOX_POLL_INTERVAL_MS", 5000)) * time.Millisecond,
			BatchSize:    int(getenvInt64("OUTBOX_BATCH_SIZE", 25)),
			MaxAttempts:  int(getenvInt64("OUTBOX_MAX_ATTEMPTS", 5)),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:       int(getenvInt64("RATE_LIMIT_REDIS_DB", 0)),
		},

		Business: BusinessConfig{
			Name:    getenv("BUSINESS_NAME", "Dirt Free Carpet Cleaning"),
			Address: getenv("BUSINESS_ADDRESS", "Houston, TX"),
			Email:   getenv("BUSINESS_EMAIL", "billing@dirtfreecarpet.com"),
		},

		PortalBaseURL: strings.TrimRight(getenv("PORTAL_BASE_URL", "https://portal.dirtfreecarpet.com"), "/"),
	}

	return cfg
}

// Module provides the configuration to the fx graph.
var Module = fx.Provide(Load)
