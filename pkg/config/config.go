package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	Service ServiceConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Stripe  StripeConfig
	GCP     GCPConfig
	PubSub  PubSubConfig
	Outbox  OutboxConfig
	Webhook WebhookConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MARKETCORE_APP_ENV" required:"true"`
	Port         string `envconfig:"MARKETCORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MARKETCORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARKETCORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MARKETCORE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"MARKETCORE_DB_DSN"`

	Host     string `envconfig:"MARKETCORE_DB_HOST"`
	Port     int    `envconfig:"MARKETCORE_DB_PORT" default:"5432"`
	User     string `envconfig:"MARKETCORE_DB_USER"`
	Password string `envconfig:"MARKETCORE_DB_PASSWORD"`
	Name     string `envconfig:"MARKETCORE_DB_NAME"`
	SSLMode  string `envconfig:"MARKETCORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARKETCORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARKETCORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARKETCORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARKETCORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"MARKETCORE_DB_AUTO_MIGRATE" default:"false"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either MARKETCORE_DB_DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := url.Values{}
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"MARKETCORE_REDIS_URL"`
	Address      string        `envconfig:"MARKETCORE_REDIS_ADDR"`
	Password     string        `envconfig:"MARKETCORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARKETCORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARKETCORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARKETCORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARKETCORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARKETCORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARKETCORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MARKETCORE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MARKETCORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MARKETCORE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type StripeConfig struct {
	APIKey        string        `envconfig:"MARKETCORE_STRIPE_API_KEY" required:"true"`
	WebhookSecret string        `envconfig:"MARKETCORE_STRIPE_WEBHOOK_SECRET" required:"true"`
	Env           string        `envconfig:"MARKETCORE_STRIPE_ENV" default:"test"`
	RefundTimeout time.Duration `envconfig:"MARKETCORE_STRIPE_REFUND_TIMEOUT" default:"20s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MARKETCORE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"MARKETCORE_PUBSUB_ORDERS_TOPIC" default:"order-events"`
	OrdersSubscription string `envconfig:"MARKETCORE_PUBSUB_ORDERS_SUBSCRIPTION" default:"order-events-sub"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"MARKETCORE_OUTBOX_BATCH_SIZE" default:"50"`
	PollInterval   time.Duration `envconfig:"MARKETCORE_OUTBOX_POLL_INTERVAL" default:"500ms"`
	PublishTimeout time.Duration `envconfig:"MARKETCORE_OUTBOX_PUBLISH_TIMEOUT" default:"15s"`
	MaxAttempts    int           `envconfig:"MARKETCORE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"MARKETCORE_WEBHOOK_IDEMPOTENCY_TTL" default:"24h"`
}
