package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	PublicBaseURL   string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:3000"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Cart storage. Empty MongoURI falls back to in-memory carts, empty
	// RedisAddr disables the read cache.
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDBName   string `envconfig:"MONGO_DB_NAME" default:"bookingdb"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	// Orders, bookings and availability windows.
	PostgresHost      string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort      int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser      string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword  string `envconfig:"POSTGRES_PASSWORD"`
	PostgresDBName    string `envconfig:"POSTGRES_DB" default:"bookingdb"`
	MigrationsDirPath string `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	// StrictAvailability turns the fail-open availability policy into
	// fail-closed: bookings are rejected when capacity cannot be read.
	StrictAvailability bool `envconfig:"STRICT_AVAILABILITY" default:"false"`

	StripeAPIKey        string `envconfig:"STRIPE_API_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`

	// Kafka is optional; without brokers no confirmation events flow and
	// carts are not auto-cleared after payment.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`

	// SMTP is optional; without a host confirmation emails are skipped.
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	EmailFrom    string `envconfig:"EMAIL_FROM" default:"info@maikekaisurf.com"`
}

func Load() (*Config, error) {
	// A missing .env file is fine, real environments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}

	return &cfg, nil
}
