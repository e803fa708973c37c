package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ghani-Agu/review-app/pkg/config"
	"github.com/Ghani-Agu/review-app/pkg/database"
)

// Config holds all configuration for the review service, populated from
// environment variables.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// ProxyPrefix is the path prefix the app proxy forwards storefront
	// requests under, e.g. /apps/reviews.
	ProxyPrefix string `env:"PROXY_PREFIX" envDefault:"/apps/reviews"`

	// CacheMaxAge is the max-age (seconds) for Cache-Control on listings.
	CacheMaxAge int `env:"CACHE_MAX_AGE" envDefault:"30"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"reviews"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"reviews_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"reviews_db"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	DBMaxConns        int           `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns        int           `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`

	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	ReviewTopic  string   `env:"REVIEW_EVENTS_TOPIC" envDefault:"storefront.review.events"`

	TracingEnabled     bool    `env:"OTEL_TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint       string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRatio float64 `env:"OTEL_TRACES_SAMPLE_RATIO" envDefault:"1.0"`

	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128"`
}

// Load parses configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if !strings.HasPrefix(c.ProxyPrefix, "/") {
		return fmt.Errorf("PROXY_PREFIX must start with a slash, got %q", c.ProxyPrefix)
	}
	if c.DBMaxConns < c.DBMinConns {
		return fmt.Errorf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.DBMaxConns, c.DBMinConns)
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

// Postgres returns the database pool configuration derived from this config.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPassword,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSLMode,
		MaxConns:        int32(c.DBMaxConns),
		MinConns:        int32(c.DBMinConns),
		MaxConnLifetime: c.DBMaxConnLifetime,
		MaxConnIdleTime: 30 * time.Minute,
	}
}

// IsProduction reports whether the service runs in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
