package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	ClientPostgres = "postgres"
	ClientMySQL    = "mysql"
)

type Config struct {
	Env string `env:"APP_ENV" envDefault:"development"`

	// Database
	DBClient   string `env:"DB_CLIENT" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME,required"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Sessions
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Observability
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	LogRetention time.Duration `env:"LOG_RETENTION" envDefault:"720h"`
	SentryDSN    string        `env:"SENTRY_DSN"`

	// Server
	Port        int    `env:"PORT" envDefault:"3333"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
}

// Load reads .env (or .env.test when APP_ENV=test) if present, then parses
// and validates the environment. Variables already set win over the file.
func Load() (*Config, error) {
	file := ".env"
	if os.Getenv("APP_ENV") == "test" {
		file = ".env.test"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment variables: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case "development", "production", "test":
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be one of development, production, test (got %q)", c.Env))
	}
	switch c.DBClient {
	case ClientPostgres, ClientMySQL:
	default:
		errs = append(errs, fmt.Errorf("DB_CLIENT must be one of %s, %s (got %q)", ClientPostgres, ClientMySQL, c.DBClient))
	}
	if c.DBPort <= 0 || c.DBPort > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT out of range: %d", c.DBPort))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.LogRetention <= 0 {
		errs = append(errs, errors.New("LOG_RETENTION must be positive"))
	}

	return errors.Join(errs...)
}

// DSN builds the connection string for the configured client.
func (c *Config) DSN() string {
	if c.DBClient == ClientMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + strconv.Itoa(c.DBPort) +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
