package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL      string        `env:"DATABASE_URL,required" validate:"required"`
	DBMaxConns       int32         `env:"DB_MAX_CONNS" envDefault:"10" validate:"min=1,max=200"`
	DBConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	AutoMigrate      bool          `env:"AUTO_MIGRATE" envDefault:"false"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	MetricsPort    string        `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret      string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"2h" validate:"gt=0"`
	VerifyTokenTTL time.Duration `env:"VERIFY_TOKEN_TTL" envDefault:"1h" validate:"gt=0"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10" validate:"min=4,max=31"`

	AppURL      string   `env:"APP_URL" envDefault:"http://localhost:5173" validate:"required,url"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// Resend is optional. Without it, local logs mail and other envs skip it.
	ResendAPIKey string        `env:"RESEND_API_KEY"`
	ResendFrom   string        `env:"RESEND_FROM"`
	MailTimeout  time.Duration `env:"MAIL_TIMEOUT" envDefault:"5s" validate:"gt=0"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	return cfg, nil
}

func (c *Config) IsLocal() bool      { return c.Env == "local" }
func (c *Config) IsProduction() bool { return c.Env == "production" }

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AllowedOrigins is CORS_ORIGINS plus APP_URL, and the Vite dev ports when
// running locally.
func (c *Config) AllowedOrigins() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(o string) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			return
		}
		seen[o] = true
		out = append(out, o)
	}
	add(c.AppURL)
	for _, o := range c.CORSOrigins {
		add(o)
	}
	if c.IsLocal() {
		add("http://localhost:5173")
		add("http://localhost:5174")
	}
	return out
}
