// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP server
	Port int `env:"PORT" envDefault:"8080"`

	// Database
	DBPath string `env:"DB_PATH" envDefault:"./data/splitx.db"`

	// Auth
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// AMQP; reminders are only logged when AMQPURL is empty.
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"splitx"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"payment_reminders"`

	// Reminder worker
	ReminderInterval   time.Duration `env:"REMINDER_INTERVAL" envDefault:"24h"`
	ReminderRunOnStart bool          `env:"REMINDER_RUN_ON_START" envDefault:"false"`
	SweepWorkers       int           `env:"SWEEP_WORKERS" envDefault:"0"`

	MetricsEnabled    bool `env:"METRICS_ENABLED" envDefault:"true"`
	WorkerMetricsPort int  `env:"WORKER_METRICS_PORT" envDefault:"9091"`
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings shared by every binary and reports all
// problems at once.
func (c *Config) Validate() error {
	return joinProblems(c.problems())
}

// ValidateServer is Validate plus the settings only the API server needs.
func (c *Config) ValidateServer() error {
	problems := c.problems()
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if len(c.JWTSecret) < 16 {
		problems = append(problems, "JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid token TTL %v: must be positive", c.TokenTTL))
	}
	return joinProblems(problems)
}

func (c *Config) problems() []string {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}
	if c.MetricsEnabled && (c.WorkerMetricsPort < 1 || c.WorkerMetricsPort > 65535) {
		problems = append(problems, fmt.Sprintf("invalid worker metrics port %d: must be between 1 and 65535", c.WorkerMetricsPort))
	}
	if c.DBPath == "" {
		problems = append(problems, "database path cannot be empty")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ReminderInterval < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid reminder interval %v: must be at least 1 minute", c.ReminderInterval))
	}
	if c.SweepWorkers < 0 {
		problems = append(problems, fmt.Sprintf("invalid sweep workers %d: must not be negative", c.SweepWorkers))
	}

	return problems
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
}
