package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	DBConnectionString string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxLifetime  time.Duration
	RunMigrations      bool

	// Auth
	JWTSecret string

	// Ledger
	LedgerMaxRetries  int
	ReconcileSchedule string

	// AMQP, events are disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, continuing with system environment variables")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		DBMaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 50),
		DBMaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),

		JWTSecret: getEnv("JWT_SECRET", ""),

		LedgerMaxRetries:  getEnvInt("LEDGER_MAX_RETRIES", 3),
		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "balance.changed"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks every setting and returns all problems joined together.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBConnectionString == "" {
		problems = append(problems, "missing DB_CONNECTION_STRING in environment variables")
	}
	if c.DBMaxOpenConns < 1 {
		problems = append(problems, fmt.Sprintf("invalid DB_MAX_OPEN_CONNS %d: must be positive", c.DBMaxOpenConns))
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		problems = append(problems, fmt.Sprintf("invalid DB_MAX_IDLE_CONNS %d: must be between 0 and DB_MAX_OPEN_CONNS", c.DBMaxIdleConns))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "no JWT_SECRET provided")
	}

	if c.LedgerMaxRetries < 0 || c.LedgerMaxRetries > 10 {
		problems = append(problems, fmt.Sprintf("invalid LEDGER_MAX_RETRIES %d: must be between 0 and 10", c.LedgerMaxRetries))
	}

	if c.ReconcileSchedule != "" {
		if _, err := cron.ParseStandard(c.ReconcileSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("invalid RECONCILE_SCHEDULE '%s': %v", c.ReconcileSchedule, err))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("invalid LOG_FORMAT '%s': must be text or json", c.LogFormat))
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n  - " + strings.Join(problems, "\n  - "))
	}
	return nil
}

func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
