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
)

const (
	SeriesWindowPrevious = "previous"
	SeriesWindowCurrent  = "current"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DBConnectionString string

	// Tokens
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SecureCookies   bool
	TOTPIssuer      string

	// Summary
	SummaryCacheSize    int
	SummaryCacheTTL     time.Duration
	SummarySeriesWindow string

	// Scheduler
	CacheCleanupSchedule string

	// AMQP change events, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string

	LogLevel string
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, continuing with system environment variables")
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 10*time.Minute),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 720*time.Hour),
		SecureCookies:   getEnvBool("SECURE_COOKIES", false),
		TOTPIssuer:      getEnv("TOTP_ISSUER", "FinanceTracker"),

		SummaryCacheSize:    getEnvInt("SUMMARY_CACHE_SIZE", 500),
		SummaryCacheTTL:     getEnvDuration("SUMMARY_CACHE_TTL", 5*time.Minute),
		SummarySeriesWindow: getEnv("SUMMARY_SERIES_WINDOW", SeriesWindowPrevious),

		CacheCleanupSchedule: getEnv("CACHE_CLEANUP_SCHEDULE", "@every 5m"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finance"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBConnectionString == "" {
		problems = append(problems, "missing DB_CONNECTION_STRING")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "missing JWT_SECRET")
	}

	if c.AccessTokenTTL <= 0 {
		problems = append(problems, "access token TTL must be positive")
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		problems = append(problems, "refresh token TTL must be longer than access token TTL")
	}

	if c.SummaryCacheSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid summary cache size %d: must be at least 1", c.SummaryCacheSize))
	}
	if c.SummaryCacheTTL <= 0 {
		problems = append(problems, "summary cache TTL must be positive")
	}
	if c.SummarySeriesWindow != SeriesWindowPrevious && c.SummarySeriesWindow != SeriesWindowCurrent {
		problems = append(problems, fmt.Sprintf("invalid summary series window '%s': must be '%s' or '%s'",
			c.SummarySeriesWindow, SeriesWindowPrevious, SeriesWindowCurrent))
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

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed: " + strings.Join(problems, "; "))
	}
	return nil
}

func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level '%s'", level)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
