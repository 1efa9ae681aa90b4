package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"deliverytasks/internal/adapters/out/postgres"
	"deliverytasks/internal/jobs"
	"deliverytasks/internal/pkg/auth"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret string
	JWTTTL    time.Duration

	// RedisAddr is optional; without it task events are not published.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RateLimit is requests per second per client IP, 0 disables limiting.
	RateLimit float64
	RateBurst int

	AuditSchedule string
	LogLevel      string
	LogFormat     string
}

// LoadConfig reads .env when present and then the process environment.
// Values already set in the environment win over .env.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	return ConfigFromEnv(os.Getenv)
}

// ConfigFromEnv builds a Config from getenv, applying defaults for optional
// values, and validates it.
func ConfigFromEnv(getenv func(string) string) (Config, error) {
	var parseErrs []error

	jwtTTL, err := durationOr(getenv("JWT_TTL"), 24*time.Hour)
	if err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("JWT_TTL: %w", err))
	}
	redisDB, err := intOr(getenv("REDIS_DB"), 0)
	if err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("REDIS_DB: %w", err))
	}
	rateLimit, err := floatOr(getenv("RATE_LIMIT"), 0)
	if err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("RATE_LIMIT: %w", err))
	}
	rateBurst, err := intOr(getenv("RATE_BURST"), 0)
	if err != nil {
		parseErrs = append(parseErrs, fmt.Errorf("RATE_BURST: %w", err))
	}
	if len(parseErrs) > 0 {
		return Config{}, errors.Join(parseErrs...)
	}

	config := Config{
		HTTPPort:      stringOr(getenv("HTTP_PORT"), "8080"),
		DBHost:        getenv("DB_HOST"),
		DBPort:        stringOr(getenv("DB_PORT"), "5432"),
		DBUser:        getenv("DB_USER"),
		DBPassword:    getenv("DB_PASSWORD"),
		DBName:        getenv("DB_NAME"),
		DBSslMode:     stringOr(getenv("DB_SSLMODE"), "disable"),
		JWTSecret:     getenv("JWT_SECRET"),
		JWTTTL:        jwtTTL,
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		RateLimit:     rateLimit,
		RateBurst:     rateBurst,
		AuditSchedule: stringOr(getenv("AUDIT_SCHEDULE"), jobs.DefaultAuditSchedule),
		LogLevel:      stringOr(getenv("LOG_LEVEL"), "info"),
		LogFormat:     stringOr(getenv("LOG_FORMAT"), "json"),
	}

	if err = config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate reports every missing or malformed setting at once.
func (c Config) Validate() error {
	var errs []error

	required := map[string]string{
		"DB_HOST":    c.DBHost,
		"DB_USER":    c.DBUser,
		"DB_NAME":    c.DBName,
		"JWT_SECRET": c.JWTSecret,
	}
	for _, name := range []string{"DB_HOST", "DB_USER", "DB_NAME", "JWT_SECRET"} {
		if strings.TrimSpace(required[name]) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < auth.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", auth.MinSecretLength))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %q is not a port", c.HTTPPort))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT must not be negative"))
	}
	if c.RedisDB < 0 {
		errs = append(errs, errors.New("REDIS_DB must not be negative"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not json or text", c.LogFormat))
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return postgres.DSN(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// NewLogger builds the process logger described by LOG_FORMAT and LOG_LEVEL.
func (c Config) NewLogger() *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	options := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, options))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, options))
}

func stringOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func durationOr(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(strings.TrimSpace(value))
}

func intOr(value string, fallback int) (int, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return strconv.Atoi(strings.TrimSpace(value))
}

func floatOr(value string, fallback float64) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}
