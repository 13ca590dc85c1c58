// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/logging"
)

// devSecret signs tokens when APP_ENV=development and no secret is set.
const devSecret = "splitledger-development-secret"

// Config is built once at startup and passed by value to constructors.
type Config struct {
	Port     int
	DBPath   string
	LogLevel slog.Level
	AppEnv   string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	MinPasswordLength int
	DefaultPageSize   int
	MaxPageSize       int

	// parseErrs holds variables that were set but could not be parsed.
	parseErrs []error
}

// Load reads a .env file if one exists, then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file: %w", err)
	}

	var env envReader
	cfg := Config{
		Port:              env.getEnvAsInt("PORT", 8080),
		DBPath:            getEnv("DB_PATH", "./data/ledger.db"),
		LogLevel:          logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
		AppEnv:            getEnv("APP_ENV", "production"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTTTL:            env.getEnvAsDuration("JWT_TTL", 24*time.Hour),
		BcryptCost:        env.getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
		MinPasswordLength: env.getEnvAsInt("MIN_PASSWORD_LENGTH", 8),
		DefaultPageSize:   env.getEnvAsInt("DEFAULT_PAGE_SIZE", 100),
		MaxPageSize:       env.getEnvAsInt("MAX_PAGE_SIZE", 1000),
		parseErrs:         env.errs,
	}
	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = devSecret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsDevelopment reports whether APP_ENV is "development".
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Validate checks the settings for consistency. Malformed variables seen
// by Load are reported here too.
func (c Config) Validate() error {
	errs := append([]error(nil), c.parseErrs...)
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH must not be empty"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.MinPasswordLength < 1 {
		errs = append(errs, errors.New("MIN_PASSWORD_LENGTH must be at least 1"))
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		errs = append(errs, fmt.Errorf("DEFAULT_PAGE_SIZE must be between 1 and MAX_PAGE_SIZE (%d)", c.MaxPageSize))
	}
	return errors.Join(errs...)
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Limits returns the input bounds for the ledger.
func (c Config) Limits() ledger.Limits {
	limits := ledger.DefaultLimits()
	limits.MinPasswordLength = c.MinPasswordLength
	limits.DefaultPageSize = c.DefaultPageSize
	limits.MaxPageSize = c.MaxPageSize
	return limits
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// envReader records typed variables that fail to parse instead of
// silently using the fallback.
type envReader struct {
	errs []error
}

func (r *envReader) getEnvAsInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return fallback
	}
	return parsed
}

func (r *envReader) getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s must be a duration, got %q", key, value))
		return fallback
	}
	return parsed
}
