package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var configVars = []string{
	"PORT", "DB_PATH", "LOG_LEVEL", "APP_ENV", "JWT_SECRET", "JWT_TTL",
	"BCRYPT_COST", "MIN_PASSWORD_LENGTH", "DEFAULT_PAGE_SIZE", "MAX_PAGE_SIZE",
}

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configVars {
		if val, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, val) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "s3cret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Port != 8080 {
			t.Errorf("expected Port 8080, got %d", cfg.Port)
		}
		if cfg.DBPath != "./data/ledger.db" {
			t.Errorf("expected default DBPath, got %s", cfg.DBPath)
		}
		if cfg.LogLevel != slog.LevelInfo {
			t.Errorf("expected info level, got %v", cfg.LogLevel)
		}
		if cfg.JWTTTL != 24*time.Hour {
			t.Errorf("expected JWTTTL 24h, got %v", cfg.JWTTTL)
		}
		if cfg.BcryptCost != bcrypt.DefaultCost {
			t.Errorf("expected default bcrypt cost, got %d", cfg.BcryptCost)
		}
		if cfg.Addr() != ":8080" {
			t.Errorf("expected addr :8080, got %s", cfg.Addr())
		}
	})

	t.Run("reads environment variables", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("JWT_TTL", "30m")
		t.Setenv("BCRYPT_COST", "4")
		t.Setenv("MAX_PAGE_SIZE", "500")
		t.Setenv("DEFAULT_PAGE_SIZE", "50")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Port != 9090 || cfg.LogLevel != slog.LevelDebug || cfg.JWTTTL != 30*time.Minute || cfg.BcryptCost != 4 {
			t.Errorf("env not applied: %+v", cfg)
		}

		limits := cfg.Limits()
		if limits.MaxPageSize != 500 || limits.DefaultPageSize != 50 {
			t.Errorf("limits not applied: %+v", limits)
		}
		if limits.MaxEmailLength != 255 {
			t.Errorf("expected column bounds to be kept, got %d", limits.MaxEmailLength)
		}
	})

	t.Run("malformed numbers are rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("PORT", "not-a-number")
		t.Setenv("JWT_TTL", "forever")

		_, err := Load()
		if err == nil {
			t.Fatal("expected an error for malformed variables")
		}
		for _, key := range []string{"PORT", "JWT_TTL"} {
			if !strings.Contains(err.Error(), key) {
				t.Errorf("expected error to name %s, got %v", key, err)
			}
		}
	})

	t.Run("empty numbers use defaults", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("PORT", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Port != 8080 {
			t.Errorf("expected default port, got %d", cfg.Port)
		}
	})

	t.Run("secret required outside development", func(t *testing.T) {
		clearEnv(t)

		if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
			t.Errorf("expected JWT_SECRET error, got %v", err)
		}

		t.Setenv("APP_ENV", "development")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed in development: %v", err)
		}
		if cfg.JWTSecret == "" {
			t.Error("expected a development secret")
		}
	})

	t.Run("reads env file", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("JWT_SECRET=from-file\nPORT=7070\n"), 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		// godotenv sets these directly; make sure they do not leak.
		t.Cleanup(func() {
			os.Unsetenv("JWT_SECRET")
			os.Unsetenv("PORT")
		})

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.JWTSecret != "from-file" || cfg.Port != 7070 {
			t.Errorf("env file not applied: %+v", cfg)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:              8080,
		DBPath:            "x.db",
		JWTSecret:         "s",
		JWTTTL:            time.Hour,
		BcryptCost:        bcrypt.MinCost,
		MinPasswordLength: 8,
		DefaultPageSize:   100,
		MaxPageSize:       1000,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"non-positive ttl", func(c *Config) { c.JWTTTL = 0 }},
		{"bcrypt cost too high", func(c *Config) { c.BcryptCost = 99 }},
		{"default page above max", func(c *Config) { c.DefaultPageSize = 2000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
