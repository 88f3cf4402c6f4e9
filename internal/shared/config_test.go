package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "foodgram.db" {
			t.Errorf("expected database path foodgram.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Limits.MaxCookingTime != 600 || config.Limits.MaxIngredientAmount != 5000 {
			t.Errorf("unexpected limits: %+v", config.Limits)
		}

		if config.Limits.DefaultPageSize != 6 {
			t.Errorf("expected default page size 6, got %d", config.Limits.DefaultPageSize)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 9090
cors_origins = ["https://foodgram.example"]

[auth]
jwt_secret = "s3cret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Addr() != "0.0.0.0:9090" {
			t.Errorf("expected addr 0.0.0.0:9090, got %s", config.Server.Addr())
		}
		if config.Auth.JWTSecret != "s3cret" {
			t.Errorf("expected jwt secret to be loaded, got %q", config.Auth.JWTSecret)
		}
		if len(config.Server.CORSOrigins) != 1 || config.Server.CORSOrigins[0] != "https://foodgram.example" {
			t.Errorf("unexpected cors origins %v", config.Server.CORSOrigins)
		}
		if config.Limits.MaxCookingTime != 600 {
			t.Errorf("omitted keys should keep defaults, got max cooking time %d", config.Limits.MaxCookingTime)
		}
	})

	t.Run("LoadConfig Invalid", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[database\npath = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvDatabasePath, "/env/foodgram.db")
		t.Setenv(EnvPort, "7070")
		t.Setenv(EnvJWTSecret, "from-env")

		config := DefaultConfig()
		if err := ApplyEnv(config); err != nil {
			t.Fatalf("ApplyEnv failed: %v", err)
		}

		if config.Database.Path != "/env/foodgram.db" {
			t.Errorf("expected env database path, got %s", config.Database.Path)
		}
		if config.Server.Port != 7070 {
			t.Errorf("expected env port 7070, got %d", config.Server.Port)
		}
		if config.Auth.JWTSecret != "from-env" {
			t.Errorf("expected env jwt secret, got %q", config.Auth.JWTSecret)
		}
	})

	t.Run("ApplyEnv Bad Port", func(t *testing.T) {
		t.Setenv(EnvPort, "eighty")
		if err := ApplyEnv(DefaultConfig()); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadDotEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("FOODGRAM_LOG_LEVEL=debug\n"), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		t.Setenv(EnvLogLevel, "")
		os.Unsetenv(EnvLogLevel)

		if err := LoadDotEnv(envPath, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("LoadDotEnv failed: %v", err)
		}
		if got := os.Getenv(EnvLogLevel); got != "debug" {
			t.Errorf("expected log level from .env, got %q", got)
		}
	})
}
