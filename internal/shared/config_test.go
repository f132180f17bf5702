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

		if config.Server.BaseURL != "http://localhost:5001" {
			t.Errorf("expected base URL http://localhost:5001, got %s", config.Server.BaseURL)
		}
		if config.Database.Path != "./vtx.db" {
			t.Errorf("expected database path ./vtx.db, got %s", config.Database.Path)
		}
		if config.Preview.Addr() != "127.0.0.1:0" {
			t.Errorf("expected preview addr 127.0.0.1:0, got %s", config.Preview.Addr())
		}
		if config.UI.Theme != "auto" {
			t.Errorf("expected theme auto, got %s", config.UI.Theme)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

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
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[server]
base_url = "https://scribe.example.com"

[database]
path = "/custom/path.db"

[ui]
theme = "dark"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.BaseURL != "https://scribe.example.com" {
			t.Errorf("expected base URL https://scribe.example.com, got %s", config.Server.BaseURL)
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.UI.Theme != "dark" {
			t.Errorf("expected theme dark, got %s", config.UI.Theme)
		}
		if config.Log.Level != "info" {
			t.Errorf("expected unset log level to keep default info, got %s", config.Log.Level)
		}
	})

	t.Run("LoadConfig Invalid Theme", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[ui]\ntheme = \"sepia\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Malformed", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nbase_url ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("VTX_DATABASE_PATH=/from/dotenv.db\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv(EnvBaseURL, "http://10.0.0.2:5001")
		t.Setenv(EnvLogLevel, "debug")
		t.Cleanup(func() { os.Unsetenv(EnvDatabasePath) })

		config := DefaultConfig()
		config.ApplyEnv(envPath)

		if config.Server.BaseURL != "http://10.0.0.2:5001" {
			t.Errorf("expected base URL from env, got %s", config.Server.BaseURL)
		}
		if config.Database.Path != "/from/dotenv.db" {
			t.Errorf("expected database path from .env, got %s", config.Database.Path)
		}
		if config.Log.Level != "debug" {
			t.Errorf("expected log level debug, got %s", config.Log.Level)
		}
	})
}
