package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model.Provider != "ollama" {
		t.Errorf("expected default provider ollama, got %s", cfg.Model.Provider)
	}
	if cfg.Model.Temperature != 0.3 {
		t.Errorf("expected default temperature 0.3, got %f", cfg.Model.Temperature)
	}
	if cfg.RateLimit.Capacity != 15 {
		t.Errorf("expected default rate limit capacity 15, got %d", cfg.RateLimit.Capacity)
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Errorf("expected default rate limit window 1m, got %s", cfg.RateLimit.Window)
	}
	if cfg.RateLimit.Blocking {
		t.Error("expected non-blocking rate limiting by default")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default server addr :8080, got %s", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing provider",
			modify:  func(c *Config) { c.Model.Provider = "" },
			wantErr: true,
		},
		{
			name:    "missing model name",
			modify:  func(c *Config) { c.Model.Name = "" },
			wantErr: true,
		},
		{
			name:    "temperature too low",
			modify:  func(c *Config) { c.Model.Temperature = -0.1 },
			wantErr: true,
		},
		{
			name:    "temperature too high",
			modify:  func(c *Config) { c.Model.Temperature = 1.1 },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Model.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero rate limit capacity",
			modify:  func(c *Config) { c.RateLimit.Capacity = 0 },
			wantErr: true,
		},
		{
			name:    "blocking without max wait",
			modify:  func(c *Config) { c.RateLimit.Blocking = true; c.RateLimit.MaxWait = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
model:
  provider: "gemini"
  name: "gemini-2.0-flash"
  temperature: 0.5
rate_limit:
  capacity: 8
  window: 60s
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Model.Provider != "gemini" {
		t.Errorf("expected provider gemini, got %s", cfg.Model.Provider)
	}
	if cfg.Model.Name != "gemini-2.0-flash" {
		t.Errorf("expected model gemini-2.0-flash, got %s", cfg.Model.Name)
	}
	if cfg.RateLimit.Capacity != 8 {
		t.Errorf("expected capacity 8, got %d", cfg.RateLimit.Capacity)
	}
	// Unset values keep their defaults.
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default server addr, got %s", cfg.Server.Addr)
	}
	if cfg.Model.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %s", cfg.Model.Timeout)
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	other := &Config{}
	other.Model.Provider = "openai"
	other.Model.APIKey = "sk-test"
	other.RateLimit.Capacity = 30
	other.RateLimit.Blocking = true

	base.Merge(other)

	if base.Model.Provider != "openai" {
		t.Errorf("expected merged provider openai, got %s", base.Model.Provider)
	}
	if base.Model.APIKey != "sk-test" {
		t.Errorf("expected merged api key, got %s", base.Model.APIKey)
	}
	if base.RateLimit.Capacity != 30 {
		t.Errorf("expected merged capacity 30, got %d", base.RateLimit.Capacity)
	}
	if !base.RateLimit.Blocking {
		t.Error("expected merged blocking mode")
	}
	// Untouched values survive the merge.
	if base.Model.Name != "qwen2.5:14b" {
		t.Errorf("expected default model name to survive, got %s", base.Model.Name)
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	loader := NewLoader(nil)
	if err := loader.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}

	path := filepath.Join(home, UserConfigDir, UserConfigFile)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("created config should load, got %v", err)
	}
	if cfg.Model.Provider != "ollama" {
		t.Errorf("expected default provider in created config, got %s", cfg.Model.Provider)
	}

	// A second call must not touch an existing file.
	if err := os.WriteFile(path, []byte("model:\n  provider: gemini\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := loader.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() on existing file error = %v", err)
	}
	cfg, err = LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.Provider != "gemini" {
		t.Error("expected existing config to be left untouched")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DECKFORGE_PROVIDER", "openai")
	t.Setenv("DECKFORGE_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg := DefaultConfig()
	NewLoader(nil).applyEnv(cfg)

	if cfg.Model.Provider != "openai" {
		t.Errorf("expected provider openai, got %s", cfg.Model.Provider)
	}
	if cfg.Model.Name != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", cfg.Model.Name)
	}
	if cfg.Model.APIKey != "sk-from-env" {
		t.Errorf("expected provider key from env, got %s", cfg.Model.APIKey)
	}
}

func TestApplyEnv_DeckforgeKeyWins(t *testing.T) {
	t.Setenv("DECKFORGE_PROVIDER", "openai")
	t.Setenv("DECKFORGE_API_KEY", "sk-direct")
	t.Setenv("OPENAI_API_KEY", "sk-provider")

	cfg := DefaultConfig()
	NewLoader(nil).applyEnv(cfg)

	if cfg.Model.APIKey != "sk-direct" {
		t.Errorf("expected DECKFORGE_API_KEY to win, got %s", cfg.Model.APIKey)
	}
}
