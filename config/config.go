// Package config provides configuration loading and management for Deckforge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/deckforge/deckforge/llm"
	"github.com/deckforge/deckforge/ratelimit"
)

// Config represents the complete Deckforge configuration
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Server    ServerConfig    `yaml:"server"`
}

// ModelConfig configures the generative upstream
type ModelConfig struct {
	// Provider selects the upstream API dialect ("openai", "gemini", "ollama")
	Provider string `yaml:"provider"`
	// Name is the model to use (e.g., "gemini-2.0-flash")
	Name string `yaml:"name"`
	// Endpoint overrides the provider's default API endpoint
	Endpoint string `yaml:"endpoint"`
	// APIKey authenticates against the provider. Usually left empty here and
	// supplied via environment instead; see Loader.
	APIKey string `yaml:"api_key"`
	// Temperature controls randomness (0.0-1.0)
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for one model response
	Timeout time.Duration `yaml:"timeout"`
}

// RateLimitConfig configures the shared upstream call budget
type RateLimitConfig struct {
	// Capacity is the number of calls allowed per window
	Capacity int `yaml:"capacity"`
	// Window is the sliding window duration
	Window time.Duration `yaml:"window"`
	// Blocking makes denied callers wait for a slot instead of falling back
	Blocking bool `yaml:"blocking"`
	// MaxWait bounds the wait in blocking mode
	MaxWait time.Duration `yaml:"max_wait"`
}

// ServerConfig configures the HTTP service
type ServerConfig struct {
	// Addr is the listen address (default: ":8080")
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	rl := ratelimit.DefaultConfig()
	return &Config{
		Model: ModelConfig{
			Provider:    "ollama",
			Name:        "qwen2.5:14b",
			Temperature: 0.3,
			Timeout:     30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Capacity: rl.Capacity,
			Window:   rl.Window,
			Blocking: rl.Blocking,
			MaxWait:  rl.MaxWait,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Model.Timeout <= 0 {
		return fmt.Errorf("model.timeout must be positive")
	}
	return ratelimit.Config{
		Capacity: c.RateLimit.Capacity,
		Window:   c.RateLimit.Window,
		Blocking: c.RateLimit.Blocking,
		MaxWait:  c.RateLimit.MaxWait,
	}.Validate()
}

// Endpoint builds the llm endpoint described by this config
func (c *Config) Endpoint() llm.Endpoint {
	return llm.Endpoint{
		Provider: c.Model.Provider,
		URL:      c.Model.Endpoint,
		Model:    c.Model.Name,
		APIKey:   c.Model.APIKey,
	}
}

// RateLimiter builds the ratelimit configuration from this config
func (c *Config) RateLimiter() ratelimit.Config {
	return ratelimit.Config{
		Capacity: c.RateLimit.Capacity,
		Window:   c.RateLimit.Window,
		Blocking: c.RateLimit.Blocking,
		MaxWait:  c.RateLimit.MaxWait,
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Model
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.APIKey != "" {
		c.Model.APIKey = other.Model.APIKey
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	// Rate limit
	if other.RateLimit.Capacity != 0 {
		c.RateLimit.Capacity = other.RateLimit.Capacity
	}
	if other.RateLimit.Window != 0 {
		c.RateLimit.Window = other.RateLimit.Window
	}
	if other.RateLimit.Blocking {
		c.RateLimit.Blocking = true
	}
	if other.RateLimit.MaxWait != 0 {
		c.RateLimit.MaxWait = other.RateLimit.MaxWait
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
}
