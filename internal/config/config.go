package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/docchat/internal/markdown"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DOCCHAT_*). Nested keys use a double
// underscore: DOCCHAT_SERVER__PORT -> server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults. List defaults are applied after unmarshalling
	// because decoding a shorter list over a longer one keeps the tail.
	cfg := DefaultConfig()
	cfg.Server.AllowedTypes = nil

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("DOCCHAT_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if len(cfg.Server.AllowedTypes) == 0 {
		cfg.Server.AllowedTypes = DefaultAllowedTypes
	}

	return cfg, nil
}

// envKey maps DOCCHAT_SERVER__DATA_DIR to server.data_dir.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "DOCCHAT_"))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderAuto:       true,
	ProviderNone:       true,
	ProviderOpenAI:     true,
	ProviderOpenRouter: true,
}

// validRenderModes is the set of recognized render_mode values.
var validRenderModes = map[markdown.Mode]bool{
	markdown.ModeSimple: true,
	markdown.ModeGFM:    true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("server_url %q must start with http:// or https://", c.ServerURL)
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	if c.MaxMessageChars <= 0 {
		return fmt.Errorf("max_message_chars must be positive")
	}
	if c.ChatAttempts < 1 {
		return fmt.Errorf("chat_attempts must be at least 1")
	}
	if c.BackoffBaseMS < 0 {
		return fmt.Errorf("backoff_base_ms must be non-negative")
	}

	if c.RenderMode != "" && !validRenderModes[c.RenderMode] {
		return fmt.Errorf("invalid render_mode %q: must be one of simple, gfm", c.RenderMode)
	}

	return c.Server.Validate()
}

// Validate checks the server section.
func (s *ServerConfig) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", s.Port)
	}
	if s.DataDir == "" {
		return fmt.Errorf("server.data_dir is required")
	}
	if s.Provider != "" && !validProviders[s.Provider] {
		return fmt.Errorf("invalid server.provider %q: must be one of none, openai, openrouter", s.Provider)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("server.chunk_size must be positive")
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("server.chunk_overlap must be in [0, chunk_size)")
	}
	if s.ChatRPM < 0 {
		return fmt.Errorf("server.chat_rpm must be non-negative")
	}
	return nil
}

// Backoff returns the base retry delay as a duration.
func (c *Config) Backoff() time.Duration {
	return time.Duration(c.BackoffBaseMS) * time.Millisecond
}

// ToastDuration returns how long toasts stay visible.
func (c *Config) ToastDuration() time.Duration {
	return time.Duration(c.ToastSeconds) * time.Second
}

// APIKey returns the LLM API key from the environment. OPENROUTER_API_KEY
// is preferred when both are set.
func APIKey() (key string, provider ProviderType) {
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		return k, ProviderOpenRouter
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		return k, ProviderOpenAI
	}
	return "", ProviderNone
}
