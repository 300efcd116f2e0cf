package config

import "github.com/ziadkadry99/docchat/internal/markdown"

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAuto       ProviderType = "auto"
	ProviderNone       ProviderType = "none"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
)

// Config is the top-level docchat configuration, corresponding to .docchat.yml.
type Config struct {
	ServerURL       string        `yaml:"server_url" koanf:"server_url"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" koanf:"max_upload_bytes"`
	MaxMessageChars int           `yaml:"max_message_chars" koanf:"max_message_chars"`
	ChatAttempts    int           `yaml:"chat_attempts" koanf:"chat_attempts"`
	BackoffBaseMS   int           `yaml:"backoff_base_ms" koanf:"backoff_base_ms"`
	ToastSeconds    int           `yaml:"toast_seconds" koanf:"toast_seconds"`
	RenderMode      markdown.Mode `yaml:"render_mode" koanf:"render_mode"`
	ProfileDB       string        `yaml:"profile_db" koanf:"profile_db"`
	Server          ServerConfig  `yaml:"server" koanf:"server"`
}

// ServerConfig holds settings for the backend started by `docchat server`.
type ServerConfig struct {
	Port            int          `yaml:"port" koanf:"port"`
	DataDir         string       `yaml:"data_dir" koanf:"data_dir"`
	AllowedTypes    []string     `yaml:"allowed_types" koanf:"allowed_types"`
	AllowAllOrigins bool         `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	ChatRPM         int          `yaml:"chat_rpm" koanf:"chat_rpm"`
	Provider        ProviderType `yaml:"provider" koanf:"provider"`
	Model           string       `yaml:"model" koanf:"model"`
	EmbeddingModel  string       `yaml:"embedding_model" koanf:"embedding_model"`
	RetrievalK      int          `yaml:"retrieval_k" koanf:"retrieval_k"`
	ChunkSize       int          `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap    int          `yaml:"chunk_overlap" koanf:"chunk_overlap"`
}
