package config

import "github.com/ziadkadry99/docchat/internal/markdown"

// DefaultAllowedTypes are the upload file patterns accepted by default.
var DefaultAllowedTypes = []string{
	"*.pdf",
	"*.txt",
	"*.md",
	"*.docx",
	"*.doc",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:       "http://localhost:5000",
		MaxUploadBytes:  50 * 1024 * 1024,
		MaxMessageChars: 500,
		ChatAttempts:    3,
		BackoffBaseMS:   500,
		ToastSeconds:    3,
		RenderMode:      markdown.ModeSimple,
		ProfileDB:       ".docchat/profile.db",
		Server: ServerConfig{
			Port:           5000,
			DataDir:        "data",
			AllowedTypes:   DefaultAllowedTypes,
			ChatRPM:        60,
			Provider:       ProviderAuto,
			Model:          "openai/gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-large",
			RetrievalK:     5,
			ChunkSize:      1200,
			ChunkOverlap:   200,
		},
	}
}
