package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/ziadkadry99/docchat/internal/client"
	"github.com/ziadkadry99/docchat/internal/config"
	"github.com/ziadkadry99/docchat/internal/db"
	"github.com/ziadkadry99/docchat/internal/embeddings"
	"github.com/ziadkadry99/docchat/internal/llm"
	"github.com/ziadkadry99/docchat/internal/markdown"
	"github.com/ziadkadry99/docchat/internal/profile"
	"github.com/ziadkadry99/docchat/internal/progress"
	"github.com/ziadkadry99/docchat/internal/walker"
	"github.com/ziadkadry99/docchat/internal/widget"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `docchat init` to create a config file", err)
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newSession builds a chat session against the configured backend that
// reports to the terminal.
func newSession(cfg *config.Config, term *terminal) (*widget.Session, error) {
	renderer, err := markdown.NewRenderer(cfg.RenderMode)
	if err != nil {
		return nil, err
	}
	return widget.NewSession(client.New(cfg.ServerURL), widget.Options{
		MaxMessageChars: cfg.MaxMessageChars,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		Retry:           newRetry(cfg),
		Renderer:        renderer,
		Notifier:        term,
		View:            term,
		Progress: func(filename string) progress.Reporter {
			return progress.NewReporter("Uploading " + filename)
		},
	}), nil
}

// expandUploads resolves path into the files to upload. A directory is
// walked for documents matching include; duplicate content is sent once.
func expandUploads(path string, include []string, maxSize int64) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:     path,
		Include:     include,
		MaxFileSize: maxSize,
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no documents found in %s", path)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths, nil
}

func newRetry(cfg *config.Config) client.Retry {
	return client.Retry{
		Attempts: cfg.ChatAttempts,
		Backoff:  cfg.Backoff(),
		Sleep:    client.Sleep,
	}
}

// openProfileStore opens the local profile database.
func openProfileStore(cfg *config.Config) (*profile.Store, func() error, error) {
	database, err := db.Open(cfg.ProfileDB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening profile database: %w", err)
	}
	return profile.NewStore(database), database.Close, nil
}

// createEmbedderFromConfig picks OpenRouter, OpenAI or the offline hash
// embedder depending on which keys are set.
func createEmbedderFromConfig(cfg *config.Config, keys llm.Keys) embeddings.Embedder {
	return embeddings.New(keys.OpenRouter, keys.OpenAI, cfg.Server.EmbeddingModel)
}

// createLLMProviderFromConfig creates the answering provider. A missing
// API key is not an error: the server then answers from excerpts.
func createLLMProviderFromConfig(cfg *config.Config, keys llm.Keys) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Server.Provider), cfg.Server.Model, keys)
	if errors.Is(err, llm.ErrMissingKey) {
		fmt.Fprintf(os.Stderr, "Warning: %v; answering from document excerpts\n", err)
		return nil, nil
	}
	if err != nil || provider == nil {
		return provider, err
	}
	return llm.NewRateLimitedProvider(provider, cfg.Server.ChatRPM), nil
}
