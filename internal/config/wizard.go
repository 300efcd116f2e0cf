package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/docchat/internal/markdown"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to docchat! Let's configure your client.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend URL.
	urlPrompt := promptui.Prompt{
		Label:    "Chat server URL",
		Default:  cfg.ServerURL,
		Validate: validateURL,
	}
	serverURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	cfg.ServerURL = serverURL

	// 2. Render mode.
	modePrompt := promptui.Select{
		Label: "How should replies be formatted",
		Items: []string{
			"simple: headers, lists, bold, italic, code",
			"gfm:    full GitHub-flavored markdown",
		},
	}
	modeIdx, _, err := modePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("render mode: %w", err)
	}
	cfg.RenderMode = []markdown.Mode{markdown.ModeSimple, markdown.ModeGFM}[modeIdx]

	// 3. Accepted upload types, used when running the server.
	typesPrompt := promptui.Prompt{
		Label:   "Accepted upload types (comma-separated globs)",
		Default: strings.Join(DefaultAllowedTypes, ","),
	}
	typesStr, err := typesPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("allowed types: %w", err)
	}
	if types := splitAndTrim(typesStr); len(types) > 0 {
		cfg.Server.AllowedTypes = types
	}

	if key, provider := APIKey(); key == "" {
		fmt.Println("\nNote: set OPENROUTER_API_KEY or OPENAI_API_KEY before running docchat server; without one, answers are raw excerpts.")
	} else {
		cfg.Server.Provider = provider
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http:// or https:// URL")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
